package scoreconfig

// Default returns the built-in scoring tables.
// config/scoring/default.yaml mirrors these values.
func Default() *Config {
	return &Config{
		Meta: Meta{
			ConfigID: "default",
			Version:  "1.0.0",
		},
		Composite: Composite{
			Weights: CompositeWeights{
				Fundamental: 0.20,
				Technical:   0.25,
				Analyst:     0.15,
				News:        0.10,
				Insider:     0.10,
				Portfolio:   0.20,
			},
			MissingPortfolioPolicy: PolicyRenormalize,
			NeutralPortfolioScore:  50,
		},
		Fundamental: Fundamental{
			PE:            lt(20, Tier{12, 20}, Tier{20, 15}, Tier{30, 10}, Tier{50, 5}),
			ROE:           gt(20, Tier{25, 20}, Tier{18, 16}, Tier{12, 12}, Tier{5, 6}),
			NetMargin:     gt(20, Tier{25, 20}, Tier{15, 15}, Tier{8, 10}, Tier{0, 5}),
			RevenueGrowth: gt(20, Tier{25, 20}, Tier{15, 15}, Tier{5, 10}, Tier{0, 5}),
			DebtToEquity:  lt(20, Tier{0.3, 20}, Tier{0.7, 16}, Tier{1.5, 10}, Tier{2.5, 4}),
		},
		Technical: Technical{
			RSI: lt(25, Tier{30, 25}, Tier{45, 20}, Tier{55, 15}, Tier{70, 10}),
			MACD: MACDPoints{
				Max:                 20,
				BullishHistogram:    20,
				AboveSignal:         14,
				BelowSignalPositive: 8,
				Bearish:             3,
			},
			Bollinger: withFloor(lt(20, Tier{0.2, 20}, Tier{0.4, 15}, Tier{0.6, 10}, Tier{0.8, 6}), 2),
			ADX: ADXPoints{
				Max:            15,
				TrendThreshold: 25,
				StrongBull:     15,
				StrongBear:     2,
				WeakBull:       10,
				WeakBear:       6,
			},
			Stochastic: StochasticPoints{
				Max:               20,
				Oversold:          20,
				Overbought:        80,
				OversoldRising:    20,
				OversoldOnly:      16,
				OverboughtFalling: 0,
				OverboughtOnly:    4,
				Rising:            12,
				Falling:           8,
			},
			Bias: BiasThresholds{
				RSIOversold:     30,
				RSIOverbought:   70,
				BollingerLow:    0.2,
				BollingerHigh:   0.8,
				ADXTrend:        25,
				StochOversold:   20,
				StochOverbought: 80,
			},
		},
		Analyst: Analyst{
			Consensus: gte(70, Tier{1.5, 70}, Tier{1.0, 58}, Tier{0.5, 45}, Tier{0, 30}, Tier{-0.5, 18}, Tier{-1.0, 8}),
			Coverage:  gte(30, Tier{20, 30}, Tier{10, 24}, Tier{5, 16}, Tier{1, 8}),
		},
		News:    Neutral{NeutralScore: 50},
		Insider: Neutral{NeutralScore: 50},
		Portfolio: Portfolio{
			TargetUpside:   gte(30, Tier{30, 30}, Tier{20, 24}, Tier{10, 18}, Tier{5, 10}, Tier{0, 5}),
			AvgBuyDistance: withFloor(lte(25, Tier{-15, 25}, Tier{-5, 20}, Tier{5, 15}, Tier{20, 10}), 5),
			Weight:         withFloor(lt(20, Tier{0.03, 20}, Tier{0.08, 15}, Tier{0.12, 8}), 3),
			UnrealizedGain: withFloor(gte(25, Tier{50, 10}, Tier{25, 18}, Tier{-10, 25}, Tier{-25, 12}), 5),
		},
		Target: Target{
			EstimatedUpside: gte(25, Tier{1.5, 25}, Tier{1.0, 15}, Tier{0.5, 8}),
		},
		Conviction: Conviction{
			ROE:           gt(12, Tier{20, 12}, Tier{15, 9}, Tier{10, 6}, Tier{5, 3}),
			RevenueCAGR:   gt(10, Tier{20, 10}, Tier{10, 7}, Tier{5, 4}, Tier{0, 2}),
			NetMargin:     gt(10, Tier{20, 10}, Tier{10, 7}, Tier{5, 4}, Tier{0, 2}),
			DebtToEquity:  lt(8, Tier{0.5, 8}, Tier{1.0, 5}, Tier{2.0, 2}),
			Consensus:     gte(12, Tier{1.5, 12}, Tier{1.0, 9}, Tier{0.5, 6}, Tier{0, 3}),
			TargetUpside:  gte(10, Tier{30, 10}, Tier{20, 8}, Tier{10, 5}, Tier{0, 2}),
			EarningsBeats: gte(8, Tier{4, 8}, Tier{3, 6}, Tier{2, 3}),
			InsiderScore:  gte(12, Tier{70, 12}, Tier{60, 9}, Tier{50, 6}, Tier{40, 3}),
			SMA200: SMA200Points{
				Max:              10,
				ExtendedAbovePct: 20,
				Above:            10,
				Extended:         7,
				SlightlyBelowPct: 10,
				SlightlyBelow:    4,
			},
			RSIBand: RSIBandPoints{
				Max:      8,
				CoreLow:  40,
				CoreHigh: 60,
				Core:     8,
				WideLow:  30,
				WideHigh: 70,
				Wide:     5,
				Outside:  2,
			},
			Levels: LevelCutoffs{High: 70, Medium: 45},
		},
		Dip: Dip{
			RSI:          lt(25, Tier{25, 25}, Tier{30, 20}, Tier{35, 15}, Tier{40, 10}, Tier{45, 5}),
			Bollinger:    lt(20, Tier{0, 20}, Tier{0.1, 16}, Tier{0.2, 12}, Tier{0.3, 6}),
			BelowSMA50:   gt(12, Tier{10, 12}, Tier{5, 9}, Tier{0, 6}),
			BelowSMA200:  gt(8, Tier{10, 8}, Tier{0, 5}),
			SMAMax:       20,
			Range52W:     lte(15, Tier{0.1, 15}, Tier{0.2, 12}, Tier{0.3, 8}, Tier{0.4, 4}),
			Stochastic:   lt(10, Tier{10, 10}, Tier{20, 8}, Tier{30, 4}),
			DipThreshold: 50,
			Gate: QualityGate{
				MinFundamental: 35,
				MinAnalyst:     25,
				MinNews:        20,
			},
		},
		Signals: Signals{
			Momentum:   MomentumRule{MinTechnical: 70, RSILow: 50, RSIHigh: 70},
			NearTarget: NearTargetRule{MaxAbsUpsidePct: 8},
			Trim:       TrimRule{MaxTechnical: 40, MinRSI: 70, MinWeight: 0.08, MaxUpsidePct: 5},
			Watch: WatchRule{
				FundamentalLow:  20,
				FundamentalHigh: 35,
				InsiderBelow:    35,
				NewsLow:         15,
				NewsHigh:        30,
			},
			Accumulate: AccumulateRule{DipLow: 20, DipHigh: 40, MinFundamental: 50},
		},
		Strategy: Strategy{
			SupportFallback: 0.90,
			AvgBuyPremium:   1.05,
			DCA: DCATiers{
				NoDCAAbove:    0.12,
				CautiousAbove: 0.08,
				NormalFrom:    0.03,
				CautiousPct:   0.5,
				NormalPct:     1.0,
				AggressivePct: 2.0,
			},
			Exit: ExitRules{
				StopLossBasePct:         5,
				StopLossPerConviction:   0.10,
				TakeProfitBasePct:       10,
				TakeProfitPerConviction: 0.10,
				SecondTargetMultiplier:  1.10,
				MaxWeight:               0.08,
			},
		},
	}
}
