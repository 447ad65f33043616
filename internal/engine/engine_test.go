package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/aegis-advisor/backend/internal/contracts"
	"github.com/wonny/aegis-advisor/backend/internal/scoreconfig"
	"github.com/wonny/aegis-advisor/backend/pkg/logger"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New(scoreconfig.Default(), logger.NewNop())
	require.NoError(t, err)
	return e
}

func sampleInputs() contracts.ScoreInputs {
	return contracts.ScoreInputs{
		Ticker: "AAPL",
		Name:   "Apple Inc.",
		Fundamentals: contracts.Some(contracts.FundamentalMetrics{
			PE:            contracts.F(28),
			ROE:           contracts.F(150),
			NetMargin:     contracts.F(25.3),
			RevenueGrowth: contracts.F(6),
			DebtToEquity:  contracts.F(1.8),
			RevenueCAGR5Y: contracts.F(8.7),
			EarningsBeats: contracts.F(4),
		}),
		Technicals: contracts.Some(contracts.TechnicalIndicators{
			Price:             contracts.F(190),
			RSI14:             contracts.F(58),
			MACD:              contracts.F(1.4),
			MACDSignal:        contracts.F(1.1),
			MACDHistogram:     contracts.F(0.3),
			BollingerPosition: contracts.F(0.62),
			ADX:               contracts.F(27),
			PlusDI:            contracts.F(24),
			MinusDI:           contracts.F(17),
			StochK:            contracts.F(66),
			StochD:            contracts.F(61),
			SMA50:             contracts.F(184),
			SMA200:            contracts.F(176),
			High52W:           contracts.F(199),
			Low52W:            contracts.F(164),
			SupportPrice:      contracts.F(181),
			ResistancePrice:   contracts.F(198),
		}),
		Analyst: contracts.Some(contracts.AnalystData{
			StrongBuy:   12,
			Buy:         20,
			Hold:        9,
			Sell:        1,
			TargetPrice: contracts.F(215),
		}),
		News:    contracts.Some(contracts.NewsStats{AvgSentiment: 0.22, ArticleCount: 37}),
		Insider: contracts.Some(contracts.InsiderSentiment{MSPR: -12, WindowMonths: 3}),
		Position: contracts.Some(contracts.PositionContext{
			Shares:      40,
			AvgBuyPrice: contracts.F(150),
			Weight:      contracts.F(0.09),
		}),
	}
}

func TestEngine_New_RejectsInvalidConfig(t *testing.T) {
	cfg := scoreconfig.Default()
	cfg.Composite.Weights.Technical = 0.5

	_, err := New(cfg, logger.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "composite.weights")
}

func TestEngine_Evaluate_Deterministic(t *testing.T) {
	e := newTestEngine(t)
	in := sampleInputs()

	first, err := json.Marshal(e.Evaluate(in))
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := json.Marshal(e.Evaluate(in))
		require.NoError(t, err)
		assert.JSONEq(t, string(first), string(again))
	}
}

func TestEngine_Evaluate_Sample(t *testing.T) {
	e := newTestEngine(t)
	rec := e.Evaluate(sampleInputs())

	assert.Equal(t, "AAPL", rec.Ticker)
	assert.True(t, rec.HasPosition)
	assert.True(t, rec.Scores.Portfolio.Present())
	assert.Equal(t, contracts.TargetAnalyst, rec.Target.Source)
	assert.Equal(t, contracts.BiasBullish, rec.TechnicalBias)
	assert.Equal(t, e.ConfigHash(), rec.Metadata.ConfigHash)
	assert.Equal(t, contracts.F(-12), rec.Metadata.InsiderMSPR)
	assert.Equal(t, 37, rec.Metadata.ArticleCount)
	require.NotEmpty(t, rec.Signals)
	assert.True(t, rec.HasSignal(rec.PrimarySignal.Type))
	assert.NotEmpty(t, rec.Breakdowns.Portfolio)
	assert.Len(t, rec.Breakdowns.Conviction, 10)
	assert.Len(t, rec.Breakdowns.Dip, 5)
}

func TestEngine_Evaluate_EmptyInputs(t *testing.T) {
	e := newTestEngine(t)
	rec := e.Evaluate(contracts.ScoreInputs{Ticker: "NEW"})

	assert.Equal(t, 0.0, rec.Scores.Fundamental)
	assert.Equal(t, 0.0, rec.Scores.Technical)
	assert.Equal(t, 0.0, rec.Scores.Analyst)
	assert.Equal(t, 50.0, rec.Scores.News)
	assert.Equal(t, 50.0, rec.Scores.Insider)
	assert.False(t, rec.Scores.Portfolio.Present())
	// (0.10*50 + 0.10*50) / 0.80
	assert.Equal(t, 12.5, rec.Composite)
	assert.Equal(t, contracts.ConvictionLow, rec.ConvictionLevel)
	assert.Equal(t, contracts.TargetNone, rec.Target.Source)
	assert.Equal(t, contracts.BiasNeutral, rec.TechnicalBias)
	assert.Equal(t, contracts.SignalNeutral, rec.PrimarySignal.Type)
	assert.False(t, rec.BuyStrategy.RiskRewardRatio.Present())
}

func TestEngine_Evaluate_GatedDipFallsThrough(t *testing.T) {
	e := newTestEngine(t)
	rec := e.Evaluate(contracts.ScoreInputs{
		Ticker: "TRAP",
		Fundamentals: contracts.Some(contracts.FundamentalMetrics{
			ROE:           contracts.F(15), // 12
			NetMargin:     contracts.F(20), // 15
			RevenueGrowth: contracts.F(3),  // 5
		}),
		Technicals: contracts.Some(contracts.TechnicalIndicators{
			Price:             contracts.F(80),
			RSI14:             contracts.F(22),
			BollingerPosition: contracts.F(-0.05),
			SMA50:             contracts.F(100),
			SMA200:            contracts.F(90),
		}),
		Analyst: contracts.Some(contracts.AnalystData{StrongBuy: 5, Buy: 3, Hold: 2}),
	})

	assert.Equal(t, 32.0, rec.Scores.Fundamental)
	assert.Equal(t, 65.0, rec.DipScore)
	assert.True(t, rec.IsDip)
	assert.False(t, rec.DipQualityCheck)
	assert.False(t, rec.HasSignal(contracts.SignalDipOpportunity))
	// 펀더멘털 32는 게이트(<35) 탈락이면서 WATCH 구간 [20,35]에 겹침
	assert.Equal(t, contracts.SignalWatchClosely, rec.PrimarySignal.Type)
}

func TestEngine_Evaluate_Bounds(t *testing.T) {
	e := newTestEngine(t)
	rng := rand.New(rand.NewSource(42))

	maybe := func(lo, hi float64) contracts.Float {
		if rng.Intn(4) == 0 {
			return contracts.None[float64]()
		}
		return contracts.F(lo + rng.Float64()*(hi-lo))
	}

	inBounds := func(t *testing.T, name string, v float64) {
		assert.GreaterOrEqual(t, v, 0.0, name)
		assert.LessOrEqual(t, v, 100.0, name)
	}

	for i := 0; i < 500; i++ {
		in := contracts.ScoreInputs{
			Ticker: fmt.Sprintf("T%03d", i),
			Fundamentals: contracts.Some(contracts.FundamentalMetrics{
				PE:            maybe(-50, 200),
				ROE:           maybe(-100, 200),
				NetMargin:     maybe(-100, 100),
				RevenueGrowth: maybe(-80, 300),
				DebtToEquity:  maybe(-2, 10),
				RevenueCAGR5Y: maybe(-50, 100),
				EarningsBeats: maybe(0, 4),
			}),
			Technicals: contracts.Some(contracts.TechnicalIndicators{
				Price:             maybe(1, 1000),
				RSI14:             maybe(0, 100),
				MACD:              maybe(-10, 10),
				MACDSignal:        maybe(-10, 10),
				BollingerPosition: maybe(-0.5, 1.5),
				ADX:               maybe(0, 60),
				PlusDI:            maybe(0, 50),
				MinusDI:           maybe(0, 50),
				StochK:            maybe(0, 100),
				StochD:            maybe(0, 100),
				SMA50:             maybe(1, 1000),
				SMA200:            maybe(1, 1000),
				High52W:           maybe(1, 1000),
				Low52W:            maybe(1, 1000),
				SupportPrice:      maybe(1, 1000),
			}),
			Analyst: contracts.Some(contracts.AnalystData{
				StrongBuy:   rng.Intn(20),
				Buy:         rng.Intn(20),
				Hold:        rng.Intn(20),
				Sell:        rng.Intn(10),
				StrongSell:  rng.Intn(10),
				TargetPrice: maybe(1, 1500),
			}),
			News:    contracts.Some(contracts.NewsStats{AvgSentiment: rng.Float64()*4 - 2, ArticleCount: rng.Intn(50)}),
			Insider: contracts.Some(contracts.InsiderSentiment{MSPR: rng.Float64()*400 - 200, WindowMonths: 6}),
		}
		if rng.Intn(2) == 0 {
			in.Position = contracts.Some(contracts.PositionContext{
				Shares:            float64(rng.Intn(500)),
				AvgBuyPrice:       maybe(1, 1000),
				Weight:            maybe(0, 0.5),
				PersonalTarget:    maybe(1, 1500),
				UnrealizedGainPct: maybe(-90, 400),
			})
		}

		rec := e.Evaluate(in)
		inBounds(t, "fundamental", rec.Scores.Fundamental)
		inBounds(t, "technical", rec.Scores.Technical)
		inBounds(t, "analyst", rec.Scores.Analyst)
		inBounds(t, "news", rec.Scores.News)
		inBounds(t, "insider", rec.Scores.Insider)
		inBounds(t, "portfolio", rec.Scores.Portfolio.OrElse(0))
		inBounds(t, "composite", rec.Composite)
		inBounds(t, "conviction", rec.Conviction)
		inBounds(t, "dip", rec.DipScore)
		for _, s := range rec.Signals {
			inBounds(t, "strength", s.Strength)
		}
		require.NotEmpty(t, rec.Signals)
	}
}

func TestEngine_EvaluateBatch(t *testing.T) {
	e := newTestEngine(t)

	inputs := make([]contracts.ScoreInputs, 25)
	for i := range inputs {
		in := sampleInputs()
		in.Ticker = fmt.Sprintf("T%02d", i)
		inputs[i] = in
	}

	recs, err := e.EvaluateBatch(context.Background(), inputs, 4)
	require.NoError(t, err)
	require.Len(t, recs, len(inputs))
	for i, rec := range recs {
		assert.Equal(t, inputs[i].Ticker, rec.Ticker)
	}

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := e.EvaluateBatch(ctx, inputs, 2)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
