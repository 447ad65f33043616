package scoreconfig

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ValidationError 검증 실패 (로드 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks all required constraints
func Validate(cfg *Config) error {
	// === Meta ===
	if cfg.Meta.ConfigID == "" {
		return ValidationError{"meta.config_id", "required"}
	}

	// === Composite ===
	w := cfg.Composite.Weights
	if err := validateWeightsSum([]float64{w.Fundamental, w.Technical, w.Analyst, w.News, w.Insider, w.Portfolio}, 1.0, 1e-6); err != nil {
		return ValidationError{"composite.weights", err.Error()}
	}
	if w.Portfolio >= 1.0 {
		return ValidationError{"composite.weights.portfolio", "must be < 1.0"}
	}
	switch cfg.Composite.MissingPortfolioPolicy {
	case PolicyRenormalize, PolicyNeutral:
	default:
		return ValidationError{"composite.missing_portfolio_policy", "must be renormalize or neutral"}
	}
	if err := validateScoreRange(cfg.Composite.NeutralPortfolioScore, "composite.neutral_portfolio_score"); err != nil {
		return err
	}

	// === Ladders ===
	ladders := map[string]Ladder{
		"fundamental.pe":             cfg.Fundamental.PE,
		"fundamental.roe":            cfg.Fundamental.ROE,
		"fundamental.net_margin":     cfg.Fundamental.NetMargin,
		"fundamental.revenue_growth": cfg.Fundamental.RevenueGrowth,
		"fundamental.debt_to_equity": cfg.Fundamental.DebtToEquity,
		"technical.rsi":              cfg.Technical.RSI,
		"technical.bollinger":        cfg.Technical.Bollinger,
		"analyst.consensus":          cfg.Analyst.Consensus,
		"analyst.coverage":           cfg.Analyst.Coverage,
		"portfolio.target_upside":    cfg.Portfolio.TargetUpside,
		"portfolio.avg_buy_distance": cfg.Portfolio.AvgBuyDistance,
		"portfolio.weight":           cfg.Portfolio.Weight,
		"portfolio.unrealized_gain":  cfg.Portfolio.UnrealizedGain,
		"target.estimated_upside":    cfg.Target.EstimatedUpside,
		"conviction.roe":             cfg.Conviction.ROE,
		"conviction.revenue_cagr":    cfg.Conviction.RevenueCAGR,
		"conviction.net_margin":      cfg.Conviction.NetMargin,
		"conviction.debt_to_equity":  cfg.Conviction.DebtToEquity,
		"conviction.consensus":       cfg.Conviction.Consensus,
		"conviction.target_upside":   cfg.Conviction.TargetUpside,
		"conviction.earnings_beats":  cfg.Conviction.EarningsBeats,
		"conviction.insider_score":   cfg.Conviction.InsiderScore,
		"dip.rsi":                    cfg.Dip.RSI,
		"dip.bollinger":              cfg.Dip.Bollinger,
		"dip.below_sma50":            cfg.Dip.BelowSMA50,
		"dip.below_sma200":           cfg.Dip.BelowSMA200,
		"dip.range_52w":              cfg.Dip.Range52W,
		"dip.stochastic":             cfg.Dip.Stochastic,
	}
	for _, field := range sortedKeys(ladders) {
		if err := ladders[field].validate(field); err != nil {
			return err
		}
	}

	// === Category maxima ===
	f := cfg.Fundamental
	if sum := f.PE.Max + f.ROE.Max + f.NetMargin.Max + f.RevenueGrowth.Max + f.DebtToEquity.Max; sum != 100 {
		return ValidationError{"fundamental", fmt.Sprintf("max points must sum to 100, got %.1f", sum)}
	}
	t := cfg.Technical
	if sum := t.RSI.Max + t.MACD.Max + t.Bollinger.Max + t.ADX.Max + t.Stochastic.Max; sum != 100 {
		return ValidationError{"technical", fmt.Sprintf("max points must sum to 100, got %.1f", sum)}
	}
	if sum := cfg.Analyst.Consensus.Max + cfg.Analyst.Coverage.Max; sum != 100 {
		return ValidationError{"analyst", fmt.Sprintf("max points must sum to 100, got %.1f", sum)}
	}
	p := cfg.Portfolio
	if sum := p.TargetUpside.Max + p.AvgBuyDistance.Max + p.Weight.Max + p.UnrealizedGain.Max; sum != 100 {
		return ValidationError{"portfolio", fmt.Sprintf("max points must sum to 100, got %.1f", sum)}
	}

	// === Conviction ===
	lv := cfg.Conviction.Levels
	if lv.Medium <= 0 || lv.Medium >= lv.High || lv.High > 100 {
		return ValidationError{"conviction.levels", "must satisfy 0 < medium < high <= 100"}
	}
	band := cfg.Conviction.RSIBand
	if !(band.WideLow <= band.CoreLow && band.CoreLow < band.CoreHigh && band.CoreHigh <= band.WideHigh) {
		return ValidationError{"conviction.rsi_band", "must satisfy wide_low <= core_low < core_high <= wide_high"}
	}

	// === Dip ===
	if err := validateScoreRange(cfg.Dip.DipThreshold, "dip.dip_threshold"); err != nil {
		return err
	}
	if cfg.Dip.SMAMax <= 0 {
		return ValidationError{"dip.sma_max", "must be > 0"}
	}

	// === Signals ===
	s := cfg.Signals
	if s.Momentum.RSILow > s.Momentum.RSIHigh {
		return ValidationError{"signals.momentum", "rsi_low must be <= rsi_high"}
	}
	if s.Watch.FundamentalLow > s.Watch.FundamentalHigh {
		return ValidationError{"signals.watch", "fundamental_low must be <= fundamental_high"}
	}
	if s.Watch.NewsLow > s.Watch.NewsHigh {
		return ValidationError{"signals.watch", "news_low must be <= news_high"}
	}
	if s.Accumulate.DipLow > s.Accumulate.DipHigh {
		return ValidationError{"signals.accumulate", "dip_low must be <= dip_high"}
	}

	// === Strategy ===
	d := cfg.Strategy.DCA
	if !(d.NormalFrom < d.CautiousAbove && d.CautiousAbove < d.NoDCAAbove) {
		return ValidationError{"strategy.dca", "must satisfy normal_from < cautious_above < no_dca_above"}
	}
	if cfg.Strategy.SupportFallback <= 0 || cfg.Strategy.SupportFallback >= 1 {
		return ValidationError{"strategy.support_fallback", "must be in (0, 1)"}
	}
	if cfg.Strategy.Exit.SecondTargetMultiplier <= 1 {
		return ValidationError{"strategy.exit.second_target_multiplier", "must be > 1"}
	}

	return nil
}

func validateWeightsSum(weights []float64, target, tolerance float64) error {
	if len(weights) == 0 {
		return errors.New("weights required")
	}
	sum := 0.0
	for _, w := range weights {
		if w < 0 {
			return fmt.Errorf("negative weight %.4f", w)
		}
		sum += w
	}
	if math.Abs(sum-target) > tolerance {
		return fmt.Errorf("must sum to %.2f, got %.6f", target, sum)
	}
	return nil
}

func validateScoreRange(v float64, field string) error {
	if v < 0 || v > 100 {
		return ValidationError{field, "must be in [0, 100]"}
	}
	return nil
}

func sortedKeys(m map[string]Ladder) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
