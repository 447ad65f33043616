package s2_conviction

import (
	"github.com/wonny/aegis-advisor/backend/internal/contracts"
	"github.com/wonny/aegis-advisor/backend/internal/s1_scoring"
	"github.com/wonny/aegis-advisor/backend/internal/scoreconfig"
)

// ConvictionInputs are the prior-stage outputs conviction reads
type ConvictionInputs struct {
	Fundamentals contracts.Optional[contracts.FundamentalMetrics]
	Technicals   contracts.Optional[contracts.TechnicalIndicators]
	Consensus    contracts.Float
	Target       contracts.TargetResolution
	InsiderScore float64
}

// ConvictionResult is the long-hold quality rating
type ConvictionResult struct {
	contracts.CategoryScore
	Level            contracts.ConvictionLevel
	FundamentalGroup float64 // max 40
	MarketGroup      float64 // max 30
	MomentumGroup    float64 // max 30
}

// ConvictionEngine rates long-hold quality independently of the composite
// 펀더멘털 안정성 40 + 시장 포지션 30 + 모멘텀/심리 30
type ConvictionEngine struct {
	cfg scoreconfig.Conviction
}

// NewConvictionEngine creates a new conviction engine
func NewConvictionEngine(cfg scoreconfig.Conviction) *ConvictionEngine {
	return &ConvictionEngine{cfg: cfg}
}

// Evaluate calculates conviction score and level
func (e *ConvictionEngine) Evaluate(in ConvictionInputs) ConvictionResult {
	f := in.Fundamentals.OrElse(contracts.FundamentalMetrics{})
	de := f.DebtToEquity
	if v, ok := de.Get(); ok && v < 0 {
		de = contracts.None[float64]()
	}

	fundamental := []contracts.ScoreComponent{
		s1_scoring.LadderComponent("roe", e.cfg.ROE, f.ROE),
		s1_scoring.LadderComponent("revenue_cagr", e.cfg.RevenueCAGR, f.RevenueCAGR5Y),
		s1_scoring.LadderComponent("net_margin", e.cfg.NetMargin, f.NetMargin),
		s1_scoring.LadderComponent("debt_to_equity", e.cfg.DebtToEquity, de),
	}
	market := []contracts.ScoreComponent{
		s1_scoring.LadderComponent("consensus", e.cfg.Consensus, in.Consensus),
		s1_scoring.LadderComponent("target_upside", e.cfg.TargetUpside, in.Target.UpsidePct),
		s1_scoring.LadderComponent("earnings_beats", e.cfg.EarningsBeats, f.EarningsBeats),
	}

	ind := in.Technicals.OrElse(contracts.TechnicalIndicators{})
	momentum := []contracts.ScoreComponent{
		s1_scoring.LadderComponent("insider", e.cfg.InsiderScore, contracts.F(in.InsiderScore)),
		e.sma200(ind),
		e.rsiBand(ind.RSI14),
	}

	breakdown := make([]contracts.ScoreComponent, 0, len(fundamental)+len(market)+len(momentum))
	breakdown = append(breakdown, fundamental...)
	breakdown = append(breakdown, market...)
	breakdown = append(breakdown, momentum...)

	score := s1_scoring.Round2(s1_scoring.Clamp(s1_scoring.Total(breakdown)))
	return ConvictionResult{
		CategoryScore:    contracts.CategoryScore{Score: score, Breakdown: breakdown},
		Level:            e.Level(score),
		FundamentalGroup: s1_scoring.Total(fundamental),
		MarketGroup:      s1_scoring.Total(market),
		MomentumGroup:    s1_scoring.Total(momentum),
	}
}

// Level maps a conviction score to HIGH / MEDIUM / LOW
func (e *ConvictionEngine) Level(score float64) contracts.ConvictionLevel {
	switch {
	case score >= e.cfg.Levels.High:
		return contracts.ConvictionHigh
	case score >= e.cfg.Levels.Medium:
		return contracts.ConvictionMedium
	default:
		return contracts.ConvictionLow
	}
}

// sma200 rewards a price holding above the long-term average,
// less so when it is stretched far above it
func (e *ConvictionEngine) sma200(ind contracts.TechnicalIndicators) contracts.ScoreComponent {
	p := e.cfg.SMA200
	price, okPrice := ind.Price.Get()
	sma, okSMA := ind.SMA200.Get()
	if !okPrice || !okSMA || sma <= 0 {
		return contracts.NewComponent("sma200", 0, p.Max)
	}

	pct := (price - sma) / sma * 100
	var points float64
	switch {
	case pct > p.ExtendedAbovePct:
		points = p.Extended
	case pct >= 0:
		points = p.Above
	case pct > -p.SlightlyBelowPct:
		points = p.SlightlyBelow
	}
	return contracts.NewComponent("sma200", points, p.Max)
}

func (e *ConvictionEngine) rsiBand(rsi contracts.Float) contracts.ScoreComponent {
	p := e.cfg.RSIBand
	v, ok := rsi.Get()
	if !ok {
		return contracts.NewComponent("rsi_band", 0, p.Max)
	}

	points := p.Outside
	switch {
	case v >= p.CoreLow && v <= p.CoreHigh:
		points = p.Core
	case v >= p.WideLow && v <= p.WideHigh:
		points = p.Wide
	}
	return contracts.NewComponent("rsi_band", points, p.Max)
}
