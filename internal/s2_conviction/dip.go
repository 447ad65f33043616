package s2_conviction

import (
	"math"

	"github.com/wonny/aegis-advisor/backend/internal/contracts"
	"github.com/wonny/aegis-advisor/backend/internal/s1_scoring"
	"github.com/wonny/aegis-advisor/backend/internal/scoreconfig"
)

// DipResult is the oversold score plus the value-trap gate
type DipResult struct {
	contracts.CategoryScore
	IsDip        bool
	QualityCheck bool
}

// Opportunity reports whether a dip signal may be emitted
func (r DipResult) Opportunity() bool {
	return r.IsDip && r.QualityCheck
}

// DipEngine detects oversold prices
// ⭐ SSOT: 과매도 판정 + 품질 게이트는 여기서만
type DipEngine struct {
	cfg scoreconfig.Dip
}

// NewDipEngine creates a new dip engine
func NewDipEngine(cfg scoreconfig.Dip) *DipEngine {
	return &DipEngine{cfg: cfg}
}

// Evaluate sums the five oversold signals and applies the quality gate
func (e *DipEngine) Evaluate(in contracts.Optional[contracts.TechnicalIndicators], scores contracts.CategoryScores) DipResult {
	ind := in.OrElse(contracts.TechnicalIndicators{})

	breakdown := []contracts.ScoreComponent{
		s1_scoring.LadderComponent("rsi", e.cfg.RSI, ind.RSI14),
		s1_scoring.LadderComponent("bollinger", e.cfg.Bollinger, ind.BollingerPosition),
		e.smaPosition(ind),
		s1_scoring.LadderComponent("range_52w", e.cfg.Range52W, rangePosition(ind)),
		s1_scoring.LadderComponent("stochastic", e.cfg.Stochastic, ind.StochK),
	}

	score := s1_scoring.Round2(s1_scoring.Clamp(s1_scoring.Total(breakdown)))
	return DipResult{
		CategoryScore: contracts.CategoryScore{Score: score, Breakdown: breakdown},
		IsDip:         score >= e.cfg.DipThreshold,
		QualityCheck:  e.Gate(scores.Fundamental, scores.Analyst, scores.News),
	}
}

// Gate is the value-trap guard: every threshold must pass
func (e *DipEngine) Gate(fundamental, analyst, news float64) bool {
	g := e.cfg.Gate
	return fundamental >= g.MinFundamental &&
		analyst >= g.MinAnalyst &&
		news >= g.MinNews
}

// smaPosition scores how far price sits below SMA50 and SMA200
func (e *DipEngine) smaPosition(ind contracts.TechnicalIndicators) contracts.ScoreComponent {
	price, ok := ind.Price.Get()
	if !ok {
		return contracts.NewComponent("sma_position", 0, e.cfg.SMAMax)
	}

	points := s1_scoring.LadderComponent("", e.cfg.BelowSMA50, belowPct(price, ind.SMA50)).Points +
		s1_scoring.LadderComponent("", e.cfg.BelowSMA200, belowPct(price, ind.SMA200)).Points
	return contracts.NewComponent("sma_position", math.Min(points, e.cfg.SMAMax), e.cfg.SMAMax)
}

// belowPct is how far price is below the average, in percent
// (negative when above)
func belowPct(price float64, sma contracts.Float) contracts.Float {
	s, ok := sma.Get()
	if !ok || s <= 0 {
		return contracts.None[float64]()
	}
	return contracts.F((s - price) / s * 100)
}

// rangePosition is (price − low) / (high − low) within the 52-week range
func rangePosition(ind contracts.TechnicalIndicators) contracts.Float {
	price, okPrice := ind.Price.Get()
	high, okHigh := ind.High52W.Get()
	low, okLow := ind.Low52W.Get()
	if !okPrice || !okHigh || !okLow || high <= low {
		return contracts.None[float64]()
	}
	return contracts.F((price - low) / (high - low))
}
