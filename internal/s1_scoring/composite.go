package s1_scoring

import (
	"github.com/wonny/aegis-advisor/backend/internal/contracts"
	"github.com/wonny/aegis-advisor/backend/internal/scoreconfig"
)

// CompositeAggregator is the weighted sum of the six category scores
// ⭐ SSOT: 종합 점수 가중치 적용은 여기서만
type CompositeAggregator struct {
	cfg scoreconfig.Composite
}

// NewCompositeAggregator creates a new composite aggregator
func NewCompositeAggregator(cfg scoreconfig.Composite) *CompositeAggregator {
	return &CompositeAggregator{cfg: cfg}
}

// Aggregate computes the composite score.
// Without a position the portfolio weight is either dropped and the rest
// renormalized, or the neutral score is substituted, per policy.
func (a *CompositeAggregator) Aggregate(s contracts.CategoryScores) float64 {
	w := a.cfg.Weights
	base := w.Fundamental*s.Fundamental +
		w.Technical*s.Technical +
		w.Analyst*s.Analyst +
		w.News*s.News +
		w.Insider*s.Insider

	if p, ok := s.Portfolio.Get(); ok {
		return Round2(Clamp(base + w.Portfolio*p))
	}

	switch a.cfg.MissingPortfolioPolicy {
	case scoreconfig.PolicyNeutral:
		return Round2(Clamp(base + w.Portfolio*a.cfg.NeutralPortfolioScore))
	default:
		return Round2(Clamp(base / (1 - w.Portfolio)))
	}
}
