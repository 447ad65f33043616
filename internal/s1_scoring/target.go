package s1_scoring

import (
	"github.com/wonny/aegis-advisor/backend/internal/contracts"
	"github.com/wonny/aegis-advisor/backend/internal/scoreconfig"
)

// TargetResolver picks the upside reference price
// 우선순위: 개인 목표가 → 애널리스트 목표가 → 컨센서스 기반 추정
type TargetResolver struct {
	cfg scoreconfig.Target
}

// NewTargetResolver creates a new target price resolver
func NewTargetResolver(cfg scoreconfig.Target) *TargetResolver {
	return &TargetResolver{cfg: cfg}
}

// Resolve runs the fallback chain
func (r *TargetResolver) Resolve(personal, analystTarget, consensus, current contracts.Float) contracts.TargetResolution {
	if p, ok := personal.Get(); ok {
		return withPrice(p, current, contracts.TargetPersonal)
	}
	if a, ok := analystTarget.Get(); ok {
		return withPrice(a, current, contracts.TargetAnalyst)
	}

	c, ok := consensus.Get()
	if !ok {
		return contracts.TargetResolution{Source: contracts.TargetNone}
	}
	upside := r.cfg.EstimatedUpside.Score(c)
	if upside <= 0 {
		return contracts.TargetResolution{Source: contracts.TargetNone}
	}

	res := contracts.TargetResolution{
		UpsidePct: contracts.F(upside),
		Source:    contracts.TargetEstimated,
	}
	if cur, ok := current.Get(); ok && cur > 0 {
		res.Price = contracts.F(Round2(cur * (1 + upside/100)))
	}
	return res
}

// ResolveFor resolves the target from a full input bundle
func (r *TargetResolver) ResolveFor(in contracts.ScoreInputs) contracts.TargetResolution {
	personal := contracts.None[float64]()
	if pos, ok := in.Position.Get(); ok {
		personal = pos.PersonalTarget
	}

	analystTarget, consensus := contracts.None[float64](), contracts.None[float64]()
	if a, ok := in.Analyst.Get(); ok {
		analystTarget = a.TargetPrice
		consensus = a.Consensus()
	}

	return r.Resolve(personal, analystTarget, consensus, in.CurrentPrice())
}

func withPrice(target float64, current contracts.Float, source contracts.TargetSource) contracts.TargetResolution {
	res := contracts.TargetResolution{
		Price:  contracts.F(target),
		Source: source,
	}
	if cur, ok := current.Get(); ok && cur > 0 {
		res.UpsidePct = contracts.F(Round2((target - cur) / cur * 100))
	}
	return res
}
