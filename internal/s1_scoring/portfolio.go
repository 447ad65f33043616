package s1_scoring

import (
	"github.com/wonny/aegis-advisor/backend/internal/contracts"
	"github.com/wonny/aegis-advisor/backend/internal/scoreconfig"
)

// PortfolioScorer scores an existing holding (30/25/20/25)
// 보유 종목에만 호출됨
type PortfolioScorer struct {
	cfg scoreconfig.Portfolio
}

// NewPortfolioScorer creates a new portfolio-context scorer
func NewPortfolioScorer(cfg scoreconfig.Portfolio) *PortfolioScorer {
	return &PortfolioScorer{cfg: cfg}
}

// Score calculates the portfolio-context score
func (s *PortfolioScorer) Score(pos contracts.PositionContext, current contracts.Float, target contracts.TargetResolution) contracts.CategoryScore {
	distance := contracts.None[float64]()
	avg, okAvg := pos.AvgBuyPrice.Get()
	cur, okCur := current.Get()
	if okAvg && okCur && avg > 0 {
		distance = contracts.F((cur - avg) / avg * 100)
	}

	// 평가손익률이 없으면 평단 대비 거리로 대체
	gain := pos.UnrealizedGainPct
	if !gain.Present() {
		gain = distance
	}

	return sumComponents([]contracts.ScoreComponent{
		LadderComponent("target_upside", s.cfg.TargetUpside, target.UpsidePct),
		LadderComponent("avg_buy_distance", s.cfg.AvgBuyDistance, distance),
		LadderComponent("weight", s.cfg.Weight, pos.Weight),
		LadderComponent("unrealized_gain", s.cfg.UnrealizedGain, gain),
	})
}
