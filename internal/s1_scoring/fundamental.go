package s1_scoring

import (
	"github.com/wonny/aegis-advisor/backend/internal/contracts"
	"github.com/wonny/aegis-advisor/backend/internal/scoreconfig"
)

// FundamentalScorer scores valuation and quality (5 x 20 points)
// ⭐ SSOT: 펀더멘털 점수 계산은 여기서만
type FundamentalScorer struct {
	cfg scoreconfig.Fundamental
}

// NewFundamentalScorer creates a new fundamental scorer
func NewFundamentalScorer(cfg scoreconfig.Fundamental) *FundamentalScorer {
	return &FundamentalScorer{cfg: cfg}
}

// Score calculates the fundamental score.
// Absent category → 0; each absent metric → 0 for its slice.
func (s *FundamentalScorer) Score(in contracts.Optional[contracts.FundamentalMetrics]) contracts.CategoryScore {
	m, ok := in.Get()
	if !ok {
		m = contracts.FundamentalMetrics{}
	}

	// 적자 기업 P/E(<=0)는 저평가가 아님
	pe := m.PE
	if v, ok := pe.Get(); ok && v <= 0 {
		pe = contracts.None[float64]()
	}
	// 자본잠식(음수 D/E)도 동일
	de := m.DebtToEquity
	if v, ok := de.Get(); ok && v < 0 {
		de = contracts.None[float64]()
	}

	return sumComponents([]contracts.ScoreComponent{
		LadderComponent("pe", s.cfg.PE, pe),
		LadderComponent("roe", s.cfg.ROE, m.ROE),
		LadderComponent("net_margin", s.cfg.NetMargin, m.NetMargin),
		LadderComponent("revenue_growth", s.cfg.RevenueGrowth, m.RevenueGrowth),
		LadderComponent("debt_to_equity", s.cfg.DebtToEquity, de),
	})
}
