package s1_scoring

import (
	"github.com/wonny/aegis-advisor/backend/internal/contracts"
	"github.com/wonny/aegis-advisor/backend/internal/scoreconfig"
)

// AnalystScorer scores consensus (70) and coverage (30)
type AnalystScorer struct {
	cfg scoreconfig.Analyst
}

// NewAnalystScorer creates a new analyst scorer
func NewAnalystScorer(cfg scoreconfig.Analyst) *AnalystScorer {
	return &AnalystScorer{cfg: cfg}
}

// Score calculates the analyst score.
// Consensus = (2·SB + B − S − 2·SS) / total on a −2..+2 scale.
func (s *AnalystScorer) Score(in contracts.Optional[contracts.AnalystData]) contracts.CategoryScore {
	a, ok := in.Get()
	if !ok {
		return sumComponents([]contracts.ScoreComponent{
			contracts.NewComponent("consensus", 0, s.cfg.Consensus.Max),
			contracts.NewComponent("coverage", 0, s.cfg.Coverage.Max),
		})
	}

	coverage := contracts.None[float64]()
	if n := a.AnalystCount(); n > 0 {
		coverage = contracts.F(float64(n))
	}

	return sumComponents([]contracts.ScoreComponent{
		LadderComponent("consensus", s.cfg.Consensus, a.Consensus()),
		LadderComponent("coverage", s.cfg.Coverage, coverage),
	})
}
