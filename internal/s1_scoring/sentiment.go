package s1_scoring

import (
	"github.com/wonny/aegis-advisor/backend/internal/contracts"
	"github.com/wonny/aegis-advisor/backend/internal/scoreconfig"
)

// NewsScorer maps average sentiment [-1, 1] to [0, 100]
type NewsScorer struct {
	cfg scoreconfig.Neutral
}

// NewNewsScorer creates a new news scorer
func NewNewsScorer(cfg scoreconfig.Neutral) *NewsScorer {
	return &NewsScorer{cfg: cfg}
}

// Score returns the neutral score when there are no articles
func (s *NewsScorer) Score(in contracts.Optional[contracts.NewsStats]) contracts.CategoryScore {
	n, ok := in.Get()
	if !ok || n.ArticleCount <= 0 {
		return neutralScore("sentiment", s.cfg.NeutralScore)
	}

	score := (n.AvgSentiment + 1) * 50
	return contracts.CategoryScore{
		Score:     Round2(Clamp(score)),
		Breakdown: []contracts.ScoreComponent{contracts.NewComponent("sentiment", Clamp(score), 100)},
	}
}

// InsiderScorer maps MSPR [-100, 100] to [0, 100]
type InsiderScorer struct {
	cfg scoreconfig.Neutral
}

// NewInsiderScorer creates a new insider scorer
func NewInsiderScorer(cfg scoreconfig.Neutral) *InsiderScorer {
	return &InsiderScorer{cfg: cfg}
}

// Score returns the neutral score when no insider data exists.
// MSPR must already be aggregated over the caller's window.
func (s *InsiderScorer) Score(in contracts.Optional[contracts.InsiderSentiment]) contracts.CategoryScore {
	ins, ok := in.Get()
	if !ok {
		return neutralScore("mspr", s.cfg.NeutralScore)
	}

	score := 50 + ins.MSPR/2
	return contracts.CategoryScore{
		Score:     Round2(Clamp(score)),
		Breakdown: []contracts.ScoreComponent{contracts.NewComponent("mspr", Clamp(score), 100)},
	}
}

func neutralScore(name string, neutral float64) contracts.CategoryScore {
	return contracts.CategoryScore{
		Score:     neutral,
		Breakdown: []contracts.ScoreComponent{contracts.NewComponent(name, neutral, 100)},
	}
}
