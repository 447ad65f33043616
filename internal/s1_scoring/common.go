package s1_scoring

import (
	"math"

	"github.com/wonny/aegis-advisor/backend/internal/contracts"
	"github.com/wonny/aegis-advisor/backend/internal/scoreconfig"
)

// Clamp bounds v to [0, 100]
func Clamp(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(100, v))
}

// Round2 rounds to two decimals for stable output
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// LadderComponent scores an optional metric; absent → 0 points
// ⭐ SSOT: 결측 지표 처리는 모든 단계가 이 함수를 공유
func LadderComponent(name string, l scoreconfig.Ladder, v contracts.Float) contracts.ScoreComponent {
	x, ok := v.Get()
	if !ok {
		return contracts.NewComponent(name, 0, l.Max)
	}
	return contracts.NewComponent(name, l.Score(x), l.Max)
}

// Total sums the breakdown points without clamping
func Total(components []contracts.ScoreComponent) float64 {
	sum := 0.0
	for _, c := range components {
		sum += c.Points
	}
	return sum
}

// sumComponents totals the breakdown and clamps to [0, 100]
func sumComponents(components []contracts.ScoreComponent) contracts.CategoryScore {
	return contracts.CategoryScore{
		Score:     Round2(Clamp(Total(components))),
		Breakdown: components,
	}
}
