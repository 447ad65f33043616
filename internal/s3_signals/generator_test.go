package s3_signals

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/aegis-advisor/backend/internal/contracts"
	"github.com/wonny/aegis-advisor/backend/internal/scoreconfig"
)

// quiet matches no rule
func quiet() Context {
	return Context{
		Scores: contracts.CategoryScores{
			Fundamental: 60,
			Technical:   55,
			Analyst:     60,
			News:        60,
			Insider:     60,
		},
		Composite:       58,
		Conviction:      50,
		ConvictionLevel: contracts.ConvictionMedium,
		DipScore:        10,
		RSI:             contracts.F(55),
	}
}

func types(signals []contracts.StockSignal) []contracts.SignalType {
	out := make([]contracts.SignalType, 0, len(signals))
	for _, s := range signals {
		out = append(out, s.Type)
	}
	return out
}

func TestGenerator_NeutralFallback(t *testing.T) {
	g := NewGenerator(scoreconfig.Default().Signals)

	got := g.Generate(quiet())
	require.Len(t, got.Signals, 1)
	assert.Equal(t, contracts.SignalNeutral, got.Primary.Type)
	assert.Equal(t, NeutralPriority, got.Primary.Priority)
	assert.Equal(t, 58.0, got.Primary.Strength)
}

func TestGenerator_MomentumBeatsWatch(t *testing.T) {
	g := NewGenerator(scoreconfig.Default().Signals)

	c := quiet()
	c.Scores.Technical = 75
	c.RSI = contracts.F(60)
	c.Scores.Insider = 30

	got := g.Generate(c)
	assert.Equal(t, []contracts.SignalType{contracts.SignalMomentum, contracts.SignalWatchClosely}, types(got.Signals))
	assert.Equal(t, contracts.SignalMomentum, got.Primary.Type)
	assert.Equal(t, 75.0, got.Primary.Strength)
}

func TestGenerator_GatedDipFallsThrough(t *testing.T) {
	g := NewGenerator(scoreconfig.Default().Signals)

	c := quiet()
	c.DipScore = 65
	c.IsDip = true
	c.DipQualityCheck = false
	c.Scores.Fundamental = 30

	got := g.Generate(c)
	assert.NotContains(t, types(got.Signals), contracts.SignalDipOpportunity)
	assert.Equal(t, contracts.SignalWatchClosely, got.Primary.Type)

	c.DipQualityCheck = true
	got = g.Generate(c)
	assert.Equal(t, contracts.SignalDipOpportunity, got.Primary.Type)
	assert.Equal(t, 65.0, got.Primary.Strength)
}

func TestGenerator_Rules(t *testing.T) {
	g := NewGenerator(scoreconfig.Default().Signals)

	tests := []struct {
		name     string
		mutate   func(c *Context)
		want     contracts.SignalType
		strength float64
	}{
		{
			name: "conviction hold",
			mutate: func(c *Context) {
				c.Conviction = 82
				c.ConvictionLevel = contracts.ConvictionHigh
			},
			want:     contracts.SignalConvictionHold,
			strength: 82,
		},
		{
			name:     "near target",
			mutate:   func(c *Context) { c.UpsidePct = contracts.F(-2) },
			want:     contracts.SignalNearTarget,
			strength: 90,
		},
		{
			name: "watch on mid news",
			mutate: func(c *Context) {
				c.Scores.News = 20
			},
			want:     contracts.SignalWatchClosely,
			strength: 80,
		},
		{
			name: "accumulate on a mild pullback",
			mutate: func(c *Context) {
				c.DipScore = 30
			},
			want:     contracts.SignalAccumulate,
			strength: 60,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := quiet()
			tt.mutate(&c)
			got := g.Generate(c)
			assert.Equal(t, tt.want, got.Primary.Type)
			assert.Equal(t, tt.strength, got.Primary.Strength)
		})
	}
}

func TestGenerator_ConsiderTrim(t *testing.T) {
	g := NewGenerator(scoreconfig.Default().Signals)

	c := quiet()
	c.Scores.Technical = 30
	c.RSI = contracts.F(75)
	c.Weight = contracts.F(0.10)
	c.UpsidePct = contracts.F(3)

	got := g.Generate(c)
	// 목표가 근접(우선순위 4)이 정리(5)보다 우선
	assert.Equal(t, []contracts.SignalType{contracts.SignalNearTarget, contracts.SignalConsiderTrim}, types(got.Signals))
	assert.Equal(t, contracts.SignalNearTarget, got.Primary.Type)
	assert.Equal(t, 70.0, got.Signals[1].Strength)

	t.Run("no position never trims", func(t *testing.T) {
		c.Weight = contracts.None[float64]()
		got := g.Generate(c)
		assert.NotContains(t, types(got.Signals), contracts.SignalConsiderTrim)
	})
}

func TestGenerator_AbsentRSIAndUpside(t *testing.T) {
	g := NewGenerator(scoreconfig.Default().Signals)

	c := quiet()
	c.Scores.Technical = 90
	c.RSI = contracts.None[float64]()
	c.UpsidePct = contracts.None[float64]()

	got := g.Generate(c)
	assert.Equal(t, contracts.SignalNeutral, got.Primary.Type)
}

func TestGenerator_ExactlyOnePrimary(t *testing.T) {
	g := NewGenerator(scoreconfig.Default().Signals)

	c := quiet()
	c.IsDip, c.DipQualityCheck, c.DipScore = true, true, 55
	c.Scores.Technical = 72
	c.RSI = contracts.F(52)
	c.ConvictionLevel = contracts.ConvictionHigh
	c.Scores.Insider = 20

	got := g.Generate(c)
	count := 0
	for _, s := range got.Signals {
		if s.Priority == got.Primary.Priority {
			count++
		}
	}
	assert.Equal(t, 1, count)
	assert.Equal(t, contracts.SignalDipOpportunity, got.Primary.Type)
}
