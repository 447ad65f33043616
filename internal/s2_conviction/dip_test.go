package s2_conviction

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wonny/aegis-advisor/backend/internal/contracts"
	"github.com/wonny/aegis-advisor/backend/internal/scoreconfig"
)

// deepDip scores 65: RSI 25 + %B 20 + SMA position capped at 20
func deepDip() contracts.Optional[contracts.TechnicalIndicators] {
	return contracts.Some(contracts.TechnicalIndicators{
		Price:             contracts.F(80),
		RSI14:             contracts.F(22),
		BollingerPosition: contracts.F(-0.05),
		SMA50:             contracts.F(100), // 20% below → 12
		SMA200:            contracts.F(90),  // 11% below → 8
	})
}

func TestDipEngine_Evaluate(t *testing.T) {
	e := NewDipEngine(scoreconfig.Default().Dip)
	healthy := contracts.CategoryScores{Fundamental: 60, Analyst: 50, News: 55}

	t.Run("deep dip passes the gate", func(t *testing.T) {
		got := e.Evaluate(deepDip(), healthy)
		assert.Equal(t, 65.0, got.Score)
		assert.True(t, got.IsDip)
		assert.True(t, got.QualityCheck)
		assert.True(t, got.Opportunity())
	})

	t.Run("weak fundamentals fail the gate but keep IsDip", func(t *testing.T) {
		weak := healthy
		weak.Fundamental = 30
		got := e.Evaluate(deepDip(), weak)
		assert.Equal(t, 65.0, got.Score)
		assert.True(t, got.IsDip)
		assert.False(t, got.QualityCheck)
		assert.False(t, got.Opportunity())
	})

	t.Run("SMA position is capped", func(t *testing.T) {
		got := e.Evaluate(contracts.Some(contracts.TechnicalIndicators{
			Price:  contracts.F(50),
			SMA50:  contracts.F(100),
			SMA200: contracts.F(100),
		}), healthy)
		assert.Equal(t, 20.0, got.Score)
	})

	t.Run("52 week range and stochastic", func(t *testing.T) {
		got := e.Evaluate(contracts.Some(contracts.TechnicalIndicators{
			Price:   contracts.F(105),
			High52W: contracts.F(200),
			Low52W:  contracts.F(100), // position 0.05 → 15
			StochK:  contracts.F(8),   // 10
		}), healthy)
		assert.Equal(t, 25.0, got.Score)
		assert.False(t, got.IsDip)
	})

	t.Run("price above averages earns nothing", func(t *testing.T) {
		got := e.Evaluate(contracts.Some(contracts.TechnicalIndicators{
			Price:  contracts.F(120),
			SMA50:  contracts.F(100),
			SMA200: contracts.F(90),
		}), healthy)
		assert.Equal(t, 0.0, got.Score)
	})

	t.Run("absent technicals", func(t *testing.T) {
		got := e.Evaluate(contracts.None[contracts.TechnicalIndicators](), healthy)
		assert.Equal(t, 0.0, got.Score)
		assert.False(t, got.IsDip)
	})
}

func TestDipEngine_Gate(t *testing.T) {
	e := NewDipEngine(scoreconfig.Default().Dip)

	tests := []struct {
		name                    string
		fundamental, analyst, n float64
		want                    bool
	}{
		{"all pass at the thresholds", 35, 25, 20, true},
		{"fundamental fails", 34.9, 80, 80, false},
		{"analyst fails", 80, 24.9, 80, false},
		{"news fails", 80, 80, 19.9, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.Gate(tt.fundamental, tt.analyst, tt.n))
		})
	}
}
