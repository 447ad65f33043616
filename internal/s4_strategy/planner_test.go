package s4_strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wonny/aegis-advisor/backend/internal/contracts"
	"github.com/wonny/aegis-advisor/backend/internal/scoreconfig"
)

func signal(t contracts.SignalType) contracts.StockSignal {
	return contracts.StockSignal{Type: t}
}

func held(weight, avg float64) contracts.Optional[contracts.PositionContext] {
	return contracts.Some(contracts.PositionContext{
		Shares:      10,
		AvgBuyPrice: contracts.F(avg),
		Weight:      contracts.F(weight),
	})
}

func TestPlanner_Buy(t *testing.T) {
	p := NewPlanner(scoreconfig.Default().Strategy)

	t.Run("in zone with normal DCA", func(t *testing.T) {
		got := p.Buy(PlanInputs{
			Technicals: contracts.Some(contracts.TechnicalIndicators{
				Price:        contracts.F(100),
				SupportPrice: contracts.F(92),
			}),
			Position: held(0.05, 110),
			Target:   contracts.TargetResolution{Price: contracts.F(130), Source: contracts.TargetAnalyst},
			Primary:  signal(contracts.SignalAccumulate),
		})

		assert.Equal(t, 92.0, got.BuyZoneLow)
		assert.Equal(t, 100.0, got.BuyZoneHigh)
		assert.True(t, got.InBuyZone)
		assert.Equal(t, contracts.DCANormal, got.DCAMode)
		assert.Equal(t, 1.0, got.DCAPct)
		assert.Equal(t, contracts.F(3.75), got.RiskRewardRatio)
	})

	t.Run("non-buy primary caps aggressive at cautious", func(t *testing.T) {
		got := p.Buy(PlanInputs{
			Technicals: contracts.Some(contracts.TechnicalIndicators{Price: contracts.F(100)}),
			Primary:    signal(contracts.SignalMomentum),
		})
		assert.Equal(t, contracts.DCACautious, got.DCAMode)
		assert.Equal(t, 0.5, got.DCAPct)
		// 지지선 없으면 현재가의 90%
		assert.Equal(t, 90.0, got.BuyZoneLow)
		assert.False(t, got.RiskRewardRatio.Present())
	})

	t.Run("buy primary keeps aggressive", func(t *testing.T) {
		got := p.Buy(PlanInputs{
			Technicals: contracts.Some(contracts.TechnicalIndicators{Price: contracts.F(100)}),
			Primary:    signal(contracts.SignalDipOpportunity),
		})
		assert.Equal(t, contracts.DCAAggressive, got.DCAMode)
		assert.Equal(t, 2.0, got.DCAPct)
	})

	t.Run("overweight stays NO_DCA", func(t *testing.T) {
		got := p.Buy(PlanInputs{
			Technicals: contracts.Some(contracts.TechnicalIndicators{Price: contracts.F(100)}),
			Position:   held(0.15, 80),
			Primary:    signal(contracts.SignalNeutral),
		})
		assert.Equal(t, contracts.DCANone, got.DCAMode)
		assert.Equal(t, 0.0, got.DCAPct)
	})

	t.Run("weight boundaries", func(t *testing.T) {
		tests := []struct {
			weight float64
			want   contracts.DCAMode
		}{
			{0.12, contracts.DCACautious},
			{0.08, contracts.DCANormal},
			{0.03, contracts.DCANormal},
			{0.0299, contracts.DCAAggressive},
			{0.121, contracts.DCANone},
		}
		for _, tt := range tests {
			got := p.Buy(PlanInputs{Position: held(tt.weight, 100), Primary: signal(contracts.SignalAccumulate)})
			assert.Equal(t, tt.want, got.DCAMode, "weight %v", tt.weight)
		}
	})

	t.Run("support above price has no risk/reward", func(t *testing.T) {
		got := p.Buy(PlanInputs{
			Technicals: contracts.Some(contracts.TechnicalIndicators{
				Price:        contracts.F(100),
				SupportPrice: contracts.F(105),
			}),
			Target:  contracts.TargetResolution{Price: contracts.F(130)},
			Primary: signal(contracts.SignalNeutral),
		})
		assert.False(t, got.RiskRewardRatio.Present())
		assert.False(t, got.InBuyZone)
	})

	t.Run("no price leaves zones empty", func(t *testing.T) {
		got := p.Buy(PlanInputs{Primary: signal(contracts.SignalNeutral)})
		assert.Equal(t, 0.0, got.BuyZoneLow)
		assert.False(t, got.InBuyZone)
		assert.False(t, got.RiskRewardRatio.Present())
	})
}

func TestPlanner_Exit(t *testing.T) {
	p := NewPlanner(scoreconfig.Default().Strategy)

	t.Run("conviction scales the bands", func(t *testing.T) {
		got := p.Exit(PlanInputs{
			Technicals:      contracts.Some(contracts.TechnicalIndicators{Price: contracts.F(100)}),
			Target:          contracts.TargetResolution{Price: contracts.F(130)},
			Conviction:      60,
			ConvictionLevel: contracts.ConvictionMedium,
		})

		assert.Equal(t, 11.0, got.StopLossPct)
		assert.Equal(t, 89.0, got.StopLoss)
		assert.Equal(t, 11.0, got.TrailingStopPct)
		assert.Equal(t, 116.0, got.TakeProfit1)
		assert.Equal(t, 130.0, got.TakeProfit2)
		assert.Equal(t, contracts.HoldMedium, got.HoldingPeriod)
		assert.False(t, got.TrimPct.Present())
	})

	t.Run("resistance sets the first target", func(t *testing.T) {
		got := p.Exit(PlanInputs{
			Technicals: contracts.Some(contracts.TechnicalIndicators{
				Price:           contracts.F(100),
				ResistancePrice: contracts.F(120),
			}),
			Target: contracts.TargetResolution{Price: contracts.F(110)},
		})
		assert.Equal(t, 120.0, got.TakeProfit1)
		assert.Equal(t, 132.0, got.TakeProfit2)
		assert.Equal(t, contracts.HoldShort, got.HoldingPeriod)
	})

	t.Run("trim above the weight cap", func(t *testing.T) {
		got := p.Exit(PlanInputs{
			Technicals: contracts.Some(contracts.TechnicalIndicators{Price: contracts.F(100)}),
			Position:   held(0.15, 80),
			Trim:       true,
		})
		assert.Equal(t, contracts.F(46.67), got.TrimPct)
	})

	t.Run("holding period", func(t *testing.T) {
		assert.Equal(t, contracts.HoldLong, p.Exit(PlanInputs{ConvictionLevel: contracts.ConvictionHigh}).HoldingPeriod)
		assert.Equal(t, contracts.HoldMedium, p.Exit(PlanInputs{ConvictionLevel: contracts.ConvictionLow, DipOpportunity: true}).HoldingPeriod)
		assert.Equal(t, contracts.HoldShort, p.Exit(PlanInputs{ConvictionLevel: contracts.ConvictionLow}).HoldingPeriod)
	})
}
