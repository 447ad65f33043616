package s4_strategy

import (
	"math"

	"github.com/wonny/aegis-advisor/backend/internal/contracts"
	"github.com/wonny/aegis-advisor/backend/internal/s1_scoring"
	"github.com/wonny/aegis-advisor/backend/internal/scoreconfig"
)

// PlanInputs are the prior-stage outputs the planner reads
type PlanInputs struct {
	Technicals      contracts.Optional[contracts.TechnicalIndicators]
	Position        contracts.Optional[contracts.PositionContext]
	Target          contracts.TargetResolution
	Primary         contracts.StockSignal
	Trim            bool // CONSIDER_TRIM matched
	Conviction      float64
	ConvictionLevel contracts.ConvictionLevel
	DipOpportunity  bool
}

// Planner derives buy zone, DCA sizing and exit levels
// ⭐ SSOT: 매수/매도 전략 계산은 여기서만
type Planner struct {
	cfg scoreconfig.Strategy
}

// NewPlanner creates a new strategy planner
func NewPlanner(cfg scoreconfig.Strategy) *Planner {
	return &Planner{cfg: cfg}
}

// Plan builds both strategies
func (p *Planner) Plan(in PlanInputs) (contracts.BuyStrategy, contracts.ExitStrategy) {
	return p.Buy(in), p.Exit(in)
}

// Buy builds the entry plan
func (p *Planner) Buy(in PlanInputs) contracts.BuyStrategy {
	ind := in.Technicals.OrElse(contracts.TechnicalIndicators{})
	pos := in.Position.OrElse(contracts.PositionContext{})

	mode := p.dcaMode(pos.Weight.OrElse(0))
	// 매수 계열 시그널이 아니면 최대 CAUTIOUS
	if !in.Primary.Type.IsBuyClass() && (mode == contracts.DCANormal || mode == contracts.DCAAggressive) {
		mode = contracts.DCACautious
	}
	plan := contracts.BuyStrategy{
		DCAMode:         mode,
		DCAPct:          p.dcaPct(mode),
		RiskRewardRatio: contracts.None[float64](),
	}

	current, ok := ind.Price.Get()
	if !ok || current <= 0 {
		return plan
	}

	low := ind.SupportPrice.OrElse(current * p.cfg.SupportFallback)
	high := current
	if avg, ok := pos.AvgBuyPrice.Get(); ok && avg > 0 {
		high = math.Min(avg*p.cfg.AvgBuyPremium, current)
	}

	plan.BuyZoneLow = s1_scoring.Round2(low)
	plan.BuyZoneHigh = s1_scoring.Round2(high)
	plan.InBuyZone = low <= current && current <= high

	if target, ok := in.Target.Price.Get(); ok {
		if risk := current - low; risk > 0 {
			plan.RiskRewardRatio = contracts.F(s1_scoring.Round2((target - current) / risk))
		}
	}
	return plan
}

// Exit builds the exit plan. Stop and take-profit bands widen with conviction.
func (p *Planner) Exit(in PlanInputs) contracts.ExitStrategy {
	r := p.cfg.Exit
	stopPct := r.StopLossBasePct + in.Conviction*r.StopLossPerConviction

	exit := contracts.ExitStrategy{
		StopLossPct:     s1_scoring.Round2(stopPct),
		TrailingStopPct: s1_scoring.Round2(stopPct),
		HoldingPeriod:   holdingPeriod(in.ConvictionLevel, in.DipOpportunity),
		TrimPct:         contracts.None[float64](),
	}

	pos := in.Position.OrElse(contracts.PositionContext{})
	if w, ok := pos.Weight.Get(); ok && in.Trim && w > r.MaxWeight {
		exit.TrimPct = contracts.F(s1_scoring.Round2((w - r.MaxWeight) / w * 100))
	}

	ind := in.Technicals.OrElse(contracts.TechnicalIndicators{})
	current, ok := ind.Price.Get()
	if !ok || current <= 0 {
		return exit
	}

	exit.StopLoss = s1_scoring.Round2(current * (1 - stopPct/100))

	tp1 := current * (1 + (r.TakeProfitBasePct+in.Conviction*r.TakeProfitPerConviction)/100)
	if res, ok := ind.ResistancePrice.Get(); ok && res > current {
		tp1 = res
	}
	tp2 := tp1 * r.SecondTargetMultiplier
	if target, ok := in.Target.Price.Get(); ok && target > tp1 {
		tp2 = target
	}
	exit.TakeProfit1 = s1_scoring.Round2(tp1)
	exit.TakeProfit2 = s1_scoring.Round2(tp2)
	return exit
}

func (p *Planner) dcaMode(weight float64) contracts.DCAMode {
	d := p.cfg.DCA
	switch {
	case weight > d.NoDCAAbove:
		return contracts.DCANone
	case weight > d.CautiousAbove:
		return contracts.DCACautious
	case weight >= d.NormalFrom:
		return contracts.DCANormal
	default:
		return contracts.DCAAggressive
	}
}

func (p *Planner) dcaPct(mode contracts.DCAMode) float64 {
	switch mode {
	case contracts.DCACautious:
		return p.cfg.DCA.CautiousPct
	case contracts.DCANormal:
		return p.cfg.DCA.NormalPct
	case contracts.DCAAggressive:
		return p.cfg.DCA.AggressivePct
	default:
		return 0
	}
}

func holdingPeriod(level contracts.ConvictionLevel, dip bool) contracts.HoldingPeriod {
	switch {
	case level == contracts.ConvictionHigh:
		return contracts.HoldLong
	case level == contracts.ConvictionMedium || dip:
		return contracts.HoldMedium
	default:
		return contracts.HoldShort
	}
}
