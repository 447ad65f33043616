package s3_signals

import (
	"fmt"
	"math"

	"github.com/wonny/aegis-advisor/backend/internal/contracts"
	"github.com/wonny/aegis-advisor/backend/internal/s1_scoring"
	"github.com/wonny/aegis-advisor/backend/internal/scoreconfig"
)

// NeutralPriority is the fallback priority
const NeutralPriority = 10

// Context carries every prior-stage output the rules read
type Context struct {
	Scores          contracts.CategoryScores
	Composite       float64
	Conviction      float64
	ConvictionLevel contracts.ConvictionLevel
	DipScore        float64
	IsDip           bool
	DipQualityCheck bool
	UpsidePct       contracts.Float
	RSI             contracts.Float
	Weight          contracts.Float // 보유 비중 (fraction)
}

// Rule is one row of the signal table
type Rule struct {
	Type     contracts.SignalType
	Category contracts.SignalCategory
	Priority int
	Match    func(cfg scoreconfig.Signals, c Context) bool
	Build    func(c Context) (strength float64, title, description string)
}

// Result is the full matching set plus the primary signal
type Result struct {
	Signals []contracts.StockSignal
	Primary contracts.StockSignal
}

// Generator evaluates the rule table
// ⭐ SSOT: 시그널 우선순위 판정은 여기서만
type Generator struct {
	cfg   scoreconfig.Signals
	rules []Rule
}

// NewGenerator creates a generator over the default rule table
func NewGenerator(cfg scoreconfig.Signals) *Generator {
	return &Generator{cfg: cfg, rules: Rules()}
}

// Generate folds the rule table once. All matches are kept in table
// order; the lowest priority wins, ties go to the earlier rule.
// NEUTRAL is emitted only when nothing else matched.
func (g *Generator) Generate(c Context) Result {
	var res Result
	for _, r := range g.rules {
		if !r.Match(g.cfg, c) {
			continue
		}
		strength, title, desc := r.Build(c)
		sig := contracts.StockSignal{
			Type:        r.Type,
			Category:    r.Category,
			Strength:    s1_scoring.Round2(s1_scoring.Clamp(strength)),
			Title:       title,
			Description: desc,
			Priority:    r.Priority,
		}
		if len(res.Signals) == 0 || sig.Priority < res.Primary.Priority {
			res.Primary = sig
		}
		res.Signals = append(res.Signals, sig)
	}

	if len(res.Signals) == 0 {
		res.Primary = neutral(c)
		res.Signals = []contracts.StockSignal{res.Primary}
	}
	return res
}

func neutral(c Context) contracts.StockSignal {
	return contracts.StockSignal{
		Type:        contracts.SignalNeutral,
		Category:    contracts.CategoryNeutral,
		Strength:    s1_scoring.Round2(s1_scoring.Clamp(c.Composite)),
		Title:       "No clear signal",
		Description: fmt.Sprintf("Composite %.1f with no actionable setup", c.Composite),
		Priority:    NeutralPriority,
	}
}

// Rules returns the signal table in evaluation order
func Rules() []Rule {
	return []Rule{
		{
			Type:     contracts.SignalDipOpportunity,
			Category: contracts.CategoryBuy,
			Priority: 1,
			Match: func(_ scoreconfig.Signals, c Context) bool {
				return c.IsDip && c.DipQualityCheck
			},
			Build: func(c Context) (float64, string, string) {
				return c.DipScore, "Buy the dip",
					fmt.Sprintf("Oversold (dip %.0f) with healthy fundamentals, analysts and news", c.DipScore)
			},
		},
		{
			Type:     contracts.SignalMomentum,
			Category: contracts.CategoryBuy,
			Priority: 2,
			Match: func(cfg scoreconfig.Signals, c Context) bool {
				rsi, ok := c.RSI.Get()
				return ok && c.Scores.Technical >= cfg.Momentum.MinTechnical &&
					rsi >= cfg.Momentum.RSILow && rsi <= cfg.Momentum.RSIHigh
			},
			Build: func(c Context) (float64, string, string) {
				return c.Scores.Technical, "Strong momentum",
					fmt.Sprintf("Technical score %.0f with RSI %.0f in the trend zone", c.Scores.Technical, c.RSI.OrElse(0))
			},
		},
		{
			Type:     contracts.SignalConvictionHold,
			Category: contracts.CategoryHold,
			Priority: 3,
			Match: func(_ scoreconfig.Signals, c Context) bool {
				return c.ConvictionLevel == contracts.ConvictionHigh
			},
			Build: func(c Context) (float64, string, string) {
				return c.Conviction, "High conviction hold",
					fmt.Sprintf("Conviction %.0f: quality business worth holding through volatility", c.Conviction)
			},
		},
		{
			Type:     contracts.SignalNearTarget,
			Category: contracts.CategorySell,
			Priority: 4,
			Match: func(cfg scoreconfig.Signals, c Context) bool {
				up, ok := c.UpsidePct.Get()
				return ok && math.Abs(up) <= cfg.NearTarget.MaxAbsUpsidePct
			},
			Build: func(c Context) (float64, string, string) {
				up := c.UpsidePct.OrElse(0)
				return 100 - math.Abs(up)*5, "Near target price",
					fmt.Sprintf("Price is within %.1f%% of the target", math.Abs(up))
			},
		},
		{
			Type:     contracts.SignalConsiderTrim,
			Category: contracts.CategorySell,
			Priority: 5,
			Match: func(cfg scoreconfig.Signals, c Context) bool {
				rsi, okRSI := c.RSI.Get()
				weight, okWeight := c.Weight.Get()
				up, okUp := c.UpsidePct.Get()
				return okRSI && okWeight && okUp &&
					c.Scores.Technical < cfg.Trim.MaxTechnical &&
					rsi > cfg.Trim.MinRSI &&
					weight > cfg.Trim.MinWeight &&
					up < cfg.Trim.MaxUpsidePct
			},
			Build: func(c Context) (float64, string, string) {
				return 100 - c.Scores.Technical, "Consider trimming",
					fmt.Sprintf("Overbought (RSI %.0f) at %.1f%% weight with little upside left",
						c.RSI.OrElse(0), c.Weight.OrElse(0)*100)
			},
		},
		{
			Type:     contracts.SignalWatchClosely,
			Category: contracts.CategoryWatch,
			Priority: 6,
			Match: func(cfg scoreconfig.Signals, c Context) bool {
				w := cfg.Watch
				s := c.Scores
				return (s.Fundamental >= w.FundamentalLow && s.Fundamental <= w.FundamentalHigh) ||
					s.Insider < w.InsiderBelow ||
					(s.News >= w.NewsLow && s.News <= w.NewsHigh)
			},
			Build: func(c Context) (float64, string, string) {
				s := c.Scores
				weakest := math.Min(s.Fundamental, math.Min(s.Insider, s.News))
				return 100 - weakest, "Watch closely",
					fmt.Sprintf("Weak spot: fundamental %.0f, insider %.0f, news %.0f", s.Fundamental, s.Insider, s.News)
			},
		},
		{
			Type:     contracts.SignalAccumulate,
			Category: contracts.CategoryBuy,
			Priority: 7,
			Match: func(cfg scoreconfig.Signals, c Context) bool {
				a := cfg.Accumulate
				return c.ConvictionLevel != contracts.ConvictionLow &&
					c.DipScore >= a.DipLow && c.DipScore <= a.DipHigh &&
					c.Scores.Fundamental >= a.MinFundamental
			},
			Build: func(c Context) (float64, string, string) {
				return c.Scores.Fundamental, "Accumulate gradually",
					fmt.Sprintf("Mild pullback (dip %.0f) on solid fundamentals (%.0f)", c.DipScore, c.Scores.Fundamental)
			},
		},
	}
}
