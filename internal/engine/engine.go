package engine

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/aegis-advisor/backend/internal/contracts"
	"github.com/wonny/aegis-advisor/backend/internal/s1_scoring"
	"github.com/wonny/aegis-advisor/backend/internal/s2_conviction"
	"github.com/wonny/aegis-advisor/backend/internal/s3_signals"
	"github.com/wonny/aegis-advisor/backend/internal/s4_strategy"
	"github.com/wonny/aegis-advisor/backend/internal/scoreconfig"
	"github.com/wonny/aegis-advisor/backend/pkg/logger"
)

// DefaultBatchConcurrency bounds EvaluateBatch fan-out
const DefaultBatchConcurrency = 8

// Engine runs the scoring pipeline: scorers → target → composite →
// conviction → dip → signals → strategy
// ⭐ SSOT: StockRecommendation 생성은 여기서만
type Engine struct {
	cfg  *scoreconfig.Config
	hash string

	fundamental *s1_scoring.FundamentalScorer
	technical   *s1_scoring.TechnicalScorer
	analyst     *s1_scoring.AnalystScorer
	news        *s1_scoring.NewsScorer
	insider     *s1_scoring.InsiderScorer
	portfolio   *s1_scoring.PortfolioScorer
	target      *s1_scoring.TargetResolver
	composite   *s1_scoring.CompositeAggregator
	conviction  *s2_conviction.ConvictionEngine
	dip         *s2_conviction.DipEngine
	signals     *s3_signals.Generator
	planner     *s4_strategy.Planner

	logger *logger.Logger
}

// New creates an engine from a validated config
func New(cfg *scoreconfig.Config, log *logger.Logger) (*Engine, error) {
	if err := scoreconfig.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid scoring config: %w", err)
	}
	hash, err := scoreconfig.Hash(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to hash scoring config: %w", err)
	}

	return &Engine{
		cfg:         cfg,
		hash:        hash,
		fundamental: s1_scoring.NewFundamentalScorer(cfg.Fundamental),
		technical:   s1_scoring.NewTechnicalScorer(cfg.Technical),
		analyst:     s1_scoring.NewAnalystScorer(cfg.Analyst),
		news:        s1_scoring.NewNewsScorer(cfg.News),
		insider:     s1_scoring.NewInsiderScorer(cfg.Insider),
		portfolio:   s1_scoring.NewPortfolioScorer(cfg.Portfolio),
		target:      s1_scoring.NewTargetResolver(cfg.Target),
		composite:   s1_scoring.NewCompositeAggregator(cfg.Composite),
		conviction:  s2_conviction.NewConvictionEngine(cfg.Conviction),
		dip:         s2_conviction.NewDipEngine(cfg.Dip),
		signals:     s3_signals.NewGenerator(cfg.Signals),
		planner:     s4_strategy.NewPlanner(cfg.Strategy),
		logger:      log,
	}, nil
}

// ConfigHash returns the hash stamped into every recommendation
func (e *Engine) ConfigHash() string {
	return e.hash
}

// Config returns the scoring config in use
func (e *Engine) Config() *scoreconfig.Config {
	return e.cfg
}

// Evaluate runs the full pipeline for one ticker.
// Missing data degrades to defaults; it never fails.
func (e *Engine) Evaluate(in contracts.ScoreInputs) contracts.StockRecommendation {
	current := in.CurrentPrice()

	// 1. Category scores
	fundamental := e.fundamental.Score(in.Fundamentals)
	technical := e.technical.Score(in.Technicals)
	analyst := e.analyst.Score(in.Analyst)
	news := e.news.Score(in.News)
	insider := e.insider.Score(in.Insider)

	// 2. Target
	target := e.target.ResolveFor(in)

	scores := contracts.CategoryScores{
		Fundamental: fundamental.Score,
		Technical:   technical.Score,
		Analyst:     analyst.Score,
		News:        news.Score,
		Insider:     insider.Score,
		Portfolio:   contracts.None[float64](),
	}
	breakdowns := contracts.Breakdowns{
		Fundamental: fundamental.Breakdown,
		Technical:   technical.Breakdown,
		Analyst:     analyst.Breakdown,
		News:        news.Breakdown,
		Insider:     insider.Breakdown,
	}

	pos, held := in.Position.Get()
	if held {
		portfolio := e.portfolio.Score(pos, current, target)
		scores.Portfolio = contracts.F(portfolio.Score)
		breakdowns.Portfolio = portfolio.Breakdown
	}

	// 3. Composite
	composite := e.composite.Aggregate(scores)

	// 4. Conviction
	consensus := contracts.None[float64]()
	if a, ok := in.Analyst.Get(); ok {
		consensus = a.Consensus()
	}
	conviction := e.conviction.Evaluate(s2_conviction.ConvictionInputs{
		Fundamentals: in.Fundamentals,
		Technicals:   in.Technicals,
		Consensus:    consensus,
		Target:       target,
		InsiderScore: insider.Score,
	})
	breakdowns.Conviction = conviction.Breakdown

	// 5. Dip
	dip := e.dip.Evaluate(in.Technicals, scores)
	breakdowns.Dip = dip.Breakdown

	// 6. Signals
	ind := in.Technicals.OrElse(contracts.TechnicalIndicators{})
	signals := e.signals.Generate(s3_signals.Context{
		Scores:          scores,
		Composite:       composite,
		Conviction:      conviction.Score,
		ConvictionLevel: conviction.Level,
		DipScore:        dip.Score,
		IsDip:           dip.IsDip,
		DipQualityCheck: dip.QualityCheck,
		UpsidePct:       target.UpsidePct,
		RSI:             ind.RSI14,
		Weight:          pos.Weight,
	})

	rec := contracts.StockRecommendation{
		Ticker:          in.Ticker,
		Name:            in.Name,
		HasPosition:     held,
		Scores:          scores,
		Breakdowns:      breakdowns,
		Composite:       composite,
		Conviction:      conviction.Score,
		ConvictionLevel: conviction.Level,
		DipScore:        dip.Score,
		IsDip:           dip.IsDip,
		DipQualityCheck: dip.QualityCheck,
		Target:          target,
		TechnicalBias:   technical.Bias,
		Signals:         signals.Signals,
		PrimarySignal:   signals.Primary,
		Metadata:        e.metadata(in),
	}

	// 7. Strategy
	rec.BuyStrategy, rec.ExitStrategy = e.planner.Plan(s4_strategy.PlanInputs{
		Technicals:      in.Technicals,
		Position:        in.Position,
		Target:          target,
		Primary:         signals.Primary,
		Trim:            rec.HasSignal(contracts.SignalConsiderTrim),
		Conviction:      conviction.Score,
		ConvictionLevel: conviction.Level,
		DipOpportunity:  dip.Opportunity(),
	})

	e.logger.WithFields(map[string]interface{}{
		"ticker":     rec.Ticker,
		"composite":  rec.Composite,
		"conviction": rec.Conviction,
		"dip":        rec.DipScore,
		"primary":    rec.PrimarySignal.Type,
	}).Debug("Evaluated recommendation")

	return rec
}

// EvaluateBatch evaluates tickers concurrently; output order matches input.
// Tickers are independent so the only failure is context cancellation.
func (e *Engine) EvaluateBatch(ctx context.Context, inputs []contracts.ScoreInputs, concurrency int) ([]contracts.StockRecommendation, error) {
	if concurrency <= 0 {
		concurrency = DefaultBatchConcurrency
	}

	results := make([]contracts.StockRecommendation, len(inputs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i := range inputs {
		i := i // per-iteration copy (go 1.21 loop semantics)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = e.Evaluate(inputs[i])
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("batch evaluation aborted: %w", err)
	}

	e.logger.WithField("count", len(inputs)).Info("Batch evaluation completed")
	return results, nil
}

func (e *Engine) metadata(in contracts.ScoreInputs) contracts.RecommendationMetadata {
	ind := in.Technicals.OrElse(contracts.TechnicalIndicators{})
	meta := contracts.RecommendationMetadata{
		Price:         ind.Price,
		RSI:           ind.RSI14,
		MACD:          ind.MACD,
		MACDHistogram: ind.MACDHistogram,
		NewsSentiment: contracts.None[float64](),
		InsiderMSPR:   contracts.None[float64](),
		ConfigHash:    e.hash,
	}
	if n, ok := in.News.Get(); ok {
		meta.NewsSentiment = contracts.F(n.AvgSentiment)
		meta.ArticleCount = n.ArticleCount
	}
	if ins, ok := in.Insider.Get(); ok {
		meta.InsiderMSPR = contracts.F(ins.MSPR)
	}
	return meta
}
