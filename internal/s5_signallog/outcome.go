package s5_signallog

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/aegis-advisor/backend/internal/contracts"
	"github.com/wonny/aegis-advisor/backend/pkg/logger"
)

// DefaultOutcomeBatchSize bounds one evaluator run
const DefaultOutcomeBatchSize = 500

// OutcomeReport summarizes one evaluator run
type OutcomeReport struct {
	Pending int `json:"pending"`
	Filled  int `json:"filled"`
	NoPrice int `json:"no_price"`
	Failed  int `json:"failed"`
}

// OutcomeEvaluator fills price-after-N-days slots once each horizon elapsed
type OutcomeEvaluator struct {
	store     contracts.SignalLogStore
	prices    contracts.PriceLookup
	log       *logger.Logger
	batchSize int
	now       func() time.Time
}

// NewOutcomeEvaluator creates a new outcome evaluator
func NewOutcomeEvaluator(store contracts.SignalLogStore, prices contracts.PriceLookup, log *logger.Logger, batchSize int) *OutcomeEvaluator {
	if batchSize <= 0 {
		batchSize = DefaultOutcomeBatchSize
	}
	return &OutcomeEvaluator{
		store:     store,
		prices:    prices,
		log:       log,
		batchSize: batchSize,
		now:       time.Now,
	}
}

// Run evaluates every pending outcome, one page of batchSize at a time.
// Skipped slots stay pending, so the next page starts past them.
// Price lookup failures are counted and skipped; store write failures abort.
func (e *OutcomeEvaluator) Run(ctx context.Context) (*OutcomeReport, error) {
	now := e.now()
	report := &OutcomeReport{}
	skipped := 0

	for {
		pending, err := e.store.PendingOutcomes(ctx, now, skipped, e.batchSize)
		if err != nil {
			return report, fmt.Errorf("failed to load pending outcomes: %w", err)
		}
		report.Pending += len(pending)

		for _, po := range pending {
			if err := ctx.Err(); err != nil {
				return report, err
			}
			filled, err := e.evaluate(ctx, po, report)
			if err != nil {
				return report, err
			}
			if !filled {
				skipped++
			}
		}

		if len(pending) < e.batchSize {
			break
		}
	}

	e.log.WithFields(map[string]interface{}{
		"pending":  report.Pending,
		"filled":   report.Filled,
		"no_price": report.NoPrice,
		"failed":   report.Failed,
	}).Info("signal outcomes evaluated")

	return report, nil
}

// evaluate fills one slot. false means the slot was left pending.
func (e *OutcomeEvaluator) evaluate(ctx context.Context, po contracts.PendingOutcome, report *OutcomeReport) (bool, error) {
	target := dayOf(po.CreatedAt).AddDate(0, 0, int(po.Period))
	price, ok, err := e.prices.CloseOnOrAfter(ctx, po.Ticker, target)
	if err != nil {
		e.log.WithError(err).WithFields(map[string]interface{}{
			"id":     po.EntryID,
			"ticker": po.Ticker,
			"period": int(po.Period),
		}).Warn("outcome price lookup failed")
		report.Failed++
		return false, nil
	}
	if !ok {
		report.NoPrice++
		return false, nil
	}

	if err := e.store.SetOutcome(ctx, po.EntryID, po.Period, price); err != nil {
		return false, fmt.Errorf("failed to set outcome for %s: %w", po.EntryID, err)
	}
	report.Filled++
	return true, nil
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
