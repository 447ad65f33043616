package s5_signallog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/aegis-advisor/backend/internal/contracts"
	"github.com/wonny/aegis-advisor/backend/pkg/logger"
)

var (
	// ErrUnauthenticated is returned when a write has no portfolio or user scope
	ErrUnauthenticated = errors.New("signal log: unauthenticated scope")
	// ErrNotFound is returned when a scoped entry does not exist
	ErrNotFound = errors.New("signal log: entry not found")
)

// DefaultDedupWindowDays is how far back a duplicate signal suppresses a new row
const DefaultDedupWindowDays = 7

// Service records emitted signals and reads back their outcomes.
//
// Dedup is check-then-insert without a lock: two concurrent evaluations of the
// same (scope, ticker, type) can both insert. Later analytics tolerate the
// duplicate row.
// ⭐ SSOT: 시그널 로그 기록/조회는 여기서만
type Service struct {
	store    contracts.SignalLogStore
	log      *logger.Logger
	window   time.Duration
	now      func() time.Time
	notifier Notifier
}

// Notifier is told about committed signal log changes
type Notifier interface {
	SignalLogged(entry *contracts.SignalLogEntry)
	SignalDeleted(scope contracts.Scope, id string)
	SignalsCleared(scope contracts.Scope, deleted int64)
}

type nopNotifier struct{}

func (nopNotifier) SignalLogged(*contracts.SignalLogEntry) {}
func (nopNotifier) SignalDeleted(contracts.Scope, string)  {}
func (nopNotifier) SignalsCleared(contracts.Scope, int64)  {}

// NewService creates a signal log service with a dedup window in days
func NewService(store contracts.SignalLogStore, log *logger.Logger, windowDays int) *Service {
	if windowDays <= 0 {
		windowDays = DefaultDedupWindowDays
	}
	return &Service{
		store:    store,
		log:      log,
		window:   time.Duration(windowDays) * 24 * time.Hour,
		now:      time.Now,
		notifier: nopNotifier{},
	}
}

// SetNotifier registers the receiver of committed changes (e.g. the stream hub)
func (s *Service) SetNotifier(n Notifier) {
	if n == nil {
		n = nopNotifier{}
	}
	s.notifier = n
}

// Exists reports whether the same signal was logged inside the dedup window.
// Store failures are logged and reported as false so logging stays available.
func (s *Service) Exists(ctx context.Context, scope contracts.Scope, ticker string, signalType contracts.SignalType) bool {
	since := s.now().Add(-s.window)
	found, err := s.store.Exists(ctx, scope, ticker, signalType, since)
	if err != nil {
		s.log.WithError(err).WithFields(map[string]interface{}{
			"scope":       scope.Key(),
			"ticker":      ticker,
			"signal_type": signalType,
		}).Warn("signal dedup check failed, proceeding with insert")
		return false
	}
	return found
}

// LogSignal persists the recommendation's primary signal (or override).
// A duplicate inside the window returns (nil, nil).
func (s *Service) LogSignal(ctx context.Context, scope contracts.Scope, rec *contracts.StockRecommendation, override contracts.SignalType) (*contracts.SignalLogEntry, error) {
	if scope.IsZero() {
		return nil, ErrUnauthenticated
	}
	if rec == nil {
		return nil, fmt.Errorf("signal log: nil recommendation")
	}

	signalType := rec.PrimarySignal.Type
	strength := rec.PrimarySignal.Strength
	if override != "" {
		signalType = override
		strength = strengthOf(rec, override)
	}

	if s.Exists(ctx, scope, rec.Ticker, signalType) {
		s.log.WithFields(map[string]interface{}{
			"scope":       scope.Key(),
			"ticker":      rec.Ticker,
			"signal_type": signalType,
		}).Debug("duplicate signal skipped")
		return nil, nil
	}

	entry, err := s.snapshot(scope, rec, signalType, strength)
	if err != nil {
		return nil, err
	}

	if err := s.store.Insert(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to insert signal: %w", err)
	}

	s.log.WithFields(map[string]interface{}{
		"id":          entry.ID,
		"scope":       scope.Key(),
		"ticker":      entry.Ticker,
		"signal_type": entry.SignalType,
		"strength":    entry.SignalStrength,
	}).Info("signal logged")

	s.notifier.SignalLogged(entry)
	return entry, nil
}

// DeleteSignal removes one entry owned by the scope
func (s *Service) DeleteSignal(ctx context.Context, scope contracts.Scope, id string) error {
	if scope.IsZero() {
		return ErrUnauthenticated
	}
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("invalid signal id %q: %w", id, ErrNotFound)
	}
	if err := s.store.Delete(ctx, scope, id); err != nil {
		return fmt.Errorf("failed to delete signal %s: %w", id, err)
	}
	s.notifier.SignalDeleted(scope, id)
	return nil
}

// ClearAllSignals removes every entry owned by the scope
func (s *Service) ClearAllSignals(ctx context.Context, scope contracts.Scope) (int64, error) {
	if scope.IsZero() {
		return 0, ErrUnauthenticated
	}
	n, err := s.store.Clear(ctx, scope)
	if err != nil {
		return 0, fmt.Errorf("failed to clear signals: %w", err)
	}
	s.log.WithField("scope", scope.Key()).Infof("cleared %d signals", n)
	s.notifier.SignalsCleared(scope, n)
	return n, nil
}

// ListSignals returns the scope's entries, newest first
func (s *Service) ListSignals(ctx context.Context, scope contracts.Scope, limit int) ([]*contracts.SignalLogEntry, error) {
	if scope.IsZero() {
		return nil, ErrUnauthenticated
	}
	if limit <= 0 {
		limit = 100
	}
	entries, err := s.store.List(ctx, scope, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list signals: %w", err)
	}
	return entries, nil
}

// Performance returns per-type outcome counts for the scope
func (s *Service) Performance(ctx context.Context, scope contracts.Scope) ([]contracts.SignalPerformance, error) {
	if scope.IsZero() {
		return nil, ErrUnauthenticated
	}
	perf, err := s.store.Performance(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to load signal performance: %w", err)
	}
	return perf, nil
}

// PurgeOlderThan deletes entries older than retentionDays. Zero disables retention.
func (s *Service) PurgeOlderThan(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, nil
	}
	cutoff := s.now().AddDate(0, 0, -retentionDays)
	n, err := s.store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge signals: %w", err)
	}
	return n, nil
}

// CalculateWinRate returns winners/evaluated·100 rounded to an integer percent,
// absent when nothing was evaluated for the period
func CalculateWinRate(perf contracts.SignalPerformance, period contracts.OutcomePeriod) contracts.Float {
	stats := perf.Periods[period]
	if stats.Evaluated == 0 {
		return contracts.None[float64]()
	}
	return contracts.F(math.Round(float64(stats.Winners) / float64(stats.Evaluated) * 100))
}

// snapshotMetadata is the raw-value blob stored with each row
type snapshotMetadata struct {
	contracts.RecommendationMetadata
	ConvictionLevel contracts.ConvictionLevel `json:"conviction_level"`
	IsDip           bool                      `json:"is_dip"`
	DipQualityCheck bool                      `json:"dip_quality_check"`
	TargetSource    contracts.TargetSource    `json:"target_source,omitempty"`
	TargetPrice     contracts.Float           `json:"target_price"`
	PrimarySignal   contracts.SignalType      `json:"primary_signal"`
}

func (s *Service) snapshot(scope contracts.Scope, rec *contracts.StockRecommendation, signalType contracts.SignalType, strength float64) (*contracts.SignalLogEntry, error) {
	meta, err := json.Marshal(snapshotMetadata{
		RecommendationMetadata: rec.Metadata,
		ConvictionLevel:        rec.ConvictionLevel,
		IsDip:                  rec.IsDip,
		DipQualityCheck:        rec.DipQualityCheck,
		TargetSource:           rec.Target.Source,
		TargetPrice:            rec.Target.Price,
		PrimarySignal:          rec.PrimarySignal.Type,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal signal metadata: %w", err)
	}

	return &contracts.SignalLogEntry{
		ID:             uuid.NewString(),
		Scope:          scope,
		Ticker:         rec.Ticker,
		SignalType:     signalType,
		SignalStrength: strength,

		FundamentalScore: rec.Scores.Fundamental,
		TechnicalScore:   rec.Scores.Technical,
		AnalystScore:     rec.Scores.Analyst,
		NewsScore:        rec.Scores.News,
		InsiderScore:     rec.Scores.Insider,
		PortfolioScore:   rec.Scores.Portfolio,
		CompositeScore:   rec.Composite,
		ConvictionScore:  rec.Conviction,
		DipScore:         rec.DipScore,

		PriceAtSignal: rec.Metadata.Price,

		Metadata:  meta,
		CreatedAt: s.now().UTC(),
	}, nil
}

// strengthOf uses the matching signal's strength, else the primary's
func strengthOf(rec *contracts.StockRecommendation, t contracts.SignalType) float64 {
	for _, sig := range rec.Signals {
		if sig.Type == t {
			return sig.Strength
		}
	}
	return rec.PrimarySignal.Strength
}
