package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/wonny/aegis-advisor/backend/internal/contracts"
	"github.com/wonny/aegis-advisor/backend/internal/engine"
	"github.com/wonny/aegis-advisor/backend/internal/s5_signallog"
	"github.com/wonny/aegis-advisor/backend/pkg/logger"
	"github.com/wonny/aegis-advisor/backend/pkg/redis"
)

// RecommendationService fronts the engine with input validation, a Redis
// cache and the signal log
// ⭐ SSOT: API/CLI → 엔진 호출은 여기서만
type RecommendationService struct {
	engine      *engine.Engine
	cache       *redis.Cache
	ttl         time.Duration
	signals     *s5_signallog.Service
	concurrency int
	logger      *logger.Logger
}

// ErrNoSignalLog is returned by signal operations when logging is off
var ErrNoSignalLog = errors.New("signal log is not configured")

// performanceTTL bounds how stale cached win rates can get between writes
const performanceTTL = time.Minute

// Options tunes a RecommendationService
type Options struct {
	CacheTTL         time.Duration
	BatchConcurrency int
}

// NewRecommendationService creates a new recommendation service.
// cache may wrap a disabled client; signals may be nil when logging is off.
func NewRecommendationService(eng *engine.Engine, cache *redis.Cache, signals *s5_signallog.Service, log *logger.Logger, opts Options) *RecommendationService {
	if opts.BatchConcurrency <= 0 {
		opts.BatchConcurrency = engine.DefaultBatchConcurrency
	}
	return &RecommendationService{
		engine:      eng,
		cache:       cache,
		ttl:         opts.CacheTTL,
		signals:     signals,
		concurrency: opts.BatchConcurrency,
		logger:      log,
	}
}

// Recommend evaluates one ticker, serving identical inputs from cache
func (s *RecommendationService) Recommend(ctx context.Context, in contracts.ScoreInputs) (*contracts.StockRecommendation, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	key, err := s.cacheKey(in)
	if err != nil {
		return nil, err
	}

	var cached contracts.StockRecommendation
	if found, err := s.cache.Get(ctx, key, &cached); err != nil {
		// 캐시 장애는 평가를 막지 않음
		s.logger.WithError(err).WithField("ticker", in.Ticker).Warn("recommendation cache read failed")
	} else if found {
		return &cached, nil
	}

	rec := s.engine.Evaluate(in)

	if s.ttl > 0 {
		if err := s.cache.Set(ctx, key, rec, s.ttl); err != nil {
			s.logger.WithError(err).WithField("ticker", in.Ticker).Warn("recommendation cache write failed")
		}
	}
	return &rec, nil
}

// RecommendBatch evaluates many tickers concurrently, preserving input order
func (s *RecommendationService) RecommendBatch(ctx context.Context, inputs []contracts.ScoreInputs) ([]contracts.StockRecommendation, error) {
	for i, in := range inputs {
		if err := in.Validate(); err != nil {
			return nil, fmt.Errorf("inputs[%d]: %w", i, err)
		}
	}
	return s.engine.EvaluateBatch(ctx, inputs, s.concurrency)
}

// RecommendAndLog evaluates a ticker and records its signal for the scope.
// entry is nil when the signal was already logged inside the dedup window.
func (s *RecommendationService) RecommendAndLog(ctx context.Context, scope contracts.Scope, in contracts.ScoreInputs, override contracts.SignalType) (*contracts.StockRecommendation, *contracts.SignalLogEntry, error) {
	if s.signals == nil {
		return nil, nil, ErrNoSignalLog
	}
	if scope.IsZero() {
		return nil, nil, s5_signallog.ErrUnauthenticated
	}

	rec, err := s.Recommend(ctx, in)
	if err != nil {
		return nil, nil, err
	}

	entry, err := s.signals.LogSignal(ctx, scope, rec, override)
	if err != nil {
		return rec, nil, err
	}
	if entry != nil {
		s.invalidatePerformance(ctx, scope)
	}
	return rec, entry, nil
}

// Performance returns per-type outcome counts for the scope, cached briefly
func (s *RecommendationService) Performance(ctx context.Context, scope contracts.Scope) ([]contracts.SignalPerformance, error) {
	if s.signals == nil {
		return nil, ErrNoSignalLog
	}
	if scope.IsZero() {
		return nil, s5_signallog.ErrUnauthenticated
	}

	key := redis.PerformanceKey(scope.Key())
	var cached []contracts.SignalPerformance
	if found, err := s.cache.Get(ctx, key, &cached); err != nil {
		s.logger.WithError(err).WithField("scope", scope.Key()).Warn("performance cache read failed")
	} else if found {
		return cached, nil
	}

	perf, err := s.signals.Performance(ctx, scope)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, perf, performanceTTL); err != nil {
		s.logger.WithError(err).WithField("scope", scope.Key()).Warn("performance cache write failed")
	}
	return perf, nil
}

// DeleteSignal removes one entry and drops the scope's cached performance
func (s *RecommendationService) DeleteSignal(ctx context.Context, scope contracts.Scope, id string) error {
	if s.signals == nil {
		return ErrNoSignalLog
	}
	if err := s.signals.DeleteSignal(ctx, scope, id); err != nil {
		return err
	}
	s.invalidatePerformance(ctx, scope)
	return nil
}

// ClearSignals removes every entry of the scope and drops its cached performance
func (s *RecommendationService) ClearSignals(ctx context.Context, scope contracts.Scope) (int64, error) {
	if s.signals == nil {
		return 0, ErrNoSignalLog
	}
	n, err := s.signals.ClearAllSignals(ctx, scope)
	if err != nil {
		return 0, err
	}
	s.invalidatePerformance(ctx, scope)
	return n, nil
}

func (s *RecommendationService) invalidatePerformance(ctx context.Context, scope contracts.Scope) {
	if err := s.cache.Delete(ctx, redis.PerformanceKey(scope.Key())); err != nil {
		s.logger.WithError(err).WithField("scope", scope.Key()).Warn("performance cache invalidation failed")
	}
}

// Signals exposes the signal log service
func (s *RecommendationService) Signals() *s5_signallog.Service {
	return s.signals
}

// ConfigHash returns the scoring config hash
func (s *RecommendationService) ConfigHash() string {
	return s.engine.ConfigHash()
}

// cacheKey digests the canonical JSON of the inputs
func (s *RecommendationService) cacheKey(in contracts.ScoreInputs) (string, error) {
	data, err := json.Marshal(in)
	if err != nil {
		return "", fmt.Errorf("failed to marshal inputs: %w", err)
	}
	sum := sha256.Sum256(data)
	return redis.RecommendationKey(in.Ticker, s.engine.ConfigHash(), hex.EncodeToString(sum[:8])), nil
}
