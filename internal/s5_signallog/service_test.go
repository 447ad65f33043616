package s5_signallog

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/aegis-advisor/backend/internal/contracts"
	"github.com/wonny/aegis-advisor/backend/pkg/logger"
)

var (
	portfolioScope = contracts.Scope{PortfolioID: "p-1"}
	userScope      = contracts.Scope{UserID: "u-1"}
)

func sampleRecommendation(ticker string) *contracts.StockRecommendation {
	return &contracts.StockRecommendation{
		Ticker: ticker,
		Scores: contracts.CategoryScores{
			Fundamental: 80,
			Technical:   72,
			Analyst:     66,
			News:        55,
			Insider:     50,
			Portfolio:   contracts.None[float64](),
		},
		Composite:       68.2,
		Conviction:      74,
		ConvictionLevel: contracts.ConvictionHigh,
		DipScore:        10,
		Signals: []contracts.StockSignal{
			{Type: contracts.SignalMomentum, Category: contracts.CategoryBuy, Strength: 72, Priority: 2},
			{Type: contracts.SignalConvictionHold, Category: contracts.CategoryHold, Strength: 74, Priority: 3},
		},
		PrimarySignal: contracts.StockSignal{Type: contracts.SignalMomentum, Category: contracts.CategoryBuy, Strength: 72, Priority: 2},
		Metadata: contracts.RecommendationMetadata{
			Price: contracts.F(150),
			RSI:   contracts.F(61),
		},
	}
}

func newTestService(store contracts.SignalLogStore) *Service {
	return NewService(store, logger.NewNop(), DefaultDedupWindowDays)
}

func TestLogSignal_DedupIdempotence(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	svc := newTestService(store)
	rec := sampleRecommendation("AAPL")

	first, err := svc.LogSignal(ctx, portfolioScope, rec, "")
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, contracts.SignalMomentum, first.SignalType)
	assert.Equal(t, 72.0, first.SignalStrength)
	assert.Equal(t, contracts.F(150), first.PriceAtSignal)

	second, err := svc.LogSignal(ctx, portfolioScope, rec, "")
	require.NoError(t, err)
	assert.Nil(t, second)

	entries, err := svc.ListSignals(ctx, portfolioScope, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestLogSignal_DedupIsPerScopeAndType(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(NewMemoryStore())
	rec := sampleRecommendation("AAPL")

	e1, err := svc.LogSignal(ctx, portfolioScope, rec, "")
	require.NoError(t, err)
	require.NotNil(t, e1)

	// 다른 스코프
	e2, err := svc.LogSignal(ctx, userScope, rec, "")
	require.NoError(t, err)
	require.NotNil(t, e2)

	// 다른 타입 (override)
	e3, err := svc.LogSignal(ctx, portfolioScope, rec, contracts.SignalConvictionHold)
	require.NoError(t, err)
	require.NotNil(t, e3)
	assert.Equal(t, contracts.SignalConvictionHold, e3.SignalType)
	assert.Equal(t, 74.0, e3.SignalStrength)
}

func TestLogSignal_OutsideWindowInsertsAgain(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(NewMemoryStore())
	rec := sampleRecommendation("MSFT")

	past := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return past }
	first, err := svc.LogSignal(ctx, portfolioScope, rec, "")
	require.NoError(t, err)
	require.NotNil(t, first)

	svc.now = func() time.Time { return past.AddDate(0, 0, 8) }
	second, err := svc.LogSignal(ctx, portfolioScope, rec, "")
	require.NoError(t, err)
	assert.NotNil(t, second)
}

func TestLogSignal_Unauthenticated(t *testing.T) {
	svc := newTestService(NewMemoryStore())

	entry, err := svc.LogSignal(context.Background(), contracts.Scope{}, sampleRecommendation("AAPL"), "")
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.Nil(t, entry)

	_, err = svc.ListSignals(context.Background(), contracts.Scope{}, 10)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestLogSignal_MetadataSnapshot(t *testing.T) {
	svc := newTestService(NewMemoryStore())

	entry, err := svc.LogSignal(context.Background(), userScope, sampleRecommendation("NVDA"), "")
	require.NoError(t, err)
	require.NotNil(t, entry)

	var meta map[string]any
	require.NoError(t, json.Unmarshal(entry.Metadata, &meta))
	assert.Equal(t, 61.0, meta["rsi"])
	assert.Equal(t, "HIGH", meta["conviction_level"])
	assert.Equal(t, "MOMENTUM", meta["primary_signal"])
	assert.Nil(t, meta["macd"])
}

// failingStore errors on every existence check
type failingStore struct {
	*MemoryStore
}

func (f failingStore) Exists(context.Context, contracts.Scope, string, contracts.SignalType, time.Time) (bool, error) {
	return false, errors.New("connection refused")
}

func TestExists_FailsOpen(t *testing.T) {
	ctx := context.Background()
	store := failingStore{NewMemoryStore()}
	svc := newTestService(store)

	assert.False(t, svc.Exists(ctx, portfolioScope, "AAPL", contracts.SignalMomentum))

	// 확인 실패해도 기록은 진행
	entry, err := svc.LogSignal(ctx, portfolioScope, sampleRecommendation("AAPL"), "")
	require.NoError(t, err)
	assert.NotNil(t, entry)
}

func TestDeleteAndClear(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(NewMemoryStore())

	a, err := svc.LogSignal(ctx, portfolioScope, sampleRecommendation("AAPL"), "")
	require.NoError(t, err)
	_, err = svc.LogSignal(ctx, portfolioScope, sampleRecommendation("MSFT"), "")
	require.NoError(t, err)
	_, err = svc.LogSignal(ctx, userScope, sampleRecommendation("AAPL"), "")
	require.NoError(t, err)

	// 다른 스코프의 항목은 삭제 불가
	err = svc.DeleteSignal(ctx, userScope, a.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, svc.DeleteSignal(ctx, portfolioScope, a.ID))
	assert.ErrorIs(t, svc.DeleteSignal(ctx, portfolioScope, "not-a-uuid"), ErrNotFound)

	n, err := svc.ClearAllSignals(ctx, portfolioScope)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	remaining, err := svc.ListSignals(ctx, userScope, 0)
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
}

func TestCalculateWinRate(t *testing.T) {
	perf := contracts.SignalPerformance{
		SignalType: contracts.SignalMomentum,
		Total:      12,
		Periods: map[contracts.OutcomePeriod]contracts.PeriodStats{
			contracts.Period7D:  {Evaluated: 10, Winners: 7},
			contracts.Period30D: {Evaluated: 3, Winners: 2},
		},
	}

	assert.Equal(t, contracts.F(70), CalculateWinRate(perf, contracts.Period7D))
	assert.Equal(t, contracts.F(67), CalculateWinRate(perf, contracts.Period30D))
	assert.False(t, CalculateWinRate(perf, contracts.Period1D).Present())
}

func TestPerformance_CountsWinners(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	svc := newTestService(store)

	insert := func(ticker string, st contracts.SignalType, at, after float64) {
		require.NoError(t, store.Insert(ctx, &contracts.SignalLogEntry{
			ID:            ticker + string(st),
			Scope:         portfolioScope,
			Ticker:        ticker,
			SignalType:    st,
			PriceAtSignal: contracts.F(at),
			PriceAfter7D:  contracts.F(after),
		}))
	}
	insert("A", contracts.SignalMomentum, 100, 110)
	insert("B", contracts.SignalMomentum, 100, 90)
	insert("C", contracts.SignalConsiderTrim, 100, 90) // 하락 = 승리
	require.NoError(t, store.Insert(ctx, &contracts.SignalLogEntry{
		ID: "D", Scope: portfolioScope, Ticker: "D", SignalType: contracts.SignalMomentum,
		PriceAtSignal: contracts.F(100),
	}))

	perf, err := svc.Performance(ctx, portfolioScope)
	require.NoError(t, err)
	require.Len(t, perf, 2)

	assert.Equal(t, contracts.SignalMomentum, perf[0].SignalType)
	assert.Equal(t, 3, perf[0].Total)
	assert.Equal(t, contracts.PeriodStats{Evaluated: 2, Winners: 1}, perf[0].Periods[contracts.Period7D])
	assert.Equal(t, contracts.F(50), CalculateWinRate(perf[0], contracts.Period7D))

	assert.Equal(t, contracts.SignalConsiderTrim, perf[1].SignalType)
	assert.Equal(t, contracts.F(100), CalculateWinRate(perf[1], contracts.Period7D))
}

func TestPurgeOlderThan(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	svc := newTestService(store)
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	require.NoError(t, store.Insert(ctx, &contracts.SignalLogEntry{ID: "old", Scope: userScope, CreatedAt: now.AddDate(-2, 0, 0)}))
	require.NoError(t, store.Insert(ctx, &contracts.SignalLogEntry{ID: "new", Scope: userScope, CreatedAt: now.AddDate(0, 0, -3)}))

	n, err := svc.PurgeOlderThan(ctx, 0)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = svc.PurgeOlderThan(ctx, 365)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	left, err := store.List(ctx, userScope, 0)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "new", left[0].ID)
}

type recordingNotifier struct {
	logged  []string
	deleted []string
	cleared []int64
}

func (n *recordingNotifier) SignalLogged(e *contracts.SignalLogEntry)   { n.logged = append(n.logged, e.Ticker) }
func (n *recordingNotifier) SignalDeleted(_ contracts.Scope, id string) { n.deleted = append(n.deleted, id) }
func (n *recordingNotifier) SignalsCleared(_ contracts.Scope, c int64)  { n.cleared = append(n.cleared, c) }

func TestNotifier_SeesCommittedChangesOnly(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(NewMemoryStore())
	n := &recordingNotifier{}
	svc.SetNotifier(n)

	e, err := svc.LogSignal(ctx, userScope, sampleRecommendation("AAPL"), "")
	require.NoError(t, err)
	_, err = svc.LogSignal(ctx, userScope, sampleRecommendation("AAPL"), "") // duplicate
	require.NoError(t, err)
	_, err = svc.LogSignal(ctx, userScope, sampleRecommendation("MSFT"), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT"}, n.logged)

	require.NoError(t, svc.DeleteSignal(ctx, userScope, e.ID))
	assert.Equal(t, []string{e.ID}, n.deleted)

	cleared, err := svc.ClearAllSignals(ctx, userScope)
	require.NoError(t, err)
	assert.Equal(t, []int64{cleared}, n.cleared)
	assert.Equal(t, int64(1), cleared)
}
