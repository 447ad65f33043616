package s5_signallog

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/wonny/aegis-advisor/backend/internal/contracts"
)

// MemoryStore keeps the signal log in process (tests, no-DB mode)
type MemoryStore struct {
	mu      sync.RWMutex
	entries []*contracts.SignalLogEntry
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Exists implements contracts.SignalLogStore
func (m *MemoryStore) Exists(_ context.Context, scope contracts.Scope, ticker string, signalType contracts.SignalType, since time.Time) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, e := range m.entries {
		if e.Scope.Key() == scope.Key() && e.Ticker == ticker && e.SignalType == signalType && !e.CreatedAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

// Insert implements contracts.SignalLogStore
func (m *MemoryStore) Insert(_ context.Context, entry *contracts.SignalLogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *entry
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now().UTC()
	}
	m.entries = append(m.entries, &cp)
	return nil
}

// List implements contracts.SignalLogStore
func (m *MemoryStore) List(_ context.Context, scope contracts.Scope, limit int) ([]*contracts.SignalLogEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*contracts.SignalLogEntry
	for _, e := range m.entries {
		if e.Scope.Key() == scope.Key() {
			cp := *e
			out = append(out, &cp)
		}
	}

	// 최신순
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Delete implements contracts.SignalLogStore
func (m *MemoryStore) Delete(_ context.Context, scope contracts.Scope, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, e := range m.entries {
		if e.ID == id && e.Scope.Key() == scope.Key() {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// Clear implements contracts.SignalLogStore
func (m *MemoryStore) Clear(_ context.Context, scope contracts.Scope) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.entries[:0]
	var removed int64
	for _, e := range m.entries {
		if e.Scope.Key() == scope.Key() {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	m.entries = kept
	return removed, nil
}

// Performance implements contracts.SignalLogStore
func (m *MemoryStore) Performance(_ context.Context, scope contracts.Scope) ([]contracts.SignalPerformance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var scoped []*contracts.SignalLogEntry
	for _, e := range m.entries {
		if e.Scope.Key() == scope.Key() {
			scoped = append(scoped, e)
		}
	}
	return aggregatePerformance(scoped), nil
}

// PendingOutcomes implements contracts.SignalLogStore
func (m *MemoryStore) PendingOutcomes(_ context.Context, now time.Time, offset, limit int) ([]contracts.PendingOutcome, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []contracts.PendingOutcome
	for _, e := range m.entries {
		for _, p := range contracts.OutcomePeriods {
			if e.PriceAfter(p).Present() {
				continue
			}
			if e.CreatedAt.AddDate(0, 0, int(p)).After(now) {
				continue
			}
			out = append(out, contracts.PendingOutcome{
				EntryID:   e.ID,
				Ticker:    e.Ticker,
				Period:    p,
				CreatedAt: e.CreatedAt,
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		if a.EntryID != b.EntryID {
			return a.EntryID < b.EntryID
		}
		return a.Period < b.Period
	})
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// SetOutcome implements contracts.SignalLogStore
func (m *MemoryStore) SetOutcome(_ context.Context, id string, period contracts.OutcomePeriod, price float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range m.entries {
		if e.ID == id {
			e.SetPriceAfter(period, price)
			return nil
		}
	}
	return ErrNotFound
}

// DeleteOlderThan implements contracts.SignalLogStore
func (m *MemoryStore) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.entries[:0]
	var removed int64
	for _, e := range m.entries {
		if e.CreatedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	m.entries = kept
	return removed, nil
}

// aggregatePerformance counts evaluated/winning entries per type and period,
// in rule-table order
func aggregatePerformance(entries []*contracts.SignalLogEntry) []contracts.SignalPerformance {
	byType := make(map[contracts.SignalType]*contracts.SignalPerformance)
	for _, e := range entries {
		perf, ok := byType[e.SignalType]
		if !ok {
			perf = &contracts.SignalPerformance{
				SignalType: e.SignalType,
				Periods:    make(map[contracts.OutcomePeriod]contracts.PeriodStats, len(contracts.OutcomePeriods)),
			}
			byType[e.SignalType] = perf
		}
		perf.Total++

		for _, p := range contracts.OutcomePeriods {
			win, ok := e.IsWinner(p)
			if !ok {
				continue
			}
			stats := perf.Periods[p]
			stats.Evaluated++
			if win {
				stats.Winners++
			}
			perf.Periods[p] = stats
		}
	}

	out := make([]contracts.SignalPerformance, 0, len(byType))
	for _, t := range contracts.AllSignalTypes {
		if perf, ok := byType[t]; ok {
			out = append(out, *perf)
		}
	}
	return out
}
