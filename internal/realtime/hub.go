package realtime

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/wonny/aegis-advisor/backend/internal/contracts"
	"github.com/wonny/aegis-advisor/backend/pkg/logger"
)

// DefaultBuffer is the per-subscriber event backlog
const DefaultBuffer = 32

// Subscriber receives events for one scope until unsubscribed
type Subscriber struct {
	scope   string
	ch      chan Event
	dropped atomic.Int64
}

// Events returns the receive channel; it is closed on Unsubscribe
func (s *Subscriber) Events() <-chan Event {
	return s.ch
}

// Dropped counts events discarded because the backlog was full
func (s *Subscriber) Dropped() int64 {
	return s.dropped.Load()
}

// Hub fans out signal log events to subscribers of the same scope.
// Publish never blocks: a slow subscriber loses events instead of
// stalling the writer.
// ⭐ SSOT: 시그널 이벤트 브로드캐스트는 여기서만
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[*Subscriber]struct{}
	logger *logger.Logger
	now    func() time.Time
}

// NewHub creates an empty hub
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		subs:   make(map[string]map[*Subscriber]struct{}),
		logger: log,
		now:    time.Now,
	}
}

// Subscribe registers a subscriber for the scope
func (h *Hub) Subscribe(scope contracts.Scope, buffer int) *Subscriber {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	sub := &Subscriber{scope: scope.Key(), ch: make(chan Event, buffer)}

	h.mu.Lock()
	set, ok := h.subs[sub.scope]
	if !ok {
		set = make(map[*Subscriber]struct{})
		h.subs[sub.scope] = set
	}
	set[sub] = struct{}{}
	h.mu.Unlock()

	h.logger.WithField("scope", sub.scope).Debug("Signal stream subscribed")
	return sub
}

// Unsubscribe removes the subscriber and closes its channel. Safe to call twice.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.subs[sub.scope]
	if !ok {
		return
	}
	if _, ok := set[sub]; !ok {
		return
	}
	delete(set, sub)
	if len(set) == 0 {
		delete(h.subs, sub.scope)
	}
	close(sub.ch)
}

// Subscribers returns the number of subscribers for the scope
func (h *Hub) Subscribers(scope contracts.Scope) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[scope.Key()])
}

// SignalLogged publishes a new entry to its scope
func (h *Hub) SignalLogged(entry *contracts.SignalLogEntry) {
	h.publish(Event{Type: EventSignalLogged, Scope: entry.Scope.Key(), Entry: entry})
}

// SignalDeleted publishes a single deletion
func (h *Hub) SignalDeleted(scope contracts.Scope, id string) {
	h.publish(Event{Type: EventSignalDeleted, Scope: scope.Key(), EntryID: id})
}

// SignalsCleared publishes a scope-wide clear
func (h *Hub) SignalsCleared(scope contracts.Scope, deleted int64) {
	h.publish(Event{Type: EventSignalsCleared, Scope: scope.Key(), Deleted: deleted})
}

func (h *Hub) publish(ev Event) {
	ev.Timestamp = h.now()

	// 구독자 채널 close 와 경합하지 않도록 읽기 락 유지
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subs[ev.Scope] {
		select {
		case sub.ch <- ev:
		default:
			if n := sub.dropped.Add(1); n == 1 || n%100 == 0 {
				h.logger.WithFields(map[string]interface{}{
					"scope":   ev.Scope,
					"dropped": n,
				}).Warn("Signal stream subscriber is falling behind")
			}
		}
	}
}
