package realtime

import (
	"time"

	"github.com/wonny/aegis-advisor/backend/internal/contracts"
)

// EventType names a signal log change pushed to subscribers
type EventType string

const (
	EventSignalLogged   EventType = "signal_logged"
	EventSignalDeleted  EventType = "signal_deleted"
	EventSignalsCleared EventType = "signals_cleared"
)

// Event is one signal log change for a scope
// ⭐ SSOT: 실시간 시그널 이벤트 구조
type Event struct {
	Type      EventType                 `json:"type"`
	Scope     string                    `json:"scope"`
	Entry     *contracts.SignalLogEntry `json:"entry,omitempty"`
	EntryID   string                    `json:"entry_id,omitempty"`
	Deleted   int64                     `json:"deleted,omitempty"`
	Timestamp time.Time                 `json:"timestamp"`
}
