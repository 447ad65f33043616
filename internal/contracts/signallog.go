package contracts

import (
	"context"
	"encoding/json"
	"time"
)

// Scope identifies who owns a logged signal: a portfolio or a research user
type Scope struct {
	PortfolioID string `json:"portfolio_id,omitempty"`
	UserID      string `json:"user_id,omitempty"`
}

// IsZero reports whether no owner is set
func (s Scope) IsZero() bool {
	return s.PortfolioID == "" && s.UserID == ""
}

// Key returns a stable string form used by caches and in-memory stores
func (s Scope) Key() string {
	if s.PortfolioID != "" {
		return "portfolio:" + s.PortfolioID
	}
	return "user:" + s.UserID
}

// OutcomePeriod is one of the "price after N days" horizons
type OutcomePeriod int

const (
	Period1D  OutcomePeriod = 1
	Period7D  OutcomePeriod = 7
	Period14D OutcomePeriod = 14
	Period30D OutcomePeriod = 30
)

// OutcomePeriods lists every evaluated horizon
var OutcomePeriods = []OutcomePeriod{Period1D, Period7D, Period14D, Period30D}

// Column returns the signal_log column that stores the horizon's price
func (p OutcomePeriod) Column() string {
	switch p {
	case Period1D:
		return "price_after_1d"
	case Period7D:
		return "price_after_7d"
	case Period14D:
		return "price_after_14d"
	case Period30D:
		return "price_after_30d"
	default:
		return ""
	}
}

// SignalLogEntry is one persisted signal with its score snapshot
// ⭐ SSOT: signals.signal_log 행 구조
type SignalLogEntry struct {
	ID             string     `json:"id"`
	Scope          Scope      `json:"scope"`
	Ticker         string     `json:"ticker"`
	SignalType     SignalType `json:"signal_type"`
	SignalStrength float64    `json:"signal_strength"`

	FundamentalScore float64 `json:"fundamental_score"`
	TechnicalScore   float64 `json:"technical_score"`
	AnalystScore     float64 `json:"analyst_score"`
	NewsScore        float64 `json:"news_score"`
	InsiderScore     float64 `json:"insider_score"`
	PortfolioScore   Float   `json:"portfolio_score"`
	CompositeScore   float64 `json:"composite_score"`
	ConvictionScore  float64 `json:"conviction_score"`
	DipScore         float64 `json:"dip_score"`

	PriceAtSignal Float `json:"price_at_signal"`
	PriceAfter1D  Float `json:"price_after_1d"`
	PriceAfter7D  Float `json:"price_after_7d"`
	PriceAfter14D Float `json:"price_after_14d"`
	PriceAfter30D Float `json:"price_after_30d"`

	Metadata  json.RawMessage `json:"metadata"`
	CreatedAt time.Time       `json:"created_at"`
}

// PriceAfter returns the outcome slot for a horizon
func (e *SignalLogEntry) PriceAfter(p OutcomePeriod) Float {
	switch p {
	case Period1D:
		return e.PriceAfter1D
	case Period7D:
		return e.PriceAfter7D
	case Period14D:
		return e.PriceAfter14D
	case Period30D:
		return e.PriceAfter30D
	default:
		return None[float64]()
	}
}

// SetPriceAfter fills an outcome slot
func (e *SignalLogEntry) SetPriceAfter(p OutcomePeriod, price float64) {
	switch p {
	case Period1D:
		e.PriceAfter1D = F(price)
	case Period7D:
		e.PriceAfter7D = F(price)
	case Period14D:
		e.PriceAfter14D = F(price)
	case Period30D:
		e.PriceAfter30D = F(price)
	}
}

// IsWinner reports whether the signal was right over the horizon.
// ok is false while the slot is still empty.
func (e *SignalLogEntry) IsWinner(p OutcomePeriod) (win bool, ok bool) {
	at, okAt := e.PriceAtSignal.Get()
	after, okAfter := e.PriceAfter(p).Get()
	if !okAt || !okAfter || at <= 0 {
		return false, false
	}
	if e.SignalType.IsBearish() {
		return after < at, true
	}
	return after > at, true
}

// PeriodStats counts evaluated signals and winners for one horizon
type PeriodStats struct {
	Evaluated int `json:"evaluated"`
	Winners   int `json:"winners"`
}

// SignalPerformance aggregates outcomes for one signal type
type SignalPerformance struct {
	SignalType SignalType                    `json:"signal_type"`
	Total      int                           `json:"total"`
	Periods    map[OutcomePeriod]PeriodStats `json:"periods"`
}

// PendingOutcome is an entry whose horizon elapsed but whose slot is empty
type PendingOutcome struct {
	EntryID   string
	Ticker    string
	Period    OutcomePeriod
	CreatedAt time.Time
}

// SignalLogStore persists signal log rows
// ⭐ SSOT: 시그널 로그 저장소 인터페이스
type SignalLogStore interface {
	Exists(ctx context.Context, scope Scope, ticker string, signalType SignalType, since time.Time) (bool, error)
	Insert(ctx context.Context, entry *SignalLogEntry) error
	List(ctx context.Context, scope Scope, limit int) ([]*SignalLogEntry, error)
	Delete(ctx context.Context, scope Scope, id string) error
	Clear(ctx context.Context, scope Scope) (int64, error)
	Performance(ctx context.Context, scope Scope) ([]SignalPerformance, error)

	// PendingOutcomes pages elapsed, unfilled slots ordered by (created_at, id, period)
	PendingOutcomes(ctx context.Context, now time.Time, offset, limit int) ([]PendingOutcome, error)
	SetOutcome(ctx context.Context, id string, period OutcomePeriod, price float64) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// PriceLookup returns the first close on or after a date
type PriceLookup interface {
	CloseOnOrAfter(ctx context.Context, ticker string, date time.Time) (float64, bool, error)
}
