package contracts

import "fmt"

// SignalType is the closed set of recommendation signals
type SignalType string

const (
	SignalDipOpportunity SignalType = "DIP_OPPORTUNITY"
	SignalMomentum       SignalType = "MOMENTUM"
	SignalConvictionHold SignalType = "CONVICTION_HOLD"
	SignalNearTarget     SignalType = "NEAR_TARGET"
	SignalConsiderTrim   SignalType = "CONSIDER_TRIM"
	SignalWatchClosely   SignalType = "WATCH_CLOSELY"
	SignalAccumulate     SignalType = "ACCUMULATE"
	SignalNeutral        SignalType = "NEUTRAL"
)

// AllSignalTypes lists every signal type in rule-table order
var AllSignalTypes = []SignalType{
	SignalDipOpportunity,
	SignalMomentum,
	SignalConvictionHold,
	SignalNearTarget,
	SignalConsiderTrim,
	SignalWatchClosely,
	SignalAccumulate,
	SignalNeutral,
}

// ParseSignalType validates a signal type string
func ParseSignalType(s string) (SignalType, error) {
	for _, t := range AllSignalTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown signal type: %q", s)
}

// IsBuyClass reports whether the signal supports adding to the position
func (t SignalType) IsBuyClass() bool {
	return t == SignalDipOpportunity || t == SignalAccumulate
}

// IsBearish reports whether the signal wins when the price falls
func (t SignalType) IsBearish() bool {
	return t == SignalConsiderTrim
}

// SignalCategory groups signals by intent
type SignalCategory string

const (
	CategoryBuy     SignalCategory = "BUY"
	CategoryHold    SignalCategory = "HOLD"
	CategorySell    SignalCategory = "SELL"
	CategoryWatch   SignalCategory = "WATCH"
	CategoryNeutral SignalCategory = "NEUTRAL"
)

// StockSignal is one qualitative signal
// Priority: 낮을수록 긴급
type StockSignal struct {
	Type        SignalType     `json:"type"`
	Category    SignalCategory `json:"category"`
	Strength    float64        `json:"strength"` // 0 ~ 100
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Priority    int            `json:"priority"`
}

// HasSignal reports whether the recommendation carries the given type
func (r *StockRecommendation) HasSignal(t SignalType) bool {
	for _, s := range r.Signals {
		if s.Type == t {
			return true
		}
	}
	return false
}
