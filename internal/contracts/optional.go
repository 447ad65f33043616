package contracts

import (
	"bytes"
	"encoding/json"
)

// Optional is an explicit Present/Absent value
// ⭐ SSOT: "데이터 없음"은 nil 포인터가 아니라 Optional로만 표현
type Optional[T any] struct {
	value   T
	present bool
}

// Some wraps a present value
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, present: true}
}

// None returns an absent value
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// Get returns the value and whether it is present
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.present
}

// Present reports whether a value exists
func (o Optional[T]) Present() bool {
	return o.present
}

// OrElse returns the value or the given default when absent
func (o Optional[T]) OrElse(def T) T {
	if !o.present {
		return def
	}
	return o.value
}

// MarshalJSON encodes Absent as null
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.present {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

// UnmarshalJSON decodes null (or a missing field) as Absent
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = None[T]()
		return nil
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}

// Float is the common optional numeric metric
type Float = Optional[float64]

// F is shorthand for a present float metric
func F(v float64) Float {
	return Some(v)
}
