package task

import (
	"bytes"
	"encoding/json"
)

// Optional distinguishes an absent field from one explicitly set to null or a value.
// The zero value is absent. Use it with the `omitzero` JSON option so absent fields
// are not emitted when encoding.
type Optional[T any] struct {
	value T
	set   bool
	null  bool
}

// Some returns an Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, set: true}
}

// Null returns an Optional that was explicitly set to null.
func Null[T any]() Optional[T] {
	return Optional[T]{set: true, null: true}
}

// IsSet reports whether the field was present, either as null or as a value.
func (o Optional[T]) IsSet() bool { return o.set }

// IsNull reports whether the field was present and null.
func (o Optional[T]) IsNull() bool { return o.set && o.null }

// Get returns the value and whether one is present (set and not null).
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.set && !o.null
}

// Ptr returns nil for null or absent, otherwise a pointer to a copy of the value.
func (o Optional[T]) Ptr() *T {
	if !o.set || o.null {
		return nil
	}
	v := o.value
	return &v
}

// IsZero reports absence; used by encoding/json for `omitzero`.
func (o Optional[T]) IsZero() bool { return !o.set }

// UnmarshalJSON is only invoked when the key is present in the document.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		o.value = zero
		o.null = true
		return nil
	}
	o.null = false
	return json.Unmarshal(data, &o.value)
}

// MarshalJSON encodes null and absent as JSON null.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.set || o.null {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}
