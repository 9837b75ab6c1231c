package models

import (
	"bytes"
	"encoding/json"
)

// Optional is a nullable patch field that remembers whether the client sent
// it. Set with a nil Value means the field was sent as null and should be
// cleared.
type Optional[T any] struct {
	Set   bool
	Value *T
}

// Some returns a present, non-null field.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: &v}
}

// Null returns a present field that clears the stored value.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true}
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if o.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*o.Value)
}

// apply overwrites dst when the field was sent.
func (o Optional[T]) apply(dst **T) {
	if o.Set {
		*dst = o.Value
	}
}
