package domain

import "encoding/json"

// Optional distingue un campo ausente del payload de uno enviado, incluido un
// null explícito de JSON (en ese caso Null es true).
type Optional[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// Some devuelve un Optional presente y no nulo.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: v}
}

// Cleared devuelve un Optional presente con null explícito.
func Cleared[T any]() Optional[T] {
	return Optional[T]{Set: true, Null: true}
}

// Get devuelve el valor e indica si llegó con un valor no nulo.
func (o Optional[T]) Get() (T, bool) {
	if !o.Set || o.Null {
		var zero T
		return zero, false
	}
	return o.Value, true
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		var zero T
		o.Null = true
		o.Value = zero
		return nil
	}
	o.Null = false
	return json.Unmarshal(data, &o.Value)
}
