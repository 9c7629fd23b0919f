package fundsxml

import "encoding/json"

// Opt holds a value read from the document, or records that the element was
// not there at all. A present empty element is Some("") and is distinct from
// an absent one.
type Opt[T any] struct {
	v  T
	ok bool
}

// Some returns a present Opt.
func Some[T any](v T) Opt[T] { return Opt[T]{v: v, ok: true} }

// Get returns the value and whether it was present.
func (o Opt[T]) Get() (T, bool) { return o.v, o.ok }

// Present reports whether the element was in the document.
func (o Opt[T]) Present() bool { return o.ok }

// Or returns the value when present, def otherwise.
func (o Opt[T]) Or(def T) T {
	if o.ok {
		return o.v
	}
	return def
}

// MarshalJSON encodes an absent value as null.
func (o Opt[T]) MarshalJSON() ([]byte, error) {
	if !o.ok {
		return []byte("null"), nil
	}
	return json.Marshal(o.v)
}

// nonEmpty reports whether a text Opt is present and not blank.
func nonEmpty(o Opt[string]) bool {
	v, ok := o.Get()
	return ok && v != ""
}
