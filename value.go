// Package jsonyx implements a permissive, configurable JSON codec: a
// scanner that turns UTF-8 text into a value tree while reporting
// location-annotated syntax diagnostics, and an encoder that serialises a
// value tree back into text with configurable escaping, indentation,
// key-ordering and circular-reference detection.
package jsonyx

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// Value is a canonical JSONYX value. Concrete types: Null, Bool, Int,
// Float, BigNumber, Str, Array, *Object.
type Value interface {
	isValue()
}

// Null is the JSON null value.
type Null struct{}

// Bool is a JSON true/false value.
type Bool bool

// Int is an arbitrary-precision JSON integer.
type Int struct {
	*big.Int
}

// NewInt wraps n as an Int value.
func NewInt(n *big.Int) Int { return Int{n} }

// Float is an IEEE-754 binary64 JSON number.
type Float float64

// BigNumber is a decimal-backed JSON number, produced when ScannerOptions
// enables UseDecimal. Distinct from Float so that exact-decimal round-trips
// never lose digits to a binary64 conversion.
type BigNumber struct {
	decimal.Decimal
}

// Str is a JSON string value, already unescaped.
type Str string

// Array is an ordered JSON array value.
type Array []Value

func (Null) isValue()      {}
func (Bool) isValue()      {}
func (Int) isValue()       {}
func (Float) isValue()     {}
func (BigNumber) isValue() {}
func (Str) isValue()       {}
func (Array) isValue()     {}
func (*Object) isValue()   {}

// Key is a JSON object key. Two plain keys are the same key iff their
// Text() is equal. A *DuplicateKey is never equal to any other key,
// including one wrapping identical text, so an Object in duplicate-key
// mode can hold arbitrarily many entries that share surface text.
type Key interface {
	Text() string
}

// textKey is a plain, comparable object key.
type textKey string

func (k textKey) Text() string { return string(k) }

// NewKey returns a plain key wrapping text.
func NewKey(text string) Key { return textKey(text) }

// DuplicateKey wraps a key's text with identity-based equality: every
// *DuplicateKey is distinct from every other Key value, even one built
// from the same text, so objects can preserve duplicate-key input when
// ScannerOptions.AllowDuplicateKeys is set.
type DuplicateKey struct {
	text string
}

// NewDuplicateKey returns a key that is equal only to itself.
func NewDuplicateKey(text string) *DuplicateKey { return &DuplicateKey{text: text} }

func (k *DuplicateKey) Text() string { return k.text }

// Pair is one key/value entry of an Object, in the order it was produced.
type Pair struct {
	Key   Key
	Value Value
}

// Object is an ordered mapping from Key to Value. In unique-key mode (the
// default), no two Pairs have Key values with equal Text(); in
// duplicate-key mode, every occurrence past the first uses a
// *DuplicateKey so the slice can hold repeats.
type Object struct {
	pairs []Pair
	index map[string]int
}

// NewObject returns an empty Object.
func NewObject() *Object {
	return &Object{index: make(map[string]int)}
}

// Len returns the number of pairs in o.
func (o *Object) Len() int { return len(o.pairs) }

// Pairs returns the object's pairs in insertion order. The returned slice
// must not be mutated by the caller.
func (o *Object) Pairs() []Pair { return o.pairs }

// Get returns the value stored under the first plain-text occurrence of
// key, and whether it was found. It never matches a *DuplicateKey.
func (o *Object) Get(key string) (Value, bool) {
	if o.index == nil {
		return nil, false
	}
	i, ok := o.index[key]
	if !ok {
		return nil, false
	}
	return o.pairs[i].Value, true
}

// Append adds a pair to the end of o. If key is a plain text key and o
// does not yet track it, it is recorded for Get. Callers that need
// duplicate-key semantics must pass a *DuplicateKey for repeats
// themselves — Append performs no uniqueness enforcement; that policy
// lives in the scanner (ScannerOptions.AllowDuplicateKeys). The encoder
// does not check keys for uniqueness either.
func (o *Object) Append(key Key, value Value) {
	if o.index == nil {
		o.index = make(map[string]int)
	}
	if tk, ok := key.(textKey); ok {
		if _, exists := o.index[string(tk)]; !exists {
			o.index[string(tk)] = len(o.pairs)
		}
	}
	o.pairs = append(o.pairs, Pair{Key: key, Value: value})
}
