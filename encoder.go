package jsonyx

import (
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// encoder holds the state of one Encode call: the teacher's writer
// (growable buffer, write_str/write_char) generalized with an indent
// cache and a circular-reference marker set.
type encoder struct {
	opts        *EncoderOptions
	buf         strings.Builder
	indentCache []string
	markers     map[any]bool
}

// Encode renders value as text under opts (spec.md §4.5 entry point).
// value is typically a Value produced by Scan, but may be any Go value
// recognized through the EncoderOptions type-family sets: Value's isValue
// marker is unexported, so an extension type can never satisfy Value
// itself, and the encoder must accept plain any to dispatch to it.
func Encode(value any, opts ...EncoderOption) (string, error) {
	o := DefaultEncoderOptions()
	for _, opt := range opts {
		opt(&o)
	}
	e := &encoder{opts: &o}
	if o.CheckCircular {
		e.markers = make(map[any]bool)
	}
	if err := e.encodeValue(value, 0); err != nil {
		return "", err
	}
	e.buf.WriteString(o.End)
	return e.buf.String(), nil
}

// ── indent cache ─────────────────────────────────────────────

// indentEntry returns the indent-cache string at position i (spec.md
// §4.5): even positions are "\n"+indent*k for depth k=i/2; odd positions
// are item_separator+"\n"+indent*(k+1). Grown lazily up to position i on
// demand, and never recomputed once cached.
func (e *encoder) indentEntry(i int) string {
	for len(e.indentCache) <= i {
		k := len(e.indentCache) / 2
		var s string
		if len(e.indentCache)%2 == 0 {
			s = "\n" + strings.Repeat(e.opts.Indent.Text, k)
		} else {
			s = e.opts.ItemSeparator + "\n" + strings.Repeat(e.opts.Indent.Text, k+1)
		}
		e.indentCache = append(e.indentCache, s)
	}
	return e.indentCache[i]
}

// ── markers ──────────────────────────────────────────────────

// markerKey returns an identity key for v's underlying container and
// whether v is a container at all. *Object is already a comparable
// pointer; Array (a slice) is keyed by its backing array's address, the
// same "use addresses" fallback spec.md §9 prescribes for hosts without
// native object identity.
func markerKey(v any) (any, bool) {
	switch t := v.(type) {
	case *Object:
		return t, true
	case Array:
		if t == nil {
			return nil, false
		}
		return reflect.ValueOf([]Value(t)).Pointer(), true
	}
	return nil, false
}

// ── dispatch ─────────────────────────────────────────────────

func (e *encoder) encodeValue(v any, level int) error {
	if e.opts.Hook != nil {
		v = e.opts.Hook(v)
	}

	switch t := v.(type) {
	case nil:
		e.buf.WriteString("null")
		return nil
	case Null:
		e.buf.WriteString("null")
		return nil
	case Bool:
		if t {
			e.buf.WriteString("true")
		} else {
			e.buf.WriteString("false")
		}
		return nil
	case Str:
		return e.encodeString(string(t))
	case Int:
		e.buf.WriteString(t.String())
		return nil
	case Float:
		return e.encodeFloat(float64(t))
	case BigNumber:
		return e.encodeBigNumber(t)
	case Array:
		return e.encodeArray(t, level)
	case *Object:
		if t == nil {
			e.buf.WriteString("null")
			return nil
		}
		return e.encodeObject(t, level)
	}

	if b, ok := e.opts.BoolTypes.lookup(v); ok {
		return e.encodeValue(Bool(b), level)
	}
	if n, ok := e.opts.IntTypes.lookup(v); ok {
		return e.encodeValue(Int{n}, level)
	}
	if f, ok := e.opts.FloatTypes.lookup(v); ok {
		return e.encodeValue(Float(f), level)
	}
	if s, ok := e.opts.StrTypes.lookup(v); ok {
		return e.encodeValue(Str(s), level)
	}
	if a, ok := e.opts.ArrayTypes.lookup(v); ok {
		return e.encodeValue(Array(a), level)
	}
	if pairs, ok := e.opts.ObjectTypes.lookup(v); ok {
		obj := NewObject()
		for _, p := range pairs {
			obj.Append(p.Key, p.Value)
		}
		return e.encodeValue(obj, level)
	}

	return reportValue(KindUnserializable, typeName(v)+" is not JSON serializable")
}

func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	return reflect.TypeOf(v).String()
}

func (e *encoder) encodeFloat(f float64) error {
	if math.IsNaN(f) {
		return e.encodeNonFinite("NaN")
	}
	if math.IsInf(f, 1) {
		return e.encodeNonFinite("Infinity")
	}
	if math.IsInf(f, -1) {
		return e.encodeNonFinite("-Infinity")
	}
	e.buf.WriteString(formatFloat(f))
	return nil
}

// formatFloat renders a finite float64 the way the original accelerator's
// float repr does (_speedups.c:1581, PyFloat_Type.tp_repr with
// Py_DTSF_ADD_DOT_0): the shortest round-tripping decimal, with a trailing
// ".0" appended whenever that shortest form has neither a '.' nor an
// exponent, so an integral value like 1.0 still reads back as a Float
// instead of re-scanning as an Int (spec.md §8 testable property 4).
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func (e *encoder) encodeNonFinite(literal string) error {
	if !e.opts.AllowNanAndInf {
		return reportValue(KindNonFinite, literal+" is not JSON serializable")
	}
	e.buf.WriteString(literal)
	return nil
}

// encodeBigNumber emits a decimal.Decimal per spec.md §4.5. decimal.Decimal
// has no signaling-NaN or infinity concept, so only the finite path is
// reachable here: non-finite BigNumber values never leave the scanner
// (see numberToValue), and nothing in this package constructs one
// directly, so there is no quiet-NaN/Infinity case to gate on
// allow_nan_and_infinity.
func (e *encoder) encodeBigNumber(b BigNumber) error {
	e.buf.WriteString(b.Decimal.String())
	return nil
}

func (e *encoder) encodeString(s string) error {
	var (
		escaped string
		err     error
	)
	if e.opts.EnsureASCII {
		escaped, err = escapeASCII(s, e.opts.AllowSurrogates)
	} else {
		escaped, err = escapeUnicode(s, e.opts.AllowSurrogates)
	}
	if err != nil {
		return err
	}
	e.buf.WriteByte('"')
	e.buf.WriteString(escaped)
	e.buf.WriteByte('"')
	return nil
}

// ── containers ───────────────────────────────────────────────

func (e *encoder) enter(v any) error {
	if e.markers == nil {
		return nil
	}
	key, ok := markerKey(v)
	if !ok {
		return nil
	}
	if e.markers[key] {
		return reportValue(KindCircular, "Unexpected circular reference")
	}
	e.markers[key] = true
	return nil
}

func (e *encoder) leave(v any) {
	if e.markers == nil {
		return
	}
	if key, ok := markerKey(v); ok {
		delete(e.markers, key)
	}
}

// isContainerLike reports whether v would itself be indent-worthy:
// an Array, an *Object, or a registered array/object extension type.
func (e *encoder) isContainerLike(v Value) bool {
	switch v.(type) {
	case Array, *Object:
		return true
	}
	if _, ok := e.opts.ArrayTypes.lookup(v); ok {
		return true
	}
	if _, ok := e.opts.ObjectTypes.lookup(v); ok {
		return true
	}
	return false
}

func (e *encoder) encodeArray(a Array, level int) error {
	if len(a) == 0 {
		e.buf.WriteString("[]")
		return nil
	}
	if err := e.enter(a); err != nil {
		return err
	}
	defer e.leave(a)

	e.buf.WriteByte('[')

	indented := e.opts.Indent.Enabled && level < e.opts.MaxIndentLevel &&
		(e.opts.IndentLeaves || e.arrayHasContainer(a))

	childLevel := level
	if indented {
		childLevel = level + 1
	}

	for i, elem := range a {
		if i == 0 {
			if indented {
				e.buf.WriteString(e.indentEntry(2 * childLevel))
			}
		} else if indented {
			e.buf.WriteString(e.indentEntry(2*level + 1))
		} else {
			e.buf.WriteString(e.opts.LongItemSeparator)
		}
		if err := e.encodeValue(elem, childLevel); err != nil {
			return err
		}
	}

	if indented {
		if e.opts.TrailingComma {
			e.buf.WriteString(e.opts.ItemSeparator)
		}
		e.buf.WriteString(e.indentEntry(2 * level))
	}
	e.buf.WriteByte(']')
	return nil
}

func (e *encoder) arrayHasContainer(a Array) bool {
	for _, v := range a {
		if e.isContainerLike(v) {
			return true
		}
	}
	return false
}

func (e *encoder) encodeObject(o *Object, level int) error {
	if o.Len() == 0 {
		e.buf.WriteString("{}")
		return nil
	}
	if err := e.enter(o); err != nil {
		return err
	}
	defer e.leave(o)

	pairs := o.Pairs()
	if e.opts.SortKeys {
		sorted := make([]Pair, len(pairs))
		copy(sorted, pairs)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Key.Text() < sorted[j].Key.Text()
		})
		pairs = sorted
	}

	e.buf.WriteByte('{')

	indented := e.opts.Indent.Enabled && level < e.opts.MaxIndentLevel &&
		(e.opts.IndentLeaves || e.pairsHaveContainer(pairs))

	childLevel := level
	if indented {
		childLevel = level + 1
	}

	written := 0
	for _, p := range pairs {
		key, ok := e.coerceKey(p.Key)
		if !ok {
			if e.opts.SkipKeys {
				continue
			}
			return reportValue(KindUnserializable, "Keys must be str, not "+typeName(p.Key))
		}
		if written == 0 {
			if indented {
				e.buf.WriteString(e.indentEntry(2 * childLevel))
			}
		} else if indented {
			e.buf.WriteString(e.indentEntry(2*level + 1))
		} else {
			e.buf.WriteString(e.opts.LongItemSeparator)
		}
		written++

		if err := e.writeKey(key); err != nil {
			return err
		}
		e.buf.WriteString(e.opts.KeySeparator)
		if err := e.encodeValue(p.Value, childLevel); err != nil {
			return err
		}
	}

	if indented && written > 0 {
		if e.opts.TrailingComma {
			e.buf.WriteString(e.opts.ItemSeparator)
		}
		e.buf.WriteString(e.indentEntry(2 * level))
	}
	e.buf.WriteByte('}')
	return nil
}

func (e *encoder) pairsHaveContainer(pairs []Pair) bool {
	for _, p := range pairs {
		if e.isContainerLike(p.Value) {
			return true
		}
	}
	return false
}

// coerceKey resolves a Pair's key to its text form. In this package's Go
// value model a Key is always text-backed (unlike a dynamically-typed
// mapping, which can key on any hashable scalar), so coercion fails only
// for a nil Key; SkipKeys then drops the pair, otherwise Encode reports
// it. AllowNonStrKeys is not consulted here: a non-nil Key is always text.
func (e *encoder) coerceKey(k Key) (string, bool) {
	if k == nil {
		return "", false
	}
	return k.Text(), true
}

func (e *encoder) writeKey(key string) error {
	if !e.opts.QuotedKeys && isValidIdentifierKey(key) && (!e.opts.EnsureASCII || isASCII(key)) {
		e.buf.WriteString(key)
		return nil
	}
	return e.encodeString(key)
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > 0x7F {
			return false
		}
	}
	return true
}

// isValidIdentifierKey mirrors the scanner's unquoted-key grammar
// (spec.md §4.4): an ASCII letter, '_', or any code point > 0x7F to
// start, the same set plus ASCII digits to continue.
func isValidIdentifierKey(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r > 0x7F:
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
