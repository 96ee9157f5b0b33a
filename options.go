package jsonyx

import (
	"math/big"
	"reflect"
)

// typeFamily maps the reflect.Type of a registered extension value to its
// conversion function, the same reflect.Type-keyed dispatch the teacher's
// ccl.go uses in fieldMap/structField to recognize struct fields — here
// repurposed to recognize encoder-side "is this one of my extra bool/int/
// float/str/array/object types" instead of struct-tag fields.
//
// Extension values are typed any, not Value: Value's isValue marker is
// unexported, so a caller-defined type (e.g. a custom bool-like enum)
// cannot implement it. The type-family mechanism is exactly how such a
// type still reaches the encoder.
type typeFamily[T any] map[reflect.Type]func(any) T

func (f typeFamily[T]) lookup(v any) (T, bool) {
	if conv, ok := f[reflect.TypeOf(v)]; ok {
		return conv(v), true
	}
	var zero T
	return zero, false
}

// BoolHook transforms every Bool value the scanner produces.
type BoolHook func(bool) Value

// IntHook transforms every Int value the scanner produces.
type IntHook func(*big.Int) Value

// FloatHook transforms every Float (or BigNumber, when UseDecimal is set)
// value the scanner produces.
type FloatHook func(Value) Value

// StrHook transforms every decoded string.
type StrHook func(string) Value

// SequenceHook transforms every finished array. Receives the elements in
// source order.
type SequenceHook func([]Value) Value

// MappingHook transforms every finished object. When set, the scanner
// builds a []Pair instead of an *Object and hands it to the hook, per
// spec.md §3's "mapping_hook (tree vs. list-of-pairs)".
type MappingHook func([]Pair) Value

// ScannerOptions controls what the scanner accepts and how it builds
// values (spec.md §3). The zero value is strict JSON with no hooks.
type ScannerOptions struct {
	AllowComments      bool
	AllowDuplicateKeys bool
	AllowMissingCommas bool
	AllowNanAndInf     bool
	AllowSurrogates    bool
	AllowTrailingComma bool
	AllowUnquotedKeys  bool
	CacheKeys          bool
	UseDecimal         bool

	BoolHook     BoolHook
	FloatHook    FloatHook
	IntHook      IntHook
	MappingHook  MappingHook
	SequenceHook SequenceHook
	StrHook      StrHook
}

// ScannerOption configures a ScannerOptions passed to Scan.
type ScannerOption func(*ScannerOptions)

// AllowComments enables "// " and "/* */" comments.
func AllowComments(b bool) ScannerOption { return func(o *ScannerOptions) { o.AllowComments = b } }

// AllowDuplicateKeys permits repeated object keys, preserved via DuplicateKey.
func AllowDuplicateKeys(b bool) ScannerOption {
	return func(o *ScannerOptions) { o.AllowDuplicateKeys = b }
}

// AllowMissingCommas permits a fresh element/pair with no comma, as long
// as whitespace or a comment separates it from the previous token.
func AllowMissingCommas(b bool) ScannerOption {
	return func(o *ScannerOptions) { o.AllowMissingCommas = b }
}

// AllowNanAndInfinity permits the NaN/Infinity/-Infinity literals.
func AllowNanAndInfinity(b bool) ScannerOption {
	return func(o *ScannerOptions) { o.AllowNanAndInf = b }
}

// AllowSurrogates permits unpaired UTF-16 surrogate escapes in strings.
func AllowSurrogates(b bool) ScannerOption {
	return func(o *ScannerOptions) { o.AllowSurrogates = b }
}

// AllowTrailingComma permits one trailing comma before a closing bracket.
func AllowTrailingComma(b bool) ScannerOption {
	return func(o *ScannerOptions) { o.AllowTrailingComma = b }
}

// AllowUnquotedKeys permits identifier-shaped object keys without quotes.
func AllowUnquotedKeys(b bool) ScannerOption {
	return func(o *ScannerOptions) { o.AllowUnquotedKeys = b }
}

// CacheKeys interns repeated key text within one Scan call.
func CacheKeys(b bool) ScannerOption { return func(o *ScannerOptions) { o.CacheKeys = b } }

// UseDecimal routes float literals through BigNumber instead of Float.
func UseDecimal(b bool) ScannerOption { return func(o *ScannerOptions) { o.UseDecimal = b } }

// WithBoolHook installs a Bool-producing hook.
func WithBoolHook(h BoolHook) ScannerOption { return func(o *ScannerOptions) { o.BoolHook = h } }

// WithFloatHook installs a Float/BigNumber-producing hook.
func WithFloatHook(h FloatHook) ScannerOption { return func(o *ScannerOptions) { o.FloatHook = h } }

// WithIntHook installs an Int-producing hook.
func WithIntHook(h IntHook) ScannerOption { return func(o *ScannerOptions) { o.IntHook = h } }

// WithMappingHook installs a mapping-producing hook.
func WithMappingHook(h MappingHook) ScannerOption {
	return func(o *ScannerOptions) { o.MappingHook = h }
}

// WithSequenceHook installs a sequence-producing hook.
func WithSequenceHook(h SequenceHook) ScannerOption {
	return func(o *ScannerOptions) { o.SequenceHook = h }
}

// WithStrHook installs a string-producing hook.
func WithStrHook(h StrHook) ScannerOption { return func(o *ScannerOptions) { o.StrHook = h } }

// Indent controls encoder indentation: the zero value means no indent
// (compact output); when Enabled is set, Text is prepended once per
// nesting level.
type Indent struct {
	Text    string
	Enabled bool
}

// Hook transforms every value before the encoder dispatches on its type.
type Hook func(any) any

// EncoderOptions controls how the encoder renders a Value tree (spec.md §3).
// Encode starts from DefaultEncoderOptions (compact, ensure_ascii-escaped,
// strict JSON); the zero value has empty separators and every flag off.
type EncoderOptions struct {
	Indent             Indent
	ItemSeparator      string
	LongItemSeparator  string
	KeySeparator       string
	End                string
	MaxIndentLevel     int
	AllowNanAndInf     bool
	AllowNonStrKeys    bool
	AllowSurrogates    bool
	CheckCircular      bool
	EnsureASCII        bool
	IndentLeaves       bool
	QuotedKeys         bool
	SkipKeys           bool
	SortKeys           bool
	TrailingComma      bool

	BoolTypes   typeFamily[bool]
	IntTypes    typeFamily[*big.Int]
	FloatTypes  typeFamily[float64]
	StrTypes    typeFamily[string]
	ArrayTypes  typeFamily[[]Value]
	ObjectTypes typeFamily[[]Pair]

	Hook Hook
}

// DefaultEncoderOptions returns the strict-JSON, compact, ensure_ascii
// defaults spec.md §3 describes for EncoderOptions.
func DefaultEncoderOptions() EncoderOptions {
	return EncoderOptions{
		ItemSeparator:     ",",
		LongItemSeparator: ", ",
		KeySeparator:      ": ",
		MaxIndentLevel:    1 << 30,
		QuotedKeys:        true,
		EnsureASCII:       true,
		CheckCircular:     true,
	}
}

// EncoderOption configures the EncoderOptions used by Encode.
type EncoderOption func(*EncoderOptions)

// WithIndent sets the per-level indent text and enables indented output.
func WithIndent(text string) EncoderOption {
	return func(o *EncoderOptions) { o.Indent = Indent{Text: text, Enabled: true} }
}

// WithItemSeparator overrides the indented-mode item separator.
func WithItemSeparator(s string) EncoderOption {
	return func(o *EncoderOptions) { o.ItemSeparator = s }
}

// WithLongItemSeparator overrides the non-indented-mode item separator.
func WithLongItemSeparator(s string) EncoderOption {
	return func(o *EncoderOptions) { o.LongItemSeparator = s }
}

// WithKeySeparator overrides the text written between a key and its value.
func WithKeySeparator(s string) EncoderOption {
	return func(o *EncoderOptions) { o.KeySeparator = s }
}

// WithEnd sets the text appended once after the full output.
func WithEnd(s string) EncoderOption { return func(o *EncoderOptions) { o.End = s } }

// WithMaxIndentLevel caps the depth at which indentation still applies.
func WithMaxIndentLevel(n int) EncoderOption {
	return func(o *EncoderOptions) { o.MaxIndentLevel = n }
}

// AllowNanAndInfinityEnc permits emitting NaN/Infinity/-Infinity literals.
func AllowNanAndInfinityEnc(b bool) EncoderOption {
	return func(o *EncoderOptions) { o.AllowNanAndInf = b }
}

// AllowNonStrKeys sets EncoderOptions.AllowNonStrKeys. Every Key is
// already text, so the encoder does not consult this option.
func AllowNonStrKeys(b bool) EncoderOption {
	return func(o *EncoderOptions) { o.AllowNonStrKeys = b }
}

// AllowSurrogatesEnc permits emitting lone surrogate escapes.
func AllowSurrogatesEnc(b bool) EncoderOption {
	return func(o *EncoderOptions) { o.AllowSurrogates = b }
}

// CheckCircular toggles circular-reference detection.
func CheckCircular(b bool) EncoderOption { return func(o *EncoderOptions) { o.CheckCircular = b } }

// EnsureASCII toggles \uXXXX escaping of all non-ASCII output.
func EnsureASCII(b bool) EncoderOption { return func(o *EncoderOptions) { o.EnsureASCII = b } }

// IndentLeaves forces indentation even for containers with only leaf children.
func IndentLeaves(b bool) EncoderOption { return func(o *EncoderOptions) { o.IndentLeaves = b } }

// QuotedKeys forces all object keys to be quoted, even valid identifiers.
func QuotedKeys(b bool) EncoderOption { return func(o *EncoderOptions) { o.QuotedKeys = b } }

// SkipKeys silently drops pairs whose key cannot be coerced to text.
func SkipKeys(b bool) EncoderOption { return func(o *EncoderOptions) { o.SkipKeys = b } }

// SortKeys sorts object keys by their coerced text.
func SortKeys(b bool) EncoderOption { return func(o *EncoderOptions) { o.SortKeys = b } }

// TrailingComma emits a trailing separator before a closing bracket in
// indented mode.
func TrailingComma(b bool) EncoderOption { return func(o *EncoderOptions) { o.TrailingComma = b } }

// WithHook installs a pre-encode transform applied to every value.
func WithHook(h Hook) EncoderOption { return func(o *EncoderOptions) { o.Hook = h } }

// WithBoolType registers an extension type recognized as a JSON boolean.
// sample is a zero value of the extension type, used only to key the
// dispatch table by reflect.Type.
func WithBoolType(sample any, conv func(any) bool) EncoderOption {
	return func(o *EncoderOptions) {
		if o.BoolTypes == nil {
			o.BoolTypes = make(typeFamily[bool])
		}
		o.BoolTypes[reflect.TypeOf(sample)] = conv
	}
}

// WithIntType registers an extension type recognized as a JSON integer.
func WithIntType(sample any, conv func(any) *big.Int) EncoderOption {
	return func(o *EncoderOptions) {
		if o.IntTypes == nil {
			o.IntTypes = make(typeFamily[*big.Int])
		}
		o.IntTypes[reflect.TypeOf(sample)] = conv
	}
}

// WithFloatType registers an extension type recognized as a JSON float.
func WithFloatType(sample any, conv func(any) float64) EncoderOption {
	return func(o *EncoderOptions) {
		if o.FloatTypes == nil {
			o.FloatTypes = make(typeFamily[float64])
		}
		o.FloatTypes[reflect.TypeOf(sample)] = conv
	}
}

// WithStrType registers an extension type recognized as a JSON string.
func WithStrType(sample any, conv func(any) string) EncoderOption {
	return func(o *EncoderOptions) {
		if o.StrTypes == nil {
			o.StrTypes = make(typeFamily[string])
		}
		o.StrTypes[reflect.TypeOf(sample)] = conv
	}
}

// WithArrayType registers an extension type recognized as a JSON array.
func WithArrayType(sample any, conv func(any) []Value) EncoderOption {
	return func(o *EncoderOptions) {
		if o.ArrayTypes == nil {
			o.ArrayTypes = make(typeFamily[[]Value])
		}
		o.ArrayTypes[reflect.TypeOf(sample)] = conv
	}
}

// WithObjectType registers an extension type recognized as a JSON object.
func WithObjectType(sample any, conv func(any) []Pair) EncoderOption {
	return func(o *EncoderOptions) {
		if o.ObjectTypes == nil {
			o.ObjectTypes = make(typeFamily[[]Pair])
		}
		o.ObjectTypes[reflect.TypeOf(sample)] = conv
	}
}
