package jsonyx

import (
	"math/big"
	"testing"
	"unsafe"

	"github.com/google/go-cmp/cmp"
)

func bi(n int64) Int { return Int{big.NewInt(n)} }

func obj(pairs ...Pair) *Object {
	o := NewObject()
	for _, p := range pairs {
		o.Append(p.Key, p.Value)
	}
	return o
}

func pair(key string, v Value) Pair {
	return Pair{Key: NewKey(key), Value: v}
}

var valueCmpOpts = cmp.AllowUnexported(Object{})

func TestScanBasic(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		desc string
		text string
		opts []ScannerOption
		want Value
	}{{
		desc: "Null",
		text: "null",
		want: Null{},
	}, {
		desc: "True",
		text: "true",
		want: Bool(true),
	}, {
		desc: "False",
		text: "false",
		want: Bool(false),
	}, {
		desc: "Int",
		text: "42",
		want: bi(42),
	}, {
		desc: "NegativeInt",
		text: "-42",
		want: bi(-42),
	}, {
		desc: "Float",
		text: "1.5e3",
		want: Float(1500),
	}, {
		desc: "String",
		text: `"hi"`,
		want: Str("hi"),
	}, {
		desc: "EmptyArray",
		text: "[]",
		want: Array(nil),
	}, {
		desc: "Array",
		text: "[1, 2, 3]",
		want: Array{bi(1), bi(2), bi(3)},
	}, {
		desc: "EmptyObject",
		text: "{}",
		want: obj(),
	}, {
		desc: "Object",
		text: `{"x": 1}`,
		want: obj(pair("x", bi(1))),
	}, {
		// S1
		desc: "CommentsAndWhitespace",
		text: "/* a */ { // b\n \"x\": 1 }",
		opts: []ScannerOption{AllowComments(true)},
		want: obj(pair("x", bi(1))),
	}, {
		// S3, permissive branch
		desc: "TrailingCommaAllowed",
		text: "[1,2,3,]",
		opts: []ScannerOption{AllowTrailingComma(true)},
		want: Array{bi(1), bi(2), bi(3)},
	}, {
		// S4, permissive branch
		desc: "UnquotedKeysAllowed",
		text: "{foo: 1}",
		opts: []ScannerOption{AllowUnquotedKeys(true)},
		want: obj(pair("foo", bi(1))),
	}, {
		// S7, permissive branch
		desc: "NaNAllowed",
		text: "NaN",
		opts: []ScannerOption{AllowNanAndInfinity(true)},
		want: Float(nan()),
	}, {
		desc: "MissingCommasAllowed",
		text: "[1 2 3]",
		opts: []ScannerOption{AllowMissingCommas(true)},
		want: Array{bi(1), bi(2), bi(3)},
	}} {
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()

			got, err := Scan("<test>", tc.text, tc.opts...)
			if err != nil {
				t.Fatalf("Scan(%q) failed: %v", tc.text, err)
			}
			if tc.desc == "NaNAllowed" {
				f, ok := got.(Float)
				if !ok || !isNaNFloat(float64(f)) {
					t.Fatalf("Scan(%q) = %#v, want NaN", tc.text, got)
				}
				return
			}
			if diff := cmp.Diff(tc.want, got, valueCmpOpts); diff != "" {
				t.Errorf("Scan(%q) mismatch (-want +got):\n%s", tc.text, diff)
			}
		})
	}
}

func nan() float64 { var z float64; return z / z }
func isNaNFloat(f float64) bool { return f != f }

func TestScanErrors(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		desc    string
		text    string
		opts    []ScannerOption
		message string
	}{{
		// S2, strict branch
		desc:    "DuplicateKeyRejected",
		text:    `{"x":1,"x":2}`,
		message: "Duplicate keys are not allowed",
	}, {
		// S3, strict branch
		desc:    "TrailingCommaRejected",
		text:    "[1,2,3,]",
		message: "Trailing comma is not allowed",
	}, {
		// S4, strict branch
		desc:    "UnquotedKeyRejected",
		text:    "{foo: 1}",
		message: "Unquoted keys are not allowed",
	}, {
		// S7, strict branch
		desc:    "NaNRejected",
		text:    "NaN",
		message: "NaN is not allowed",
	}, {
		desc:    "BOMRejected",
		text:    "\xef\xbb\xbf{}",
		message: "Unexpected UTF-8 BOM",
	}, {
		desc:    "UnterminatedString",
		text:    `"abc`,
		message: "Unterminated string",
	}, {
		desc:    "UnterminatedComment",
		text:    "/* abc",
		opts:    []ScannerOption{AllowComments(true)},
		message: "Unterminated comment",
	}, {
		desc:    "CommentsRejected",
		text:    "// hi\n1",
		message: "Comments are not allowed",
	}, {
		desc:    "TooDeeplyNestedArray",
		text:    nestedArrays(recursionLimit + 1),
		message: "Array is too deeply nested",
	}, {
		desc:    "TrailingGarbage",
		text:    "1 2",
		message: "Expecting end of file",
	}, {
		desc:    "ExpectingCommaAdjacentTokens",
		text:    `{"a":1"b":2}`,
		message: "Expecting comma",
	}, {
		desc:    "MissingCommaWithWhitespace",
		text:    `{"a":1 "b":2}`,
		message: "Missing commas are not allowed",
	}, {
		desc:    "ExpectingCommaAdjacentArrayElements",
		text:    `[1"x"]`,
		message: "Expecting comma",
	}} {
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()

			_, err := Scan("<test>", tc.text, tc.opts...)
			if err == nil {
				t.Fatalf("Scan(%q) succeeded, want error %q", tc.text, tc.message)
			}
			jerr, ok := err.(*Error)
			if !ok {
				t.Fatalf("Scan(%q) error type = %T, want *Error", tc.text, err)
			}
			if jerr.Message != tc.message {
				t.Errorf("Scan(%q) message = %q, want %q", tc.text, jerr.Message, tc.message)
			}
			if jerr.Start < 0 || jerr.Start > jerr.End || jerr.End > runeLen(tc.text) {
				t.Errorf("Scan(%q) range = [%d,%d), violates 0<=start<=end<=len(T)", tc.text, jerr.Start, jerr.End)
			}
		})
	}
}

func nestedArrays(depth int) string {
	s := make([]byte, 0, depth*2)
	for i := 0; i < depth; i++ {
		s = append(s, '[')
	}
	for i := 0; i < depth; i++ {
		s = append(s, ']')
	}
	return string(s)
}

func TestScanDuplicateKeysAllowed(t *testing.T) {
	t.Parallel()

	got, err := Scan("<test>", `{"x":1,"x":2}`, AllowDuplicateKeys(true))
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	o, ok := got.(*Object)
	if !ok {
		t.Fatalf("Scan result type = %T, want *Object", got)
	}
	if o.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", o.Len())
	}
	pairs := o.Pairs()
	if _, ok := pairs[0].Key.(*DuplicateKey); ok {
		t.Errorf("first pair key is a *DuplicateKey, want plain key")
	}
	if _, ok := pairs[1].Key.(*DuplicateKey); !ok {
		t.Errorf("second pair key = %T, want *DuplicateKey", pairs[1].Key)
	}
}

func TestScanCacheKeysShares(t *testing.T) {
	t.Parallel()

	got, err := Scan("<test>", `{"same":1,"nested":{"same":2}}`, CacheKeys(true))
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	outer := got.(*Object)
	inner := outer.Pairs()[1].Value.(*Object)

	outerKey := string(outer.Pairs()[0].Key.(textKey))
	innerKey := string(inner.Pairs()[0].Key.(textKey))
	if outerKey != innerKey {
		t.Errorf("interned keys differ: %q vs %q", outerKey, innerKey)
	}
	if unsafe.StringData(outerKey) != unsafe.StringData(innerKey) {
		t.Errorf("CacheKeys(true) did not share storage between repeated key occurrences")
	}
}

func TestScanSurrogates(t *testing.T) {
	t.Parallel()

	_, err := Scan("<test>", `"\ud800"`)
	if err == nil {
		t.Fatal("Scan succeeded, want surrogate error")
	}

	got, err := Scan("<test>", `"\ud800"`, AllowSurrogates(true))
	if err != nil {
		t.Fatalf("Scan with AllowSurrogates failed: %v", err)
	}
	s, ok := got.(Str)
	if !ok {
		t.Fatalf("Scan result type = %T, want Str", got)
	}
	back, err := escapeUnicode(string(s), true)
	if err != nil {
		t.Fatalf("escapeUnicode round-trip failed: %v", err)
	}
	if back != `\ud800` {
		t.Errorf("round-tripped escape = %q, want %q", back, `\ud800`)
	}
}

func TestScanHooks(t *testing.T) {
	t.Parallel()

	got, err := Scan("<test>", "true", WithBoolHook(func(b bool) Value {
		return Str("was-bool")
	}))
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if got != Value(Str("was-bool")) {
		t.Errorf("Scan with WithBoolHook = %#v, want Str(\"was-bool\")", got)
	}
}
