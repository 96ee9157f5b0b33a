package jsonyx

import "testing"

func TestMatchNumber(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		desc      string
		text      string
		wantEnd   int
		wantFloat bool
		wantOK    bool
	}{{
		desc: "Zero", text: "0", wantEnd: 1, wantOK: true,
	}, {
		desc: "Integer", text: "1234", wantEnd: 4, wantOK: true,
	}, {
		desc: "Negative", text: "-42", wantEnd: 3, wantOK: true,
	}, {
		desc: "Fraction", text: "1.5", wantEnd: 3, wantFloat: true, wantOK: true,
	}, {
		desc: "Exponent", text: "1e10", wantEnd: 4, wantFloat: true, wantOK: true,
	}, {
		desc: "NegativeExponent", text: "1e-10", wantEnd: 5, wantFloat: true, wantOK: true,
	}, {
		desc: "FractionAndExponent", text: "1.5e+10", wantEnd: 7, wantFloat: true, wantOK: true,
	}, {
		desc: "DotNotFollowedByDigit", text: "1.x", wantEnd: 1, wantOK: true,
	}, {
		desc: "EFollowedByNothing", text: "1e", wantEnd: 1, wantOK: true,
	}, {
		desc: "LeadingZeroNotExtended", text: "0123", wantEnd: 1, wantOK: true,
	}, {
		desc: "NotANumber", text: "abc", wantOK: false,
	}, {
		desc: "LoneMinus", text: "-", wantOK: false,
	}} {
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()

			end, isFloat, ok := matchNumber([]byte(tc.text), 0)
			if ok != tc.wantOK {
				t.Fatalf("matchNumber(%q) ok = %v, want %v", tc.text, ok, tc.wantOK)
			}
			if !ok {
				return
			}
			if end != tc.wantEnd {
				t.Errorf("matchNumber(%q) end = %d, want %d", tc.text, end, tc.wantEnd)
			}
			if isFloat != tc.wantFloat {
				t.Errorf("matchNumber(%q) isFloat = %v, want %v", tc.text, isFloat, tc.wantFloat)
			}
		})
	}
}

func TestNumberToValue(t *testing.T) {
	t.Parallel()

	s := &scanner{opts: &ScannerOptions{}}

	v, err := s.numberToValue([]byte("12345678901234567890"), 0, 20, false)
	if err != nil {
		t.Fatalf("numberToValue(big int) failed: %v", err)
	}
	n, ok := v.(Int)
	if !ok || n.String() != "12345678901234567890" {
		t.Errorf("numberToValue(big int) = %#v, want Int 12345678901234567890", v)
	}

	v, err = s.numberToValue([]byte("1.5"), 0, 3, true)
	if err != nil {
		t.Fatalf("numberToValue(float) failed: %v", err)
	}
	if f, ok := v.(Float); !ok || f != 1.5 {
		t.Errorf("numberToValue(float) = %#v, want Float 1.5", v)
	}
}

func TestNumberToValueUseDecimal(t *testing.T) {
	t.Parallel()

	s := &scanner{opts: &ScannerOptions{UseDecimal: true}}

	v, err := s.numberToValue([]byte("1.1"), 0, 3, true)
	if err != nil {
		t.Fatalf("numberToValue(decimal) failed: %v", err)
	}
	bn, ok := v.(BigNumber)
	if !ok || bn.Decimal.String() != "1.1" {
		t.Errorf("numberToValue(decimal) = %#v, want BigNumber 1.1", v)
	}
}

func TestNumberToValueOverflow(t *testing.T) {
	t.Parallel()

	// A float literal too extreme for binary64 without use_decimal.
	huge := "1" + repeatDigits(400)
	s := &scanner{opts: &ScannerOptions{}}
	_, err := s.numberToValue([]byte(huge+"e400"), 0, len(huge)+4, true)
	if err == nil {
		t.Fatal("numberToValue(overflowing float) succeeded, want error")
	}
	jerr, ok := err.(*Error)
	if !ok || jerr.Kind != KindNumericRange {
		t.Fatalf("numberToValue(overflowing float) error = %#v, want KindNumericRange", err)
	}
}

func repeatDigits(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = '0'
	}
	return string(b)
}
