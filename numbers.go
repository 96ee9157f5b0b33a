package jsonyx

import (
	"math"
	"math/big"
	"strconv"

	"github.com/shopspring/decimal"
)

// matchNumber advances a cursor across a JSON number starting at
// data[start] (spec.md §4.3): optional '-', an integer part ("0" or
// [1-9][0-9]*), an optional fraction, and an optional exponent. Returns
// the offset just past the number and whether a fraction or exponent was
// consumed (is_float). ok is false if data[start] does not begin a valid
// number at all.
//
// This is a hand-written byte-level scan rather than the teacher's
// regexp-based numRE: spec.md §2 calls for "careful branchless inner
// loops" here, and a single forward pass over the bytes avoids both the
// regexp engine and a second validation pass.
func matchNumber(data []byte, start int) (end int, isFloat bool, ok bool) {
	i := start
	if i < len(data) && data[i] == '-' {
		i++
	}
	intStart := i
	switch {
	case i < len(data) && data[i] == '0':
		i++
	case i < len(data) && data[i] >= '1' && data[i] <= '9':
		i++
		for i < len(data) && data[i] >= '0' && data[i] <= '9' {
			i++
		}
	default:
		return start, false, false
	}
	if i == intStart {
		return start, false, false
	}

	if i < len(data) && data[i] == '.' {
		j := i + 1
		k := j
		for k < len(data) && data[k] >= '0' && data[k] <= '9' {
			k++
		}
		if k > j {
			i = k
			isFloat = true
		}
		// else: '.' not followed by a digit — leave it unconsumed, the
		// number ends here as an integer (spec.md §4.3).
	}

	if i < len(data) && (data[i] == 'e' || data[i] == 'E') {
		j := i + 1
		if j < len(data) && (data[j] == '+' || data[j] == '-') {
			j++
		}
		k := j
		for k < len(data) && data[k] >= '0' && data[k] <= '9' {
			k++
		}
		if k > j {
			i = k
			isFloat = true
		}
		// else: backtrack entirely, no exponent consumed.
	}

	return i, isFloat, true
}

// numberToValue converts the matched ASCII slice data[start:end] into an
// Int or Float (or BigNumber, under UseDecimal), applying IntHook/FloatHook.
func (s *scanner) numberToValue(data []byte, start, end int, isFloat bool) (Value, error) {
	text := string(data[start:end])
	if !isFloat {
		n := new(big.Int)
		if _, ok := n.SetString(text, 10); !ok {
			return nil, s.syntaxErrorAt("Expecting value", start)
		}
		if s.opts.IntHook != nil {
			return s.opts.IntHook(n), nil
		}
		return Int{n}, nil
	}

	if s.opts.UseDecimal {
		d, err := decimal.NewFromString(text)
		if err != nil {
			return nil, s.errAt(KindNumericRange, "Number is too big", start)
		}
		var v Value = BigNumber{d}
		if s.opts.FloatHook != nil {
			v = s.opts.FloatHook(v)
		}
		return v, nil
	}

	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsInf(f, 0) {
		return nil, s.errAt(KindNumericRange, "Big numbers require decimal", start)
	}
	var v Value = Float(f)
	if s.opts.FloatHook != nil {
		v = s.opts.FloatHook(v)
	}
	return v, nil
}
