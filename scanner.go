package jsonyx

import (
	"math"
	"regexp"
)

// recursionLimit bounds container nesting (spec.md §4.4/§5): exceeding it
// converts to a domain diagnostic instead of risking a host stack
// overflow, the same contract the teacher's recursive-descent parser
// relies on the Go runtime for, made explicit here since spec.md requires
// a specific error message rather than a crash.
const recursionLimit = 1000

// scanner holds the state of one Scan call: the teacher's parser struct
// (data, i, err) generalized with options, a filename label, and a
// key-intern memo.
type scanner struct {
	data     []byte
	filename string
	opts     *ScannerOptions
	i        int
	depth    int
	memo     map[string]string
}

// Scan parses text under opts, returning the root Value or a positioned
// *Error (spec.md §4.4 entry point).
func Scan(filename, text string, opts ...ScannerOption) (Value, error) {
	o := &ScannerOptions{}
	for _, opt := range opts {
		opt(o)
	}
	s := &scanner{data: []byte(text), filename: filename, opts: o}
	if o.CacheKeys {
		s.memo = make(map[string]string)
	}

	// Preamble: reject a leading UTF-8 BOM (spec.md §4.4).
	if len(s.data) >= 3 && s.data[0] == 0xEF && s.data[1] == 0xBB && s.data[2] == 0xBF {
		return nil, s.syntaxError("Unexpected UTF-8 BOM", 0, 3)
	}

	if err := s.skipWsAndComments(); err != nil {
		return nil, err
	}
	val, err := s.parseValue()
	if err != nil {
		return nil, err
	}
	if err := s.skipWsAndComments(); err != nil {
		return nil, err
	}
	if s.i != len(s.data) {
		return nil, s.syntaxErrorAt("Expecting end of file", s.i)
	}
	return val, nil
}

// ── diagnostics ──────────────────────────────────────────────

// byteToRune converts a byte offset in s.data to a code-point offset, the
// unit spec.md §6 requires, the same way the teacher's newSyntaxError
// turns a byte offset into line/col: by walking the already-consumed
// prefix, just counting runes instead of newlines.
func (s *scanner) byteToRune(byteOff int) int {
	return runeLen(string(s.data[:byteOff]))
}

func (s *scanner) syntaxErrorAt(message string, byteOff int) *Error {
	p := s.byteToRune(byteOff)
	return reportAt(KindSyntax, message, s.filename, string(s.data), p)
}

func (s *scanner) syntaxError(message string, byteStart, byteEnd int) *Error {
	return report(KindSyntax, message, s.filename, string(s.data), s.byteToRune(byteStart), s.byteToRune(byteEnd))
}

func (s *scanner) errAt(kind ErrorKind, message string, byteOff int) *Error {
	p := s.byteToRune(byteOff)
	return reportAt(kind, message, s.filename, string(s.data), p)
}

// ── whitespace & comments ───────────────────────────────────

var lineCommentEndRE = regexp.MustCompile(`^[^\n]*`)

// skipWsAndComments consumes whitespace and, per policy, comments
// (spec.md §4.4). It mirrors the shape of the teacher's spaceRE-based
// skipSpace, but walks comments by hand so an unterminated block comment
// and a disallowed-comment violation can each be reported over the exact
// range spec.md requires.
func (s *scanner) skipWsAndComments() error {
	for s.i < len(s.data) {
		b := s.data[s.i]
		if b == ' ' || b == '\t' || b == '\n' || b == '\r' {
			s.i++
			continue
		}
		if b == '/' && s.i+1 < len(s.data) && s.data[s.i+1] == '/' {
			start := s.i
			s.i += 2 + len(lineCommentEndRE.Find(s.data[s.i+2:]))
			if !s.opts.AllowComments {
				return s.syntaxError("Comments are not allowed", start, s.i)
			}
			continue
		}
		if b == '/' && s.i+1 < len(s.data) && s.data[s.i+1] == '*' {
			start := s.i
			end, ok := findBlockCommentEnd(s.data, s.i+2)
			if !ok {
				return s.syntaxErrorAt("Unterminated comment", start)
			}
			s.i = end
			if !s.opts.AllowComments {
				return s.syntaxError("Comments are not allowed", start, s.i)
			}
			continue
		}
		break
	}
	return nil
}

// findBlockCommentEnd locates the "*/" terminating a block comment whose
// body starts at data[from], returning the offset just past it.
func findBlockCommentEnd(data []byte, from int) (int, bool) {
	for i := from; i+1 < len(data); i++ {
		if data[i] == '*' && data[i+1] == '/' {
			return i + 2, true
		}
	}
	return 0, false
}

// ── dispatch ─────────────────────────────────────────────────

func (s *scanner) parseValue() (Value, error) {
	if s.i >= len(s.data) {
		return nil, s.syntaxErrorAt("Expecting value", s.i)
	}
	switch s.data[s.i] {
	case '"':
		text, next, err := s.unescapeString(s.i, '"')
		if err != nil {
			return nil, err
		}
		s.i = next
		if s.opts.StrHook != nil {
			return s.opts.StrHook(text), nil
		}
		return Str(text), nil
	case '{':
		return s.parseObject()
	case '[':
		return s.parseArray()
	}
	if _, n, ok := matchLiteral(s.data[s.i:], "null"); ok {
		s.i += n
		return Null{}, nil
	}
	if _, n, ok := matchLiteral(s.data[s.i:], "true"); ok {
		s.i += n
		return s.boolValue(true), nil
	}
	if _, n, ok := matchLiteral(s.data[s.i:], "false"); ok {
		s.i += n
		return s.boolValue(false), nil
	}
	if _, n, ok := matchLiteral(s.data[s.i:], "NaN"); ok {
		return s.specialFloat(n, "NaN", math.NaN())
	}
	if _, n, ok := matchLiteral(s.data[s.i:], "Infinity"); ok {
		return s.specialFloat(n, "Infinity", math.Inf(1))
	}
	if _, n, ok := matchLiteral(s.data[s.i:], "-Infinity"); ok {
		return s.specialFloat(n, "-Infinity", math.Inf(-1))
	}
	if end, isFloat, ok := matchNumber(s.data, s.i); ok {
		v, err := s.numberToValue(s.data, s.i, end, isFloat)
		if err != nil {
			return nil, err
		}
		s.i = end
		return v, nil
	}
	return nil, s.syntaxErrorAt("Expecting value", s.i)
}

func (s *scanner) boolValue(b bool) Value {
	if s.opts.BoolHook != nil {
		return s.opts.BoolHook(b)
	}
	return Bool(b)
}

// specialFloat handles the NaN/Infinity/-Infinity literals (spec.md §4.3).
// These always become Float, even under UseDecimal: decimal.Decimal has
// no representation for a non-finite value, so there is nothing for
// UseDecimal to opt into here.
func (s *scanner) specialFloat(n int, name string, f float64) (Value, error) {
	if !s.opts.AllowNanAndInf {
		return nil, s.syntaxError(name+" is not allowed", s.i, s.i+n)
	}
	s.i += n
	var v Value = Float(f)
	if s.opts.FloatHook != nil {
		v = s.opts.FloatHook(v)
	}
	return v, nil
}

// matchLiteral reports whether data begins with lit (case-sensitive,
// exact ASCII match per spec.md §4.4), and not followed by an identifier
// continuation character — so "nullable" is not mistaken for "null".
func matchLiteral(data []byte, lit string) (string, int, bool) {
	if len(data) < len(lit) || string(data[:len(lit)]) != lit {
		return "", 0, false
	}
	if len(data) > len(lit) && isIdentCont(data[len(lit)]) {
		return "", 0, false
	}
	return lit, len(lit), true
}

// ── objects ──────────────────────────────────────────────────

var fieldRE = regexp.MustCompile(`^[A-Za-z_\x{80}-\x{10FFFF}][A-Za-z_0-9\x{80}-\x{10FFFF}]*`)

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b > 0x7F
}

func isIdentCont(b byte) bool {
	return isIdentStart(b) || (b >= '0' && b <= '9')
}

func (s *scanner) parseObject() (Value, error) {
	objStart := s.i
	s.i++ // consume '{'
	s.depth++
	if s.depth > recursionLimit {
		s.depth--
		return nil, s.syntaxErrorAt("Object is too deeply nested", objStart)
	}
	defer func() { s.depth-- }()

	var pairs []Pair
	seen := make(map[string]bool)
	obj := NewObject()

objLoop:
	for {
		if err := s.skipWsAndComments(); err != nil {
			return nil, err
		}
		if s.i >= len(s.data) {
			return nil, s.syntaxError("Unterminated object", objStart, s.i)
		}
		if s.data[s.i] == '}' {
			s.i++
			break
		}

		key, keyIsText, err := s.parseKey()
		if err != nil {
			return nil, err
		}

		if err := s.skipWsAndComments(); err != nil {
			return nil, err
		}
		if s.i >= len(s.data) || s.data[s.i] != ':' {
			return nil, s.syntaxErrorAt("Expecting ':' delimiter", s.i)
		}
		s.i++
		if err := s.skipWsAndComments(); err != nil {
			return nil, err
		}

		val, err := s.parseValue()
		if err != nil {
			return nil, err
		}

		var pairKey Key
		if keyIsText {
			if seen[key] {
				if !s.opts.AllowDuplicateKeys {
					return nil, s.syntaxErrorAt("Duplicate keys are not allowed", s.i)
				}
				pairKey = NewDuplicateKey(key)
			} else {
				seen[key] = true
				pairKey = NewKey(key)
			}
		}
		if s.opts.MappingHook != nil {
			pairs = append(pairs, Pair{Key: pairKey, Value: val})
		} else {
			obj.Append(pairKey, val)
		}

		commaPos := s.i
		if err := s.skipWsAndComments(); err != nil {
			return nil, err
		}
		if s.i >= len(s.data) {
			return nil, s.syntaxError("Unterminated object", objStart, s.i)
		}
		switch s.data[s.i] {
		case ',':
			commaPos = s.i
			s.i++
			if err := s.skipWsAndComments(); err != nil {
				return nil, err
			}
			if s.i < len(s.data) && s.data[s.i] == '}' {
				if !s.opts.AllowTrailingComma {
					return nil, s.syntaxError("Trailing comma is not allowed", commaPos, commaPos+1)
				}
				s.i++
				break objLoop
			}
			continue
		case '}':
			s.i++
			break objLoop
		default:
			// No whitespace/comments were skipped since the previous
			// token: the next key butts directly against it with no
			// separator at all, a harder error than a merely-missing
			// comma (original accelerator's idx == comma_idx check).
			if s.i == commaPos {
				return nil, s.syntaxErrorAt("Expecting comma", commaPos)
			}
			if s.opts.AllowMissingCommas {
				continue
			}
			return nil, s.syntaxErrorAt("Missing commas are not allowed", commaPos)
		}
	}
	if s.opts.MappingHook != nil {
		return s.opts.MappingHook(pairs), nil
	}
	return obj, nil
}

// parseKey reads one object key: a JSON string literal, or (when
// AllowUnquotedKeys) an identifier. Returns the key text and whether it
// is plain text (always true today; kept as a return value so a future
// non-text key form doesn't need a signature change).
func (s *scanner) parseKey() (string, bool, error) {
	if s.i < len(s.data) && s.data[s.i] == '"' {
		text, next, err := s.unescapeString(s.i, '"')
		if err != nil {
			return "", false, err
		}
		s.i = next
		return s.intern(text), true, nil
	}
	m := fieldRE.Find(s.data[s.i:])
	if m == nil || !isIdentStart(m[0]) {
		return "", false, s.syntaxErrorAt("Expecting key", s.i)
	}
	start := s.i
	s.i += len(m)
	if !s.opts.AllowUnquotedKeys {
		return "", false, s.syntaxError("Unquoted keys are not allowed", start, s.i)
	}
	return s.intern(string(m)), true, nil
}

// intern applies the key-cache memo (spec.md §3/§9): first occurrence is
// stored, every later occurrence with equal text is replaced by the
// stored string so they share one backing array. Inactive (and free of
// cost) when CacheKeys is false.
func (s *scanner) intern(text string) string {
	if s.memo == nil {
		return text
	}
	if cached, ok := s.memo[text]; ok {
		return cached
	}
	s.memo[text] = text
	return text
}

// ── arrays ───────────────────────────────────────────────────

func (s *scanner) parseArray() (Value, error) {
	arrStart := s.i
	s.i++ // consume '['
	s.depth++
	if s.depth > recursionLimit {
		s.depth--
		return nil, s.syntaxErrorAt("Array is too deeply nested", arrStart)
	}
	defer func() { s.depth-- }()

	var elems []Value

arrLoop:
	for {
		if err := s.skipWsAndComments(); err != nil {
			return nil, err
		}
		if s.i >= len(s.data) {
			return nil, s.syntaxError("Unterminated array", arrStart, s.i)
		}
		if s.data[s.i] == ']' {
			s.i++
			break
		}

		val, err := s.parseValue()
		if err != nil {
			return nil, err
		}
		elems = append(elems, val)

		commaPos := s.i
		if err := s.skipWsAndComments(); err != nil {
			return nil, err
		}
		if s.i >= len(s.data) {
			return nil, s.syntaxError("Unterminated array", arrStart, s.i)
		}
		switch s.data[s.i] {
		case ',':
			commaPos = s.i
			s.i++
			if err := s.skipWsAndComments(); err != nil {
				return nil, err
			}
			if s.i < len(s.data) && s.data[s.i] == ']' {
				if !s.opts.AllowTrailingComma {
					return nil, s.syntaxError("Trailing comma is not allowed", commaPos, commaPos+1)
				}
				s.i++
				break arrLoop
			}
			continue
		case ']':
			s.i++
			break arrLoop
		default:
			if s.i == commaPos {
				return nil, s.syntaxErrorAt("Expecting comma", commaPos)
			}
			if s.opts.AllowMissingCommas {
				continue
			}
			return nil, s.syntaxErrorAt("Missing commas are not allowed", commaPos)
		}
	}
	if s.opts.SequenceHook != nil {
		return s.opts.SequenceHook(elems), nil
	}
	return Array(elems), nil
}
