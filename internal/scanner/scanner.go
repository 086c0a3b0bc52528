package scanner

import (
	"strconv"
	"unicode"
	"unicode/utf8"
)

// Scanner is a character-level cursor over malformed input. It works on a
// rune slice so multi-byte characters never split, and every read is
// bounds-checked: looking past the end yields "no character", not a panic.
type Scanner struct {
	src   []rune
	index int
}

// New creates a Scanner positioned at the start of input.
func New(input string) *Scanner {
	return &Scanner{src: []rune(input)}
}

// CharAt returns the rune at the given offset from the cursor without
// moving it. The second result is false when the position is out of range.
func (s *Scanner) CharAt(offset int) (rune, bool) {
	i := s.index + offset
	if i < 0 || i >= len(s.src) {
		return 0, false
	}
	return s.src[i], true
}

// Advance moves the cursor forward n runes. Moving past the end is
// harmless; the cursor clamps to one past the last rune.
func (s *Scanner) Advance(n int) {
	s.index += n
	if s.index > len(s.src) {
		s.index = len(s.src)
	}
}

// Pos returns the current cursor position, for snapshotting.
func (s *Scanner) Pos() int {
	return s.index
}

// Seek restores the cursor to a position previously obtained from Pos.
// This is the only way the cursor moves backwards; it exists solely for
// literal lookahead rollback.
func (s *Scanner) Seek(pos int) {
	if pos < 0 {
		pos = 0
	}
	if pos > len(s.src) {
		pos = len(s.src)
	}
	s.index = pos
}

// Len returns the total number of runes in the input.
func (s *Scanner) Len() int {
	return len(s.src)
}

// Done reports whether the cursor has consumed all input.
func (s *Scanner) Done() bool {
	return s.index >= len(s.src)
}

// SkipWhitespace advances past any run of Unicode whitespace.
func (s *Scanner) SkipWhitespace() {
	for s.index < len(s.src) && unicode.IsSpace(s.src[s.index]) {
		s.index++
	}
}

// Window returns up to n runes of input around the cursor, for log output.
func (s *Scanner) Window(n int) string {
	start := s.index - n/2
	if start < 0 {
		start = 0
	}
	end := start + n
	if end > len(s.src) {
		end = len(s.src)
	}
	return string(s.src[start:end])
}

// DecodeEscape decodes the escape sequence at the cursor, which must be
// positioned on a backslash. The sequence is consumed either way. On
// success the decoded rune is returned. A malformed \uXXXX or \xXX
// sequence returns ok=false, telling the caller to drop the sequence
// rather than abort. An unknown escape returns the escaped character
// verbatim.
func (s *Scanner) DecodeEscape() (rune, bool) {
	// Consume the backslash.
	s.Advance(1)
	ch, ok := s.CharAt(0)
	if !ok {
		// Dangling backslash at end of input: drop it.
		return 0, false
	}
	s.Advance(1)

	switch ch {
	case 't':
		return '\t', true
	case 'n':
		return '\n', true
	case 'r':
		return '\r', true
	case 'b':
		return '\b', true
	case 'f':
		return '\f', true
	case '\\':
		return '\\', true
	case '"':
		return '"', true
	case '\'':
		return '\'', true
	case 'u':
		return s.decodeHexEscape(4)
	case 'x':
		return s.decodeHexEscape(2)
	default:
		// Unknown escape: keep the character as-is.
		return ch, true
	}
}

// decodeHexEscape reads exactly n hex digits after \u or \x. Too few
// digits, a non-hex digit, or an invalid code point all report failure;
// whatever digits were consumed stay consumed.
func (s *Scanner) decodeHexEscape(n int) (rune, bool) {
	digits := make([]rune, 0, n)
	for i := 0; i < n; i++ {
		ch, ok := s.CharAt(0)
		if !ok || !isHexDigit(ch) {
			return 0, false
		}
		digits = append(digits, ch)
		s.Advance(1)
	}
	code, err := strconv.ParseUint(string(digits), 16, 32)
	if err != nil {
		return 0, false
	}
	r := rune(code)
	if !utf8.ValidRune(r) {
		return 0, false
	}
	return r, true
}

func isHexDigit(ch rune) bool {
	return (ch >= '0' && ch <= '9') || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}
