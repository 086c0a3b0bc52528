// Package parser implements a recovering recursive-descent JSON parser.
// Instead of aborting on malformed input it corrects locally: missing
// quotes are inferred, stray commas skipped, unterminated structures
// closed at end of input. Only two conditions are unrecoverable: a
// character that cannot start any value, and a numeric token that is
// neither integer nor float.
package parser

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"unicode"

	"github.com/mcncl/remedy/internal/errors"
	"github.com/mcncl/remedy/internal/models"
	"github.com/mcncl/remedy/internal/scanner"
)

// DefaultMaxDepth caps recursion so pathological input cannot blow the
// stack. 512 levels is far beyond anything an LLM emits.
const DefaultMaxDepth = 512

// Parser walks malformed JSON with a context-aware scanner and builds a
// models.Value tree.
type Parser struct {
	scan     *scanner.Scanner
	ctx      *scanner.ContextStack
	depth    int
	maxDepth int
	logger   *slog.Logger
}

// Option configures a Parser.
type Option func(*Parser)

// WithMaxDepth overrides the nesting depth cap. Values below 1 are ignored.
func WithMaxDepth(n int) Option {
	return func(p *Parser) {
		if n >= 1 {
			p.maxDepth = n
		}
	}
}

// WithLogger attaches a logger for recovery decisions. Nil means silent.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Parser) {
		p.logger = logger
	}
}

// New creates a Parser over the given input.
func New(input string, opts ...Option) *Parser {
	p := &Parser{
		scan:     scanner.New(input),
		ctx:      scanner.NewContextStack(),
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseString parses input with default options and returns the recovered
// value tree.
func ParseString(input string) (models.Value, error) {
	return New(input).Parse()
}

// Parse parses a single value from the input. Trailing content after the
// value is ignored; trimming it beforehand is the pipeline's job.
func (p *Parser) Parse() (models.Value, error) {
	p.scan.SkipWhitespace()
	if p.scan.Done() {
		return nil, errors.NewParseError("no value in input", errors.ErrEmptyInput)
	}
	return p.parseValue()
}

// parseValue dispatches on the first significant character.
func (p *Parser) parseValue() (models.Value, error) {
	for {
		p.scan.SkipWhitespace()
		ch, ok := p.scan.CharAt(0)
		if !ok {
			return nil, errors.NewParseError("unexpected end of input", errors.ErrUnexpectedCharacter)
		}

		if ch == '#' || (ch == '/' && p.peekComment()) {
			p.skipComment()
			continue
		}

		switch {
		case ch == '{':
			return p.parseObject()
		case ch == '[':
			return p.parseArray()
		case ch == '"' || ch == '\'':
			return p.parseString()
		case ch == '-' || unicode.IsDigit(ch):
			return p.parseNumber()
		case unicode.IsLetter(ch) || ch == '_':
			// Words spelling a literal become one; anything else is read
			// as an unquoted string.
			if v, ok := p.tryBooleanOrNull(); ok {
				return v, nil
			}
			return p.parseString()
		default:
			return nil, errors.NewParseError(
				fmt.Sprintf("unexpected character %q at position %d", ch, p.scan.Pos()),
				errors.ErrUnexpectedCharacter)
		}
	}
}

func (p *Parser) parseObject() (models.Value, error) {
	if p.depth >= p.maxDepth {
		return nil, errors.NewParseError("object nesting exceeds depth limit", errors.ErrTooDeeplyNested)
	}
	p.depth++
	defer func() { p.depth-- }()

	p.scan.Advance(1) // consume '{'
	p.ctx.Push(scanner.ContextObject)
	defer p.ctx.Pop()

	obj := models.Object{}
	for {
		p.scan.SkipWhitespace()
		ch, ok := p.scan.CharAt(0)
		if !ok {
			// Unterminated object: close it here.
			p.logf("closing unterminated object", "near", p.scan.Window(24))
			break
		}
		if ch == '}' {
			p.scan.Advance(1)
			break
		}
		if ch == ',' {
			// Stray separator before a key.
			p.scan.Advance(1)
			continue
		}

		p.ctx.Push(scanner.ContextObjectKey)
		keyVal, err := p.parseString()
		p.ctx.Pop()
		if err != nil {
			return nil, err
		}
		key, _ := keyVal.(string)
		if key == "" {
			// No key could be recovered here; skip one character and retry.
			p.scan.Advance(1)
			continue
		}

		p.scan.SkipWhitespace()
		if ch, ok := p.scan.CharAt(0); ok && ch == ':' {
			p.scan.Advance(1)
		} else {
			// Missing colon is tolerated.
			p.logf("missing colon after key", "key", key)
		}

		p.ctx.Push(scanner.ContextObjectValue)
		val, err := p.parseValue()
		p.ctx.Pop()
		if err != nil {
			return nil, err
		}
		obj[key] = val // duplicate keys: last wins

		p.scan.SkipWhitespace()
		if ch, ok := p.scan.CharAt(0); ok && ch == ',' {
			p.scan.Advance(1)
		}
	}
	return obj, nil
}

func (p *Parser) parseArray() (models.Value, error) {
	if p.depth >= p.maxDepth {
		return nil, errors.NewParseError("array nesting exceeds depth limit", errors.ErrTooDeeplyNested)
	}
	p.depth++
	defer func() { p.depth-- }()

	p.scan.Advance(1) // consume '['
	p.ctx.Push(scanner.ContextArray)
	defer p.ctx.Pop()

	arr := models.Array{}
	for {
		p.scan.SkipWhitespace()
		ch, ok := p.scan.CharAt(0)
		if !ok {
			// Unterminated array: close it here.
			p.logf("closing unterminated array", "near", p.scan.Window(24))
			break
		}
		if ch == ']' {
			p.scan.Advance(1)
			break
		}
		if ch == ',' {
			p.scan.Advance(1)
			continue
		}

		val, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		arr = append(arr, val)
	}
	return arr, nil
}

// parseString reads a string value, inferring missing quotes from context.
// In ObjectKey context a bare word becomes an unquoted key; elsewhere a
// bare word is first tried as a boolean/null literal.
func (p *Parser) parseString() (models.Value, error) {
	p.scan.SkipWhitespace()

	// Skip leading characters that can neither open nor belong to a string.
	for {
		ch, ok := p.scan.CharAt(0)
		if !ok {
			return "", nil
		}
		if ch == '"' || ch == '\'' || isWordChar(ch) {
			break
		}
		p.scan.Advance(1)
	}

	ch, _ := p.scan.CharAt(0)
	cur, _ := p.ctx.Current()

	delim := '"'
	missing := false
	switch ch {
	case '"':
		p.scan.Advance(1)
	case '\'':
		delim = '\''
		p.scan.Advance(1)
	default:
		if cur != scanner.ContextObjectKey {
			if v, ok := p.tryBooleanOrNull(); ok {
				return v, nil
			}
		}
		missing = true
		p.logf("inferring missing quotes", "context", cur.String(), "near", p.scan.Window(24))
	}

	var sb strings.Builder
scan:
	for {
		ch, ok := p.scan.CharAt(0)
		if !ok {
			break
		}

		if ch == '\\' {
			if dec, ok := p.scan.DecodeEscape(); ok {
				sb.WriteRune(dec)
			} else {
				p.logf("dropping invalid escape sequence", "near", p.scan.Window(24))
			}
			continue
		}

		if missing {
			// Quote-less strings end where the surrounding structure
			// resumes.
			switch cur {
			case scanner.ContextObjectKey:
				if ch == ':' || ch == ',' || ch == '}' || unicode.IsSpace(ch) {
					break scan
				}
			case scanner.ContextObjectValue:
				if ch == ',' || ch == '}' {
					break scan
				}
			case scanner.ContextArray:
				if ch == ',' || ch == ']' {
					break scan
				}
			}
		} else if ch == delim {
			if p.validStringEnd() {
				p.scan.Advance(1)
				break scan
			}
			// Quote inside the value: keep it as content.
			p.logf("keeping embedded quote", "context", cur.String(), "near", p.scan.Window(24))
		}

		sb.WriteRune(ch)
		p.scan.Advance(1)
	}

	result := sb.String()
	if missing {
		result = strings.TrimRight(result, " \t\r\n")
	}
	return result, nil
}

// validStringEnd decides whether the closing quote under the cursor really
// ends the string. It looks past whitespace for the character the current
// context requires next: ':' after a key, ',' or '}' after an object
// value, ',' or ']' after an array element. At root any quote ends the
// string.
func (p *Parser) validStringEnd() bool {
	cur, _ := p.ctx.Current()
	for off := 1; ; off++ {
		ch, ok := p.scan.CharAt(off)
		if !ok {
			// End of input right after the quote.
			switch cur {
			case scanner.ContextObjectKey, scanner.ContextArray:
				return false
			default:
				return true
			}
		}
		if unicode.IsSpace(ch) {
			continue
		}
		switch cur {
		case scanner.ContextObjectKey:
			// ':' is the normal case; the rest cover a missing colon, where
			// the key still has to end before the value or the brace.
			return ch == ':' || ch == ',' || ch == '}' || ch == '"' || ch == '\''
		case scanner.ContextObjectValue:
			return ch == ',' || ch == '}'
		case scanner.ContextArray:
			return ch == ',' || ch == ']'
		default:
			return true
		}
	}
}

// parseNumber reads a numeric token and parses it as int64 first, float64
// second. Anything else is fatal.
func (p *Parser) parseNumber() (models.Value, error) {
	var tok []rune
	for {
		ch, ok := p.scan.CharAt(0)
		if !ok {
			break
		}
		if unicode.IsDigit(ch) || ch == '-' || ch == '+' || ch == '.' || ch == 'e' || ch == 'E' {
			tok = append(tok, ch)
			p.scan.Advance(1)
			continue
		}
		break
	}

	text := string(tok)
	if i, err := strconv.ParseInt(text, 10, 64); err == nil {
		return i, nil
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		return f, nil
	}
	return nil, errors.NewNumberError(
		fmt.Sprintf("invalid numeric token %q", text), errors.ErrInvalidNumber)
}

// tryBooleanOrNull attempts to read a boolean or null literal, accepting
// any capitalization (True, FALSE, None). On failure the cursor rolls
// back to its snapshot and the token is left for string parsing.
func (p *Parser) tryBooleanOrNull() (models.Value, bool) {
	snapshot := p.scan.Pos()

	var word []rune
	for {
		ch, ok := p.scan.CharAt(0)
		if !ok || !unicode.IsLetter(ch) {
			break
		}
		word = append(word, ch)
		p.scan.Advance(1)
	}

	switch strings.ToLower(string(word)) {
	case "true":
		return true, true
	case "false":
		return false, true
	case "null", "none", "nil":
		return nil, true
	}

	p.scan.Seek(snapshot)
	return nil, false
}

// peekComment reports whether a '/' under the cursor opens a line comment.
func (p *Parser) peekComment() bool {
	next, ok := p.scan.CharAt(1)
	return ok && next == '/'
}

// skipComment consumes a line comment through its newline. Parsing resumes
// on the same context stack: a comment between tokens does not reset where
// we are in the structure.
func (p *Parser) skipComment() {
	p.logf("skipping comment", "near", p.scan.Window(24))
	for {
		ch, ok := p.scan.CharAt(0)
		if !ok {
			return
		}
		p.scan.Advance(1)
		if ch == '\n' {
			return
		}
	}
}

func (p *Parser) logf(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}

func isWordChar(ch rune) bool {
	return unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '_'
}
