package strategy

import (
	"regexp"
	"strings"
	"sync"
	"unicode"
)

// Chain priorities for the JSON strategies. Boundary trimming must run
// before everything else so the other heuristics see only the payload.
const (
	PriorityTrimTrailingContent = 100
	PriorityFixTrailingCommas   = 90
	PriorityFixSingleQuotes     = 85
	PriorityAddMissingQuotes    = 80
	PriorityFixMalformedNumbers = 75
	PriorityFixBooleanNull      = 70
	PriorityAddMissingBraces    = 60
)

// jsonRegexes holds every pattern the JSON strategies need, compiled once.
type jsonRegexes struct {
	trailingCommas *regexp.Regexp
	singleQuoted   *regexp.Regexp
	unquotedKeys   *regexp.Regexp
	leadingZeros   *regexp.Regexp
	trailingDot    *regexp.Regexp
	extraDots      *regexp.Regexp
	literals       *regexp.Regexp
}

var jsonRegexCache = sync.OnceValue(func() *jsonRegexes {
	return &jsonRegexes{
		trailingCommas: regexp.MustCompile(`,(\s*[}\]])`),
		singleQuoted:   regexp.MustCompile(`'([^']*)'`),
		unquotedKeys:   regexp.MustCompile(`([{,]\s*)([A-Za-z_]\w*)\s*:`),
		leadingZeros:   regexp.MustCompile(`([:,\[]\s*)0+(\d)`),
		trailingDot:    regexp.MustCompile(`(\d+)\.(\s*[,}\]])`),
		extraDots:      regexp.MustCompile(`(\d+\.\d+)(?:\.\d+)+`),
		literals:       regexp.MustCompile(`\b(True|TRUE|False|FALSE|None|NONE|Null|NULL|nil|undefined|Undefined|UNDEFINED)\b`),
	}
})

// JSONStrategies returns the standard chain for JSON repair.
func JSONStrategies() []Strategy {
	return []Strategy{
		TrimTrailingContent{},
		FixTrailingCommas{},
		FixSingleQuotes{},
		AddMissingQuotes{},
		FixMalformedNumbers{},
		FixBooleanNull{},
		AddMissingBraces{},
	}
}

// TrimTrailingContent cuts prose and markdown around the first complete
// top-level JSON value. LLM output like "Here is the JSON: {...} Hope this
// helps!" reduces to the payload.
type TrimTrailingContent struct{}

func (TrimTrailingContent) Name() string { return "trim_trailing_content" }

func (TrimTrailingContent) Priority() int { return PriorityTrimTrailingContent }

func (TrimTrailingContent) Apply(content string) (string, error) {
	runes := []rune(content)

	start := -1
	for i, ch := range runes {
		if ch == '{' || ch == '[' {
			start = i
			break
		}
	}
	if start == -1 {
		return content, nil
	}

	braces, brackets := 0, 0
	inString, escape := false, false
	for i := start; i < len(runes); i++ {
		ch := runes[i]
		if escape {
			escape = false
			continue
		}
		switch {
		case inString && ch == '\\':
			escape = true
			continue
		case ch == '"':
			inString = !inString
			continue
		case inString:
			continue
		case ch == '{':
			braces++
		case ch == '}':
			braces--
		case ch == '[':
			brackets++
		case ch == ']':
			brackets--
		}

		if braces == 0 && brackets == 0 && i > start {
			// Candidate end. Look past whitespace: a comma or another
			// opener means the structure continues, so this is not the
			// boundary.
			j := i + 1
			for j < len(runes) && unicode.IsSpace(runes[j]) {
				j++
			}
			if j < len(runes) {
				next := runes[j]
				if next == ',' || next == '{' || next == '[' {
					continue
				}
			}
			return string(runes[start : i+1]), nil
		}
	}

	// Never balanced, likely truncated output. Still cut the leading
	// prose so the closing strategies see only the payload.
	return string(runes[start:]), nil
}

// FixTrailingCommas removes commas sitting directly before a closing
// brace or bracket.
type FixTrailingCommas struct{}

func (FixTrailingCommas) Name() string { return "fix_trailing_commas" }

func (FixTrailingCommas) Priority() int { return PriorityFixTrailingCommas }

func (FixTrailingCommas) Apply(content string) (string, error) {
	re := jsonRegexCache().trailingCommas
	out := re.ReplaceAllString(content, "$1")
	// ",,}" needs a second pass; the matches overlap.
	for out != content {
		content = out
		out = re.ReplaceAllString(content, "$1")
	}
	return out, nil
}

// FixSingleQuotes converts single-quoted strings to double-quoted ones.
type FixSingleQuotes struct{}

func (FixSingleQuotes) Name() string { return "fix_single_quotes" }

func (FixSingleQuotes) Priority() int { return PriorityFixSingleQuotes }

func (FixSingleQuotes) Apply(content string) (string, error) {
	return jsonRegexCache().singleQuoted.ReplaceAllString(content, `"$1"`), nil
}

// AddMissingQuotes wraps bare object keys in double quotes.
type AddMissingQuotes struct{}

func (AddMissingQuotes) Name() string { return "add_missing_quotes" }

func (AddMissingQuotes) Priority() int { return PriorityAddMissingQuotes }

func (AddMissingQuotes) Apply(content string) (string, error) {
	return jsonRegexCache().unquotedKeys.ReplaceAllString(content, `${1}"${2}":`), nil
}

// FixMalformedNumbers cleans up leading zeros, dangling decimal points and
// numbers with more than one decimal point.
type FixMalformedNumbers struct{}

func (FixMalformedNumbers) Name() string { return "fix_malformed_numbers" }

func (FixMalformedNumbers) Priority() int { return PriorityFixMalformedNumbers }

func (FixMalformedNumbers) Apply(content string) (string, error) {
	cache := jsonRegexCache()
	out := cache.leadingZeros.ReplaceAllString(content, "${1}${2}")
	out = cache.trailingDot.ReplaceAllString(out, "${1}${2}")
	out = cache.extraDots.ReplaceAllString(out, "$1")
	return out, nil
}

// FixBooleanNull rewrites Python and JavaScript literals (True, None,
// undefined, ...) to their JSON equivalents.
type FixBooleanNull struct{}

func (FixBooleanNull) Name() string { return "fix_boolean_null" }

func (FixBooleanNull) Priority() int { return PriorityFixBooleanNull }

func (FixBooleanNull) Apply(content string) (string, error) {
	out := jsonRegexCache().literals.ReplaceAllStringFunc(content, func(word string) string {
		switch strings.ToLower(word) {
		case "true":
			return "true"
		case "false":
			return "false"
		default:
			return "null"
		}
	})
	return out, nil
}

// AddMissingBraces appends the closers for any structures still open at
// end of input, innermost first.
type AddMissingBraces struct{}

func (AddMissingBraces) Name() string { return "add_missing_braces" }

func (AddMissingBraces) Priority() int { return PriorityAddMissingBraces }

func (AddMissingBraces) Apply(content string) (string, error) {
	var open []rune
	inString, escape := false, false
	for _, ch := range content {
		if escape {
			escape = false
			continue
		}
		switch {
		case inString && ch == '\\':
			escape = true
		case ch == '"':
			inString = !inString
		case inString:
		case ch == '{':
			open = append(open, '}')
		case ch == '[':
			open = append(open, ']')
		case ch == '}' || ch == ']':
			if len(open) > 0 && open[len(open)-1] == ch {
				open = open[:len(open)-1]
			}
		}
	}
	if len(open) == 0 {
		return content, nil
	}

	var sb strings.Builder
	sb.WriteString(strings.TrimRight(content, " \t\r\n"))
	if inString {
		// An unterminated string has to close before its structure can.
		sb.WriteRune('"')
	}
	for i := len(open) - 1; i >= 0; i-- {
		sb.WriteRune(open[i])
	}
	return sb.String(), nil
}
