package repair

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/mcncl/remedy/internal/errors"
)

// Format names a supported content format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatXML      Format = "xml"
	FormatTOML     Format = "toml"
	FormatCSV      Format = "csv"
	FormatINI      Format = "ini"
	FormatMarkdown Format = "markdown"
)

// ParseFormat resolves a user-supplied format name.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "xml":
		return FormatXML, nil
	case "toml":
		return FormatTOML, nil
	case "csv":
		return FormatCSV, nil
	case "ini":
		return FormatINI, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	}
	return "", errors.NewConfigError(fmt.Sprintf("unknown format '%s'", name), errors.ErrUnknownFormat)
}

// ForFormat returns the repairer for a format.
func ForFormat(f Format) Repairer {
	switch f {
	case FormatYAML:
		return NewYAMLRepairer()
	case FormatXML:
		return NewXMLRepairer()
	case FormatTOML:
		return NewTOMLRepairer()
	case FormatCSV:
		return NewCSVRepairer()
	case FormatINI:
		return NewINIRepairer()
	case FormatMarkdown:
		return NewMarkdownRepairer()
	default:
		return NewJSONRepairer()
	}
}

// ValidatorFor returns the strict validator for a format.
func ValidatorFor(f Format) Validator {
	switch f {
	case FormatYAML:
		return YAMLValidator{}
	case FormatXML:
		return XMLValidator{}
	case FormatTOML:
		return TOMLValidator{}
	case FormatCSV:
		return CSVValidator{}
	case FormatINI:
		return INIValidator{}
	case FormatMarkdown:
		return MarkdownValidator{}
	default:
		return JSONValidator{}
	}
}

var sectionHeaderRe = sync.OnceValue(func() *regexp.Regexp {
	return regexp.MustCompile(`^\[[\w ."'-]+\]?\s*$`)
})

// Detect sniffs the format of content with a fixed priority list; the
// first match wins and the fallback is Markdown, the most permissive
// format. Detection is a routing decision, not validation: malformed
// content should still land on the repairer most likely to fix it.
func Detect(content string) Format {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return FormatJSON
	}

	firstLine := trimmed
	if i := strings.IndexByte(firstLine, '\n'); i >= 0 {
		firstLine = firstLine[:i]
	}
	sectioned := sectionHeaderRe().MatchString(strings.TrimSpace(firstLine))

	switch {
	case looksLikeJSON(trimmed, sectioned):
		return FormatJSON
	case strings.HasPrefix(trimmed, "<"):
		return FormatXML
	case sectioned && strings.Contains(trimmed, "="):
		return FormatTOML
	case sectioned:
		return FormatINI
	case looksLikeMarkdown(trimmed):
		return FormatMarkdown
	case looksLikeCSV(trimmed):
		return FormatCSV
	case strings.Contains(trimmed, ":"):
		return FormatYAML
	default:
		return FormatMarkdown
	}
}

func looksLikeJSON(trimmed string, sectioned bool) bool {
	if strings.HasPrefix(trimmed, "{") {
		return true
	}
	if !strings.HasPrefix(trimmed, "[") {
		// LLM output often wraps the payload in prose; a brace later in
		// the text with JSON punctuation around it still routes here.
		return strings.ContainsRune(trimmed, '{') && strings.ContainsRune(trimmed, ':')
	}
	// A leading '[' is ambiguous between a JSON array and a section
	// header. Section headers never carry commas or colons on line one.
	return !sectioned || strings.ContainsAny(trimmed, ",:") && !strings.Contains(trimmed, "=")
}

func looksLikeMarkdown(trimmed string) bool {
	return strings.HasPrefix(trimmed, "# ") ||
		strings.HasPrefix(trimmed, "## ") ||
		strings.Contains(trimmed, "```") ||
		strings.Contains(trimmed, "**")
}

func looksLikeCSV(trimmed string) bool {
	lines := strings.Split(trimmed, "\n")
	if len(lines) < 2 {
		return false
	}
	seen := 0
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if !strings.Contains(line, ",") {
			return false
		}
		seen++
	}
	return seen >= 2
}
