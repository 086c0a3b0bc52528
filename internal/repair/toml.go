package repair

import (
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/mcncl/remedy/internal/confidence"
	"github.com/mcncl/remedy/internal/strategy"
)

var tomlRegexCache = sync.OnceValue(func() *tomlRegexes {
	return &tomlRegexes{
		openSection: regexp.MustCompile(`(?m)^(\s*)\[([^\]\n]+?)\s*$`),
		keyValue:    regexp.MustCompile(`^(\s*[\w.-]+\s*=\s*)(.+?)\s*$`),
	}
})

type tomlRegexes struct {
	openSection *regexp.Regexp
	keyValue    *regexp.Regexp
}

// TOMLRepairer closes unterminated section headers and quotes bare string
// values.
type TOMLRepairer struct {
	chain *strategy.Chain
}

func NewTOMLRepairer() *TOMLRepairer {
	return &TOMLRepairer{
		chain: strategy.NewChain(TOMLValidator{}.IsValid,
			strategy.NewRegex("toml_close_section", tomlRegexCache().openSection, "${1}[${2}]", 80),
			tomlQuoteBareValues{},
		),
	}
}

func (r *TOMLRepairer) Repair(content string) (string, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "", nil
	}
	return r.chain.Apply(content), nil
}

func (r *TOMLRepairer) NeedsRepair(content string) bool {
	return !(TOMLValidator{}).IsValid(content)
}

func (r *TOMLRepairer) Confidence(content string) float64 {
	return confidence.TOML(content)
}

// tomlQuoteBareValues wraps unquoted string values in double quotes,
// leaving booleans, numbers, dates, arrays and tables alone.
type tomlQuoteBareValues struct{}

func (tomlQuoteBareValues) Name() string { return "toml_quote_bare_values" }

func (tomlQuoteBareValues) Priority() int { return 70 }

func (tomlQuoteBareValues) Apply(content string) (string, error) {
	re := tomlRegexCache().keyValue
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		m := re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		value := m[2]
		if tomlValueIsSound(value) {
			continue
		}
		lines[i] = m[1] + strconv.Quote(value)
	}
	return strings.Join(lines, "\n"), nil
}

func tomlValueIsSound(value string) bool {
	if value == "" {
		return false
	}
	switch value[0] {
	case '"', '\'', '[', '{':
		return true
	}
	if value == "true" || value == "false" {
		return true
	}
	if _, err := strconv.ParseFloat(value, 64); err == nil {
		return true
	}
	// Digit-led values are dates, times or numbers in TOML's own syntax;
	// quoting them would change their type.
	if value[0] >= '0' && value[0] <= '9' {
		return true
	}
	return false
}

// TOMLValidator checks content against the strict TOML grammar.
type TOMLValidator struct{}

func (TOMLValidator) IsValid(content string) bool {
	if strings.TrimSpace(content) == "" {
		return false
	}
	var v map[string]interface{}
	return toml.Unmarshal([]byte(content), &v) == nil
}

func (TOMLValidator) Validate(content string) []string {
	if strings.TrimSpace(content) == "" {
		return []string{"input is empty"}
	}
	var v map[string]interface{}
	if err := toml.Unmarshal([]byte(content), &v); err != nil {
		return []string{err.Error()}
	}
	return nil
}
