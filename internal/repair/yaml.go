package repair

import (
	"regexp"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/mcncl/remedy/internal/confidence"
	"github.com/mcncl/remedy/internal/strategy"
)

var yamlRegexCache = sync.OnceValue(func() *yamlRegexes {
	return &yamlRegexes{
		leadingTabs:   regexp.MustCompile(`(?m)^\t+`),
		tightColon:    regexp.MustCompile(`(?m)^(\s*[A-Za-z_][\w.-]*):(\S)`),
		tightListDash: regexp.MustCompile(`(?m)^(\s*)-(\S)`),
	}
})

type yamlRegexes struct {
	leadingTabs   *regexp.Regexp
	tightColon    *regexp.Regexp
	tightListDash *regexp.Regexp
}

// YAMLRepairer applies flat text fixes for the YAML mistakes LLMs make
// most: tab indentation, missing space after a key's colon, missing space
// after a list dash. No structural parsing.
type YAMLRepairer struct {
	chain *strategy.Chain
}

func NewYAMLRepairer() *YAMLRepairer {
	cache := yamlRegexCache()
	return &YAMLRepairer{
		chain: strategy.NewChain(YAMLValidator{}.IsValid,
			yamlTabIndent{},
			strategy.NewRegex("yaml_space_after_colon", cache.tightColon, "${1}: ${2}", 80),
			strategy.NewRegex("yaml_space_after_dash", cache.tightListDash, "${1}- ${2}", 70),
		),
	}
}

func (r *YAMLRepairer) Repair(content string) (string, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "", nil
	}
	return r.chain.Apply(content), nil
}

func (r *YAMLRepairer) NeedsRepair(content string) bool {
	return !(YAMLValidator{}).IsValid(content)
}

func (r *YAMLRepairer) Confidence(content string) float64 {
	return confidence.YAML(content)
}

// yamlTabIndent rewrites tab indentation to two spaces per tab. YAML
// forbids tabs in indentation outright.
type yamlTabIndent struct{}

func (yamlTabIndent) Name() string { return "yaml_tab_indent" }

func (yamlTabIndent) Priority() int { return 90 }

func (yamlTabIndent) Apply(content string) (string, error) {
	out := yamlRegexCache().leadingTabs.ReplaceAllStringFunc(content, func(tabs string) string {
		return strings.Repeat("  ", len(tabs))
	})
	return out, nil
}

// YAMLValidator checks content against the strict YAML grammar. Almost
// any text parses as a bare YAML scalar, so validity additionally requires
// a mapping or sequence at the top; that is what structured LLM output
// looks like when it is actually intact.
type YAMLValidator struct{}

func (YAMLValidator) IsValid(content string) bool {
	return len(YAMLValidator{}.Validate(content)) == 0
}

func (YAMLValidator) Validate(content string) []string {
	if strings.TrimSpace(content) == "" {
		return []string{"input is empty"}
	}
	var v interface{}
	if err := yaml.Unmarshal([]byte(content), &v); err != nil {
		return []string{err.Error()}
	}
	switch v.(type) {
	case map[string]interface{}, []interface{}:
		return nil
	}
	return []string{"top-level value is a bare scalar, expected a mapping or sequence"}
}
