package repair

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/mcncl/remedy/internal/confidence"
	"github.com/mcncl/remedy/internal/strategy"
)

var iniRegexCache = sync.OnceValue(func() *iniRegexes {
	return &iniRegexes{
		openSection:  regexp.MustCompile(`(?m)^(\s*)\[([^\]\n]+?)\s*$`),
		missingEqual: regexp.MustCompile(`(?m)^(\s*[\w.-]+)[ \t]+([^=\s;#\[][^\n]*?)\s*$`),
	}
})

type iniRegexes struct {
	openSection  *regexp.Regexp
	missingEqual *regexp.Regexp
}

// INIRepairer closes unterminated section headers and restores a missing
// '=' between a key and its value.
type INIRepairer struct {
	chain *strategy.Chain
}

func NewINIRepairer() *INIRepairer {
	cache := iniRegexCache()
	return &INIRepairer{
		chain: strategy.NewChain(INIValidator{}.IsValid,
			strategy.NewRegex("ini_close_section", cache.openSection, "${1}[${2}]", 80),
			strategy.NewRegex("ini_missing_equals", cache.missingEqual, "${1} = ${2}", 70),
		),
	}
}

func (r *INIRepairer) Repair(content string) (string, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "", nil
	}
	return r.chain.Apply(content), nil
}

func (r *INIRepairer) NeedsRepair(content string) bool {
	return !(INIValidator{}).IsValid(content)
}

func (r *INIRepairer) Confidence(content string) float64 {
	return confidence.INI(content)
}

// INIValidator accepts content where every significant line is a section
// header, a key=value pair, or a comment.
type INIValidator struct{}

func (INIValidator) IsValid(content string) bool {
	return len(INIValidator{}.Validate(content)) == 0
}

func (INIValidator) Validate(content string) []string {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return []string{"input is empty"}
	}

	var problems []string
	sawEntry := false
	for n, line := range strings.Split(trimmed, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, ";") || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") {
			if !strings.HasSuffix(line, "]") {
				problems = append(problems, fmt.Sprintf("line %d: unterminated section header", n+1))
				continue
			}
			sawEntry = true
			continue
		}
		if strings.Contains(line, "=") {
			sawEntry = true
			continue
		}
		problems = append(problems, fmt.Sprintf("line %d: neither section header nor key=value", n+1))
	}
	if !sawEntry && len(problems) == 0 {
		problems = append(problems, "no sections or key=value pairs found")
	}
	return problems
}
