package repair

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/mcncl/remedy/internal/confidence"
	"github.com/mcncl/remedy/internal/strategy"
)

var markdownRegexCache = sync.OnceValue(func() *markdownRegexes {
	return &markdownRegexes{
		tightHeader: regexp.MustCompile("(?m)^(#{1,6})([^#\\s])"),
		fenceLine:   regexp.MustCompile("(?m)^\\s*```"),
	}
})

type markdownRegexes struct {
	tightHeader *regexp.Regexp
	fenceLine   *regexp.Regexp
}

// MarkdownRepairer fixes headers missing the space after their hashes and
// closes an unterminated code fence. Markdown is the fallback format, so
// this repairer must accept anything.
type MarkdownRepairer struct {
	chain *strategy.Chain
}

func NewMarkdownRepairer() *MarkdownRepairer {
	return &MarkdownRepairer{
		chain: strategy.NewChain(MarkdownValidator{}.IsValid,
			strategy.NewRegex("markdown_header_space", markdownRegexCache().tightHeader, "${1} ${2}", 80),
			markdownCloseFence{},
		),
	}
}

func (r *MarkdownRepairer) Repair(content string) (string, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "", nil
	}
	return r.chain.Apply(content), nil
}

func (r *MarkdownRepairer) NeedsRepair(content string) bool {
	return !(MarkdownValidator{}).IsValid(content)
}

func (r *MarkdownRepairer) Confidence(content string) float64 {
	return confidence.Markdown(content)
}

// markdownCloseFence appends a closing fence when an odd number of fence
// lines leaves a code block open.
type markdownCloseFence struct{}

func (markdownCloseFence) Name() string { return "markdown_close_fence" }

func (markdownCloseFence) Priority() int { return 70 }

func (markdownCloseFence) Apply(content string) (string, error) {
	fences := markdownRegexCache().fenceLine.FindAllString(content, -1)
	if len(fences)%2 == 0 {
		return content, nil
	}
	return strings.TrimRight(content, "\n") + "\n```", nil
}

// MarkdownValidator has no strict grammar to check against; it flags only
// the structural problems the repairer knows how to fix.
type MarkdownValidator struct{}

func (MarkdownValidator) IsValid(content string) bool {
	return len(MarkdownValidator{}.Validate(content)) == 0
}

func (MarkdownValidator) Validate(content string) []string {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return []string{"input is empty"}
	}

	var problems []string
	cache := markdownRegexCache()
	if cache.tightHeader.MatchString(content) {
		problems = append(problems, "header missing space after '#'")
	}
	if n := len(cache.fenceLine.FindAllString(content, -1)); n%2 != 0 {
		problems = append(problems, fmt.Sprintf("unclosed code fence (%d fence markers)", n))
	}
	return problems
}
