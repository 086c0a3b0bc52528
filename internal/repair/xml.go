package repair

import (
	"encoding/xml"
	"io"
	"regexp"
	"strings"
	"sync"

	"github.com/mcncl/remedy/internal/confidence"
	"github.com/mcncl/remedy/internal/strategy"
)

var xmlRegexCache = sync.OnceValue(func() *xmlRegexes {
	return &xmlRegexes{
		entity: regexp.MustCompile(`&(amp;|lt;|gt;|quot;|apos;|#\d+;|#x[0-9a-fA-F]+;)?`),
		tag:    regexp.MustCompile(`<(/?)([A-Za-z_][\w.-]*)(?:[^<>]*?)(/?)>`),
	}
})

type xmlRegexes struct {
	entity *regexp.Regexp
	tag    *regexp.Regexp
}

// XMLRepairer escapes bare ampersands and closes dangling tags. Anything
// deeper than that is out of reach for flat fixes.
type XMLRepairer struct {
	chain *strategy.Chain
}

func NewXMLRepairer() *XMLRepairer {
	return &XMLRepairer{
		chain: strategy.NewChain(XMLValidator{}.IsValid,
			xmlEscapeAmpersands{},
			xmlCloseDanglingTags{},
		),
	}
}

func (r *XMLRepairer) Repair(content string) (string, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "", nil
	}
	return r.chain.Apply(trimmed), nil
}

func (r *XMLRepairer) NeedsRepair(content string) bool {
	return !(XMLValidator{}).IsValid(content)
}

func (r *XMLRepairer) Confidence(content string) float64 {
	return confidence.XML(content)
}

// xmlEscapeAmpersands rewrites '&' to '&amp;' unless it already starts a
// recognized entity.
type xmlEscapeAmpersands struct{}

func (xmlEscapeAmpersands) Name() string { return "xml_escape_ampersands" }

func (xmlEscapeAmpersands) Priority() int { return 80 }

func (xmlEscapeAmpersands) Apply(content string) (string, error) {
	out := xmlRegexCache().entity.ReplaceAllStringFunc(content, func(match string) string {
		if match == "&" {
			return "&amp;"
		}
		return match
	})
	return out, nil
}

// xmlCloseDanglingTags appends closing tags for elements still open at end
// of input, innermost first.
type xmlCloseDanglingTags struct{}

func (xmlCloseDanglingTags) Name() string { return "xml_close_dangling_tags" }

func (xmlCloseDanglingTags) Priority() int { return 70 }

func (xmlCloseDanglingTags) Apply(content string) (string, error) {
	var open []string
	for _, m := range xmlRegexCache().tag.FindAllStringSubmatch(content, -1) {
		closing, name, selfClosing := m[1] == "/", m[2], m[3] == "/"
		switch {
		case selfClosing:
		case closing:
			if len(open) > 0 && open[len(open)-1] == name {
				open = open[:len(open)-1]
			}
		default:
			open = append(open, name)
		}
	}
	if len(open) == 0 {
		return content, nil
	}

	var sb strings.Builder
	sb.WriteString(strings.TrimRight(content, " \t\r\n"))
	for i := len(open) - 1; i >= 0; i-- {
		sb.WriteString("</")
		sb.WriteString(open[i])
		sb.WriteString(">")
	}
	return sb.String(), nil
}

// XMLValidator checks that content tokenizes as well-formed XML with at
// least one element.
type XMLValidator struct{}

func (XMLValidator) IsValid(content string) bool {
	return len(XMLValidator{}.Validate(content)) == 0
}

func (XMLValidator) Validate(content string) []string {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return []string{"input is empty"}
	}

	decoder := xml.NewDecoder(strings.NewReader(trimmed))
	sawElement := false
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			if !sawElement {
				return []string{"no XML elements found"}
			}
			return nil
		}
		if err != nil {
			return []string{err.Error()}
		}
		if _, ok := tok.(xml.StartElement); ok {
			sawElement = true
		}
	}
}
