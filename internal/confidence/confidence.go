// Package confidence estimates how well-formed a piece of content is for
// a given format. Scores live in [0, 1]; a strict parse is the only way to
// reach exactly 1.0, everything else is a weighted sum of cheap signals.
package confidence

import (
	"encoding/csv"
	"encoding/json"
	"encoding/xml"
	"io"
	"regexp"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

var signalRegexCache = sync.OnceValue(func() *signalRegexes {
	return &signalRegexes{
		yamlKey:     regexp.MustCompile(`(?m)^\s*[\w.-]+\s*:`),
		tomlSection: regexp.MustCompile(`(?m)^\s*\[[^\]\n]+\]\s*$`),
		tomlPair:    regexp.MustCompile(`(?m)^\s*[\w.-]+\s*=`),
		iniPair:     regexp.MustCompile(`(?m)^\s*[\w.-]+\s*=`),
		mdHeader:    regexp.MustCompile(`(?m)^#{1,6} \S`),
		mdLink:      regexp.MustCompile(`\[[^\]]*\]\([^)]*\)`),
		mdList:      regexp.MustCompile(`(?m)^\s*[-*+] \S`),
	}
})

type signalRegexes struct {
	yamlKey     *regexp.Regexp
	tomlSection *regexp.Regexp
	tomlPair    *regexp.Regexp
	iniPair     *regexp.Regexp
	mdHeader    *regexp.Regexp
	mdLink      *regexp.Regexp
	mdList      *regexp.Regexp
}

// JSON scores content as JSON.
func JSON(content string) float64 {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return 0
	}
	if json.Valid([]byte(trimmed)) {
		return 1.0
	}

	score := 0.0
	if strings.ContainsRune(trimmed, '{') && balanced(trimmed, '{', '}') {
		score += 0.2
	}
	if strings.ContainsRune(trimmed, '[') && balanced(trimmed, '[', ']') {
		score += 0.2
	}
	if strings.ContainsRune(trimmed, '"') {
		score += 0.1
	}
	if strings.ContainsRune(trimmed, ':') {
		score += 0.1
	}
	if strings.ContainsRune(trimmed, ',') {
		score += 0.1
	}
	if strings.ContainsRune(trimmed, '\n') {
		score += 0.1
	}
	return clamp(score)
}

// YAML scores content as YAML.
func YAML(content string) float64 {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return 0
	}
	var v interface{}
	if yaml.Unmarshal([]byte(content), &v) == nil {
		// Nearly any text parses as a bare scalar; only a mapping or
		// sequence counts as genuinely well-formed.
		switch v.(type) {
		case map[string]interface{}, []interface{}:
			return 1.0
		}
	}

	score := 0.0
	keys := signalRegexCache().yamlKey.FindAllString(content, -1)
	if len(keys) > 0 {
		score += 0.3
	}
	if len(keys) > 1 {
		score += 0.2
	}
	if strings.HasPrefix(trimmed, "---") {
		score += 0.2
	}
	if !strings.Contains(content, "\t") {
		score += 0.1
	}
	return clamp(score)
}

// XML scores content as XML.
func XML(content string) float64 {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return 0
	}
	if xmlWellFormed(trimmed) {
		return 1.0
	}

	score := 0.0
	if strings.HasPrefix(trimmed, "<") {
		score += 0.3
	}
	if strings.Count(trimmed, "<") == strings.Count(trimmed, ">") {
		score += 0.2
	}
	if strings.Contains(trimmed, "</") {
		score += 0.2
	}
	if strings.HasPrefix(trimmed, "<?xml") {
		score += 0.1
	}
	return clamp(score)
}

// TOML scores content as TOML.
func TOML(content string) float64 {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return 0
	}
	var v map[string]interface{}
	if toml.Unmarshal([]byte(content), &v) == nil && len(v) > 0 {
		return 1.0
	}

	cache := signalRegexCache()
	score := 0.0
	if cache.tomlSection.MatchString(content) {
		score += 0.3
	}
	if cache.tomlPair.MatchString(content) {
		score += 0.3
	}
	if !strings.ContainsRune(trimmed, '{') {
		score += 0.1
	}
	return clamp(score)
}

// CSV scores content as CSV.
func CSV(content string) float64 {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return 0
	}
	if csvWellFormed(trimmed) {
		return 1.0
	}

	score := 0.0
	lines := nonEmptyLines(trimmed)
	if strings.ContainsRune(trimmed, ',') {
		score += 0.3
	}
	if len(lines) > 1 {
		score += 0.2
	}
	if len(lines) > 1 && uniformCommaCount(lines) {
		score += 0.3
	}
	return clamp(score)
}

// INI scores content as an INI file.
func INI(content string) float64 {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return 0
	}
	if iniWellFormed(trimmed) {
		return 1.0
	}

	cache := signalRegexCache()
	score := 0.0
	if cache.tomlSection.MatchString(content) {
		score += 0.3
	}
	if cache.iniPair.MatchString(content) {
		score += 0.3
	}
	for _, line := range nonEmptyLines(trimmed) {
		if strings.HasPrefix(strings.TrimSpace(line), ";") {
			score += 0.1
			break
		}
	}
	return clamp(score)
}

// Markdown scores content as Markdown. Markdown has no strict grammar, so
// the score never reaches 1.0; it tops out at 0.9.
func Markdown(content string) float64 {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return 0
	}

	cache := signalRegexCache()
	score := 0.2 // any text renders as markdown
	if cache.mdHeader.MatchString(content) {
		score += 0.3
	}
	if strings.Count(content, "```")%2 == 0 && strings.Contains(content, "```") {
		score += 0.2
	}
	if cache.mdLink.MatchString(content) {
		score += 0.1
	}
	if cache.mdList.MatchString(content) {
		score += 0.1
	}
	if score > 0.9 {
		score = 0.9
	}
	return score
}

// Generic is the format-agnostic score the best-of pipeline uses to judge
// candidates: structural JSON signals first, plain-text signals as a floor.
func Generic(content string) float64 {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return 0
	}
	if json.Valid([]byte(trimmed)) {
		return 1.0
	}

	score := 0.0
	if balanced(trimmed, '{', '}') {
		score += 0.2
	}
	if balanced(trimmed, '[', ']') {
		score += 0.2
	}
	if strings.Count(trimmed, `"`)%2 == 0 {
		score += 0.2
	}
	if strings.ContainsRune(trimmed, ':') {
		score += 0.1
	}
	if strings.ContainsRune(trimmed, ',') {
		score += 0.1
	}
	if strings.ContainsRune(trimmed, '\n') {
		score += 0.1
	}
	return clamp(score)
}

func xmlWellFormed(content string) bool {
	decoder := xml.NewDecoder(strings.NewReader(content))
	sawElement := false
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			return sawElement
		}
		if err != nil {
			return false
		}
		if _, ok := tok.(xml.StartElement); ok {
			sawElement = true
		}
	}
}

func csvWellFormed(content string) bool {
	if !strings.ContainsRune(content, ',') {
		return false
	}
	reader := csv.NewReader(strings.NewReader(content))
	records, err := reader.ReadAll()
	return err == nil && len(records) > 0
}

func iniWellFormed(content string) bool {
	sawEntry := false
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, ";") || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			sawEntry = true
			continue
		}
		if strings.Contains(line, "=") {
			sawEntry = true
			continue
		}
		return false
	}
	return sawEntry
}

func balanced(content string, open, close rune) bool {
	return strings.Count(content, string(open)) == strings.Count(content, string(close))
}

func nonEmptyLines(content string) []string {
	var lines []string
	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func uniformCommaCount(lines []string) bool {
	want := strings.Count(lines[0], ",")
	for _, line := range lines[1:] {
		if strings.Count(line, ",") != want {
			return false
		}
	}
	return true
}

func clamp(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
