// Package strategy defines the repair strategy contract and the two
// policies for running a set of strategies: a sequential chain and a
// concurrent best-of fan-out.
package strategy

import "regexp"

// Strategy is a single text-to-text repair heuristic. Apply never mutates
// shared state; the same Strategy value can run concurrently.
type Strategy interface {
	// Name identifies the strategy in logs.
	Name() string
	// Apply returns the (possibly) repaired content. A failed strategy
	// returns an error and the pipeline moves on; it never aborts a repair.
	Apply(content string) (string, error)
	// Priority orders strategies; higher runs earlier.
	Priority() int
}

// Regex is a Strategy backed by a single compiled substitution. Most
// format-specific fixes and all user-defined rules take this shape.
type Regex struct {
	name        string
	re          *regexp.Regexp
	replacement string
	priority    int
}

// NewRegex builds a substitution strategy from an already compiled pattern.
func NewRegex(name string, re *regexp.Regexp, replacement string, priority int) Regex {
	return Regex{name: name, re: re, replacement: replacement, priority: priority}
}

func (r Regex) Name() string { return r.name }

func (r Regex) Priority() int { return r.priority }

func (r Regex) Apply(content string) (string, error) {
	return r.re.ReplaceAllString(content, r.replacement), nil
}
