// Package rules loads user-defined repair strategies from a YAML file.
// Each rule is a regex substitution that joins the JSON chain alongside
// the built-in strategies.
package rules

import (
	"fmt"
	"os"
	"regexp"

	"github.com/iancoleman/strcase"
	"gopkg.in/yaml.v3"

	"github.com/mcncl/remedy/internal/errors"
	"github.com/mcncl/remedy/internal/strategy"
)

// DefaultPriority places custom rules after the built-in strategies
// unless the rule says otherwise.
const DefaultPriority = 50

// ruleSpec is the YAML shape of a single rule. Priority is a pointer so
// an explicit 0 is distinguishable from an omitted field.
type ruleSpec struct {
	Name        string `yaml:"name"`
	Pattern     string `yaml:"pattern"`
	Replacement string `yaml:"replacement"`
	Priority    *int   `yaml:"priority"`
}

// ruleFile is the YAML shape of a rules file.
type ruleFile struct {
	Rules []ruleSpec `yaml:"rules"`
}

// Load reads a rules file and returns the compiled strategies.
func Load(path string) ([]strategy.Strategy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewConfigError(fmt.Sprintf("failed to read rules file '%s'", path), err)
	}
	return Parse(data)
}

// Parse compiles rules from YAML. Every pattern compiles eagerly: a rule
// that cannot compile fails the whole load, rather than surfacing later in
// the middle of a repair.
func Parse(data []byte) ([]strategy.Strategy, error) {
	var file ruleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.NewConfigError("failed to parse rules file", err)
	}

	strategies := make([]strategy.Strategy, 0, len(file.Rules))
	for i, spec := range file.Rules {
		if spec.Pattern == "" {
			return nil, errors.NewConfigError(
				fmt.Sprintf("rule %d has no pattern", i+1), errors.ErrInvalidPattern)
		}

		re, err := regexp.Compile(spec.Pattern)
		if err != nil {
			return nil, errors.NewConfigError(
				fmt.Sprintf("invalid pattern %q in rule %d", spec.Pattern, i+1), errors.ErrInvalidPattern)
		}

		name := strcase.ToSnake(spec.Name)
		if name == "" {
			name = fmt.Sprintf("custom_rule_%d", i+1)
		}

		priority := DefaultPriority
		if spec.Priority != nil {
			priority = *spec.Priority
		}

		strategies = append(strategies, strategy.NewRegex(name, re, spec.Replacement, priority))
	}
	return strategies, nil
}
