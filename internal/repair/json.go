package repair

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mcncl/remedy/internal/confidence"
	"github.com/mcncl/remedy/internal/models"
	"github.com/mcncl/remedy/internal/parser"
	"github.com/mcncl/remedy/internal/strategy"
)

// JSONRepairer recovers malformed JSON in two stages: the strategy chain
// first, and when text-level fixes are not enough, the recovering parser
// with re-serialization.
type JSONRepairer struct {
	chain  *strategy.Chain
	logger *slog.Logger
}

// NewJSONRepairer builds a JSON repairer. Extra strategies (custom rules)
// join the built-in chain and are ordered by their priority.
func NewJSONRepairer(extra ...strategy.Strategy) *JSONRepairer {
	strategies := append(strategy.JSONStrategies(), extra...)
	return &JSONRepairer{
		chain: strategy.NewChain(JSONValidator{}.IsValid, strategies...),
	}
}

// WithLogger attaches a logger for repair decisions. Nil means silent.
func (r *JSONRepairer) WithLogger(logger *slog.Logger) *JSONRepairer {
	r.logger = logger
	r.chain.SetLogger(logger)
	return r
}

// Repair returns well-formed JSON recovered from content. The result of a
// successful repair always passes strict validation. An error is returned
// only when the recovering parser hits one of its fatal conditions.
func (r *JSONRepairer) Repair(content string) (string, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "", nil
	}
	if (JSONValidator{}).IsValid(trimmed) {
		return trimmed, nil
	}

	out := r.chain.Apply(trimmed)
	if (JSONValidator{}).IsValid(out) {
		return out, nil
	}

	// Text-level fixes were not enough; parse with recovery and
	// re-serialize.
	value, err := parser.New(out, parser.WithLogger(r.logger)).Parse()
	if err != nil {
		return "", err
	}
	return models.Serialize(value)
}

// NeedsRepair reports whether content fails strict JSON validation.
func (r *JSONRepairer) NeedsRepair(content string) bool {
	return !(JSONValidator{}).IsValid(content)
}

// Confidence scores content as JSON.
func (r *JSONRepairer) Confidence(content string) float64 {
	return confidence.JSON(content)
}

// JSONValidator checks content against the strict JSON grammar.
type JSONValidator struct{}

func (JSONValidator) IsValid(content string) bool {
	trimmed := strings.TrimSpace(content)
	return trimmed != "" && json.Valid([]byte(trimmed))
}

func (JSONValidator) Validate(content string) []string {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return []string{"input is empty"}
	}

	var v interface{}
	if err := json.Unmarshal([]byte(trimmed), &v); err != nil {
		var syntaxErr *json.SyntaxError
		if stderrors.As(err, &syntaxErr) {
			return []string{fmt.Sprintf("syntax error at offset %d: %s", syntaxErr.Offset, syntaxErr.Error())}
		}
		return []string{err.Error()}
	}
	return nil
}
