package repair

import (
	"log/slog"
	"strings"

	"github.com/mcncl/remedy/internal/confidence"
	"github.com/mcncl/remedy/internal/strategy"
)

// AdvancedRepairer does not trust format detection: it runs every format's
// repairer on the same input concurrently and keeps the candidate the
// confidence scorer likes best.
type AdvancedRepairer struct {
	best *strategy.BestOf
}

// formatStrategy adapts a format repairer to the Strategy contract so it
// can ride the best-of pipeline.
type formatStrategy struct {
	format   Format
	repairer Repairer
	priority int
}

func (f formatStrategy) Name() string { return "repair_" + string(f.format) }

func (f formatStrategy) Priority() int { return f.priority }

func (f formatStrategy) Apply(content string) (string, error) {
	return f.repairer.Repair(content)
}

// NewAdvancedRepairer builds the multi-format pipeline. Candidates are
// judged by re-detecting each result's format and scoring it there, so a
// repairer only wins by producing something that actually validates.
func NewAdvancedRepairer(opts ...strategy.Option) (*AdvancedRepairer, error) {
	strategies := []strategy.Strategy{
		formatStrategy{FormatJSON, NewJSONRepairer(), 100},
		formatStrategy{FormatYAML, NewYAMLRepairer(), 90},
		formatStrategy{FormatXML, NewXMLRepairer(), 80},
		formatStrategy{FormatTOML, NewTOMLRepairer(), 70},
		formatStrategy{FormatCSV, NewCSVRepairer(), 60},
		formatStrategy{FormatINI, NewINIRepairer(), 50},
		formatStrategy{FormatMarkdown, NewMarkdownRepairer(), 40},
	}

	best, err := strategy.NewBestOf(Confidence, strategies, opts...)
	if err != nil {
		return nil, err
	}
	return &AdvancedRepairer{best: best}, nil
}

// Repair returns the best-scoring candidate across all formats. It never
// returns an error: a repairer that fails simply loses the contest.
func (r *AdvancedRepairer) Repair(content string) (string, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "", nil
	}
	return r.best.Apply(trimmed), nil
}

// NeedsRepair reports whether content fails strict validation for its
// detected format.
func (r *AdvancedRepairer) NeedsRepair(content string) bool {
	return NeedsRepair(content)
}

// Confidence scores content against its detected format.
func (r *AdvancedRepairer) Confidence(content string) float64 {
	if strings.TrimSpace(content) == "" {
		return 0
	}
	return confidence.Generic(content)
}

// WithLogger attaches a logger to the underlying pipeline. Nil means
// silent.
func (r *AdvancedRepairer) WithLogger(logger *slog.Logger) *AdvancedRepairer {
	_ = strategy.WithLogger(logger)(r.best)
	return r
}

// Release frees the worker pool. The repairer must not be used afterwards.
func (r *AdvancedRepairer) Release() {
	r.best.Release()
}
