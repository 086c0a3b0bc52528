package strategy

import (
	"log/slog"
	"sort"
)

// Chain runs strategies in descending priority order, feeding each output
// into the next. Validation short-circuits the walk: once the content is
// valid there is nothing left to fix.
type Chain struct {
	strategies []Strategy
	valid      func(string) bool
	logger     *slog.Logger
}

// NewChain builds a chain over the given strategies. valid may be nil, in
// which case every strategy always runs.
func NewChain(valid func(string) bool, strategies ...Strategy) *Chain {
	sorted := make([]Strategy, len(strategies))
	copy(sorted, strategies)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority() > sorted[j].Priority()
	})
	return &Chain{strategies: sorted, valid: valid}
}

// SetLogger attaches a logger for per-strategy decisions. Nil means silent.
func (c *Chain) SetLogger(logger *slog.Logger) *Chain {
	c.logger = logger
	return c
}

// Apply runs the chain. It always returns some text; a strategy that
// errors is skipped, never fatal.
func (c *Chain) Apply(content string) string {
	if c.valid != nil && c.valid(content) {
		return content
	}

	out := content
	for _, s := range c.strategies {
		next, err := s.Apply(out)
		if err != nil {
			if c.logger != nil {
				c.logger.Debug("strategy failed, skipping", "strategy", s.Name(), "err", err)
			}
			continue
		}
		if c.logger != nil && next != out {
			c.logger.Debug("strategy changed content", "strategy", s.Name())
		}
		out = next
		if c.valid != nil && c.valid(out) {
			return out
		}
	}
	return out
}

// Strategies returns the chain's strategies in execution order.
func (c *Chain) Strategies() []Strategy {
	return c.strategies
}
