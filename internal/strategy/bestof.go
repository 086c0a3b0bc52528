package strategy

import (
	"log/slog"
	"runtime"
	"sort"
	"sync"

	"github.com/panjf2000/ants/v2"
)

// DefaultThreshold is the confidence a candidate needs to win outright.
const DefaultThreshold = 0.7

// BestOf applies every strategy to the same input concurrently, scores
// each candidate, and keeps the winner. Unlike a Chain, strategies never
// see each other's output.
type BestOf struct {
	strategies []Strategy
	score      func(string) float64
	threshold  float64
	pool       *ants.Pool
	logger     *slog.Logger
}

// Option configures a BestOf pipeline.
type Option func(*BestOf) error

// WithThreshold sets the confidence needed to pick a candidate outright.
// Values outside [0, 1] are clamped.
func WithThreshold(t float64) Option {
	return func(b *BestOf) error {
		if t < 0 {
			t = 0
		}
		if t > 1 {
			t = 1
		}
		b.threshold = t
		return nil
	}
}

// WithPoolSize sets the worker pool size.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(b *BestOf) error {
		if size < 1 {
			size = 1
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		if b.pool != nil {
			b.pool.Release()
		}
		b.pool = pool
		return nil
	}
}

// WithLogger sets a logger for candidate scoring. Nil means silent.
func WithLogger(logger *slog.Logger) Option {
	return func(b *BestOf) error {
		b.logger = logger
		return nil
	}
}

// NewBestOf builds a best-of pipeline. score judges how well-formed a
// candidate is, in [0, 1].
func NewBestOf(score func(string) float64, strategies []Strategy, opts ...Option) (*BestOf, error) {
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	sorted := make([]Strategy, len(strategies))
	copy(sorted, strategies)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority() > sorted[j].Priority()
	})

	b := &BestOf{
		strategies: sorted,
		score:      score,
		threshold:  DefaultThreshold,
		pool:       pool,
	}
	for _, opt := range opts {
		if err := opt(b); err != nil {
			b.Release()
			return nil, err
		}
	}
	return b, nil
}

// Apply fans the input out to every strategy and returns the best
// candidate. The highest-scoring candidate at or above the threshold wins,
// with ties going to the higher-priority strategy; if none reaches the
// threshold, the highest-scoring candidate is still returned. The original
// input competes in the fallback too, so Apply never makes things worse by
// its own measure.
func (b *BestOf) Apply(content string) string {
	if len(b.strategies) == 0 {
		return content
	}

	// Each worker writes only its own slot; the WaitGroup is the only
	// synchronization needed.
	results := make([]string, len(b.strategies))
	var wg sync.WaitGroup
	for i, s := range b.strategies {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			out, err := s.Apply(content)
			if err != nil {
				out = content
			}
			results[i] = out
		}
		if err := b.pool.Submit(task); err != nil {
			// Pool unavailable: run on the caller instead of dropping the
			// candidate.
			task()
		}
	}
	wg.Wait()

	scores := make([]float64, len(results))
	for i, out := range results {
		scores[i] = b.score(out)
		if b.logger != nil {
			b.logger.Debug("scored candidate", "strategy", b.strategies[i].Name(), "score", scores[i])
		}
	}

	// Strategies are already in priority order, so a strict comparison
	// leaves score ties with the higher-priority candidate.
	winner := -1
	for i, sc := range scores {
		if sc < b.threshold {
			continue
		}
		if winner == -1 || sc > scores[winner] {
			winner = i
		}
	}
	if winner >= 0 {
		return results[winner]
	}

	best := content
	bestScore := b.score(content)
	for i, sc := range scores {
		if sc > bestScore {
			best, bestScore = results[i], sc
		}
	}
	return best
}

// Release frees the worker pool. The pipeline must not be used afterwards.
func (b *BestOf) Release() {
	if b.pool != nil {
		b.pool.Release()
	}
}
