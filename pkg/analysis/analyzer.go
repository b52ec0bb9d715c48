package analysis

import (
	"context"
	"time"
)

// Analyzer wraps Compose with a fixed simulated latency so callers experience
// the analysis as an asynchronous inference call. Zero latency disables the
// pause, which tests rely on.
type Analyzer struct {
	latency time.Duration
}

// NewAnalyzer builds an analyzer with the provided simulated latency.
func NewAnalyzer(latency time.Duration) *Analyzer {
	return &Analyzer{latency: latency}
}

// Analyze returns the templated analysis after the simulated delay. The delay
// is interruptible: a canceled context returns immediately with its error.
func (a *Analyzer) Analyze(ctx context.Context, in Input) (string, error) {
	if a.latency > 0 {
		timer := time.NewTimer(a.latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-timer.C:
		}
	}
	return Compose(in), nil
}
