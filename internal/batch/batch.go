// Package batch decodes many input files concurrently while keeping their
// results in argument order.
package batch

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/MeKo-Tech/qrlocal/internal/decode"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers is used when no positive worker count is given.
const DefaultWorkers = 4

// FileDecoder decodes one file. *decode.Decoder satisfies it.
type FileDecoder interface {
	DecodeFile(ctx context.Context, path string) (decode.Outcome, error)
}

// Result holds the outcomes of one batch.
type Result struct {
	// Outcomes[i] belongs to the i-th input path.
	Outcomes []decode.Outcome
	Duration time.Duration
	Workers  int
}

// Found counts outcomes with at least one text.
func (r *Result) Found() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Found() {
			n++
		}
	}
	return n
}

// OnOutcome is called after each file finishes, from the worker goroutine.
type OnOutcome func(decode.Outcome)

// Process decodes paths with up to workers goroutines. The first error stops
// the batch; per-file load failures are not errors (see decode.Outcome).
func Process(ctx context.Context, dec FileDecoder, paths []string, workers int, onOutcome OnOutcome) (*Result, error) {
	if dec == nil {
		return nil, errors.New("batch: nil decoder")
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}
	workers = min(workers, max(len(paths), 1))

	start := time.Now()
	outcomes := make([]decode.Outcome, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range paths {
		g.Go(func() error {
			o, err := dec.DecodeFile(gctx, path)
			if err != nil {
				return err
			}
			outcomes[i] = o
			if onOutcome != nil {
				onOutcome(o)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{Outcomes: outcomes, Duration: time.Since(start), Workers: workers}
	slog.Debug("Batch finished", "files", len(paths), "found", res.Found(),
		"workers", workers, "duration", res.Duration)
	return res, nil
}
