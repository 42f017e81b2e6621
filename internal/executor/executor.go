// Package executor runs remote write operations in sequential chunks with
// bounded concurrency inside each chunk, isolating per-operation failures.
package executor

import (
	"context"
	"time"

	"github.com/freqsync/freqsync/internal/domain"
	"github.com/freqsync/freqsync/internal/utils"
)

// Defaults match the remote target's tolerated burst rate.
const (
	DefaultConcurrency = 5
	DefaultChunkSize   = 10
	DefaultChunkDelay  = 300 * time.Millisecond
)

// ApplyFunc performs one operation against the remote target.
type ApplyFunc func(ctx context.Context, op domain.Operation) error

// Options configures an Executor.
type Options struct {
	Concurrency  int
	ChunkSize    int
	ChunkDelay   time.Duration
	DryRun       bool
	ShowProgress bool
}

// Executor dispatches operation chunks.
type Executor struct {
	opts   Options
	logger *utils.Logger
}

// New creates a new Executor, applying defaults for unset options.
func New(opts Options, logger *utils.Logger) *Executor {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	if opts.ChunkDelay <= 0 {
		opts.ChunkDelay = DefaultChunkDelay
	}
	if logger == nil {
		logger = utils.NewDefaultLogger()
	}
	return &Executor{opts: opts, logger: logger}
}

// outcome is the tagged result of one operation.
type outcome int

const (
	outcomePending outcome = iota
	outcomeCreated
	outcomeUpdated
	outcomeZeroed
	outcomeError
)

func successOutcome(action domain.Action) outcome {
	switch action {
	case domain.ActionCreate:
		return outcomeCreated
	case domain.ActionZero:
		return outcomeZeroed
	default:
		return outcomeUpdated
	}
}

// Execute runs all operations and returns the reduced stats. Chunks run
// strictly in sequence with a pause between them; inside a chunk up to
// Concurrency operations run at once. One operation's failure is counted and
// logged but never cancels siblings or later chunks. In dry-run mode no
// apply calls are made; operations are classified by their declared action.
func (e *Executor) Execute(ctx context.Context, operations []domain.Operation, apply ApplyFunc) domain.Stats {
	var stats domain.Stats
	if len(operations) == 0 {
		return stats
	}

	if e.opts.DryRun {
		for _, op := range operations {
			reduce(&stats, successOutcome(op.Action))
		}
		return stats
	}

	var bar interface{ Add(int) error }
	if e.opts.ShowProgress {
		bar = utils.NewProgressBar(len(operations), utils.DescUploading)
	}

	for start := 0; start < len(operations); start += e.opts.ChunkSize {
		end := start + e.opts.ChunkSize
		if end > len(operations) {
			end = len(operations)
		}
		chunk := operations[start:end]

		outcomes := make([]outcome, len(chunk))

		type indexedOp struct {
			op  domain.Operation
			idx int
		}
		indexed := make([]indexedOp, len(chunk))
		for i, op := range chunk {
			indexed[i] = indexedOp{op: op, idx: i}
		}

		utils.ParallelForEach(ctx, indexed, e.opts.Concurrency, func(ctx context.Context, item indexedOp) error {
			if err := apply(ctx, item.op); err != nil {
				e.logger.Error().
					Err(err).
					Str("record", item.op.RecordKey).
					Str("action", string(item.op.Action)).
					Msg("Operation failed")
				outcomes[item.idx] = outcomeError
				return nil
			}
			outcomes[item.idx] = successOutcome(item.op.Action)
			return nil
		})

		// Reduce only after the whole chunk settled; the outcome slice is
		// written one index per worker, so no counter is shared mid-flight.
		for _, oc := range outcomes {
			reduce(&stats, oc)
		}
		if bar != nil {
			_ = bar.Add(len(chunk))
		}

		if end < len(operations) {
			select {
			case <-ctx.Done():
				return stats
			case <-time.After(e.opts.ChunkDelay):
			}
		}
	}

	return stats
}

func reduce(stats *domain.Stats, oc outcome) {
	switch oc {
	case outcomeCreated:
		stats.Created++
	case outcomeUpdated:
		stats.Updated++
	case outcomeZeroed:
		stats.Zeroed++
	case outcomeError, outcomePending:
		stats.Errors++
	}
}
