package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nao1215/cta/internal/model"
	"golang.org/x/sync/errgroup"
)

// DefaultBatchConcurrency is the number of targets annotated at once when
// no concurrency is configured.
const DefaultBatchConcurrency = 4

// BatchProcessor annotates multiple targets concurrently.
// Each target gets a fresh pipeline from pipelineFactory.
type BatchProcessor struct {
	pipelineFactory func() *Pipeline

	// concurrency is the maximum number of targets annotated at once.
	concurrency int

	logger *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent annotations.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     DefaultBatchConcurrency,
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch annotates all targets with at most concurrency goroutines.
//
// The returned slice has one entry per target at the target's index.
// The first failing target cancels the remaining ones and its error is
// returned; entries of targets that did not complete are nil.
// callback, when non-nil, is called once per completed annotation in
// completion order; calls never overlap.
func (bp *BatchProcessor) ProcessBatch(
	ctx context.Context,
	targets []model.Target,
	topN int,
	callback func(a *model.Annotation, index int),
) ([]*model.Annotation, error) {
	bp.logger.Debug("starting batch processing",
		"total_targets", len(targets),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()
	results := make([]*model.Annotation, len(targets))
	var callbackMu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, target := range targets {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			a := model.NewAnnotation(target, topN)
			if err := bp.pipelineFactory().Execute(ctx, a); err != nil {
				return fmt.Errorf("target %d (%s): %w", i+1, target, err)
			}
			results[i] = a

			if callback != nil {
				callbackMu.Lock()
				callback(a, i)
				callbackMu.Unlock()
			}
			return nil
		})
	}

	err := g.Wait()

	bp.logger.Debug("batch processing complete",
		"total_targets", len(targets),
		"elapsed", time.Since(startTime),
	)

	return results, err
}
