package aggregate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nao1215/cta/internal/model"
	"golang.org/x/sync/errgroup"
)

// Resolver maps a lookup key to the ontology classes of its resource.
// A key without classes resolves to an empty set with a nil error.
type Resolver interface {
	Resolve(ctx context.Context, key model.Key) (model.Resolution, error)
}

// Aggregator ranks the classes of a column by majority vote.
type Aggregator struct {
	resolver Resolver

	// concurrency is the number of cells resolved at once.
	concurrency int

	// skipErrors turns lookup failures into empty class sets.
	skipErrors bool

	logger *slog.Logger
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithConcurrency sets how many cells of one column are resolved at once.
// Values below 1 are ignored.
func WithConcurrency(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.concurrency = n
		}
	}
}

// WithSkipLookupErrors makes failed lookups count as cells without classes
// instead of aborting the column.
func WithSkipLookupErrors(skip bool) Option {
	return func(a *Aggregator) {
		a.skipErrors = skip
	}
}

// WithLogger sets the logger used to report skipped lookups.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Aggregator) {
		a.logger = logger
	}
}

// New creates an Aggregator that resolves keys with resolver.
func New(resolver Resolver, opts ...Option) *Aggregator {
	a := &Aggregator{
		resolver:    resolver,
		concurrency: 1,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	return a
}

// Aggregate resolves every usable key, counts the returned classes and
// returns the topN most frequent ones together with column statistics.
//
// Absent keys are not looked up. An error is returned when the context is
// cancelled or, unless lookup errors are skipped, when a lookup fails.
func (a *Aggregator) Aggregate(ctx context.Context, keys []model.Key, topN int) ([]model.ClassCount, model.ColumnStats, error) {
	stats := model.ColumnStats{Cells: len(keys)}

	resolutions, err := a.resolveAll(ctx, keys)
	if err != nil {
		return nil, stats, err
	}

	table := NewFrequencyTable()
	for i, key := range keys {
		if key.IsAbsent() {
			continue
		}
		stats.UsableKeys++

		res := resolutions[i]
		switch res.Outcome {
		case model.OutcomeTimeout:
			stats.Timeouts++
		case model.OutcomeFailed:
			stats.SkippedFailures++
		}
		if len(res.Classes) == 0 {
			continue
		}
		stats.ResolvedKeys++
		table.Add(res.Classes...)
	}

	return table.Ranked(topN), stats, nil
}

// resolveAll looks up every usable key. Results are stored at the key's
// position so the caller can merge them in column order.
func (a *Aggregator) resolveAll(ctx context.Context, keys []model.Key) ([]model.Resolution, error) {
	resolutions := make([]model.Resolution, len(keys))

	if a.concurrency <= 1 {
		for i, key := range keys {
			if key.IsAbsent() {
				continue
			}
			res, err := a.resolve(ctx, key)
			if err != nil {
				return nil, err
			}
			resolutions[i] = res
		}
		return resolutions, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)

	for i, key := range keys {
		if key.IsAbsent() {
			continue
		}
		g.Go(func() error {
			res, err := a.resolve(gctx, key)
			if err != nil {
				return err
			}
			resolutions[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return resolutions, nil
}

func (a *Aggregator) resolve(ctx context.Context, key model.Key) (model.Resolution, error) {
	if err := ctx.Err(); err != nil {
		return model.Resolution{}, err
	}

	res, err := a.resolver.Resolve(ctx, key)
	if err == nil {
		return res, nil
	}

	if !a.skipErrors || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return model.Resolution{}, fmt.Errorf("failed to resolve %q: %w", key.String(), err)
	}

	a.logger.Warn("skipping failed lookup",
		"key", key.String(),
		"error", err,
	)
	return model.Resolution{Key: key, Outcome: model.OutcomeFailed}, nil
}
