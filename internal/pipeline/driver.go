package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nao1215/cta/internal/config"
	"github.com/nao1215/cta/internal/model"
)

// Driver annotates a list of targets and collects the results into a run.
type Driver struct {
	pipelineFactory func() *Pipeline
	concurrency     int
	onResult        func(model.AnnotationResult)
	logger          *slog.Logger
}

// DriverOption configures a Driver.
type DriverOption func(*Driver)

// WithTargetConcurrency sets how many targets are annotated at once.
// 1 processes targets one after another.
func WithTargetConcurrency(n int) DriverOption {
	return func(d *Driver) {
		if n > 0 {
			d.concurrency = n
		}
	}
}

// WithResultCallback registers fn to be called with every result as soon
// as it is produced.
func WithResultCallback(fn func(model.AnnotationResult)) DriverOption {
	return func(d *Driver) {
		d.onResult = fn
	}
}

// WithDriverLogger sets a custom logger for the driver.
func WithDriverLogger(logger *slog.Logger) DriverOption {
	return func(d *Driver) {
		d.logger = logger
	}
}

// NewDriver creates a Driver that builds one pipeline per target with
// pipelineFactory.
func NewDriver(pipelineFactory func() *Pipeline, opts ...DriverOption) *Driver {
	d := &Driver{
		pipelineFactory: pipelineFactory,
		concurrency:     1,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	return d
}

// Run annotates every target and returns the run holding exactly one
// result per target, in target order.
//
// A fatal error (missing table, column out of range, failed lookup,
// cancellation) stops the run. The returned run then holds the results
// completed before the failure.
func (d *Driver) Run(ctx context.Context, targets []model.Target, topN int) (*model.Run, error) {
	if topN < 1 {
		return nil, fmt.Errorf("%w: %d", config.ErrInvalidTopN, topN)
	}

	run := model.NewRun(topN)
	defer run.Finish()

	if d.concurrency <= 1 {
		return run, d.runSequential(ctx, run, targets, topN)
	}
	return run, d.runBatch(ctx, run, targets, topN)
}

func (d *Driver) runSequential(ctx context.Context, run *model.Run, targets []model.Target, topN int) error {
	for i, target := range targets {
		a := model.NewAnnotation(target, topN)
		if err := d.pipelineFactory().Execute(ctx, a); err != nil {
			return fmt.Errorf("target %d (%s): %w", i+1, target, err)
		}
		d.emit(run, a)
	}
	return nil
}

func (d *Driver) runBatch(ctx context.Context, run *model.Run, targets []model.Target, topN int) error {
	bp := NewBatchProcessor(d.pipelineFactory,
		WithConcurrency(d.concurrency),
		WithBatchLogger(d.logger),
	)

	var callback func(*model.Annotation, int)
	if d.onResult != nil {
		callback = func(a *model.Annotation, _ int) {
			d.onResult(resultOf(a))
		}
	}

	annotations, err := bp.ProcessBatch(ctx, targets, topN, callback)
	for _, a := range annotations {
		if a != nil {
			run.Append(resultOf(a))
		}
	}
	return err
}

func (d *Driver) emit(run *model.Run, a *model.Annotation) {
	res := resultOf(a)
	run.Append(res)
	if d.onResult != nil {
		d.onResult(res)
	}
}

// resultOf returns the annotation's result. A pipeline without an
// annotate step still yields one empty result per target.
func resultOf(a *model.Annotation) model.AnnotationResult {
	if a.Result == nil {
		empty := model.NewAnnotationResult(a.Target, nil, model.ColumnStats{Cells: len(a.Cells)})
		a.Result = &empty
	}
	return *a.Result
}
