package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/cta/internal/model"
)

// Step defines the interface that all pipeline steps must implement.
// Steps are executed in sequence, each receiving the work item filled in
// by the previous steps.
type Step interface {
	// Do executes the step. An error aborts the annotation of the target.
	Do(ctx context.Context, a *model.Annotation) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline orchestrates the execution of multiple steps.
type Pipeline struct {
	steps  []Step
	logger *slog.Logger
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates a new Pipeline with the given options.
// Steps should be added using AddStep after creation.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// AddStep appends a step to the pipeline.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all pipeline steps in sequence on one annotation.
// Cancellation is checked before each step; steps handle their own
// timeouts. The first failing step stops the pipeline and its error is
// recorded in the annotation.
func (p *Pipeline) Execute(ctx context.Context, a *model.Annotation) error {
	start := time.Now()
	defer func() {
		a.Elapsed = time.Since(start)
	}()

	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"target", a.Target.String(),
				"reason", ctx.Err(),
			)
			a.Error = ctx.Err()
			return ctx.Err()
		default:
		}

		p.logger.Debug("executing step",
			"step", step.Name(),
			"target", a.Target.String(),
		)

		if err := step.Do(ctx, a); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"target", a.Target.String(),
				"error", err,
			)
			a.Error = err
			return err
		}

		a.PerformedSteps = append(a.PerformedSteps, step.Name())
	}

	return nil
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
