package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nao1215/cta/internal/model"
	"github.com/nao1215/cta/internal/normalize"
)

// ColumnSource returns the raw cells of one table column.
// dataset.TableStore is the production implementation.
type ColumnSource interface {
	Column(tableID string, column uint8) ([]model.Cell, error)
}

// ColumnAggregator ranks the classes of a column of lookup keys.
// aggregate.Aggregator is the production implementation.
type ColumnAggregator interface {
	Aggregate(ctx context.Context, keys []model.Key, topN int) ([]model.ClassCount, model.ColumnStats, error)
}

// ExtractStep loads the cells of the target column.
// A missing table or an out-of-range column fails the step.
type ExtractStep struct {
	source ColumnSource
}

// NewExtractStep creates an ExtractStep reading from source.
func NewExtractStep(source ColumnSource) *ExtractStep {
	return &ExtractStep{source: source}
}

// Name returns the step name.
func (s *ExtractStep) Name() string {
	return "extract"
}

// Do executes the extract step.
func (s *ExtractStep) Do(_ context.Context, a *model.Annotation) error {
	cells, err := s.source.Column(a.Target.TableID, a.Target.Column)
	if err != nil {
		return fmt.Errorf("failed to extract column %s: %w", a.Target, err)
	}
	a.Cells = cells
	return nil
}

// NormalizeStep turns every extracted cell into a lookup key.
type NormalizeStep struct{}

// NewNormalizeStep creates a NormalizeStep.
func NewNormalizeStep() *NormalizeStep {
	return &NormalizeStep{}
}

// Name returns the step name.
func (s *NormalizeStep) Name() string {
	return "normalize"
}

// Do executes the normalize step.
func (s *NormalizeStep) Do(_ context.Context, a *model.Annotation) error {
	a.Keys = normalize.Cells(a.Cells)
	return nil
}

// AnnotateStep votes on the classes of the normalized keys and stores
// the ranked result.
type AnnotateStep struct {
	aggregator ColumnAggregator
	logger     *slog.Logger
}

// AnnotateStepOption configures an AnnotateStep.
type AnnotateStepOption func(*AnnotateStep)

// WithAnnotateLogger sets a custom logger for the annotate step.
func WithAnnotateLogger(logger *slog.Logger) AnnotateStepOption {
	return func(s *AnnotateStep) {
		s.logger = logger
	}
}

// NewAnnotateStep creates an AnnotateStep using aggregator.
func NewAnnotateStep(aggregator ColumnAggregator, opts ...AnnotateStepOption) *AnnotateStep {
	s := &AnnotateStep{
		aggregator: aggregator,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *AnnotateStep) Name() string {
	return "annotate"
}

// Do executes the annotate step.
func (s *AnnotateStep) Do(ctx context.Context, a *model.Annotation) error {
	ranking, stats, err := s.aggregator.Aggregate(ctx, a.Keys, a.TopN)
	if err != nil {
		return fmt.Errorf("failed to annotate column %s: %w", a.Target, err)
	}

	result := model.NewAnnotationResult(a.Target, ranking, stats)
	a.Result = &result

	s.logger.Debug("column annotated",
		"target", a.Target.String(),
		"cells", stats.Cells,
		"usable", stats.UsableKeys,
		"resolved", stats.ResolvedKeys,
		"prediction", result.Prediction(),
	)
	return nil
}

// DefaultPipeline creates the standard extract, normalize, annotate
// pipeline.
func DefaultPipeline(source ColumnSource, aggregator ColumnAggregator, opts ...Option) *Pipeline {
	p := New(opts...)
	p.AddSteps(
		NewExtractStep(source),
		NewNormalizeStep(),
		NewAnnotateStep(aggregator, WithAnnotateLogger(p.logger)),
	)
	return p
}
