package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and File.Apply() so that
// callers can use errors.Is() to tell them apart.
var (
	// ErrInvalidTopN is returned when the number of classes to predict per
	// column is not a positive integer.
	ErrInvalidTopN = errors.New("invalid annotation count: must be a positive integer")

	// ErrInvalidTimeout is returned when the lookup timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidConcurrency is returned when the number of targets annotated
	// at once is not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidCellConcurrency is returned when the number of cells resolved
	// at once is not positive.
	ErrInvalidCellConcurrency = errors.New("invalid cell concurrency: must be positive")

	// ErrInvalidLimit is returned when the target limit is negative.
	ErrInvalidLimit = errors.New("invalid target limit: must be non-negative")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrNoTargetsFile is returned when no target list is configured.
	ErrNoTargetsFile = errors.New("no target list specified: use --targets or dataset.targets")

	// ErrNoTablesDir is returned when no tables directory is configured.
	ErrNoTablesDir = errors.New("no tables directory specified: use --tables or dataset.tables")

	// ErrNoGroundTruthFile is returned when scoring is requested without a
	// ground truth file.
	ErrNoGroundTruthFile = errors.New("no ground truth specified: use --ground-truth or dataset.groundTruth")

	// ErrNoEndpoint is returned when the SPARQL endpoint is empty.
	ErrNoEndpoint = errors.New("no SPARQL endpoint specified")
)
