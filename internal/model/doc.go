// Package model defines the core data structures used throughout cta.
//
// This package contains the following main types:
//   - Target: One (table, column) pair to annotate
//   - Cell and Key: A raw cell value and its normalized lookup key
//   - Annotation: The per-target work item passed through the pipeline
//   - AnnotationResult: The ranked classes predicted for one target
//   - Run: The ordered, append-only results of one invocation
//   - GroundTruthRow and ScoreReport: Inputs and outputs of scoring
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. The dataset, pipeline, score, database and report packages
// all exchange these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for report output and
// database storage.
package model
