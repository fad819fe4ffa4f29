// Package pipeline runs the annotation of each target column through a
// fixed sequence of steps: extract the column cells, normalize them into
// lookup keys, and aggregate the resolved classes into a ranked result.
//
// Each target is a model.Annotation work item that the steps fill in.
// The Driver processes targets one at a time, or in batches with a bounded
// number of goroutines via errgroup, and always returns the results in
// target order.
package pipeline
