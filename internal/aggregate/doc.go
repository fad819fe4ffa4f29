// Package aggregate turns the lookup keys of one column into a ranked list
// of ontology classes by majority vote.
//
// Every key is resolved to a set of classes, every returned class is
// counted, and the distinct classes are ranked by descending count. Ties
// keep the order in which the classes were first seen while walking the
// column from top to bottom, so the ranking is identical whether cells are
// resolved one at a time or concurrently.
package aggregate
