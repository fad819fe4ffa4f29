// Package main provides the entry point for the cta CLI.
//
// cta annotates table columns with ontology classes by looking up every
// cell in a SPARQL knowledge base and taking a majority vote over the
// returned classes.
//
// Usage:
//
//	cta annotate -t targets.csv -d tables/
//	cta score result.csv -g ground_truth.csv
//	cta history
//
// See --help for all available options.
package main

func main() {
	Execute()
}
