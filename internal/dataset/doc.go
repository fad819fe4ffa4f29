// Package dataset reads and writes the CSV files a benchmark run works on:
// the target list, the tables themselves, the ground truth and the result
// file.
//
// Target, ground-truth and result files are headerless. Table files carry
// a header row and their columns are addressed by position.
package dataset
