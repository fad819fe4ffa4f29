package dataset

import "errors"

var (
	// ErrTableNotFound is returned when a target names a table that has no
	// file in the tables directory.
	ErrTableNotFound = errors.New("table not found")

	// ErrColumnOutOfRange is returned when a target's column index is not
	// smaller than the number of columns in the table header.
	ErrColumnOutOfRange = errors.New("column index out of range")

	// ErrMalformedRecord is returned when a CSV record has too few fields.
	ErrMalformedRecord = errors.New("malformed record")
)
