package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// newReader returns a CSV reader that accepts records of varying length.
func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	return cr
}

// readRecords reads all records from r, checking each has at least
// minFields fields. limit bounds the number of records read; zero or
// negative reads everything.
func readRecords(r io.Reader, minFields, limit int) ([][]string, error) {
	cr := newReader(r)

	var records [][]string
	for limit <= 0 || len(records) < limit {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		if len(record) < minFields {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("%w: line %d has %d fields, expected at least %d",
				ErrMalformedRecord, line, len(record), minFields)
		}
		records = append(records, record)
	}
	return records, nil
}

// withFile opens path and passes it to fn.
func withFile[T any](path string, fn func(io.Reader) (T, error)) (T, error) {
	var zero T

	f, err := os.Open(path) //nolint:gosec // path comes from the user's own configuration
	if err != nil {
		return zero, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	v, err := fn(f)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}
