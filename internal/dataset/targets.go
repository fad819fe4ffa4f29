package dataset

import (
	"fmt"
	"io"

	"github.com/nao1215/cta/internal/model"
)

// ReadTargets parses a headerless target list of (table_id, column_index)
// records. At most limit targets are read when limit is positive.
func ReadTargets(r io.Reader, limit int) ([]model.Target, error) {
	records, err := readRecords(r, 2, limit)
	if err != nil {
		return nil, err
	}

	targets := make([]model.Target, 0, len(records))
	for i, record := range records {
		target, err := model.NewTarget(record[0], record[1])
		if err != nil {
			return nil, fmt.Errorf("target %d: %w", i+1, err)
		}
		targets = append(targets, target)
	}
	return targets, nil
}

// LoadTargets reads the target list at path.
func LoadTargets(path string, limit int) ([]model.Target, error) {
	return withFile(path, func(r io.Reader) ([]model.Target, error) {
		return ReadTargets(r, limit)
	})
}
