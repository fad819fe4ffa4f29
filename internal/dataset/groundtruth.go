package dataset

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/cta/internal/model"
)

// ReadGroundTruth parses a headerless ground-truth file of
// (table_id, column_index, class_uri) records.
func ReadGroundTruth(r io.Reader) ([]model.GroundTruthRow, error) {
	records, err := readRecords(r, 3, 0)
	if err != nil {
		return nil, err
	}

	rows := make([]model.GroundTruthRow, 0, len(records))
	for i, record := range records {
		target, err := model.NewTarget(record[0], record[1])
		if err != nil {
			return nil, fmt.Errorf("ground truth row %d: %w", i+1, err)
		}
		rows = append(rows, model.GroundTruthRow{
			Target: target,
			Class:  strings.Join(record[2:], model.PredictionSeparator),
		})
	}
	return rows, nil
}

// LoadGroundTruth reads the ground-truth file at path.
func LoadGroundTruth(path string) ([]model.GroundTruthRow, error) {
	return withFile(path, ReadGroundTruth)
}
