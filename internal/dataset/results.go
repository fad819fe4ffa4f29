package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/nao1215/cta/internal/model"
)

// WriteResults writes one headerless record per result:
// table_id, column_index and then every ranked class as its own field.
// A result without classes ends with a single empty field.
func WriteResults(w io.Writer, results []model.AnnotationResult) error {
	cw := csv.NewWriter(w)
	for _, res := range results {
		record := []string{res.TableID, strconv.Itoa(int(res.Column))}
		if res.IsEmpty() {
			record = append(record, "")
		} else {
			record = append(record, res.Classes...)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write result %s: %w", res.Target, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush results: %w", err)
	}
	return nil
}

// SaveResults writes results to path, creating parent directories.
func SaveResults(path string, results []model.AnnotationResult) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	f, err := os.Create(path) //nolint:gosec // output path is chosen by the user
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := WriteResults(f, results); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}

// ReadResults parses a result file written by WriteResults, or by any tool
// that prints table_id,column_index,prediction lines.
func ReadResults(r io.Reader) ([]model.AnnotationResult, error) {
	records, err := readRecords(r, 2, 0)
	if err != nil {
		return nil, err
	}

	results := make([]model.AnnotationResult, 0, len(records))
	for i, record := range records {
		target, err := model.NewTarget(record[0], record[1])
		if err != nil {
			return nil, fmt.Errorf("result %d: %w", i+1, err)
		}

		ranking := make([]model.ClassCount, 0, len(record)-2)
		for _, class := range record[2:] {
			if class == "" {
				continue
			}
			ranking = append(ranking, model.ClassCount{Class: class})
		}
		results = append(results, model.NewAnnotationResult(target, ranking, model.ColumnStats{}))
	}
	return results, nil
}

// LoadResults reads the result file at path.
func LoadResults(path string) ([]model.AnnotationResult, error) {
	return withFile(path, ReadResults)
}
