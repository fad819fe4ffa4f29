package dataset

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/nao1215/cta/internal/model"
)

// TableExtension is the file extension of table files.
const TableExtension = ".csv"

// naValues are the field values read as missing cells.
var naValues = map[string]struct{}{
	"":         {},
	"#N/A":     {},
	"#N/A N/A": {},
	"#NA":      {},
	"-1.#IND":  {},
	"-1.#QNAN": {},
	"-NaN":     {},
	"-nan":     {},
	"1.#IND":   {},
	"1.#QNAN":  {},
	"<NA>":     {},
	"N/A":      {},
	"NA":       {},
	"NULL":     {},
	"NaN":      {},
	"None":     {},
	"n/a":      {},
	"nan":      {},
	"null":     {},
}

// IsMissingValue reports whether a raw field denotes a missing value.
func IsMissingValue(field string) bool {
	_, ok := naValues[field]
	return ok
}

// TableStore reads table columns from a directory of CSV files named
// <table_id>.csv.
type TableStore struct {
	dir string
}

// NewTableStore returns a store rooted at dir.
func NewTableStore(dir string) *TableStore {
	return &TableStore{dir: dir}
}

// Dir returns the tables directory.
func (s *TableStore) Dir() string {
	return s.dir
}

// Path returns the file path of a table.
func (s *TableStore) Path(tableID string) string {
	return filepath.Join(s.dir, tableID+TableExtension)
}

// Column returns the cells of one column of a table, top to bottom,
// excluding the header row.
func (s *TableStore) Column(tableID string, column uint8) ([]model.Cell, error) {
	if tableID == "" || strings.ContainsAny(tableID, `/\`) || tableID == "." || tableID == ".." {
		return nil, fmt.Errorf("%w: invalid table id %q", ErrTableNotFound, tableID)
	}

	path := s.Path(tableID)
	f, err := os.Open(path) //nolint:gosec // table id is checked for path separators above
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrTableNotFound, path)
		}
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	cells, err := ReadColumn(f, column)
	if err != nil {
		return nil, fmt.Errorf("table %s: %w", tableID, err)
	}
	return cells, nil
}

// ReadColumn reads one column of a CSV table with a header row.
// Fields that are empty or hold an NA token, and fields missing from
// short rows, become missing cells.
func ReadColumn(r io.Reader, column uint8) ([]model.Cell, error) {
	cr := newReader(r)

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: column %d of a table without header", ErrColumnOutOfRange, column)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	idx := int(column)
	if idx >= len(header) {
		return nil, fmt.Errorf("%w: column %d of %d", ErrColumnOutOfRange, column, len(header))
	}

	cells := make([]model.Cell, 0)
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", len(cells)+1, err)
		}
		if idx >= len(record) || IsMissingValue(record[idx]) {
			cells = append(cells, model.MissingCell)
			continue
		}
		cells = append(cells, model.NewCell(record[idx]))
	}
	return cells, nil
}
