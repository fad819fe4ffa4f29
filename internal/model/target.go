package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Target errors.
var (
	// ErrEmptyTableID is returned when a target has no table identifier.
	ErrEmptyTableID = errors.New("table identifier cannot be empty")
	// ErrInvalidColumnIndex is returned when a column index is not a small non-negative integer.
	ErrInvalidColumnIndex = errors.New("column index must be an integer between 0 and 255")
)

// Target identifies one column of one table to annotate.
// It is an immutable value object; the column index is zero-based.
type Target struct {
	// TableID is the table identifier, also the table file name without extension.
	TableID string `json:"table_id"`

	// Column is the zero-based column position inside the table.
	Column uint8 `json:"column_index"`
}

// NewTarget creates a Target from its textual fields.
// The column index must parse as an unsigned 8-bit integer.
func NewTarget(tableID, column string) (Target, error) {
	tableID = strings.TrimSpace(tableID)
	if tableID == "" {
		return Target{}, ErrEmptyTableID
	}

	col, err := ParseColumnIndex(column)
	if err != nil {
		return Target{}, err
	}

	return Target{TableID: tableID, Column: col}, nil
}

// ParseColumnIndex parses a column index field.
func ParseColumnIndex(s string) (uint8, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 8)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidColumnIndex, s)
	}
	return uint8(v), nil
}

// Key returns the join key used to match targets, results and ground truth.
func (t Target) Key() TargetKey {
	return TargetKey{TableID: t.TableID, Column: t.Column}
}

// String returns the "table,column" form used in progress output.
func (t Target) String() string {
	return t.TableID + "," + strconv.Itoa(int(t.Column))
}

// TargetKey is a comparable (table, column) pair usable as a map key.
type TargetKey struct {
	TableID string
	Column  uint8
}
