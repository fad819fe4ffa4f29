package model

// Cell is one raw value read from a table column.
// Missing is true when the source had no usable value (empty field,
// NA token, or a short row); Value is then meaningless.
type Cell struct {
	Value   string
	Missing bool
}

// MissingCell is the sentinel for an absent value.
var MissingCell = Cell{Missing: true}

// NewCell creates a present cell.
func NewCell(value string) Cell {
	return Cell{Value: value}
}

// Key is a knowledge-base lookup key derived from one cell.
// The zero value is the absent key.
type Key struct {
	value string
}

// AbsentKey is the key of a cell that cannot be looked up.
var AbsentKey = Key{}

// NewKey wraps a normalized string. An empty string yields AbsentKey.
func NewKey(s string) Key {
	return Key{value: s}
}

// IsAbsent reports whether the key must be skipped.
func (k Key) IsAbsent() bool {
	return k.value == ""
}

// String returns the key text, or "" when absent.
func (k Key) String() string {
	return k.value
}
