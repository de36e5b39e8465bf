package erp

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

var (
	ErrEmptyWireName     = errors.New("empty wire field name")
	ErrDuplicateWireName = errors.New("duplicate wire field name")
	ErrLogicalCollision  = errors.New("wire field names share a logical name")
	ErrInvalidWireName   = errors.New("wire field name must be UPPER_SNAKE_CASE")
)

// FieldTable maps logical (camelCase) field names to an entity's wire
// (UPPER_SNAKE_CASE) column names. A table is immutable once built and safe to
// share between goroutines.
type FieldTable struct {
	wire    []string
	logical map[string]string
	byWire  map[string]struct{}
}

// NewFieldTable builds a table from the entity's authoritative wire column list.
// Logical names are derived from the wire names: DATE_CREATED becomes dateCreated.
func NewFieldTable(wireNames ...string) (*FieldTable, error) {
	table := &FieldTable{
		wire:    make([]string, 0, len(wireNames)),
		logical: make(map[string]string, len(wireNames)),
		byWire:  make(map[string]struct{}, len(wireNames)),
	}

	for _, name := range wireNames {
		if name == "" {
			return nil, ErrEmptyWireName
		}

		if !isUpperSnake(name) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidWireName, name)
		}

		if _, exists := table.byWire[name]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateWireName, name)
		}

		logical := LogicalName(name)
		if other, exists := table.logical[logical]; exists {
			return nil, fmt.Errorf("%w: %q and %q map to %q", ErrLogicalCollision, other, name, logical)
		}

		table.wire = append(table.wire, name)
		table.byWire[name] = struct{}{}
		table.logical[logical] = name
	}

	return table, nil
}

// MustFieldTable is like NewFieldTable but panics on an invalid column list.
// It is meant for package-level entity tables.
func MustFieldTable(wireNames ...string) *FieldTable {
	table, err := NewFieldTable(wireNames...)
	if err != nil {
		panic(err)
	}

	return table
}

// Wire resolves a logical or wire field name to its wire name.
func (t *FieldTable) Wire(name string) (string, error) {
	if t != nil {
		if wire, ok := t.logical[name]; ok {
			return wire, nil
		}

		if _, ok := t.byWire[name]; ok {
			return name, nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
}

// WireAll resolves every name, failing on the first unknown one.
func (t *FieldTable) WireAll(names []string) ([]string, error) {
	out := make([]string, 0, len(names))

	for _, name := range names {
		wire, err := t.Wire(name)
		if err != nil {
			return nil, err
		}

		out = append(out, wire)
	}

	return out, nil
}

// Has reports whether name resolves to a column.
func (t *FieldTable) Has(name string) bool {
	_, err := t.Wire(name)

	return err == nil
}

// WireNames returns the wire columns in declaration order.
func (t *FieldTable) WireNames() []string {
	if t == nil {
		return nil
	}

	out := make([]string, len(t.wire))
	copy(out, t.wire)

	return out
}

// Len returns the number of columns.
func (t *FieldTable) Len() int {
	if t == nil {
		return 0
	}

	return len(t.wire)
}

// LogicalName converts an UPPER_SNAKE_CASE wire name to camelCase.
func LogicalName(wire string) string {
	parts := strings.Split(strings.ToLower(wire), "_")

	var builder strings.Builder

	for i, part := range parts {
		if part == "" {
			continue
		}

		if i == 0 || builder.Len() == 0 {
			builder.WriteString(part)

			continue
		}

		runes := []rune(part)
		runes[0] = unicode.ToUpper(runes[0])
		builder.WriteString(string(runes))
	}

	return builder.String()
}

func isUpperSnake(name string) bool {
	for i, r := range name {
		switch {
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		case r == '_' && i > 0:
		default:
			return false
		}
	}

	return true
}
