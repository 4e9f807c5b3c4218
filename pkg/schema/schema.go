// Package schema infers the column types of a sor buffer from a bounded
// sample of its leading rows.
package schema

import (
	"strings"

	"github.com/yth/sorer/pkg/errors"
	jsonpool "github.com/yth/sorer/pkg/json"
	"github.com/yth/sorer/pkg/sor"
)

// Schema is an ordered list of column types. It is immutable once built.
type Schema struct {
	types []sor.Type
}

// New creates a schema from column types. The slice is copied.
func New(types ...sor.Type) *Schema {
	cp := make([]sor.Type, len(types))
	copy(cp, types)
	return &Schema{types: cp}
}

// Width returns the number of columns
func (s *Schema) Width() int {
	return len(s.types)
}

// Type returns the type of column i
func (s *Schema) Type(i int) (sor.Type, error) {
	if i < 0 || i >= len(s.types) {
		return sor.Bottom, errors.Newf(errors.ErrorTypeIndexOutOfRange,
			"column %d out of range for schema of width %d", i, len(s.types)).
			WithDetail("column", i).
			WithDetail("width", len(s.types))
	}
	return s.types[i], nil
}

// Types returns a copy of the column types
func (s *Schema) Types() []sor.Type {
	cp := make([]sor.Type, len(s.types))
	copy(cp, s.types)
	return cp
}

// Equal reports whether both schemas have the same columns
func (s *Schema) Equal(other *Schema) bool {
	if other == nil || len(s.types) != len(other.types) {
		return false
	}
	for i, t := range s.types {
		if other.types[i] != t {
			return false
		}
	}
	return true
}

// String renders the schema as "[BOOL, INT, ...]"
func (s *Schema) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, t := range s.types {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(t.String())
	}
	sb.WriteByte(']')
	return sb.String()
}

// MarshalJSON renders the schema as a list of type names
func (s *Schema) MarshalJSON() ([]byte, error) {
	names := make([]string, len(s.types))
	for i, t := range s.types {
		names[i] = t.String()
	}
	return jsonpool.Marshal(names)
}
