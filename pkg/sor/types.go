package sor

import (
	"github.com/yth/sorer/pkg/errors"
)

// Type is a column or field type. Values are ordered from least general
// (Bottom) to most general (String).
type Type uint8

const (
	// Bottom carries no type information: empty or ambiguous fields
	Bottom Type = iota
	// Bool is a bare 0 or 1
	Bool
	// Int is a signed base-10 integer
	Int
	// Float is a floating-point literal
	Float
	// String is a quoted string or an unrecognised single token
	String
)

// String returns the type name.
func (t Type) String() string {
	switch t {
	case Bottom:
		return "BOTTOM"
	case Bool:
		return "BOOL"
	case Int:
		return "INT"
	case Float:
		return "FLOAT"
	case String:
		return "STRING"
	default:
		return "UNKNOWN"
	}
}

// ParseType parses a name produced by Type.String
func ParseType(s string) (Type, error) {
	switch s {
	case "BOTTOM":
		return Bottom, nil
	case "BOOL":
		return Bool, nil
	case "INT":
		return Int, nil
	case "FLOAT":
		return Float, nil
	case "STRING":
		return String, nil
	default:
		return Bottom, errors.Newf(errors.ErrorTypeInvalidArgument, "unknown type %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler
func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (t *Type) UnmarshalText(text []byte) error {
	parsed, err := ParseType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Fits reports whether a field of type t may be stored in a column of type col
func (t Type) Fits(col Type) bool {
	return t <= col
}

// Widen returns the more general of a and b
func Widen(a, b Type) Type {
	if b > a {
		return b
	}
	return a
}
