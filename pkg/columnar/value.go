package columnar

import (
	"strconv"

	"github.com/yth/sorer/pkg/sor"
)

// Value is one decoded cell. Only the field matching Type is set; Missing
// cells carry the column type and no value.
type Value struct {
	Type    sor.Type
	Missing bool

	Bool  bool    // for sor.Bool
	Int   int64   // for sor.Int
	Float float64 // for sor.Float
	Str   string  // for sor.String (quoted) and sor.Bottom (raw)
}

// String renders the value the way the CLI prints it: 0 or 1 for booleans,
// base-10 integers, shortest round-trip floats and quoted strings. Missing
// values render as the empty string.
func (v Value) String() string {
	if v.Missing {
		return ""
	}
	switch v.Type {
	case sor.Bool:
		if v.Bool {
			return "1"
		}
		return "0"
	case sor.Int:
		return strconv.FormatInt(v.Int, 10)
	case sor.Float:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	default:
		return v.Str
	}
}

// Interface returns the Go value held by v, or nil when missing
func (v Value) Interface() interface{} {
	if v.Missing {
		return nil
	}
	switch v.Type {
	case sor.Bool:
		return v.Bool
	case sor.Int:
		return v.Int
	case sor.Float:
		return v.Float
	default:
		return v.Str
	}
}
