package sor

import (
	"math"
	"strconv"
	"strings"
)

// ParseIntPrefix reads the longest base-10 integer at the start of s: an
// optional sign followed by digits. It returns the value and the number of
// bytes consumed. n is 0 when s does not start with an integer. Values
// outside int64 saturate at the nearest bound.
func ParseIntPrefix(s string) (v int64, n int) {
	i := scanSign(s, 0)
	digits := scanDigits(s, i, isDecimal)
	if digits == i {
		return 0, 0
	}
	// ParseInt saturates on ErrRange, and the prefix is otherwise well formed
	v, _ = strconv.ParseInt(s[:digits], 10, 64)
	return v, digits
}

// ParseFloatPrefix reads the longest floating-point literal at the start of
// s and returns its value and the number of bytes consumed. Accepted forms
// are decimal with optional fraction and exponent, hexadecimal with an
// optional binary exponent ("0x1A", "0x1.8p3"), and the words inf, infinity
// and nan in any case. n is 0 when s does not start with a number.
// Overflowing literals read as ±Inf.
func ParseFloatPrefix(s string) (v float64, n int) {
	start := scanSign(s, 0)

	if end := scanWord(s, start); end > start {
		if end-start == len("nan") && strings.EqualFold(s[start:end], "nan") {
			return math.NaN(), end
		}
		if start > 0 && s[0] == '-' {
			return math.Inf(-1), end
		}
		return math.Inf(1), end
	}

	if end := scanHexFloat(s, start); end > start {
		lit := s[:end]
		if !strings.ContainsAny(s[start:end], "pP") {
			lit += "p0"
		}
		v, _ = strconv.ParseFloat(lit, 64)
		return v, end
	}

	end := scanDecimalFloat(s, start)
	if end == start {
		return 0, 0
	}
	v, _ = strconv.ParseFloat(s[:end], 64)
	return v, end
}

func scanSign(s string, i int) int {
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		return i + 1
	}
	return i
}

func scanDigits(s string, i int, ok func(byte) bool) int {
	for i < len(s) && ok(s[i]) {
		i++
	}
	return i
}

func isDecimal(c byte) bool { return c >= '0' && c <= '9' }

func isHex(c byte) bool {
	return isDecimal(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// scanWord matches infinity, inf or nan at i
func scanWord(s string, i int) int {
	rest := s[i:]
	for _, w := range []string{"infinity", "inf", "nan"} {
		if len(rest) >= len(w) && strings.EqualFold(rest[:len(w)], w) {
			return i + len(w)
		}
	}
	return i
}

// scanHexFloat matches 0x<hex>[.<hex>][p[sign]<digits>] at i. At least one
// hex digit is required in the mantissa.
func scanHexFloat(s string, i int) int {
	if len(s)-i < 3 || s[i] != '0' || (s[i+1] != 'x' && s[i+1] != 'X') {
		return i
	}
	j := scanDigits(s, i+2, isHex)
	mantissa := j - (i + 2)
	if j < len(s) && s[j] == '.' {
		k := scanDigits(s, j+1, isHex)
		mantissa += k - (j + 1)
		j = k
	}
	if mantissa == 0 {
		return i
	}
	return scanExponent(s, j, 'p', 'P')
}

// scanDecimalFloat matches <digits>[.<digits>][e[sign]<digits>] at i with at
// least one digit in the mantissa
func scanDecimalFloat(s string, i int) int {
	j := scanDigits(s, i, isDecimal)
	mantissa := j - i
	if j < len(s) && s[j] == '.' {
		k := scanDigits(s, j+1, isDecimal)
		mantissa += k - (j + 1)
		j = k
	}
	if mantissa == 0 {
		return i
	}
	return scanExponent(s, j, 'e', 'E')
}

// scanExponent consumes an exponent at i only when it has digits
func scanExponent(s string, i int, lower, upper byte) int {
	if i >= len(s) || (s[i] != lower && s[i] != upper) {
		return i
	}
	j := scanSign(s, i+1)
	k := scanDigits(s, j, isDecimal)
	if k == j {
		return i
	}
	return k
}
