// Package strings provides zero-copy byte/string helpers shared by the sor
// tokenizer, classifier and value decoder.
package strings

import (
	"unsafe"
)

// BytesToString converts byte slice to string without allocation
// WARNING: The returned string shares memory with the byte slice.
// Do not modify the byte slice after calling this function.
func BytesToString(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return unsafe.String(unsafe.SliceData(b), len(b))
}

// StringToBytes converts string to byte slice without allocation
// WARNING: The returned byte slice shares memory with the string.
// Do not modify the returned slice.
func StringToBytes(s string) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice(unsafe.StringData(s), len(s))
}

// Clone returns a copy of s that does not share memory with its source.
// Use it before a string produced by BytesToString outlives the mapping.
func Clone(s string) string {
	if len(s) == 0 {
		return ""
	}
	b := make([]byte, len(s))
	copy(b, s)
	return BytesToString(b)
}

// IsSpace reports whether c is whitespace in the C locale sense:
// space, \t, \n, \v, \f or \r.
func IsSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}

// ContainsSpace reports whether b holds any IsSpace byte
func ContainsSpace(b []byte) bool {
	for _, c := range b {
		if IsSpace(c) {
			return true
		}
	}
	return false
}

// TrimSpace removes leading and trailing whitespace
func TrimSpace(s string) string {
	start := 0
	end := len(s)

	for start < end && IsSpace(s[start]) {
		start++
	}

	for end > start && IsSpace(s[end-1]) {
		end--
	}

	return s[start:end]
}

// Quote wraps s in double quotes unless either end already carries one.
// Quoted and bare string tokens normalise to the same external form.
func Quote(s string) string {
	if len(s) > 0 && (s[0] == '"' || s[len(s)-1] == '"') {
		return s
	}
	b := make([]byte, 0, len(s)+2)
	b = append(b, '"')
	b = append(b, s...)
	b = append(b, '"')
	return BytesToString(b)
}

// Unquote strips one pair of surrounding double quotes, if present
func Unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
