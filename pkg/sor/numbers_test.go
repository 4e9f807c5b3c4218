package sor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseIntPrefix(t *testing.T) {
	tests := []struct {
		input string
		want  int64
		n     int
	}{
		{"42", 42, 2},
		{"-7 kg", -7, 2},
		{"+3x", 3, 2},
		{"1 2", 1, 1},
		{"12.5", 12, 2},
		{"abc", 0, 0},
		{"-", 0, 0},
		{"", 0, 0},
		{"99999999999999999999", math.MaxInt64, 20},
		{"-99999999999999999999", math.MinInt64, 21},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v, n := ParseIntPrefix(tt.input)
			assert.Equal(t, tt.want, v)
			assert.Equal(t, tt.n, n)
		})
	}
}

func TestParseFloatPrefix(t *testing.T) {
	tests := []struct {
		input string
		want  float64
		n     int
	}{
		{"2.5", 2.5, 3},
		{"2.5 x", 2.5, 3},
		{"-1e3 m", -1000, 4},
		{"1e", 1, 1},
		{"1e+", 1, 1},
		{"5.", 5, 2},
		{".5", 0.5, 2},
		{"0x1A", 26, 4},
		{"0X1a zz", 26, 4},
		{"-0x1.8p3", -12, 8},
		{"0x1p", 1, 3},
		{"0x", 0, 1},
		{"0xg", 0, 1},
		{"Infinity", math.Inf(1), 8},
		{"-inf", math.Inf(-1), 4},
		{".", 0, 0},
		{"abc", 0, 0},
		{"", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v, n := ParseFloatPrefix(tt.input)
			assert.Equal(t, tt.want, v)
			assert.Equal(t, tt.n, n)
		})
	}
}

func TestParseFloatPrefixSpecialValues(t *testing.T) {
	v, n := ParseFloatPrefix("-NaN")
	assert.True(t, math.IsNaN(v))
	assert.Equal(t, 4, n)

	v, n = ParseFloatPrefix("1e999")
	assert.True(t, math.IsInf(v, 1))
	assert.Equal(t, 5, n)
}
