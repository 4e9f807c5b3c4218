// Package errors provides examples of structured error handling in sorer.
package errors_test

import (
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yth/sorer/pkg/errors"
)

// Example demonstrates basic error creation with details.
func Example() {
	err := errors.New(errors.ErrorTypeIndexOutOfRange, "column index out of range").
		WithDetail("column", 7).
		WithDetail("width", 5)

	fmt.Println(err.Error())

	// Output:
	// index_out_of_range: column index out of range
}

// ExampleWrap shows how to wrap existing errors with context.
func ExampleWrap() {
	originalErr := io.ErrUnexpectedEOF

	err := errors.Wrap(originalErr, errors.ErrorTypeFile, "failed to read sor file").
		WithDetail("file", "data.sor")

	if errors.IsType(err, errors.ErrorTypeFile) {
		fmt.Println("This is a file error")
	}

	fmt.Println(err.Error())

	// Output:
	// This is a file error
	// file: failed to read sor file: unexpected EOF
}

// ExampleIsRowLevel shows which error kinds are contained to a single row.
func ExampleIsRowLevel() {
	malformed := errors.New(errors.ErrorTypeMalformedField, "unterminated field")
	index := errors.New(errors.ErrorTypeIndexOutOfRange, "row 9 of 3")

	fmt.Println(errors.IsRowLevel(malformed))
	fmt.Println(errors.IsRowLevel(index))

	// Output:
	// true
	// false
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, errors.Wrap(nil, errors.ErrorTypeFile, "nothing"))
}

func TestWrapPreservesStackAndCause(t *testing.T) {
	inner := errors.New(errors.ErrorTypeMalformedField, "unterminated field")
	outer := errors.Wrap(inner, errors.ErrorTypeData, "row dropped")

	assert.Equal(t, inner.Stack, outer.Stack)
	assert.ErrorIs(t, outer, inner)
	assert.Equal(t, errors.ErrorTypeData, errors.TypeOf(outer))
	assert.True(t, errors.IsType(outer, errors.ErrorTypeData))
}

func TestTypeOfPlainError(t *testing.T) {
	assert.Equal(t, errors.ErrorType(""), errors.TypeOf(io.EOF))
	assert.False(t, errors.IsRowLevel(io.EOF))
}

func TestNewfAndDetail(t *testing.T) {
	err := errors.Newf(errors.ErrorTypeInvalidArgument, "bad value %q", "x1").WithDetail("flag", "from")

	assert.Equal(t, `invalid_argument: bad value "x1"`, err.Error())
	v, ok := err.Detail("flag")
	assert.True(t, ok)
	assert.Equal(t, "from", v)
	assert.NotEmpty(t, err.Stack)
}

func TestWrapf(t *testing.T) {
	err := errors.Wrapf(io.ErrShortWrite, errors.ErrorTypeFile, "failed to write %s record batch", "parquet")

	assert.Equal(t, "file: failed to write parquet record batch: short write", err.Error())
	assert.ErrorIs(t, err, io.ErrShortWrite)
	assert.Nil(t, errors.Wrapf(nil, errors.ErrorTypeFile, "%d", 1))
}
