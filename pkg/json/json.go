// Package json wraps goccy/go-json with pooled buffers and a line-delimited
// streaming encoder.
package json

import (
	"bytes"
	"io"

	gojson "github.com/goccy/go-json"

	"github.com/yth/sorer/pkg/pool"
)

const maxPooledBuffer = 1 << 20

var bufferPool = pool.New(
	func() *bytes.Buffer { return bytes.NewBuffer(make([]byte, 0, 4096)) },
	func(b *bytes.Buffer) { b.Reset() },
	pool.WithKeep(func(b *bytes.Buffer) bool { return b.Cap() <= maxPooledBuffer }),
)

// GetBuffer gets an empty pooled bytes.Buffer
func GetBuffer() *bytes.Buffer {
	return bufferPool.Get()
}

// PutBuffer returns a buffer to the pool. Buffers over 1MB are dropped.
func PutBuffer(buf *bytes.Buffer) {
	bufferPool.Put(buf)
}

// Marshal is a drop-in replacement for encoding/json.Marshal
func Marshal(v interface{}) ([]byte, error) {
	return gojson.Marshal(v)
}

// Unmarshal is a drop-in replacement for encoding/json.Unmarshal
func Unmarshal(data []byte, v interface{}) error {
	return gojson.Unmarshal(data, v)
}

// MarshalIndent is a drop-in replacement for encoding/json.MarshalIndent
func MarshalIndent(v interface{}, prefix, indent string) ([]byte, error) {
	return gojson.MarshalIndent(v, prefix, indent)
}

// MarshalToWriter encodes v to w followed by a newline
func MarshalToWriter(w io.Writer, v interface{}) error {
	enc := gojson.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// LineEncoder writes one JSON document per line. Each value is encoded into
// a pooled buffer before it reaches the writer, so a failed encode never
// leaves a partial line behind.
type LineEncoder struct {
	w     io.Writer
	lines int
}

// NewLineEncoder creates a line encoder over w
func NewLineEncoder(w io.Writer) *LineEncoder {
	return &LineEncoder{w: w}
}

// Encode writes v as a single line
func (e *LineEncoder) Encode(v interface{}) error {
	buf := GetBuffer()
	defer PutBuffer(buf)

	enc := gojson.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	if _, err := e.w.Write(buf.Bytes()); err != nil {
		return err
	}
	e.lines++
	return nil
}

// Lines returns the number of lines written
func (e *LineEncoder) Lines() int {
	return e.lines
}
