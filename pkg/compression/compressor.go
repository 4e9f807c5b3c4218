// Package compression reads and writes compressed sor files.
//
// Every algorithm uses its streaming (framed) format, so data written by
// CompressStream is what the matching command-line tool produces and
// DecompressStream accepts files created by those tools.
//
//	comp, err := compression.NewCompressor(&compression.Config{Algorithm: compression.Zstd})
//	data, err := comp.Decompress(raw)
//
// Speed (fastest to slowest): LZ4 > Snappy/S2 > Zstd > Gzip/Deflate
package compression

import (
	"bytes"
	"io"
	"sync"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/yth/sorer/pkg/errors"
)

// Algorithm represents a compression algorithm
type Algorithm string

const (
	// None represents no compression
	None Algorithm = "none"
	// Gzip represents gzip compression
	Gzip Algorithm = "gzip"
	// Snappy represents framed snappy compression
	Snappy Algorithm = "snappy"
	// LZ4 represents lz4 frame compression
	LZ4 Algorithm = "lz4"
	// Zstd represents zstandard compression
	Zstd Algorithm = "zstd"
	// S2 represents framed s2 compression
	S2 Algorithm = "s2"
	// Deflate represents raw deflate compression
	Deflate Algorithm = "deflate"
)

// ParseAlgorithm validates an algorithm name. The empty string is None.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch a := Algorithm(name); a {
	case "":
		return None, nil
	case None, Gzip, Snappy, LZ4, Zstd, S2, Deflate:
		return a, nil
	default:
		return None, errors.Newf(errors.ErrorTypeInvalidArgument, "unsupported compression algorithm: %s", name)
	}
}

// Level represents compression level
type Level int

const (
	// Fastest prioritizes speed over compression ratio
	Fastest Level = 1
	// Default balances speed and compression
	Default Level = 5
	// Better improves compression at cost of speed
	Better Level = 7
	// Best maximizes compression ratio
	Best Level = 9
)

// String returns the level name
func (l Level) String() string {
	switch l {
	case Fastest:
		return "fastest"
	case Default:
		return "default"
	case Better:
		return "better"
	case Best:
		return "best"
	default:
		return "custom"
	}
}

// Compressor compresses and decompresses data. Implementations are safe for
// concurrent use.
type Compressor interface {
	// Compress compresses data into a new slice
	Compress(data []byte) ([]byte, error)
	// Decompress decompresses data into a new slice
	Decompress(data []byte) ([]byte, error)
	// CompressStream compresses from src to dst
	CompressStream(dst io.Writer, src io.Reader) error
	// DecompressStream decompresses from src to dst
	DecompressStream(dst io.Writer, src io.Reader) error
	// Algorithm returns the compression algorithm used
	Algorithm() Algorithm
	// Level returns the configured compression level
	Level() Level
}

// Config represents compressor configuration
type Config struct {
	Algorithm Algorithm
	Level     Level
	// MaxDecompressedSize bounds the output of Decompress and
	// DecompressStream. Zero means unlimited.
	MaxDecompressedSize int64
}

// DefaultConfig returns a zstd configuration at the default level
func DefaultConfig() *Config {
	return &Config{Algorithm: Zstd, Level: Default}
}

// streamCodec opens compressing writers and decompressing readers
type streamCodec interface {
	newWriter(dst io.Writer) (io.WriteCloser, error)
	newReader(src io.Reader) (io.Reader, func(), error)
}

// NewCompressor creates a compressor. A nil config uses DefaultConfig.
func NewCompressor(config *Config) (Compressor, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Level == 0 {
		cp := *config
		cp.Level = Default
		config = &cp
	}

	var codec streamCodec
	switch config.Algorithm {
	case None, "":
		codec = noneCodec{}
	case Gzip:
		codec = &gzipCodec{level: mapGzipLevel(config.Level)}
	case Snappy:
		codec = snappyCodec{}
	case LZ4:
		codec = lz4Codec{level: mapLZ4Level(config.Level)}
	case Zstd:
		codec = newZstdCodec(mapZstdLevel(config.Level))
	case S2:
		codec = s2Codec{better: config.Level >= Better}
	case Deflate:
		codec = deflateCodec{level: mapDeflateLevel(config.Level)}
	default:
		return nil, errors.Newf(errors.ErrorTypeInvalidArgument, "unsupported compression algorithm: %s", config.Algorithm)
	}

	alg := config.Algorithm
	if alg == "" {
		alg = None
	}
	return &compressor{algorithm: alg, level: config.Level, limit: config.MaxDecompressedSize, codec: codec}, nil
}

type compressor struct {
	algorithm Algorithm
	level     Level
	limit     int64
	codec     streamCodec
}

func (c *compressor) Algorithm() Algorithm { return c.algorithm }

func (c *compressor) Level() Level { return c.level }

func (c *compressor) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.CompressStream(&buf, bytes.NewReader(data)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c *compressor) Decompress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(len(data) * 3)
	if err := c.DecompressStream(&buf, bytes.NewReader(data)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c *compressor) CompressStream(dst io.Writer, src io.Reader) error {
	w, err := c.codec.newWriter(dst)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeData, "failed to open compressor").WithDetail("algorithm", string(c.algorithm))
	}
	if _, err := io.Copy(w, src); err != nil {
		w.Close()
		return errors.Wrap(err, errors.ErrorTypeData, "compression failed").WithDetail("algorithm", string(c.algorithm))
	}
	if err := w.Close(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeData, "compression failed").WithDetail("algorithm", string(c.algorithm))
	}
	return nil
}

func (c *compressor) DecompressStream(dst io.Writer, src io.Reader) error {
	r, release, err := c.codec.newReader(src)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeData, "failed to open decompressor").WithDetail("algorithm", string(c.algorithm))
	}
	defer release()

	if c.limit <= 0 {
		_, err = io.Copy(dst, r)
	} else {
		var n int64
		n, err = io.Copy(dst, io.LimitReader(r, c.limit+1))
		if err == nil && n > c.limit {
			return errors.Newf(errors.ErrorTypeData, "decompressed data exceeds %d bytes", c.limit).
				WithDetail("algorithm", string(c.algorithm))
		}
	}
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeData, "decompression failed").WithDetail("algorithm", string(c.algorithm))
	}
	return nil
}

// NewWriter returns a writer that compresses into dst. Close flushes the
// compressed stream but does not close dst.
func NewWriter(dst io.Writer, config *Config) (io.WriteCloser, error) {
	c, err := NewCompressor(config)
	if err != nil {
		return nil, err
	}
	return c.(*compressor).codec.newWriter(dst)
}

// NewReader returns a reader that decompresses src
func NewReader(src io.Reader, config *Config) (io.ReadCloser, error) {
	c, err := NewCompressor(config)
	if err != nil {
		return nil, err
	}
	r, release, err := c.(*compressor).codec.newReader(src)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData, "failed to open decompressor")
	}
	return &releasingReader{Reader: r, release: release}, nil
}

type releasingReader struct {
	io.Reader
	release func()
}

func (r *releasingReader) Close() error {
	if r.release != nil {
		r.release()
		r.release = nil
	}
	return nil
}

type noneCodec struct{}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func (noneCodec) newWriter(dst io.Writer) (io.WriteCloser, error) {
	return nopWriteCloser{dst}, nil
}

func (noneCodec) newReader(src io.Reader) (io.Reader, func(), error) {
	return src, func() {}, nil
}

type gzipCodec struct {
	level int
}

func (g *gzipCodec) newWriter(dst io.Writer) (io.WriteCloser, error) {
	return gzip.NewWriterLevel(dst, g.level)
}

func (g *gzipCodec) newReader(src io.Reader) (io.Reader, func(), error) {
	r, err := gzip.NewReader(src)
	if err != nil {
		return nil, nil, err
	}
	return r, func() { r.Close() }, nil
}

type snappyCodec struct{}

func (snappyCodec) newWriter(dst io.Writer) (io.WriteCloser, error) {
	return snappy.NewBufferedWriter(dst), nil
}

func (snappyCodec) newReader(src io.Reader) (io.Reader, func(), error) {
	return snappy.NewReader(src), func() {}, nil
}

type lz4Codec struct {
	level lz4.CompressionLevel
}

func (l lz4Codec) newWriter(dst io.Writer) (io.WriteCloser, error) {
	w := lz4.NewWriter(dst)
	if err := w.Apply(lz4.CompressionLevelOption(l.level)); err != nil {
		return nil, err
	}
	return w, nil
}

func (lz4Codec) newReader(src io.Reader) (io.Reader, func(), error) {
	return lz4.NewReader(src), func() {}, nil
}

// zstdCodec pools decoders; they hold sizeable window buffers
type zstdCodec struct {
	level   zstd.EncoderLevel
	decoder sync.Pool
}

func newZstdCodec(level zstd.EncoderLevel) *zstdCodec {
	z := &zstdCodec{level: level}
	z.decoder.New = func() interface{} {
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil
		}
		return dec
	}
	return z
}

func (z *zstdCodec) newWriter(dst io.Writer) (io.WriteCloser, error) {
	return zstd.NewWriter(dst, zstd.WithEncoderLevel(z.level))
}

func (z *zstdCodec) newReader(src io.Reader) (io.Reader, func(), error) {
	dec, ok := z.decoder.Get().(*zstd.Decoder)
	if !ok || dec == nil {
		return nil, nil, errors.New(errors.ErrorTypeInternal, "failed to create zstd decoder")
	}
	if err := dec.Reset(src); err != nil {
		z.decoder.Put(dec)
		return nil, nil, err
	}
	return dec, func() { z.decoder.Put(dec) }, nil
}

type s2Codec struct {
	better bool
}

func (s s2Codec) newWriter(dst io.Writer) (io.WriteCloser, error) {
	if s.better {
		return s2.NewWriter(dst, s2.WriterBetterCompression()), nil
	}
	return s2.NewWriter(dst), nil
}

func (s2Codec) newReader(src io.Reader) (io.Reader, func(), error) {
	return s2.NewReader(src), func() {}, nil
}

type deflateCodec struct {
	level int
}

func (d deflateCodec) newWriter(dst io.Writer) (io.WriteCloser, error) {
	return flate.NewWriter(dst, d.level)
}

func (deflateCodec) newReader(src io.Reader) (io.Reader, func(), error) {
	r := flate.NewReader(src)
	return r, func() { r.Close() }, nil
}

func mapGzipLevel(level Level) int {
	switch level {
	case Fastest:
		return gzip.BestSpeed
	case Best:
		return gzip.BestCompression
	default:
		return gzip.DefaultCompression
	}
}

func mapLZ4Level(level Level) lz4.CompressionLevel {
	switch level {
	case Fastest:
		return lz4.Fast
	case Best:
		return lz4.Level9
	default:
		return lz4.Level5
	}
}

func mapZstdLevel(level Level) zstd.EncoderLevel {
	switch level {
	case Fastest:
		return zstd.SpeedFastest
	case Better:
		return zstd.SpeedBetterCompression
	case Best:
		return zstd.SpeedBestCompression
	default:
		return zstd.SpeedDefault
	}
}

func mapDeflateLevel(level Level) int {
	switch level {
	case Fastest:
		return flate.BestSpeed
	case Best:
		return flate.BestCompression
	default:
		return flate.DefaultCompression
	}
}
