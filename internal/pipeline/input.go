package pipeline

import (
	"bytes"

	"go.uber.org/zap"

	"github.com/yth/sorer/pkg/compression"
	"github.com/yth/sorer/pkg/errors"
	"github.com/yth/sorer/pkg/logger"
	"github.com/yth/sorer/pkg/metrics"
	"github.com/yth/sorer/pkg/mmap"
	"github.com/yth/sorer/pkg/sor"
)

// sniffLen is how many leading bytes are inspected for a compression magic
const sniffLen = 16

// InputOptions controls how a file is loaded
type InputOptions struct {
	// Compression forces an algorithm; "" detects it from the extension and
	// the leading bytes.
	Compression compression.Algorithm
	// MaxDecompressedSize bounds compressed inputs. Zero means unlimited.
	MaxDecompressedSize int64
}

// Input is a loaded sor file. Plain files stay memory mapped; compressed
// files are inflated into memory.
type Input struct {
	path        string
	reader      *mmap.Reader
	buf         *sor.Buffer
	compression compression.Algorithm
}

// Open loads path for reading
func Open(path string, opts InputOptions, log *zap.Logger) (*Input, error) {
	log = logger.OrNop(log)
	timer := metrics.NewTimer(metrics.PhaseLoad)

	r, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}

	alg := opts.Compression
	if alg == "" {
		data := r.Bytes()
		alg = compression.DetectAlgorithm(path, data[:min(len(data), sniffLen)])
	}

	in := &Input{path: path, compression: alg}
	if alg == compression.None {
		in.reader = r
		in.buf = r.Buffer()
	} else {
		data, err := inflate(r.Bytes(), alg, opts.MaxDecompressedSize)
		closeErr := r.Close()
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to decompress input").
				WithDetail("file", path).
				WithDetail("algorithm", string(alg))
		}
		if closeErr != nil {
			return nil, closeErr
		}
		in.buf = sor.NewBuffer(data)
	}

	elapsed := timer.Stop()
	log.Info("input loaded",
		zap.String("file", path),
		zap.String("compression", string(alg)),
		zap.Int("bytes", in.buf.Len()),
		zap.Duration("duration", elapsed))

	return in, nil
}

func inflate(data []byte, alg compression.Algorithm, limit int64) ([]byte, error) {
	c, err := compression.NewCompressor(&compression.Config{
		Algorithm:           alg,
		MaxDecompressedSize: limit,
	})
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	out.Grow(len(data) * 4)
	if err := c.DecompressStream(&out, bytes.NewReader(data)); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// Path returns the file the input was loaded from
func (in *Input) Path() string { return in.path }

// Compression returns the algorithm the file was decoded with
func (in *Input) Compression() compression.Algorithm { return in.compression }

// Buffer returns the logical content of the file. For mapped files it is
// invalid after Close.
func (in *Input) Buffer() *sor.Buffer { return in.buf }

// Size returns the logical length in bytes
func (in *Input) Size() int { return in.buf.Len() }

// Prefetch asks the kernel to read ahead [start, end) of a mapped file
func (in *Input) Prefetch(start, end int) {
	if in.reader != nil {
		in.reader.Prefetch(start, end)
	}
}

// Close releases the mapping, if any
func (in *Input) Close() error {
	if in.reader == nil {
		return nil
	}
	err := in.reader.Close()
	in.reader = nil
	return err
}
