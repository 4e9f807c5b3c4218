package compression

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yth/sorer/pkg/errors"
)

var sorText = bytes.Repeat([]byte("<1> <12> < 3.5 > <\"some text\">\n"), 200)

var allAlgorithms = []Algorithm{None, Gzip, Snappy, LZ4, Zstd, S2, Deflate}

func TestRoundTrip(t *testing.T) {
	for _, alg := range allAlgorithms {
		t.Run(string(alg), func(t *testing.T) {
			comp, err := NewCompressor(&Config{Algorithm: alg})
			require.NoError(t, err)
			assert.Equal(t, alg, comp.Algorithm())
			assert.Equal(t, Default, comp.Level())

			compressed, err := comp.Compress(sorText)
			require.NoError(t, err)
			if alg != None {
				assert.Less(t, len(compressed), len(sorText))
			}

			decompressed, err := comp.Decompress(compressed)
			require.NoError(t, err)
			assert.Equal(t, sorText, decompressed)
		})
	}
}

func TestStreamRoundTrip(t *testing.T) {
	for _, alg := range allAlgorithms {
		t.Run(string(alg), func(t *testing.T) {
			comp, err := NewCompressor(&Config{Algorithm: alg, Level: Best})
			require.NoError(t, err)

			var compressed bytes.Buffer
			require.NoError(t, comp.CompressStream(&compressed, bytes.NewReader(sorText)))

			if alg != None && alg != Deflate {
				assert.Equal(t, alg, Sniff(compressed.Bytes()))
			}

			var out bytes.Buffer
			require.NoError(t, comp.DecompressStream(&out, &compressed))
			assert.Equal(t, sorText, out.Bytes())
		})
	}
}

func TestLevels(t *testing.T) {
	for _, level := range []Level{Fastest, Default, Better, Best} {
		t.Run(level.String(), func(t *testing.T) {
			comp, err := NewCompressor(&Config{Algorithm: LZ4, Level: level})
			require.NoError(t, err)

			compressed, err := comp.Compress(sorText)
			require.NoError(t, err)
			out, err := comp.Decompress(compressed)
			require.NoError(t, err)
			assert.Equal(t, sorText, out)
		})
	}
	assert.Equal(t, "custom", Level(3).String())
}

func TestDecompressLimit(t *testing.T) {
	comp, err := NewCompressor(&Config{Algorithm: Zstd, MaxDecompressedSize: 100})
	require.NoError(t, err)

	compressed, err := comp.Compress(sorText)
	require.NoError(t, err)

	_, err = comp.Decompress(compressed)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeData))
}

func TestDecompressGarbage(t *testing.T) {
	comp, err := NewCompressor(&Config{Algorithm: Gzip})
	require.NoError(t, err)

	_, err = comp.Decompress([]byte("<1> <2>\n"))
	assert.True(t, errors.IsType(err, errors.ErrorTypeData))
}

func TestUnsupportedAlgorithm(t *testing.T) {
	_, err := NewCompressor(&Config{Algorithm: "brotli"})
	assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidArgument))

	_, err = ParseAlgorithm("brotli")
	assert.Error(t, err)

	alg, err := ParseAlgorithm("")
	require.NoError(t, err)
	assert.Equal(t, None, alg)

	comp, err := NewCompressor(nil)
	require.NoError(t, err)
	assert.Equal(t, Zstd, comp.Algorithm())
}

func TestDetectAlgorithm(t *testing.T) {
	tests := []struct {
		path   string
		header []byte
		want   Algorithm
	}{
		{"data.sor.gz", nil, Gzip},
		{"data.sor.ZST", nil, Zstd},
		{"data.sor.lz4", nil, LZ4},
		{"data.sor.sz", nil, Snappy},
		{"data.sor.s2", nil, S2},
		{"data.sor.deflate", nil, Deflate},
		{"data.sor", []byte("<1> <2>\n"), None},
		{"data.sor", []byte{0x1f, 0x8b, 0x08}, Gzip},
		{"data", []byte{0x28, 0xb5, 0x2f, 0xfd, 0x00}, Zstd},
		{"data", nil, None},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectAlgorithm(tt.path, tt.header))
		})
	}
}

func BenchmarkDecompress(b *testing.B) {
	for _, alg := range []Algorithm{Gzip, LZ4, Zstd, S2} {
		comp, err := NewCompressor(&Config{Algorithm: alg})
		if err != nil {
			b.Fatal(err)
		}
		compressed, err := comp.Compress(sorText)
		if err != nil {
			b.Fatal(err)
		}

		b.Run(string(alg), func(b *testing.B) {
			b.SetBytes(int64(len(sorText)))
			for i := 0; i < b.N; i++ {
				if _, err := comp.Decompress(compressed); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func TestNewWriterAndReader(t *testing.T) {
	cfg := &Config{Algorithm: S2}

	var buf bytes.Buffer
	w, err := NewWriter(&buf, cfg)
	require.NoError(t, err)
	_, err = w.Write(sorText)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r, err := NewReader(&buf, cfg)
	require.NoError(t, err)
	defer r.Close()

	var out bytes.Buffer
	_, err = out.ReadFrom(r)
	require.NoError(t, err)
	assert.Equal(t, sorText, out.Bytes())
}
