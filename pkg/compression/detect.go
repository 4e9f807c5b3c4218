package compression

import (
	"bytes"
	"path/filepath"
	"strings"
)

var extensions = map[string]Algorithm{
	".gz":      Gzip,
	".gzip":    Gzip,
	".zst":     Zstd,
	".zstd":    Zstd,
	".lz4":     LZ4,
	".sz":      Snappy,
	".snappy":  Snappy,
	".s2":      S2,
	".deflate": Deflate,
}

var (
	magicGzip   = []byte{0x1f, 0x8b}
	magicZstd   = []byte{0x28, 0xb5, 0x2f, 0xfd}
	magicLZ4    = []byte{0x04, 0x22, 0x4d, 0x18}
	magicSnappy = []byte("\xff\x06\x00\x00sNaPpY")
	magicS2     = []byte("\xff\x06\x00\x00S2sTwO")
)

// DetectAlgorithm picks the algorithm for path from its extension, falling
// back to the magic bytes at the start of header. Raw deflate has no magic
// and is only recognised by extension.
func DetectAlgorithm(path string, header []byte) Algorithm {
	if alg, ok := extensions[strings.ToLower(filepath.Ext(path))]; ok {
		return alg
	}
	return Sniff(header)
}

// Sniff identifies a compressed stream by its leading bytes
func Sniff(header []byte) Algorithm {
	switch {
	case bytes.HasPrefix(header, magicGzip):
		return Gzip
	case bytes.HasPrefix(header, magicZstd):
		return Zstd
	case bytes.HasPrefix(header, magicLZ4):
		return LZ4
	case bytes.HasPrefix(header, magicSnappy):
		return Snappy
	case bytes.HasPrefix(header, magicS2):
		return S2
	default:
		return None
	}
}
