//go:build !linux && !darwin

package mmap

import (
	"io"
	"os"
)

// Platforms without mmap read the file into memory instead.
const (
	ProtRead       = 0
	MapShared      = 0
	MadvSequential = 0
	MadvWillneed   = 0
)

func mmap(file *os.File, length int, _ int, _ int) ([]byte, error) {
	data := make([]byte, length)
	if _, err := io.ReadFull(file, data); err != nil {
		return nil, err
	}
	return data, nil
}

func munmap([]byte) error { return nil }

func madvise([]byte, int) error { return nil }
