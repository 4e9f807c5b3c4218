// Package mmap maps sor files read-only into memory and aligns byte ranges
// to row boundaries
package mmap

import (
	"os"
	"sync"

	"github.com/yth/sorer/pkg/errors"
	"github.com/yth/sorer/pkg/sor"
)

// Reader holds a read-only shared mapping of a whole file
type Reader struct {
	file     *os.File
	data     []byte
	size     int
	pageSize int

	mu sync.RWMutex
}

// Open maps filename. An empty file yields a Reader with an empty buffer.
func Open(filename string) (*Reader, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to open file").
			WithDetail("file", filename)
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to stat file").
			WithDetail("file", filename)
	}
	if !stat.Mode().IsRegular() {
		file.Close()
		return nil, errors.New(errors.ErrorTypeFile, "not a regular file").
			WithDetail("file", filename)
	}

	r := &Reader{
		file:     file,
		size:     int(stat.Size()),
		pageSize: os.Getpagesize(),
	}
	if r.size == 0 {
		return r, nil
	}

	// Map exactly the file size; reading the tail of the last page is safe,
	// reading a page past the end of the file is not.
	data, err := mmap(file, r.size, ProtRead, MapShared)
	if err != nil {
		file.Close()
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to mmap file").
			WithDetail("file", filename).
			WithDetail("size", r.size)
	}
	r.data = data

	// advice only; a failure changes nothing observable
	_ = madvise(r.data, MadvSequential)

	return r, nil
}

// Size returns the file size in bytes
func (r *Reader) Size() int {
	return r.size
}

// Bytes returns the mapped data. It is invalid after Close.
func (r *Reader) Bytes() []byte {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.data
}

// Buffer returns a sor buffer over the mapping. It is invalid after Close.
func (r *Reader) Buffer() *sor.Buffer {
	return sor.NewPaddedBuffer(r.Bytes(), r.size)
}

// Prefetch asks the kernel to read ahead the pages covering [start, end)
func (r *Reader) Prefetch(start, end int) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.data == nil {
		return
	}
	startPage := (start / r.pageSize) * r.pageSize
	if startPage < 0 {
		startPage = 0
	}
	if end > r.size {
		end = r.size
	}
	if end <= startPage {
		return
	}
	_ = madvise(r.data[startPage:end], MadvWillneed)
}

// Close unmaps the file and closes it
func (r *Reader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var err error
	if r.data != nil {
		err = munmap(r.data)
		r.data = nil
	}
	if r.file != nil {
		if closeErr := r.file.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		r.file = nil
	}
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to close mapping")
	}
	return nil
}
