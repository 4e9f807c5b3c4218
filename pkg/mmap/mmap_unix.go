//go:build linux || darwin

package mmap

import (
	"os"

	"golang.org/x/sys/unix"
)

const (
	// ProtRead maps pages read-only
	ProtRead = unix.PROT_READ
	// MapShared shares the mapping with the page cache
	MapShared = unix.MAP_SHARED
	// MadvSequential hints sequential access
	MadvSequential = unix.MADV_SEQUENTIAL
	// MadvWillneed asks for read-ahead
	MadvWillneed = unix.MADV_WILLNEED
)

func mmap(file *os.File, length int, prot int, flags int) ([]byte, error) {
	return unix.Mmap(int(file.Fd()), 0, length, prot, flags)
}

func munmap(b []byte) error {
	return unix.Munmap(b)
}

func madvise(b []byte, advice int) error {
	if len(b) == 0 {
		return nil
	}
	return unix.Madvise(b, advice)
}
