// Package testutil provides testing utilities for sorer
package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/yth/sorer/pkg/sor"
)

// TestLogger creates a test logger that writes to the test output.
func TestLogger(t testing.TB) *zap.Logger {
	return zaptest.NewLogger(t)
}

// TestContext creates a test context with a 30-second timeout.
// The caller must call the returned cancel function to avoid leaks.
func TestContext(_ testing.TB) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

// Buffer wraps literal sor text in a buffer
func Buffer(text string) *sor.Buffer {
	return sor.NewBuffer([]byte(text))
}

// PaddedBuffer wraps text followed by pad NUL bytes, the way a page-aligned
// mapping of the same file would look
func PaddedBuffer(text string, pad int) *sor.Buffer {
	data := make([]byte, len(text)+pad)
	copy(data, text)
	return sor.NewPaddedBuffer(data, len(text)+pad)
}

// WriteFile writes content into a file under a per-test temp directory and
// returns its path
func WriteFile(t testing.TB, name string, content []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

// Rows joins rows with newlines. Every row is newline terminated.
func Rows(rows ...string) string {
	var sb strings.Builder
	for _, r := range rows {
		sb.WriteString(r)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// GenerateRows produces n rows of the shape <bool> <int> <float> <"string">,
// cycling through values so every column keeps its type.
func GenerateRows(n int) string {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&sb, "<%d> <%d> <%d.5> <\"row %d\">\n", i%2, i*7, i, i)
	}
	return sb.String()
}
