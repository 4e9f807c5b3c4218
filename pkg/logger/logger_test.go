package logger

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsBadLevel(t *testing.T) {
	_, err := New(Config{Level: "loud"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestInitWritesToConfiguredPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sorer.log")
	require.NoError(t, Init(Config{Level: "debug", Encoding: "console", OutputPaths: []string{path}}))

	ctx := context.WithValue(context.Background(), FileKey, "data.sor")
	ctx = context.WithValue(ctx, PhaseKey, "build")
	WithContext(ctx).Debug("rows built")
	require.NoError(t, Sync())

	assert.FileExists(t, path)
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))
	l := Get()
	assert.Same(t, l, OrNop(l))
}
