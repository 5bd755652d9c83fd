package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "riptide.log")

	logger, closeFn, err := New(Options{Level: "debug", File: path})
	require.NoError(t, err)

	logger.Debug("cache hit", "id", "track-1")
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "cache hit")
	assert.Contains(t, string(data), "id=track-1")
}

func TestNew_UnknownLevelFallsBackToInfo(t *testing.T) {
	logger, closeFn, err := New(Options{Level: "chatty", File: filepath.Join(t.TempDir(), "x.log")})
	require.NoError(t, err)
	defer closeFn()

	assert.Equal(t, log.InfoLevel, logger.GetLevel())
}

func TestOrDiscard(t *testing.T) {
	assert.NotNil(t, OrDiscard(nil))

	l := Discard()
	assert.Same(t, l, OrDiscard(l))
}
