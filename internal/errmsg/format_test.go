//nolint:goconst // test cases intentionally repeat strings for readability
package errmsg

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		op       Op
		err      error
		expected string
	}{
		{
			name:     "nil error returns empty string",
			op:       OpPlaybackStart,
			err:      nil,
			expected: "",
		},
		{
			name:     "formats error with operation",
			op:       OpPlaybackStart,
			err:      errors.New("no audio device"),
			expected: "Failed to start playback: no audio device",
		},
		{
			name:     "cache operation",
			op:       OpCacheStore,
			err:      errors.New("disk full"),
			expected: "Failed to cache audio: disk full",
		},
		{
			name:     "wrapped kind keeps both messages",
			op:       OpSourceDownload,
			err:      Wrap(ErrNetwork, errors.New("unexpected status: 404 Not Found")),
			expected: "Failed to download audio source: network error: unexpected status: 404 Not Found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Format(tt.op, tt.err)
			if result != tt.expected {
				t.Errorf("Format(%q, %v) = %q, want %q", tt.op, tt.err, result, tt.expected)
			}
		})
	}
}

func TestFormatWith(t *testing.T) {
	tests := []struct {
		name     string
		op       Op
		context  string
		err      error
		expected string
	}{
		{
			name:     "nil error returns empty string",
			op:       OpSourceRead,
			context:  "song.mp3",
			err:      nil,
			expected: "",
		},
		{
			name:     "formats error with context",
			op:       OpSourceRead,
			context:  "song.mp3",
			err:      errors.New("permission denied"),
			expected: "Failed to read audio source 'song.mp3': permission denied",
		},
		{
			name:     "empty context falls back to Format",
			op:       OpSourceRead,
			context:  "",
			err:      errors.New("permission denied"),
			expected: "Failed to read audio source: permission denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FormatWith(tt.op, tt.context, tt.err)
			if result != tt.expected {
				t.Errorf("FormatWith(%q, %q, %v) = %q, want %q", tt.op, tt.context, tt.err, result, tt.expected)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	base := errors.New("connection refused")

	err := Wrap(ErrNetwork, base)
	assert.ErrorIs(t, err, ErrNetwork)
	assert.ErrorIs(t, err, base)

	assert.NoError(t, Wrap(ErrNetwork, nil))

	// already of the requested kind: not double-wrapped
	assert.Same(t, err, Wrap(ErrNetwork, err))
}

func TestKind(t *testing.T) {
	assert.Equal(t, ErrDecode, Kind(fmt.Errorf("open: %w", ErrDecode)))
	assert.Equal(t, ErrMissingSource, Kind(Wrap(ErrMissingSource, errors.New("empty"))))
	assert.NoError(t, Kind(errors.New("plain")))
	assert.NoError(t, Kind(nil))
}
