//nolint:goconst // test cases intentionally repeat strings for readability
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("Could not get home dir: %v", err)
	}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "tilde expands to home",
			input:    "~/cache",
			expected: filepath.Join(home, "cache"),
		},
		{
			name:     "absolute path unchanged",
			input:    "/var/cache/riptide",
			expected: "/var/cache/riptide",
		},
		{
			name:     "relative path unchanged",
			input:    "cache/audio",
			expected: "cache/audio",
		},
		{
			name:     "empty string unchanged",
			input:    "",
			expected: "",
		},
		{
			name:     "tilde only",
			input:    "~",
			expected: home,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := expandPath(tt.input)
			if result != tt.expected {
				t.Errorf("expandPath(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestGetConfigPaths(t *testing.T) {
	paths := getConfigPaths()

	require.Len(t, paths, 2)
	assert.Equal(t, filepath.Join(xdg.ConfigHome, "riptide", "config.toml"), paths[0])
	assert.Equal(t, "config.toml", paths[1])
}

func TestGetCacheConfig_Defaults(t *testing.T) {
	cfg := Config{}
	cache := cfg.GetCacheConfig()

	assert.Equal(t, filepath.Join(os.TempDir(), "riptide_audio_cache"), cache.Dir)
	assert.Equal(t, 100, cache.MaxEntries)
	assert.Equal(t, 120*time.Second, cache.DownloadTimeoutDuration())
}

func TestGetCacheConfig_InvalidValues(t *testing.T) {
	cfg := Config{
		Cache: CacheConfig{
			MaxEntries:      -3,
			DownloadTimeout: "soon",
		},
	}
	cache := cfg.GetCacheConfig()

	assert.Equal(t, 100, cache.MaxEntries)
	assert.Equal(t, 120*time.Second, cache.DownloadTimeoutDuration())
}

func TestGetPlayerConfig_Defaults(t *testing.T) {
	cfg := Config{}
	p := cfg.GetPlayerConfig()

	require.NotNil(t, p.Volume)
	assert.InDelta(t, 0.7, *p.Volume, 1e-9)
	assert.Equal(t, 250*time.Millisecond, p.Tick())
	assert.Equal(t, 500*time.Millisecond, p.PositionThrottle())
	assert.Equal(t, 64, p.EventBuffer)
	assert.Equal(t, 2, p.BufferedTracks)
}

func TestGetPlayerConfig_ZeroVolumeKept(t *testing.T) {
	zero := 0.0
	cfg := Config{Player: PlayerConfig{Volume: &zero}}

	assert.Zero(t, *cfg.GetPlayerConfig().Volume)
}

func TestGetLogConfig_UnknownLevel(t *testing.T) {
	cfg := Config{Log: LogConfig{Level: "verbose", File: "/tmp/x.log"}}
	l := cfg.GetLogConfig()

	assert.Equal(t, "info", l.Level)
	assert.Equal(t, "/tmp/x.log", l.File)
}

func TestLoadFrom(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "base.toml")
	local := filepath.Join(dir, "local.toml")

	require.NoError(t, os.WriteFile(base, []byte(`
notify = true

[cache]
dir = "/srv/cache"
max_entries = 10

[player]
volume = 0.5
tick_interval = "100ms"

[log]
level = "DEBUG"
`), 0o600))
	require.NoError(t, os.WriteFile(local, []byte(`
[cache]
max_entries = 3

[metrics]
listen = "127.0.0.1:9464"
`), 0o600))

	cfg, err := LoadFrom(base, local, filepath.Join(dir, "missing.toml"))
	require.NoError(t, err)

	assert.True(t, cfg.Notify)
	assert.Equal(t, "/srv/cache", cfg.Cache.Dir)
	assert.Equal(t, 3, cfg.Cache.MaxEntries)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.HasMetrics())

	p := cfg.GetPlayerConfig()
	assert.InDelta(t, 0.5, *p.Volume, 1e-9)
	assert.Equal(t, 100*time.Millisecond, p.Tick())
}

func TestLoadFrom_InvalidToml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[cache\nmax_entries ="), 0o600))

	_, err := LoadFrom(path)
	assert.Error(t, err)
}
