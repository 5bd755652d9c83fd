package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const appName = "riptide"

type Config struct {
	Cache   CacheConfig   `koanf:"cache"`
	Player  PlayerConfig  `koanf:"player"`
	Log     LogConfig     `koanf:"log"`
	Metrics MetricsConfig `koanf:"metrics"`

	// Desktop notification on track change
	Notify bool `koanf:"notify"`
}

// CacheConfig holds the disk cache settings.
type CacheConfig struct {
	Dir             string `koanf:"dir"`              // default: $TMPDIR/riptide_audio_cache
	MaxEntries      int    `koanf:"max_entries"`      // default: 100
	DownloadTimeout string `koanf:"download_timeout"` // Go duration, default: 120s
}

// PlayerConfig holds playback actor settings.
type PlayerConfig struct {
	Volume         *float64 `koanf:"volume"`          // initial volume 0.0-1.0 (default: 0.7)
	TickInterval   string   `koanf:"tick_interval"`   // default: 250ms
	PositionEvery  string   `koanf:"position_every"`  // PositionUpdate throttle, default: 500ms
	EventBuffer    int      `koanf:"event_buffer"`    // per-subscriber buffer, default: 64
	BufferedTracks int      `koanf:"buffered_tracks"` // decoded byte buffers kept in memory, default: 2
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `koanf:"level"` // debug, info, warn, error (default: info)
	File  string `koanf:"file"`  // default: $XDG_STATE_HOME/riptide/riptide.log
}

// MetricsConfig holds the Prometheus endpoint settings.
type MetricsConfig struct {
	Listen string `koanf:"listen"` // e.g. "127.0.0.1:9464", empty disables
}

func Load() (*Config, error) {
	return LoadFrom(getConfigPaths()...)
}

// LoadFrom loads the given files in order; later files override earlier ones.
// Missing files are skipped.
func LoadFrom(paths ...string) (*Config, error) {
	k := koanf.New(".")

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	if cfg.Cache.Dir != "" {
		cfg.Cache.Dir = expandPath(cfg.Cache.Dir)
	}
	if cfg.Log.File != "" {
		cfg.Log.File = expandPath(cfg.Log.File)
	}
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))

	return cfg, nil
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. $XDG_CONFIG_HOME/riptide/config.toml
	paths = append(paths, filepath.Join(xdg.ConfigHome, appName, "config.toml"))

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// GetCacheConfig returns the cache configuration with defaults applied.
func (c *Config) GetCacheConfig() CacheConfig {
	cfg := c.Cache

	if cfg.Dir == "" {
		cfg.Dir = filepath.Join(os.TempDir(), appName+"_audio_cache")
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = 100
	}
	if _, err := time.ParseDuration(cfg.DownloadTimeout); err != nil {
		cfg.DownloadTimeout = "120s"
	}

	return cfg
}

// DownloadTimeoutDuration returns the parsed download timeout.
func (c CacheConfig) DownloadTimeoutDuration() time.Duration {
	return parseDurationOr(c.DownloadTimeout, 120*time.Second)
}

// GetPlayerConfig returns the player configuration with defaults applied.
func (c *Config) GetPlayerConfig() PlayerConfig {
	cfg := c.Player

	if cfg.Volume == nil || *cfg.Volume < 0 || *cfg.Volume > 1 {
		v := 0.7
		cfg.Volume = &v
	}
	if parseDurationOr(cfg.TickInterval, 0) <= 0 {
		cfg.TickInterval = "250ms"
	}
	if parseDurationOr(cfg.PositionEvery, 0) <= 0 {
		cfg.PositionEvery = "500ms"
	}
	if cfg.EventBuffer <= 0 {
		cfg.EventBuffer = 64
	}
	if cfg.BufferedTracks <= 0 {
		cfg.BufferedTracks = 2
	}

	return cfg
}

// Tick returns the position tick interval.
func (c PlayerConfig) Tick() time.Duration {
	return parseDurationOr(c.TickInterval, 250*time.Millisecond)
}

// PositionThrottle returns the minimum spacing between position updates.
func (c PlayerConfig) PositionThrottle() time.Duration {
	return parseDurationOr(c.PositionEvery, 500*time.Millisecond)
}

// GetLogConfig returns the log configuration with defaults applied.
func (c *Config) GetLogConfig() LogConfig {
	cfg := c.Log

	switch cfg.Level {
	case "debug", "info", "warn", "error":
	default:
		cfg.Level = "info"
	}
	if cfg.File == "" {
		if path, err := xdg.StateFile(filepath.Join(appName, appName+".log")); err == nil {
			cfg.File = path
		}
	}

	return cfg
}

// HasMetrics returns true if the metrics endpoint is configured.
func (c *Config) HasMetrics() bool {
	return c.Metrics.Listen != ""
}

func parseDurationOr(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}
