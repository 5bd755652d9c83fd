package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/llehouerou/riptide/internal/audiocache"
	"github.com/llehouerou/riptide/internal/config"
	"github.com/llehouerou/riptide/internal/logging"
	"github.com/llehouerou/riptide/internal/metrics"
	"github.com/llehouerou/riptide/internal/notify"
	"github.com/llehouerou/riptide/internal/playback"
	"github.com/llehouerou/riptide/internal/player"
	"github.com/llehouerou/riptide/internal/stderr"
)

// app holds the long-lived pieces a play session needs.
type app struct {
	logger   *log.Logger
	closeLog func() error
	capture  *stderr.Capture
	cache    *audiocache.Cache
	player   *playback.Player
	announce *notify.NowPlaying
	metrics  *http.Server
}

// newApp wires config into a running player. With tui set, logs go to the
// state file and C-library stderr is captured so neither corrupts the screen.
func newApp(cfg *config.Config, tui bool) (*app, error) {
	lc := cfg.GetLogConfig()
	if !tui {
		lc.File = ""
	}
	logger, closeLog, err := logging.New(logging.Options{Level: lc.Level, File: lc.File})
	if err != nil {
		return nil, err
	}
	a := &app{logger: logger, closeLog: closeLog}

	if tui {
		if a.capture, err = stderr.Start(); err != nil {
			logger.Warn("stderr capture unavailable", "err", err)
		}
	}

	cc := cfg.GetCacheConfig()
	a.cache, err = audiocache.New(audiocache.Options{
		Dir:        cc.Dir,
		MaxEntries: cc.MaxEntries,
		Timeout:    cc.DownloadTimeoutDuration(),
	}, logger)
	if err != nil {
		a.close()
		return nil, err
	}

	pc := cfg.GetPlayerConfig()
	a.player, err = playback.New(playback.Options{
		Output:          player.NewSpeaker(),
		Cache:           a.cache,
		Volume:          *pc.Volume,
		TickInterval:    pc.Tick(),
		PositionEvery:   pc.PositionThrottle(),
		EventBuffer:     pc.EventBuffer,
		BufferedTracks:  pc.BufferedTracks,
		DownloadTimeout: cc.DownloadTimeoutDuration(),
		Logger:          logger,
	})
	if err != nil {
		a.close()
		return nil, err
	}

	n := notify.Disabled()
	if cfg.Notify {
		if n, err = notify.New(); err != nil {
			logger.Warn("notifications unavailable", "err", err)
			n = notify.Disabled()
		}
	}
	a.announce = notify.NewNowPlaying(n, logger)

	if cfg.HasMetrics() {
		a.metrics = &http.Server{
			Addr:              cfg.Metrics.Listen,
			Handler:           metrics.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info("metrics server listening", "addr", cfg.Metrics.Listen)
			if err := a.metrics.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server error", "err", err)
			}
		}()
	}

	logger.Info("started", "cache", cc.Dir, "entries", a.cache.Stats().Entries, "tui", tui)
	return a, nil
}

func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if a.player != nil {
		if err := a.player.Shutdown(ctx); err != nil {
			a.logger.Warn("player shutdown", "err", err)
		}
	}
	if a.metrics != nil {
		_ = a.metrics.Shutdown(ctx)
	}
	if a.capture != nil {
		a.capture.Stop()
	}
	_ = a.closeLog()
}
