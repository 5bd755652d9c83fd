package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/llehouerou/riptide/internal/audiocache"
	"github.com/llehouerou/riptide/internal/config"
	"github.com/llehouerou/riptide/internal/logging"
	"github.com/llehouerou/riptide/internal/playback"
)

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:          "riptide",
		Short:        "Stream and play audio with a local LRU cache",
		Version:      appVersion(),
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/riptide/config.toml)")

	load := func() (*config.Config, error) {
		if configPath != "" {
			return config.LoadFrom(configPath)
		}
		return config.Load()
	}

	root.AddCommand(playCmd(load), cacheCmd(load))
	return root
}

type playFlags struct {
	start    int
	shuffle  bool
	repeat   string
	headless bool
}

func playCmd(load func() (*config.Config, error)) *cobra.Command {
	var f playFlags

	cmd := &cobra.Command{
		Use:   "play <source>...",
		Short: "Play local files or http(s) URLs as a queue",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			repeat, err := parseRepeat(f.repeat)
			if err != nil {
				return err
			}
			if f.start < 0 || f.start >= len(args) {
				return fmt.Errorf("--start %d out of range for %d sources", f.start, len(args))
			}
			return runPlay(cmd.Context(), cfg, itemsFromArgs(args), repeat, f)
		},
	}

	cmd.Flags().IntVar(&f.start, "start", 0, "queue index to start from")
	cmd.Flags().BoolVar(&f.shuffle, "shuffle", false, "shuffle the queue")
	cmd.Flags().StringVar(&f.repeat, "repeat", "none", "repeat mode: none, one, all")
	cmd.Flags().BoolVar(&f.headless, "no-tui", false, "log playback events instead of drawing the player bar")
	return cmd
}

func runPlay(ctx context.Context, cfg *config.Config, items []playback.QueueItem, repeat playback.RepeatMode, f playFlags) error {
	a, err := newApp(cfg, !f.headless)
	if err != nil {
		return err
	}
	defer a.close()

	sub := a.player.Subscribe()
	defer sub.Close()

	if err := a.player.SetQueue(ctx, items, f.start); err != nil {
		return err
	}
	_ = a.player.SetRepeatMode(repeat)
	if f.shuffle {
		_ = a.player.ToggleShuffle()
	}

	first := a.player.PlayIndex(ctx, f.start)

	if f.headless {
		if first != nil {
			a.logger.Error("first track failed", "err", first)
		}
		ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runHeadless(ctx, sub, a)
	}

	m := newModel(a.player, sub, a.logger)
	m.capture = a.capture
	m.announce = a.announce
	if first != nil {
		m.message = first.Error()
	}

	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

// runHeadless logs events until the queue runs out or ctx ends.
func runHeadless(ctx context.Context, sub *playback.Subscription, a *app) error {
	var idle <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-sub.Done:
			return nil
		case <-idle:
			st, err := a.player.GetState(ctx)
			if err != nil || st.Status == playback.StatusIdle {
				return err
			}
			idle = nil
		case ev := <-sub.Events:
			switch ev := ev.(type) {
			case playback.TrackChanged:
				if ev.Item != nil {
					a.logger.Info("now playing", "name", ev.Item.Name, "artist", ev.Item.ArtistLine())
					a.announce.Announce(ev.Item)
				}
			case playback.StateChanged:
				if ev.State.Status == playback.StatusIdle {
					idle = time.After(time.Second)
				} else {
					idle = nil
				}
			case playback.Error:
				a.logger.Warn("playback error", "err", ev.Error())
			}
		}
	}
}

func parseRepeat(s string) (playback.RepeatMode, error) {
	switch s {
	case "", "none":
		return playback.RepeatNone, nil
	case "one":
		return playback.RepeatOne, nil
	case "all":
		return playback.RepeatAll, nil
	}
	return playback.RepeatNone, fmt.Errorf("unknown repeat mode %q", s)
}

func cacheCmd(load func() (*config.Config, error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the audio cache",
	}

	open := func() (*audiocache.Cache, error) {
		cfg, err := load()
		if err != nil {
			return nil, err
		}
		cc := cfg.GetCacheConfig()
		return audiocache.New(audiocache.Options{
			Dir:        cc.Dir,
			MaxEntries: cc.MaxEntries,
			Timeout:    cc.DownloadTimeoutDuration(),
		}, logging.Discard())
	}

	var verbose bool
	stats := &cobra.Command{
		Use:   "stats",
		Short: "Show cache size and entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := open()
			if err != nil {
				return err
			}
			st := c.Stats()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "dir:     %s\n", c.Dir())
			fmt.Fprintf(out, "entries: %d/%d\n", st.Entries, c.MaxEntries())
			fmt.Fprintf(out, "size:    %s\n", humanize.Bytes(uint64(st.Bytes)))
			if verbose {
				for _, e := range c.Entries() {
					fmt.Fprintf(out, "  %-40s %8s  %s\n", e.ID, humanize.Bytes(uint64(e.Size)), humanize.Time(e.LastAccessed))
				}
			}
			return nil
		},
	}
	stats.Flags().BoolVarP(&verbose, "verbose", "v", false, "list entries, most recently used last")

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every cached file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := open()
			if err != nil {
				return err
			}
			st := c.Stats()
			c.Clear()
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d entries (%s)\n", st.Entries, humanize.Bytes(uint64(st.Bytes)))
			return nil
		},
	}

	cmd.AddCommand(stats, clearCmd)
	return cmd
}

func appVersion() string {
	bi, ok := debug.ReadBuildInfo()
	if !ok || bi.Main.Version == "" {
		return "unknown"
	}
	return bi.Main.Version
}
