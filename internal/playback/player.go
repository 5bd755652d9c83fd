// Package playback runs the playback actor: one goroutine that owns the
// output sink, the queue and all playback state, driven through a command
// mailbox and observed through event subscriptions.
package playback

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/samber/lo"

	"github.com/llehouerou/riptide/internal/audiocache"
	"github.com/llehouerou/riptide/internal/errmsg"
	"github.com/llehouerou/riptide/internal/logging"
	"github.com/llehouerou/riptide/internal/player"
)

// Defaults applied by New for zero Options fields.
const (
	DefaultTickInterval   = 250 * time.Millisecond
	DefaultPositionEvery  = 500 * time.Millisecond
	DefaultBufferedTracks = 2
)

// Options configures New.
type Options struct {
	Output player.Output     // default: player.NewNull()
	Cache  *audiocache.Cache // nil: remote sources bypass the disk cache

	Volume          float64 // initial volume, clamped to [0, 1]
	TickInterval    time.Duration
	PositionEvery   time.Duration
	EventBuffer     int
	BufferedTracks  int           // raw byte buffers kept in memory
	DownloadTimeout time.Duration // direct downloads when the cache is bypassed

	Logger *log.Logger
}

// Player is the handle to a running actor. It holds no playback state and
// may be shared freely.
type Player struct {
	mb   *mailbox
	bus  *broadcaster
	done <-chan struct{}
}

// New starts the actor goroutine. Call Shutdown to stop it.
func New(opts Options) (*Player, error) {
	logger := logging.OrDiscard(opts.Logger).With("component", "playback")
	if opts.Output == nil {
		opts.Output = player.NewNull()
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = DefaultTickInterval
	}
	if opts.PositionEvery <= 0 {
		opts.PositionEvery = DefaultPositionEvery
	}
	if opts.BufferedTracks <= 0 {
		opts.BufferedTracks = DefaultBufferedTracks
	}

	buffers, err := lru.New[string, []byte](opts.BufferedTracks)
	if err != nil {
		return nil, err
	}

	dl := audiocache.NewDownloader(opts.DownloadTimeout)
	if opts.Cache != nil {
		dl = opts.Cache.Downloader()
	}

	a := &actor{
		out:      opts.Output,
		src:      &fetcher{cache: opts.Cache, dl: dl, logger: logger},
		logger:   logger,
		mb:       newMailbox(),
		bus:      newBroadcaster(opts.EventBuffer),
		done:     make(chan struct{}),
		buffers:  buffers,
		tick:     opts.TickInterval,
		posEvery: opts.PositionEvery,
		queue:    newQueue(),
		state: PlaybackState{
			Volume:     lo.Clamp(opts.Volume, 0, 1),
			Repeat:     RepeatNone,
			QueueIndex: -1,
		},
	}
	go a.run()

	return &Player{mb: a.mb, bus: a.bus, done: a.done}, nil
}

// Subscribe returns a subscription to events emitted from now on.
func (p *Player) Subscribe() *Subscription {
	return p.bus.subscribe()
}

// PlayItem loads item and starts playing it from the beginning. It returns
// once the track is playing or has failed.
func (p *Player) PlayItem(ctx context.Context, item QueueItem) error {
	return p.PlayItemAt(ctx, item, 0)
}

// PlayItemAt is PlayItem starting at offset.
func (p *Player) PlayItemAt(ctx context.Context, item QueueItem, offset time.Duration) error {
	cmd := playItemCmd{request: newRequest(), item: *item.clone(), start: offset}
	_, err := p.call(ctx, cmd, cmd.reply)
	return err
}

// Seek moves the current track to position and waits for the outcome.
// Without a loaded track it does nothing.
func (p *Player) Seek(ctx context.Context, position time.Duration) error {
	cmd := seekCmd{request: newRequest(), position: position}
	_, err := p.call(ctx, cmd, cmd.reply)
	return err
}

// SeekAsync queues a seek without waiting for it.
func (p *Player) SeekAsync(position time.Duration) error {
	return p.mb.send(seekCmd{position: position})
}

// SetQueue replaces the queue and selects start (-1 for none) without
// starting playback.
func (p *Player) SetQueue(ctx context.Context, items []QueueItem, start int) error {
	cmd := setQueueCmd{request: newRequest(), items: items, start: start}
	_, err := p.call(ctx, cmd, cmd.reply)
	return err
}

// PlayIndex plays queue item i.
func (p *Player) PlayIndex(ctx context.Context, i int) error {
	cmd := playIndexCmd{request: newRequest(), index: i}
	_, err := p.call(ctx, cmd, cmd.reply)
	return err
}

// GetState returns a snapshot with an up-to-date position.
func (p *Player) GetState(ctx context.Context) (PlaybackState, error) {
	cmd := getStateCmd{request: newRequest()}
	return p.call(ctx, cmd, cmd.reply)
}

func (p *Player) Pause() error       { return p.mb.send(pauseCmd{}) }
func (p *Player) Resume() error      { return p.mb.send(resumeCmd{}) }
func (p *Player) TogglePause() error { return p.mb.send(togglePauseCmd{}) }

// Stop unloads the current track.
func (p *Player) Stop() error { return p.mb.send(stopCmd{}) }

// SetVolume sets the volume, clamped to [0, 1].
func (p *Player) SetVolume(v float64) error { return p.mb.send(setVolumeCmd{volume: v}) }

func (p *Player) ToggleShuffle() error             { return p.mb.send(toggleShuffleCmd{}) }
func (p *Player) SetRepeatMode(m RepeatMode) error { return p.mb.send(setRepeatCmd{mode: m}) }

// NextTrack plays the next queue item. RepeatAll wraps at the end; otherwise
// the last item is a no-op.
func (p *Player) NextTrack() error { return p.mb.send(nextCmd{}) }

// PreviousTrack mirrors NextTrack.
func (p *Player) PreviousTrack() error { return p.mb.send(previousCmd{}) }

// Shutdown stops the actor and closes every subscription. Commands sent
// afterwards fail with errmsg.ErrChannelClosed.
func (p *Player) Shutdown(ctx context.Context) error {
	if err := p.mb.send(shutdownCmd{}); err != nil && !errors.Is(err, errmsg.ErrChannelClosed) {
		return err
	}
	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed once the actor has exited.
func (p *Player) Done() <-chan struct{} { return p.done }

func (p *Player) call(ctx context.Context, cmd command, reply <-chan result) (PlaybackState, error) {
	if err := p.mb.send(cmd); err != nil {
		return PlaybackState{}, err
	}
	select {
	case res := <-reply:
		return res.state, res.err
	case <-ctx.Done():
		return PlaybackState{}, ctx.Err()
	}
}
