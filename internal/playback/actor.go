package playback

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/samber/lo"

	"github.com/llehouerou/riptide/internal/decode"
	"github.com/llehouerou/riptide/internal/errmsg"
	"github.com/llehouerou/riptide/internal/metrics"
	"github.com/llehouerou/riptide/internal/player"
)

// actor owns every piece of playback state. Only run's goroutine touches it.
type actor struct {
	out     player.Output
	src     *fetcher
	logger  *log.Logger
	mb      *mailbox
	bus     *broadcaster
	done    chan struct{}
	buffers *lru.Cache[string, []byte]

	tick     time.Duration
	posEvery time.Duration

	state PlaybackState
	queue *queue

	sink     player.Sink
	engine   *decode.Engine
	data     []byte // bytes of state.Current
	duration time.Duration
	finished bool // current track ran to its end

	// position = visual + time.Since(audioStart) while audioStart is set
	visual     time.Duration
	audioStart time.Time
	lastEmit   time.Time
}

func (a *actor) run() {
	defer close(a.done)

	ticker := time.NewTicker(a.tick)
	defer ticker.Stop()

	for {
		select {
		case <-a.mb.wake:
			batch := a.mb.take()
			for i, cmd := range batch {
				if _, ok := cmd.(shutdownCmd); ok {
					a.shutdown(batch[i+1:])
					return
				}
				a.handle(cmd)
			}
		case <-ticker.C:
			a.onTick()
		}
	}
}

func (a *actor) handle(cmd command) {
	switch c := cmd.(type) {
	case playItemCmd:
		err := a.playItem(c.item, c.start)
		c.respond(result{err: err})
	case seekCmd:
		err := a.seek(c.position)
		c.respond(result{err: err})
	case setQueueCmd:
		a.queue.set(c.items, c.start)
		a.emitState()
		c.respond(result{})
	case playIndexCmd:
		err := a.playIndex(c.index)
		c.respond(result{err: err})
	case getStateCmd:
		a.checkFinished()
		c.respond(result{state: a.snapshot()})
	case pauseCmd:
		a.pause()
	case resumeCmd:
		a.resume()
	case togglePauseCmd:
		if a.state.Status == StatusPlaying {
			a.pause()
		} else {
			a.resume()
		}
	case stopCmd:
		a.stop()
	case setVolumeCmd:
		a.setVolume(c.volume)
	case toggleShuffleCmd:
		a.queue.setShuffle(!a.queue.shuffled)
		a.state.Shuffle = a.queue.shuffled
		a.emitState()
	case setRepeatCmd:
		if !c.mode.valid() {
			a.logger.Warn("ignoring unknown repeat mode", "mode", int(c.mode))
			return
		}
		a.state.Repeat = c.mode
		a.emitState()
	case nextCmd:
		if i, ok := a.queue.next(a.state.Repeat); ok {
			a.playQueued(i, errmsg.OpPlaybackNext)
		}
	case previousCmd:
		if i, ok := a.queue.previous(a.state.Repeat); ok {
			a.playQueued(i, errmsg.OpPlaybackPrev)
		}
	default:
		a.logger.Error("unknown command", "type", fmt.Sprintf("%T", cmd))
	}
}

// playItem loads item and starts it at start. On failure the actor is left
// Idle with nothing loaded.
func (a *actor) playItem(item QueueItem, start time.Duration) error {
	start = max(start, 0)
	a.setStatus(StatusLoading)

	data, cached, err := a.load(item)
	if err != nil {
		return a.failLoad(errmsg.OpSourceRead, item, err)
	}

	eng, err := a.openAt(data, start)
	if err != nil && cached {
		// A cached file that no longer decodes is dropped; the original
		// URL gets one more try.
		a.logger.Warn("cached audio unreadable, refetching", "id", item.ID, "err", err)
		a.src.evict(item.ID)
		a.buffers.Remove(item.key())
		data, err = a.src.download(context.Background(), item)
		if err == nil {
			eng, err = a.openAt(data, start)
		}
	}
	if err != nil {
		return a.failLoad(errmsg.OpDecodeOpen, item, err)
	}

	sink, err := a.out.NewSink(eng, eng.Format(), a.state.Volume)
	if err != nil {
		_ = eng.Close()
		return a.failLoad(errmsg.OpPlaybackStart, item, fmt.Errorf("%w: %w", errmsg.ErrIO, err))
	}

	a.replace(eng, sink)
	a.data = data
	a.buffers.Add(item.key(), data)
	item = withTags(item, data)
	a.state.Current = item.clone()
	a.duration = eng.Duration()
	if a.duration <= 0 {
		a.duration = item.Duration
	}
	a.finished = false
	a.anchor(start, true)
	a.state.Playing = true
	a.state.Status = StatusPlaying
	metrics.RecordPlaybackStart(true)

	a.logger.Info("playing",
		"id", item.ID,
		"name", item.Name,
		"codec", eng.Codec(),
		"rate", int(eng.Format().SampleRate),
		"size", humanize.Bytes(uint64(len(data))),
		"start", start)

	a.publish(TrackChanged{Item: item.clone()})
	a.emitState()
	return nil
}

// load returns the item's bytes, reusing the current or a recently played
// buffer. cached reports bytes read from the disk cache.
func (a *actor) load(item QueueItem) (data []byte, cached bool, err error) {
	if b, ok := a.buffers.Get(item.key()); ok {
		return b, false, nil
	}
	return a.src.fetch(context.Background(), item)
}

// openAt builds an engine over data positioned at start.
func (a *actor) openAt(data []byte, start time.Duration) (*decode.Engine, error) {
	eng, err := decode.Open(data)
	if err != nil {
		return nil, err
	}
	if start <= 0 {
		return eng, nil
	}

	began := time.Now()
	res, err := eng.SeekTo(start, func(skipped, total int64) {
		a.logger.Debug("fallback seek progress", "skipped", skipped, "total", total)
	})
	if err != nil {
		_ = eng.Close()
		return nil, err
	}
	metrics.RecordSeek(res.Strategy.String(), time.Since(began))
	if res.NativeErr != nil {
		a.logger.Warn("native seek failed, used fallback",
			"target", res.Target, "skipped", res.Skipped, "err", res.NativeErr)
	}
	return eng, nil
}

func (a *actor) failLoad(op errmsg.Op, item QueueItem, err error) error {
	metrics.RecordPlaybackStart(false)
	a.logger.Error("playback failed", "op", string(op), "id", item.ID, "source", item.Source, "err", err)

	hadTrack := a.state.Current != nil
	a.unload()
	a.publish(Error{Op: op, Err: err})
	a.emitState()
	if hadTrack {
		a.publish(TrackChanged{})
	}
	return err
}

// seek restarts the current track at position on a fresh engine, keeping
// the paused flag. Any failure falls back to a full reload at position.
func (a *actor) seek(position time.Duration) error {
	a.checkFinished()
	if a.state.Current == nil || a.data == nil {
		return nil
	}
	position = max(position, 0)
	paused := a.state.Status == StatusPaused

	eng, err := a.openAt(a.data, position)
	var sink player.Sink
	if err == nil {
		sink, err = a.out.NewSink(eng, eng.Format(), a.state.Volume)
		if err != nil {
			_ = eng.Close()
		}
	}
	if err != nil {
		a.logger.Warn("seek failed, reloading track", "position", position, "err", err)
		a.publish(Error{Op: errmsg.OpPlaybackSeek, Err: err})
		if err := a.playItem(*a.state.Current, position); err != nil {
			return err
		}
		if paused {
			a.pause()
		}
		return nil
	}

	if paused {
		sink.SetPaused(true)
	}
	a.replace(eng, sink)
	a.finished = false
	a.anchor(position, !paused)
	a.state.Playing = !paused
	a.state.Status = lo.Ternary(paused, StatusPaused, StatusPlaying)

	a.emitState()
	a.emitPosition()
	return nil
}

func (a *actor) pause() {
	a.checkFinished()
	if a.sink == nil || a.state.Status != StatusPlaying {
		return
	}
	a.sink.SetPaused(true)
	a.anchor(a.clampedPosition(), false)
	a.state.Playing = false
	a.state.Status = StatusPaused
	a.emitState()
}

func (a *actor) resume() {
	if a.finished && a.state.Current != nil {
		if err := a.playItem(*a.state.Current, 0); err != nil {
			a.logger.Warn("restart failed", "err", err)
		}
		return
	}
	if a.sink == nil || a.state.Status != StatusPaused {
		return
	}
	a.sink.SetPaused(false)
	a.anchor(a.visual, true)
	a.state.Playing = true
	a.state.Status = StatusPlaying
	a.emitState()
}

func (a *actor) stop() {
	a.unload()
	a.buffers.Purge()
	a.emitState()
	a.publish(TrackChanged{})
}

func (a *actor) setVolume(v float64) {
	v = lo.Clamp(v, 0, 1)
	a.state.Volume = v
	if a.sink != nil {
		a.sink.SetVolume(v)
	}
	a.emitState()
}

// playIndex selects queue item i and plays it.
func (a *actor) playIndex(i int) error {
	if !a.queue.jumpTo(i) {
		return fmt.Errorf("%w: queue index %d", errmsg.ErrNoTrack, i)
	}
	item, _ := a.queue.item(i)
	return a.playItem(item, 0)
}

// playQueued plays item i after the cursor already moved there. Failures are
// reported as events only.
func (a *actor) playQueued(i int, op errmsg.Op) {
	item, ok := a.queue.item(i)
	if !ok {
		return
	}
	if err := a.playItem(item, 0); err != nil {
		a.logger.Debug("queue navigation failed", "op", string(op), "index", i, "err", err)
	}
}

func (a *actor) onTick() {
	if a.state.Status != StatusPlaying {
		return
	}
	if a.checkFinished() {
		return
	}

	a.state.Position = a.position().Seconds()
	if time.Since(a.lastEmit) >= a.posEvery {
		a.emitPosition()
		a.emitState()
	}
}

// checkFinished completes the playing track once the clock has reached its
// duration. Paths that read or freeze the position call it first.
func (a *actor) checkFinished() bool {
	if a.state.Status != StatusPlaying || a.duration <= 0 || a.position() < a.duration {
		return false
	}
	a.complete()
	return true
}

// complete handles a track reaching its end, then advances per repeat mode.
func (a *actor) complete() {
	a.stopSink()
	a.anchor(a.duration, false)
	a.state.Playing = false
	a.state.Status = StatusIdle
	a.finished = true
	a.emitPosition()
	a.emitState()

	switch {
	case a.state.Repeat == RepeatOne:
		a.resume()
	case a.queue.index() >= 0:
		if i, ok := a.queue.next(a.state.Repeat); ok {
			a.playQueued(i, errmsg.OpPlaybackNext)
		}
	}
}

func (a *actor) shutdown(pending []command) {
	pending = append(pending, a.mb.close()...)
	for _, cmd := range pending {
		if r, ok := cmd.(responder); ok {
			r.respond(result{err: errmsg.ErrChannelClosed})
		}
	}
	a.unload()
	a.bus.close()
	a.logger.Debug("playback actor stopped", "dropped", len(pending))
}

// replace swaps in a new engine and sink, then stops the old ones.
func (a *actor) replace(eng *decode.Engine, sink player.Sink) {
	a.stopSink()
	a.engine = eng
	a.sink = sink
}

func (a *actor) stopSink() {
	if a.sink != nil {
		a.sink.Stop()
		a.sink = nil
	}
	if a.engine != nil {
		_ = a.engine.Close()
		a.engine = nil
	}
}

// unload stops output and forgets the current track.
func (a *actor) unload() {
	a.stopSink()
	a.data = nil
	a.duration = 0
	a.finished = false
	a.anchor(0, false)
	a.state.Current = nil
	a.state.Playing = false
	a.state.Status = StatusIdle
}

// anchor resets position bookkeeping to pos, running the clock if running.
func (a *actor) anchor(pos time.Duration, running bool) {
	a.visual = pos
	a.audioStart = time.Time{}
	if running {
		a.audioStart = time.Now()
	}
	a.state.Position = pos.Seconds()
}

func (a *actor) position() time.Duration {
	if a.audioStart.IsZero() {
		return a.visual
	}
	return a.visual + time.Since(a.audioStart)
}

func (a *actor) setStatus(s Status) {
	a.state.Status = s
	a.emitState()
}

// clampedPosition is position capped at the known duration.
func (a *actor) clampedPosition() time.Duration {
	pos := a.position()
	if a.duration > 0 {
		pos = min(pos, a.duration)
	}
	return pos
}

func (a *actor) snapshot() PlaybackState {
	if a.state.Status == StatusPlaying {
		a.state.Position = a.clampedPosition().Seconds()
	}
	a.state.Duration = a.duration.Seconds()
	a.state.QueueIndex = a.queue.index()
	a.state.QueueLen = a.queue.len()
	return a.state.clone()
}

func (a *actor) emitState() {
	a.publish(StateChanged{State: a.snapshot()})
}

func (a *actor) emitPosition() {
	a.lastEmit = time.Now()
	a.publish(PositionUpdate{Position: a.state.Position})
}

func (a *actor) publish(e Event) {
	a.bus.publish(e)
}
