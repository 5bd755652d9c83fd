package playback

import (
	"slices"
	"strings"
	"time"
)

// Status is the actor's lifecycle state.
//
//	Idle ──PlayItem──▶ Loading ──ok──▶ Playing ◀──resume/pause──▶ Paused
//	  ▲                   │ fail           │                          │
//	  └───────────────────┴────── stop / track end ───────────────────┘
//
// A finished track stays loaded while Idle, so Seek and Resume can restart it.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusPlaying
	StatusPaused
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "Idle"
	case StatusLoading:
		return "Loading"
	case StatusPlaying:
		return "Playing"
	case StatusPaused:
		return "Paused"
	default:
		return "Unknown"
	}
}

// RepeatMode defines the repeat behavior.
type RepeatMode int

const (
	RepeatNone RepeatMode = iota
	RepeatOne
	RepeatAll
)

// String returns the repeat mode name.
func (m RepeatMode) String() string {
	switch m {
	case RepeatNone:
		return "None"
	case RepeatOne:
		return "One"
	case RepeatAll:
		return "All"
	default:
		return "Unknown"
	}
}

// Next cycles None → All → One → None.
func (m RepeatMode) Next() RepeatMode {
	switch m {
	case RepeatNone:
		return RepeatAll
	case RepeatAll:
		return RepeatOne
	default:
		return RepeatNone
	}
}

func (m RepeatMode) valid() bool {
	return m >= RepeatNone && m <= RepeatAll
}

// QueueItem is one playable track. Source is a local path, a file:// URL or
// an http(s) URL.
type QueueItem struct {
	ID       string
	Name     string
	Artists  []string
	Album    string        // empty when unknown
	Duration time.Duration // 0 when unknown
	Source   string
}

// ArtistLine joins the artists for display.
func (q QueueItem) ArtistLine() string {
	return strings.Join(q.Artists, ", ")
}

// key identifies the item's bytes in the buffer cache.
func (q QueueItem) key() string {
	if q.ID != "" {
		return q.ID
	}
	return q.Source
}

func (q *QueueItem) clone() *QueueItem {
	if q == nil {
		return nil
	}
	c := *q
	c.Artists = slices.Clone(q.Artists)
	return &c
}

// PlaybackState is a snapshot of the actor's state. Position and Duration
// are in seconds; Duration is 0 when unknown.
type PlaybackState struct {
	Playing  bool
	Position float64
	Duration float64
	Volume   float64
	Shuffle  bool
	Repeat   RepeatMode
	Current  *QueueItem

	Status     Status
	QueueIndex int // -1 when the queue cursor is unset
	QueueLen   int
}

func (s PlaybackState) clone() PlaybackState {
	s.Current = s.Current.clone()
	return s
}

// Elapsed returns Position as a time.Duration.
func (s PlaybackState) Elapsed() time.Duration {
	return seconds(s.Position)
}

// Length returns Duration as a time.Duration.
func (s PlaybackState) Length() time.Duration {
	return seconds(s.Duration)
}

func seconds(f float64) time.Duration {
	return time.Duration(f * float64(time.Second))
}
