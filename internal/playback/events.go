package playback

import "github.com/llehouerou/riptide/internal/errmsg"

// Event is broadcast by the actor to every subscription.
type Event interface {
	event()
}

// StateChanged carries a snapshot after any meaningful transition.
type StateChanged struct {
	State PlaybackState
}

// TrackChanged is emitted when a new track starts, and with a nil Item when
// playback stops or a load fails.
type TrackChanged struct {
	Item *QueueItem
}

// PositionUpdate is emitted at most every PositionEvery while playing, and
// after each seek.
type PositionUpdate struct {
	Position float64 // seconds
}

// Error reports a failed operation.
type Error struct {
	Op  errmsg.Op
	Err error
}

func (e Error) Error() string { return errmsg.Format(e.Op, e.Err) }

func (e Error) Unwrap() error { return e.Err }

func (StateChanged) event()   {}
func (TrackChanged) event()   {}
func (PositionUpdate) event() {}
func (Error) event()          {}
