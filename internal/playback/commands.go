package playback

import "time"

// command is anything the actor accepts through its mailbox.
type command any

// result is the single reply of a request/response command.
type result struct {
	state PlaybackState
	err   error
}

// request is embedded by commands that carry a reply channel. A nil reply
// makes the command fire-and-forget.
type request struct {
	reply chan result
}

func newRequest() request {
	return request{reply: make(chan result, 1)}
}

func (r request) respond(res result) {
	if r.reply != nil {
		r.reply <- res
	}
}

// responder is implemented by every command embedding request.
type responder interface {
	respond(result)
}

type (
	playItemCmd struct {
		request
		item  QueueItem
		start time.Duration
	}
	seekCmd struct {
		request
		position time.Duration
	}
	setQueueCmd struct {
		request
		items []QueueItem
		start int
	}
	playIndexCmd struct {
		request
		index int
	}
	getStateCmd struct {
		request
	}

	pauseCmd         struct{}
	resumeCmd        struct{}
	togglePauseCmd   struct{}
	stopCmd          struct{}
	setVolumeCmd     struct{ volume float64 }
	toggleShuffleCmd struct{}
	setRepeatCmd     struct{ mode RepeatMode }
	nextCmd          struct{}
	previousCmd      struct{}
	shutdownCmd      struct{}
)
