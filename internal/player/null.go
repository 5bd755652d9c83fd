package player

import (
	"sync"

	"github.com/gopxl/beep/v2"
)

type nullOutput struct{}

// NewNull returns an output that accepts streams and never plays them.
func NewNull() Output {
	return nullOutput{}
}

func (nullOutput) NewSink(_ beep.Streamer, _ beep.Format, _ float64) (Sink, error) {
	return &nullSink{}, nil
}

type nullSink struct {
	mu     sync.Mutex
	paused bool
}

func (s *nullSink) SetPaused(paused bool) {
	s.mu.Lock()
	s.paused = paused
	s.mu.Unlock()
}

func (s *nullSink) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

func (s *nullSink) SetVolume(float64) {}

func (s *nullSink) Stop() {}
