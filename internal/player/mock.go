package player

import (
	"sync"

	"github.com/gopxl/beep/v2"
)

// Mock is a test double for Output. It records every sink it creates.
type Mock struct {
	mu      sync.Mutex
	sinks   []*MockSink
	sinkErr error
}

// NewMock creates a new mock output for testing.
func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) NewSink(stream beep.Streamer, format beep.Format, volume float64) (Sink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sinkErr != nil {
		return nil, m.sinkErr
	}
	s := &MockSink{Stream: stream, Format: format, volume: volume}
	m.sinks = append(m.sinks, s)
	return s, nil
}

// Test helpers

func (m *Mock) SetSinkError(err error) {
	m.mu.Lock()
	m.sinkErr = err
	m.mu.Unlock()
}

// Sinks returns the sinks created so far, oldest first.
func (m *Mock) Sinks() []*MockSink {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*MockSink(nil), m.sinks...)
}

// Last returns the most recent sink, or nil.
func (m *Mock) Last() *MockSink {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sinks) == 0 {
		return nil
	}
	return m.sinks[len(m.sinks)-1]
}

// MockSink is the Sink handed out by Mock.
type MockSink struct {
	Stream beep.Streamer
	Format beep.Format

	mu      sync.Mutex
	paused  bool
	volume  float64
	stopped bool
}

func (s *MockSink) SetPaused(paused bool) {
	s.mu.Lock()
	s.paused = paused
	s.mu.Unlock()
}

func (s *MockSink) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

func (s *MockSink) SetVolume(level float64) {
	s.mu.Lock()
	s.volume = level
	s.mu.Unlock()
}

func (s *MockSink) Volume() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.volume
}

func (s *MockSink) Stop() {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
}

func (s *MockSink) Stopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

// Verify Mock implements Output at compile time.
var _ Output = (*Mock)(nil)
