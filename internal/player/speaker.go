//go:build !linux || cgo

package player

import (
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"
)

// SpeakerSampleRate is the device rate; streams at other rates are resampled.
const SpeakerSampleRate beep.SampleRate = 44100

var (
	speakerOnce sync.Once
	speakerErr  error
)

type speakerOutput struct{}

// NewSpeaker returns the system audio device. The device is opened on the
// first NewSink call and stays open for the life of the process.
func NewSpeaker() Output {
	return speakerOutput{}
}

func (speakerOutput) NewSink(stream beep.Streamer, format beep.Format, level float64) (Sink, error) {
	speakerOnce.Do(func() {
		speakerErr = speaker.Init(SpeakerSampleRate, SpeakerSampleRate.N(time.Second/10))
	})
	if speakerErr != nil {
		return nil, speakerErr
	}

	// Resample if the track's sample rate differs from the speaker's
	if format.SampleRate != SpeakerSampleRate {
		stream = beep.Resample(4, format.SampleRate, SpeakerSampleRate, stream)
	}

	s := &speakerSink{ctrl: &beep.Ctrl{Streamer: stream}}
	s.volume = &effects.Volume{
		Streamer: s.ctrl,
		Base:     2,
		Volume:   levelToVolume(level),
		Silent:   level <= 0,
	}
	speaker.Play(s.volume)
	return s, nil
}

type speakerSink struct {
	ctrl   *beep.Ctrl
	volume *effects.Volume
}

func (s *speakerSink) SetPaused(paused bool) {
	speaker.Lock()
	s.ctrl.Paused = paused
	speaker.Unlock()
}

func (s *speakerSink) Paused() bool {
	speaker.Lock()
	defer speaker.Unlock()
	return s.ctrl.Paused
}

func (s *speakerSink) SetVolume(level float64) {
	speaker.Lock()
	s.volume.Volume = levelToVolume(level)
	s.volume.Silent = level <= 0
	speaker.Unlock()
}

// Stop detaches the stream; the mixer drops a Ctrl without a streamer.
func (s *speakerSink) Stop() {
	speaker.Lock()
	s.ctrl.Streamer = nil
	speaker.Unlock()
}
