// Package player sends decoded frames to an audio output.
package player

import (
	"github.com/gopxl/beep/v2"
)

// Output creates sinks on an audio device.
type Output interface {
	// NewSink starts playing stream immediately at the given volume (0.0 to 1.0).
	NewSink(stream beep.Streamer, format beep.Format, volume float64) (Sink, error)
}

// Sink is one stream playing on an Output. A stopped sink cannot be restarted.
type Sink interface {
	SetPaused(paused bool)
	Paused() bool
	SetVolume(level float64)
	Stop()
}
