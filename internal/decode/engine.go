// Package decode turns an in-memory audio buffer into a stream of stereo
// frames and moves that stream to a time offset.
package decode

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/wav"

	"github.com/llehouerou/riptide/internal/errmsg"
)

// Fallback seeking assumes this layout regardless of the stream's real format.
const (
	NominalSampleRate = 44100
	NominalChannels   = 2

	// ProgressInterval is how many discarded samples separate progress reports.
	ProgressInterval = 1_000_000
)

var errUnsupportedCodec = fmt.Errorf("%w: codec", errmsg.ErrUnsupportedFormat)

// SeekStrategy records how a seek was carried out.
type SeekStrategy int

const (
	SeekNative SeekStrategy = iota
	SeekFallback
)

func (s SeekStrategy) String() string {
	switch s {
	case SeekNative:
		return "native"
	case SeekFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// SeekResult describes a completed seek.
type SeekResult struct {
	Strategy SeekStrategy
	Target   time.Duration
	// Skipped counts interleaved samples decoded and dropped by a fallback seek.
	Skipped int64
	// NativeErr is the native seek failure that caused a fallback, if any.
	NativeErr error
}

// ProgressFunc receives fallback seek progress in interleaved samples.
type ProgressFunc func(skipped, total int64)

// Engine is a single-use decoder over one audio buffer. The frame sequence is
// finite and cannot be restarted; open a new Engine to start over.
type Engine struct {
	src       beep.Streamer
	seeker    beep.StreamSeeker // nil when the decoder cannot seek
	closer    io.Closer
	format    beep.Format
	container Container
	codec     string
	pos       int // frames delivered or skipped
}

// Open probes data and builds the matching decoder.
// Unrecognised containers fail with errmsg.ErrUnsupportedFormat, corrupt
// ones with errmsg.ErrDecode.
func Open(data []byte) (*Engine, error) {
	c := Probe(data)

	var (
		s      beep.StreamSeekCloser
		format beep.Format
		codec  = c.String()
		err    error
	)
	switch c {
	case ContainerMP3:
		s, format, err = openMP3(bytes.NewReader(data))
	case ContainerFLAC:
		s, format, err = flac.Decode(nopCloser{bytes.NewReader(stripID3v2(data))})
	case ContainerWAV:
		s, format, err = wav.Decode(nopCloser{bytes.NewReader(data)})
		codec = "PCM"
	case ContainerOgg:
		s, format, codec, err = openOgg(data)
	case ContainerMP4:
		s, format, codec, err = openM4A(bytes.NewReader(data))
	case ContainerUnknown:
		return nil, fmt.Errorf("%w: unrecognised container", errmsg.ErrUnsupportedFormat)
	}
	if err != nil {
		if errors.Is(err, errmsg.ErrUnsupportedFormat) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %w", errmsg.ErrDecode, c, err)
	}

	return newEngine(s, format, c, codec), nil
}

func newEngine(src beep.Streamer, format beep.Format, c Container, codec string) *Engine {
	e := &Engine{src: src, format: format, container: c, codec: codec}
	if s, ok := src.(beep.StreamSeeker); ok && s.Len() > 0 {
		e.seeker = s
	}
	if cl, ok := src.(io.Closer); ok {
		e.closer = cl
	}
	return e
}

// Stream fills samples with stereo frames. ok is false once the stream is
// exhausted or a decode error occurred (see Err).
func (e *Engine) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.src.Stream(samples)
	e.pos += n
	return n, ok
}

// Err returns the decode error that ended the stream, if any.
func (e *Engine) Err() error { return e.src.Err() }

// Format returns the decoded sample format.
func (e *Engine) Format() beep.Format { return e.format }

// Container returns the detected container.
func (e *Engine) Container() Container { return e.container }

// Codec returns a display name such as "MP3", "FLAC", "AAC" or "OPUS".
func (e *Engine) Codec() string { return e.codec }

// Seekable reports whether SeekTo can use the decoder's own seek.
func (e *Engine) Seekable() bool { return e.seeker != nil }

// Duration returns the stream length, or 0 when the container does not say.
func (e *Engine) Duration() time.Duration {
	if e.seeker == nil {
		return 0
	}
	return e.format.SampleRate.D(e.seeker.Len())
}

// Position returns how far into the stream the engine is.
func (e *Engine) Position() time.Duration {
	return e.format.SampleRate.D(e.pos)
}

// SeekTo moves the stream to offset. The decoder's own seek is tried first;
// when it is unavailable or fails, frames are decoded and discarded instead.
// Negative offsets are treated as 0.
func (e *Engine) SeekTo(offset time.Duration, progress ProgressFunc) (SeekResult, error) {
	offset = max(offset, 0)
	res := SeekResult{Target: offset}

	if e.seeker != nil {
		target := min(e.format.SampleRate.N(offset), e.seeker.Len())
		err := e.seeker.Seek(target)
		if err == nil {
			e.pos = target
			res.Strategy = SeekNative
			return res, nil
		}
		res.NativeErr = err
	}

	res.Strategy = SeekFallback
	skipped, err := e.skip(offset, progress)
	res.Skipped = skipped
	if err != nil {
		return res, fmt.Errorf("%w: fallback seek: %w", errmsg.ErrDecode, err)
	}
	return res, nil
}

// skip decodes and drops frames until offset worth of samples at the nominal
// rate have gone by. Reaching the end of the stream ends the skip early.
//
// The sample count ignores the stream's real rate and channel count, so a
// 48 kHz track lands short of offset.
func (e *Engine) skip(offset time.Duration, progress ProgressFunc) (int64, error) {
	total := int64(offset.Seconds() * NominalSampleRate * NominalChannels)
	buf := make([][2]float64, 4096)

	var skipped int64
	next := int64(ProgressInterval)
	for skipped < total {
		want := int(min(int64(len(buf)), (total-skipped+1)/NominalChannels))
		n, ok := e.Stream(buf[:want])
		skipped += int64(n * NominalChannels)
		for progress != nil && skipped >= next {
			progress(skipped, total)
			next += ProgressInterval
		}
		if !ok {
			break
		}
	}
	return skipped, e.src.Err()
}

// Close releases decoder resources. The Engine must not be used afterwards.
func (e *Engine) Close() error {
	if e.closer == nil {
		return nil
	}
	return e.closer.Close()
}

type nopCloser struct {
	io.ReadSeeker
}

func (nopCloser) Close() error { return nil }
