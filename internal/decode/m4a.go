package decode

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/llehouerou/alac"
	"github.com/llehouerou/go-faad2"
	"github.com/llehouerou/go-m4a"
)

// m4aStream decodes the audio track of an MP4 container, AAC or ALAC.
type m4aStream struct {
	container  *m4a.Reader
	codec      m4a.CodecType
	aac        *faad2.Decoder
	alac       *alac.Alac
	channels   int
	sampleSize int
	totalLen   int

	next  int // next container sample index
	pcm   [][2]float64
	pcmAt int
	err   error
}

func openM4A(r io.ReadSeeker) (*m4aStream, beep.Format, string, error) {
	container, err := m4a.Open(nopCloser{r})
	if err != nil {
		return nil, beep.Format{}, "", err
	}

	codec := container.Codec()
	sampleRate := container.SampleRate()
	channels := container.Channels()

	precision := 2
	if codec == m4a.CodecALAC && container.SampleSize() == 24 {
		precision = 3
	}

	s := &m4aStream{
		container:  container,
		codec:      codec,
		channels:   int(channels),
		sampleSize: int(container.SampleSize()),
		totalLen:   int(container.Duration().Seconds() * float64(sampleRate)),
	}

	switch codec {
	case m4a.CodecAAC:
		ctx := context.Background()
		dec, err := faad2.NewDecoder(ctx)
		if err != nil {
			return nil, beep.Format{}, "", err
		}
		if err := dec.Init(ctx, container.CodecConfig()); err != nil {
			dec.Close(ctx)
			return nil, beep.Format{}, "", err
		}
		s.aac = dec
	case m4a.CodecALAC:
		dec, err := alac.NewWithConfig(alac.Config{
			SampleRate:  int(sampleRate),
			SampleSize:  int(container.SampleSize()),
			NumChannels: int(channels),
			FrameSize:   4096,
		})
		if err != nil {
			return nil, beep.Format{}, "", err
		}
		s.alac = dec
	case m4a.CodecUnknown:
		return nil, beep.Format{}, "", fmt.Errorf("%w: no AAC or ALAC track", errUnsupportedCodec)
	}

	format := beep.Format{
		SampleRate:  beep.SampleRate(sampleRate),
		NumChannels: 2,
		Precision:   precision,
	}
	return s, format, codec.String(), nil
}

func (s *m4aStream) Stream(samples [][2]float64) (n int, ok bool) {
	if s.err != nil {
		return 0, false
	}

	for n < len(samples) {
		if s.pcmAt < len(s.pcm) {
			c := copy(samples[n:], s.pcm[s.pcmAt:])
			s.pcmAt += c
			n += c
			continue
		}

		if s.next >= s.container.SampleCount() {
			return n, n > 0
		}

		raw, err := s.container.ReadSample(s.next)
		if err != nil {
			s.err = err
			return n, n > 0
		}
		s.next++

		switch s.codec {
		case m4a.CodecAAC:
			pcm, err := s.aac.Decode(context.Background(), raw)
			if err != nil {
				s.err = err
				return n, n > 0
			}
			s.pcm = int16Frames(pcm, s.channels)
		case m4a.CodecALAC:
			s.pcm = alacFrames(s.alac.Decode(raw), s.channels, s.sampleSize)
		case m4a.CodecUnknown:
			s.err = errUnsupportedCodec
			return n, n > 0
		}
		s.pcmAt = 0
	}

	return n, true
}

func (s *m4aStream) Err() error { return s.err }

func (s *m4aStream) Len() int { return s.totalLen }

func (s *m4aStream) Position() int {
	rate := float64(s.container.SampleRate())
	if len(s.pcm) == 0 || s.next == 0 {
		return int(s.container.SampleTime(s.next).Seconds() * rate)
	}
	// pcm holds the block decoded from sample next-1
	return int(s.container.SampleTime(s.next-1).Seconds()*rate) + s.pcmAt
}

func (s *m4aStream) Seek(p int) error {
	p = min(max(p, 0), s.totalLen)
	pos := time.Duration(float64(p) / float64(s.container.SampleRate()) * float64(time.Second))

	s.next = s.container.SeekToTime(pos)
	s.pcm = nil
	s.pcmAt = 0
	s.err = nil
	return nil
}

func (s *m4aStream) Close() error {
	if s.aac != nil {
		s.aac.Close(context.Background())
	}
	return nil
}

// int16Frames converts interleaved int16 PCM to stereo frames, duplicating mono.
func int16Frames(pcm []int16, channels int) [][2]float64 {
	if channels < 1 {
		return nil
	}
	frames := make([][2]float64, len(pcm)/channels)
	for i := range frames {
		left := float64(pcm[i*channels]) / 32768
		right := left
		if channels > 1 {
			right = float64(pcm[i*channels+1]) / 32768
		}
		frames[i] = [2]float64{left, right}
	}
	return frames
}

// alacFrames converts ALAC's little-endian PCM bytes (16 or 24 bit) to stereo frames.
func alacFrames(data []byte, channels, bits int) [][2]float64 {
	if channels < 1 {
		return nil
	}
	width := 2
	scale := 32768.0
	if bits == 24 {
		width = 3
		scale = 8388608 // 2^23
	}

	sample := func(off int) float64 {
		if width == 2 {
			return float64(int16(uint16(data[off])|uint16(data[off+1])<<8)) / scale //nolint:gosec // PCM reinterpretation
		}
		v := int32(data[off]) | int32(data[off+1])<<8 | int32(data[off+2])<<16
		if v&0x800000 != 0 {
			v |= ^0xFFFFFF
		}
		return float64(v) / scale
	}

	stride := width * channels
	frames := make([][2]float64, len(data)/stride)
	for i := range frames {
		off := i * stride
		left := sample(off)
		right := left
		if channels > 1 {
			right = sample(off + width)
		}
		frames[i] = [2]float64{left, right}
	}
	return frames
}
