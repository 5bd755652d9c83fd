package decode

import (
	"encoding/binary"
	"errors"
	"io"

	"github.com/gopxl/beep/v2"
	"github.com/llehouerou/go-mp3"
)

// mp3Stream adapts llehouerou/go-mp3 to beep.StreamSeekCloser.
// go-mp3 always produces 16-bit little-endian stereo.
type mp3Stream struct {
	dec     *mp3.Decoder
	err     error
	readBuf []byte
}

func openMP3(r io.ReadSeeker) (*mp3Stream, beep.Format, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, beep.Format{}, err
	}
	if dec.SampleRate() == 0 {
		return nil, beep.Format{}, errors.New("mp3: invalid sample rate")
	}

	format := beep.Format{
		SampleRate:  beep.SampleRate(dec.SampleRate()),
		NumChannels: 2,
		Precision:   2,
	}
	return &mp3Stream{dec: dec, readBuf: make([]byte, 8192)}, format, nil
}

func (s *mp3Stream) Stream(samples [][2]float64) (n int, ok bool) {
	if s.err != nil {
		return 0, false
	}

	need := len(samples) * 4
	if len(s.readBuf) < need {
		s.readBuf = make([]byte, need)
	}

	read, err := io.ReadFull(s.dec, s.readBuf[:need])
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		s.err = err
		return 0, false
	}

	frames := read / 4
	for i := range frames {
		off := i * 4
		left := int16(binary.LittleEndian.Uint16(s.readBuf[off:]))    //nolint:gosec // PCM reinterpretation
		right := int16(binary.LittleEndian.Uint16(s.readBuf[off+2:])) //nolint:gosec // PCM reinterpretation
		samples[i][0] = float64(left) / 32768
		samples[i][1] = float64(right) / 32768
	}
	return frames, frames > 0
}

func (s *mp3Stream) Err() error { return s.err }

// Len returns the total number of frames, or 0 when go-mp3 cannot tell.
func (s *mp3Stream) Len() int {
	return int(max(s.dec.SampleCount(), 0))
}

func (s *mp3Stream) Position() int {
	return int(s.dec.SamplePosition())
}

func (s *mp3Stream) Seek(p int) error {
	p = min(max(p, 0), s.Len())
	if err := s.dec.SeekToSample(int64(p)); err != nil {
		return err
	}
	s.err = nil
	return nil
}

func (s *mp3Stream) Close() error { return nil }
