package decode

import (
	"errors"
	"fmt"
	"io"

	"github.com/gopxl/beep/v2"
)

// oggStream decodes the first Opus or Vorbis logical stream of an Ogg buffer.
type oggStream struct {
	codec   oggCodec
	packets *oggPacketReader
	audio   int // index of the first audio page
	length  int

	pcm     []float32
	pcmAt   int // next interleaved sample in pcm
	pcmLen  int // interleaved samples in pcm
	pos     int // frames delivered
	discard int // frames still to drop before delivering
	err     error
}

func openOgg(data []byte) (*oggStream, beep.Format, string, error) {
	pages, err := parseOggPages(data)
	if err != nil {
		return nil, beep.Format{}, "", err
	}

	// First logical stream whose identification packet names a known codec.
	var codec oggCodec
	var serial uint32
	for i := range pages {
		if !pages[i].bos() {
			continue
		}
		if c, err := detectOggCodec(pages[i].firstPacket()); err == nil {
			codec, serial = c, pages[i].serial
			break
		}
	}
	if codec == nil {
		return nil, beep.Format{}, "", fmt.Errorf("%w: %w", errUnsupportedCodec, errUnknownOggCodec)
	}

	var own []oggPage
	for _, p := range pages {
		if p.serial == serial {
			own = append(own, p)
		}
	}

	r := newOggPacketReader(own)
	if _, err := r.next(); err != nil { // identification, already parsed
		return nil, beep.Format{}, "", err
	}
	for range codec.HeaderPackets() - 1 {
		pkt, err := r.next()
		if err != nil {
			return nil, beep.Format{}, "", fmt.Errorf("ogg: reading headers: %w", err)
		}
		if err := codec.AddHeaderPacket(pkt); err != nil {
			return nil, beep.Format{}, "", err
		}
	}
	// Headers end on a page boundary; audio starts on the next page.
	audio := r.page
	if r.seg > 0 {
		audio++
	}

	s := &oggStream{
		codec:   codec,
		packets: r,
		audio:   audio,
		pcm:     make([]float32, 8192*max(codec.Channels(), 1)),
		discard: codec.PreSkip(),
	}
	for i := len(own) - 1; i >= audio; i-- {
		if own[i].granule >= 0 {
			s.length = int(max(codec.GranuleToSamples(own[i].granule), 0))
			break
		}
	}
	r.seekPage(audio)

	format := beep.Format{
		SampleRate:  beep.SampleRate(codec.SampleRate()),
		NumChannels: 2,
		Precision:   2,
	}
	return s, format, codec.Name(), nil
}

func (s *oggStream) Stream(samples [][2]float64) (n int, ok bool) {
	if s.err != nil {
		return 0, false
	}
	ch := s.codec.Channels()

	for n < len(samples) {
		if s.pcmAt < s.pcmLen {
			if s.discard > 0 {
				s.pcmAt += ch
				s.discard--
				continue
			}
			left := float64(s.pcm[s.pcmAt])
			right := left
			if ch > 1 {
				right = float64(s.pcm[s.pcmAt+1])
			}
			samples[n] = [2]float64{left, right}
			s.pcmAt += ch
			s.pos++
			n++
			continue
		}

		pkt, err := s.packets.next()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.err = err
			}
			return n, n > 0
		}
		frames, err := s.codec.Decode(pkt, s.pcm)
		if err != nil {
			continue // corrupt packet: skip it
		}
		s.pcmAt = 0
		s.pcmLen = frames * ch
	}
	return n, true
}

func (s *oggStream) Err() error { return s.err }

func (s *oggStream) Len() int { return s.length }

func (s *oggStream) Position() int { return s.pos }

// Seek resumes decoding at the page preceding p by the codec's pre-roll, then
// drops frames up to p.
func (s *oggStream) Seek(p int) error {
	p = min(max(p, 0), s.length)
	from := max(p-s.codec.PreRoll(), 0)

	// Last page finishing at or before from: decoding resumes right after it.
	resume, at := s.audio, 0
	pages := s.packets.pages
	for i := s.audio; i < len(pages); i++ {
		if pages[i].granule < 0 {
			continue
		}
		g := int(s.codec.GranuleToSamples(pages[i].granule))
		if g > from {
			break
		}
		if g > 0 {
			resume, at = i+1, g
		}
	}

	s.packets.seekPage(resume)
	s.codec.Reset()
	s.pcmAt, s.pcmLen = 0, 0
	s.err = nil
	s.pos = p
	if at == 0 {
		s.discard = s.codec.PreSkip() + p
	} else {
		s.discard = p - at
	}
	return nil
}

func (s *oggStream) Close() error { return nil }
