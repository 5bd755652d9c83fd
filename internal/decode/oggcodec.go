package decode

import (
	"encoding/binary"
	"errors"

	"github.com/jfreymuth/vorbis"
	"github.com/jj11hh/opus"
)

const (
	opusSampleRate = 48000
	// 80 ms of decoder convergence before a seek target.
	opusPreRoll = 3840
)

var (
	errUnknownOggCodec     = errors.New("ogg: unknown codec (not Opus or Vorbis)")
	errInvalidOpusHead     = errors.New("opus: invalid OpusHead packet")
	errUnsupportedOpus     = errors.New("opus: unsupported version")
	errInvalidVorbisHeader = errors.New("vorbis: invalid identification header")
	errVorbisNotReady      = errors.New("vorbis: decoder not initialized (headers incomplete)")
	errVorbisBufferSmall   = errors.New("vorbis: output buffer too small")
)

// oggCodec is the codec-specific half of an Ogg logical stream.
type oggCodec interface {
	Name() string
	SampleRate() int
	Channels() int
	// PreSkip is the number of leading samples to drop at stream start.
	PreSkip() int
	// PreRoll is how many samples before a seek target decoding must resume.
	PreRoll() int
	// HeaderPackets is the number of header packets, identification included.
	HeaderPackets() int
	GranuleToSamples(granule int64) int64
	AddHeaderPacket(packet []byte) error
	// Decode writes interleaved PCM into pcm and returns samples per channel.
	Decode(packet []byte, pcm []float32) (int, error)
	Reset()
}

// detectOggCodec picks the codec from a logical stream's first packet.
func detectOggCodec(first []byte) (oggCodec, error) {
	if len(first) >= 8 && string(first[:8]) == "OpusHead" {
		return newOpusCodec(first)
	}
	if len(first) >= 7 && first[0] == 0x01 && string(first[1:7]) == "vorbis" {
		return newVorbisCodec(first)
	}
	return nil, errUnknownOggCodec
}

type opusCodec struct {
	dec      *opus.Decoder
	channels int
	preSkip  int
}

func newOpusCodec(head []byte) (*opusCodec, error) {
	// OpusHead: magic(8) version(1) channels(1) pre-skip(2) input rate(4) ...
	if len(head) < 19 {
		return nil, errInvalidOpusHead
	}
	if head[8] != 1 {
		return nil, errUnsupportedOpus
	}
	channels := int(head[9])

	dec, err := opus.NewDecoder(opusSampleRate, channels)
	if err != nil {
		return nil, err
	}
	return &opusCodec{
		dec:      dec,
		channels: channels,
		preSkip:  int(binary.LittleEndian.Uint16(head[10:12])),
	}, nil
}

func (c *opusCodec) Name() string       { return "OPUS" }
func (c *opusCodec) SampleRate() int    { return opusSampleRate }
func (c *opusCodec) Channels() int      { return c.channels }
func (c *opusCodec) PreSkip() int       { return c.preSkip }
func (c *opusCodec) PreRoll() int       { return opusPreRoll }
func (c *opusCodec) HeaderPackets() int { return 2 } // OpusHead, OpusTags

func (c *opusCodec) GranuleToSamples(granule int64) int64 {
	return granule - int64(c.preSkip)
}

func (c *opusCodec) AddHeaderPacket(_ []byte) error { return nil }

func (c *opusCodec) Decode(packet []byte, pcm []float32) (int, error) {
	return c.dec.DecodeFloat32(packet, pcm)
}

// Reset is a no-op: the pre-roll lets the Opus decoder converge on its own.
func (c *opusCodec) Reset() {}

type vorbisCodec struct {
	dec        *vorbis.Decoder
	channels   int
	sampleRate int
	headers    [][]byte
}

func newVorbisCodec(ident []byte) (*vorbisCodec, error) {
	// [0]=0x01 [1:7]="vorbis" [7:11]=version [11]=channels [12:16]=rate
	if len(ident) < 16 || binary.LittleEndian.Uint32(ident[7:11]) != 0 || ident[11] == 0 {
		return nil, errInvalidVorbisHeader
	}
	return &vorbisCodec{
		channels:   int(ident[11]),
		sampleRate: int(binary.LittleEndian.Uint32(ident[12:16])),
		headers:    [][]byte{append([]byte(nil), ident...)},
	}, nil
}

func (c *vorbisCodec) Name() string       { return "VORBIS" }
func (c *vorbisCodec) SampleRate() int    { return c.sampleRate }
func (c *vorbisCodec) Channels() int      { return c.channels }
func (c *vorbisCodec) PreSkip() int       { return 0 }
func (c *vorbisCodec) PreRoll() int       { return 0 }
func (c *vorbisCodec) HeaderPackets() int { return 3 } // identification, comment, setup

func (c *vorbisCodec) GranuleToSamples(granule int64) int64 { return granule }

// AddHeaderPacket collects the comment and setup headers; the decoder is
// built once all three are in.
func (c *vorbisCodec) AddHeaderPacket(packet []byte) error {
	if c.dec != nil {
		return nil
	}
	c.headers = append(c.headers, append([]byte(nil), packet...))
	if len(c.headers) < 3 {
		return nil
	}

	dec := &vorbis.Decoder{}
	for _, h := range c.headers {
		if err := dec.ReadHeader(h); err != nil {
			return err
		}
	}
	c.dec = dec
	c.headers = nil
	return nil
}

func (c *vorbisCodec) Decode(packet []byte, pcm []float32) (int, error) {
	if c.dec == nil {
		return 0, errVorbisNotReady
	}
	out, err := c.dec.Decode(packet)
	if err != nil {
		return 0, err
	}
	if len(pcm) < len(out) {
		return 0, errVorbisBufferSmall
	}
	return copy(pcm, out) / c.channels, nil
}

// Reset drops the overlap window so decoding can resume at a new page.
func (c *vorbisCodec) Reset() {
	if c.dec != nil {
		c.dec.Clear()
	}
}
