package decode

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildOggPage encodes one page holding packets. A packet may be left open
// (continued on the next page) by passing it through buildOggPageRaw instead.
func buildOggPage(flags byte, granule int64, serial, seq uint32, packets [][]byte) []byte {
	var lacing []byte
	var body []byte
	for _, p := range packets {
		n := len(p)
		for n >= 255 {
			lacing = append(lacing, 255)
			n -= 255
		}
		lacing = append(lacing, byte(n))
		body = append(body, p...)
	}
	return buildOggPageRaw(flags, granule, serial, seq, lacing, body)
}

func buildOggPageRaw(flags byte, granule int64, serial, seq uint32, lacing, body []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString("OggS")
	buf.WriteByte(0)
	buf.WriteByte(flags)
	_ = binary.Write(&buf, binary.LittleEndian, granule)
	_ = binary.Write(&buf, binary.LittleEndian, serial)
	_ = binary.Write(&buf, binary.LittleEndian, seq)
	_ = binary.Write(&buf, binary.LittleEndian, uint32(0)) // CRC, not checked
	buf.WriteByte(byte(len(lacing)))
	buf.Write(lacing)
	buf.Write(body)
	return buf.Bytes()
}

func filled(n int, b byte) []byte {
	return bytes.Repeat([]byte{b}, n)
}

func TestParseOggPage(t *testing.T) {
	raw := buildOggPage(oggFlagBOS, 48000, 1, 3, [][]byte{filled(100, 'a'), filled(50, 'b')})

	p, n, err := parseOggPage(raw)
	require.NoError(t, err)
	assert.Equal(t, len(raw), n)
	assert.True(t, p.bos())
	assert.False(t, p.continued())
	assert.Equal(t, int64(48000), p.granule)
	assert.Equal(t, uint32(1), p.serial)
	assert.Equal(t, uint32(3), p.sequence)
	assert.Equal(t, []uint8{100, 50}, []uint8(p.segments))
	assert.Len(t, p.body, 150)
	assert.Equal(t, filled(100, 'a'), p.firstPacket())
}

func TestParseOggPage_Errors(t *testing.T) {
	good := buildOggPage(0, 0, 1, 0, [][]byte{filled(10, 'x')})

	badMagic := append([]byte("BadS"), good[4:]...)
	_, _, err := parseOggPage(badMagic)
	assert.ErrorIs(t, err, errInvalidOggMagic)

	badVersion := append([]byte(nil), good...)
	badVersion[4] = 1
	_, _, err = parseOggPage(badVersion)
	assert.ErrorIs(t, err, errInvalidOggVersion)

	_, _, err = parseOggPage(good[:len(good)-3])
	assert.ErrorIs(t, err, errTruncatedOggPage)
}

func TestParseOggPages_KeepsGoodPrefix(t *testing.T) {
	a := buildOggPage(oggFlagBOS, 0, 1, 0, [][]byte{filled(10, 'a')})
	b := buildOggPage(0, 10, 1, 1, [][]byte{filled(10, 'b')})
	data := append(append(a, b...), []byte("OggS\x00garbage")...)

	pages, err := parseOggPages(data)
	require.NoError(t, err)
	assert.Len(t, pages, 2)

	_, err = parseOggPages([]byte("nope"))
	assert.Error(t, err)
}

func TestOggPacketReader_SpanningPacket(t *testing.T) {
	big := filled(600, 'z') // 255 + 255 + 90
	// first page carries 510 bytes of it, second page the rest plus a small packet
	p1 := buildOggPageRaw(0, -1, 1, 0, []byte{255, 255}, big[:510])
	p2 := buildOggPageRaw(oggFlagContinued, 100, 1, 1, []byte{90, 5}, append(big[510:], filled(5, 's')...))

	pages, err := parseOggPages(append(p1, p2...))
	require.NoError(t, err)
	r := newOggPacketReader(pages)

	pkt, err := r.next()
	require.NoError(t, err)
	assert.Equal(t, big, pkt)

	pkt, err = r.next()
	require.NoError(t, err)
	assert.Equal(t, filled(5, 's'), pkt)

	_, err = r.next()
	assert.True(t, errors.Is(err, io.EOF))
}

func TestOggPacketReader_SeekSkipsContinuedPacket(t *testing.T) {
	big := filled(300, 'z')
	p1 := buildOggPageRaw(0, -1, 1, 0, []byte{255}, big[:255])
	p2 := buildOggPageRaw(oggFlagContinued, 100, 1, 1, []byte{45, 7}, append(big[255:], filled(7, 'n')...))

	pages, err := parseOggPages(append(p1, p2...))
	require.NoError(t, err)
	r := newOggPacketReader(pages)
	r.seekPage(1)

	pkt, err := r.next()
	require.NoError(t, err)
	assert.Equal(t, filled(7, 'n'), pkt)
}

func TestOggPacketReader_ExactMultipleOf255(t *testing.T) {
	// a 255-byte packet is terminated by a zero lacing value
	p := buildOggPage(0, 0, 1, 0, [][]byte{filled(255, 'q'), filled(3, 'r')})

	pages, err := parseOggPages(p)
	require.NoError(t, err)
	r := newOggPacketReader(pages)

	pkt, err := r.next()
	require.NoError(t, err)
	assert.Len(t, pkt, 255)
	pkt, err = r.next()
	require.NoError(t, err)
	assert.Equal(t, filled(3, 'r'), pkt)
}

func TestDetectOggCodec(t *testing.T) {
	_, err := detectOggCodec([]byte("garbage packet"))
	assert.ErrorIs(t, err, errUnknownOggCodec)

	ident := make([]byte, 30)
	ident[0] = 0x01
	copy(ident[1:], "vorbis")
	ident[11] = 2
	binary.LittleEndian.PutUint32(ident[12:], 44100)

	c, err := detectOggCodec(ident)
	require.NoError(t, err)
	assert.Equal(t, "VORBIS", c.Name())
	assert.Equal(t, 44100, c.SampleRate())
	assert.Equal(t, 2, c.Channels())
	assert.Equal(t, 3, c.HeaderPackets())

	head := make([]byte, 19)
	copy(head, "OpusHead")
	head[8] = 1
	head[9] = 2
	binary.LittleEndian.PutUint16(head[10:], 312)

	c, err = detectOggCodec(head)
	require.NoError(t, err)
	assert.Equal(t, "OPUS", c.Name())
	assert.Equal(t, 48000, c.SampleRate())
	assert.Equal(t, 312, c.PreSkip())
	assert.Equal(t, int64(688), c.GranuleToSamples(1000))
}
