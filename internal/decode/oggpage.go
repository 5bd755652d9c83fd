package decode

import (
	"encoding/binary"
	"errors"
	"io"
)

const (
	oggHeaderSize = 27

	oggFlagContinued = 0x01
	oggFlagBOS       = 0x02
)

var (
	errInvalidOggMagic   = errors.New("ogg: invalid capture pattern")
	errInvalidOggVersion = errors.New("ogg: unsupported version")
	errTruncatedOggPage  = errors.New("ogg: truncated page")
)

// oggPage is one parsed page. body aliases the source buffer.
type oggPage struct {
	flags    byte
	granule  int64 // -1 when no packet finishes on this page
	serial   uint32
	sequence uint32
	segments []uint8
	body     []byte
}

func (p *oggPage) continued() bool { return p.flags&oggFlagContinued != 0 }
func (p *oggPage) bos() bool       { return p.flags&oggFlagBOS != 0 }

// parseOggPage parses the page at the start of data and returns it with its
// total size in bytes. The CRC is not verified.
func parseOggPage(data []byte) (oggPage, int, error) {
	if len(data) < oggHeaderSize {
		return oggPage{}, 0, errTruncatedOggPage
	}
	if string(data[0:4]) != "OggS" {
		return oggPage{}, 0, errInvalidOggMagic
	}
	if data[4] != 0 {
		return oggPage{}, 0, errInvalidOggVersion
	}

	nseg := int(data[26])
	if len(data) < oggHeaderSize+nseg {
		return oggPage{}, 0, errTruncatedOggPage
	}
	segments := data[oggHeaderSize : oggHeaderSize+nseg]

	bodyLen := 0
	for _, s := range segments {
		bodyLen += int(s)
	}
	start := oggHeaderSize + nseg
	if len(data) < start+bodyLen {
		return oggPage{}, 0, errTruncatedOggPage
	}

	return oggPage{
		flags:    data[5],
		granule:  int64(binary.LittleEndian.Uint64(data[6:14])), //nolint:gosec // -1 is meaningful
		serial:   binary.LittleEndian.Uint32(data[14:18]),
		sequence: binary.LittleEndian.Uint32(data[18:22]),
		segments: segments,
		body:     data[start : start+bodyLen],
	}, start + bodyLen, nil
}

// parseOggPages splits data into pages. A damaged tail ends the list; an
// error is returned only when not a single page parses.
func parseOggPages(data []byte) ([]oggPage, error) {
	var pages []oggPage
	for len(data) > 0 {
		p, n, err := parseOggPage(data)
		if err != nil {
			if len(pages) == 0 {
				return nil, err
			}
			break
		}
		pages = append(pages, p)
		data = data[n:]
	}
	return pages, nil
}

// firstPacket returns the first complete packet that starts on p.
func (p *oggPage) firstPacket() []byte {
	n := 0
	for _, s := range p.segments {
		n += int(s)
		if s < 255 {
			return p.body[:n]
		}
	}
	return nil
}

// oggPacketReader reassembles packets of one logical stream.
type oggPacketReader struct {
	pages []oggPage // one serial only

	page int // next page to consume
	seg  int // next lacing value within pages[page]
	off  int // body offset matching seg

	partial  []byte
	dropping bool // discarding the tail of a packet begun before a seek point
}

func newOggPacketReader(pages []oggPage) *oggPacketReader {
	return &oggPacketReader{pages: pages}
}

// next returns the next complete packet, or io.EOF. The packet may alias the
// source buffer and must not be modified.
func (r *oggPacketReader) next() ([]byte, error) {
	for r.page < len(r.pages) {
		p := &r.pages[r.page]
		for r.seg < len(p.segments) {
			n := int(p.segments[r.seg])
			chunk := p.body[r.off : r.off+n]
			r.seg++
			r.off += n

			if r.dropping {
				if n < 255 {
					r.dropping = false
				}
				continue
			}

			if len(r.partial) == 0 && n < 255 {
				return chunk, nil
			}
			r.partial = append(r.partial, chunk...)
			if n < 255 {
				pkt := r.partial
				r.partial = nil
				return pkt, nil
			}
		}
		r.page++
		r.seg = 0
		r.off = 0
	}
	return nil, io.EOF
}

// seekPage positions the reader at the start of page i. A packet continued
// from the previous page is skipped.
func (r *oggPacketReader) seekPage(i int) {
	r.page = i
	r.seg = 0
	r.off = 0
	r.partial = nil
	r.dropping = i < len(r.pages) && r.pages[i].continued()
}
