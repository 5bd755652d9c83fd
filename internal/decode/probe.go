package decode

import (
	"bytes"

	"github.com/dhowden/tag"
)

// Container identifies the audio container of a byte buffer.
type Container int

const (
	ContainerUnknown Container = iota
	ContainerMP3
	ContainerFLAC
	ContainerWAV
	ContainerOgg
	ContainerMP4
)

// String returns the container name.
func (c Container) String() string {
	switch c {
	case ContainerMP3:
		return "MP3"
	case ContainerFLAC:
		return "FLAC"
	case ContainerWAV:
		return "WAV"
	case ContainerOgg:
		return "OGG"
	case ContainerMP4:
		return "MP4"
	default:
		return "Unknown"
	}
}

// Probe detects the container from the leading bytes of data.
func Probe(data []byte) Container {
	// tag.Identify needs at least a header's worth of bytes and a seekable tail.
	if _, ft, err := tag.Identify(bytes.NewReader(data)); err == nil {
		switch ft {
		case tag.FLAC:
			return ContainerFLAC
		case tag.OGG:
			return ContainerOgg
		case tag.M4A, tag.M4B, tag.M4P:
			return ContainerMP4
		case tag.MP3:
			// Some taggers put ID3v2 in front of FLAC streams.
			if bytes.HasPrefix(stripID3v2(data), []byte("fLaC")) {
				return ContainerFLAC
			}
			return ContainerMP3
		}
	}

	switch {
	case len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WAVE":
		return ContainerWAV
	case len(data) >= 8 && string(data[4:8]) == "ftyp":
		return ContainerMP4
	case bytes.HasPrefix(data, []byte("fLaC")):
		return ContainerFLAC
	case bytes.HasPrefix(data, []byte("OggS")):
		return ContainerOgg
	case bytes.HasPrefix(data, []byte("ID3")):
		if bytes.HasPrefix(stripID3v2(data), []byte("fLaC")) {
			return ContainerFLAC
		}
		return ContainerMP3
	case len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0:
		return ContainerMP3
	}
	return ContainerUnknown
}

// stripID3v2 returns data without a leading ID3v2 tag.
func stripID3v2(data []byte) []byte {
	if len(data) < 10 || string(data[0:3]) != "ID3" {
		return data
	}

	// Tag size is a syncsafe integer: 7 bits per byte.
	size := int(data[6]&0x7F)<<21 | int(data[7]&0x7F)<<14 | int(data[8]&0x7F)<<7 | int(data[9]&0x7F)
	end := 10 + size
	if data[5]&0x10 != 0 {
		end += 10 // footer present
	}
	if end > len(data) {
		return data[len(data):]
	}
	return data[end:]
}
