package decode

import (
	"bytes"

	"github.com/dhowden/tag"
)

// Tags is the display metadata embedded in an audio buffer.
type Tags struct {
	Title  string
	Artist string
	Album  string
	Year   int
	Track  int
}

// ReadTags reads embedded tags. Buffers without tags return an error.
func ReadTags(data []byte) (Tags, error) {
	m, err := tag.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return Tags{}, err
	}

	track, _ := m.Track()
	artist := m.Artist()
	if artist == "" {
		artist = m.AlbumArtist()
	}

	return Tags{
		Title:  m.Title(),
		Artist: artist,
		Album:  m.Album(),
		Year:   m.Year(),
		Track:  track,
	}, nil
}
