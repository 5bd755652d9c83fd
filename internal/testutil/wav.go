// Package testutil builds audio fixtures for tests.
package testutil

import (
	"bytes"
	"encoding/binary"
	"math"
	"time"
)

// WAV returns a 16-bit stereo PCM WAV of the given length holding a 440 Hz tone.
func WAV(length time.Duration, sampleRate int) []byte {
	frames := int(length.Seconds() * float64(sampleRate))
	const channels, bytesPerSample = 2, 2
	dataLen := frames * channels * bytesPerSample

	var buf bytes.Buffer
	buf.Grow(44 + dataLen)

	w := func(v any) { _ = binary.Write(&buf, binary.LittleEndian, v) }

	buf.WriteString("RIFF")
	w(uint32(36 + dataLen)) //nolint:gosec // fixture sizes are small
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	w(uint32(16))
	w(uint16(1)) // PCM
	w(uint16(channels))
	w(uint32(sampleRate))                             //nolint:gosec // fixture
	w(uint32(sampleRate * channels * bytesPerSample)) //nolint:gosec // fixture
	w(uint16(channels * bytesPerSample))
	w(uint16(bytesPerSample * 8))

	buf.WriteString("data")
	w(uint32(dataLen)) //nolint:gosec // fixture

	pcm := make([]byte, dataLen)
	for i := range frames {
		v := int16(math.Sin(2*math.Pi*440*float64(i)/float64(sampleRate)) * 0.5 * math.MaxInt16)
		off := i * channels * bytesPerSample
		binary.LittleEndian.PutUint16(pcm[off:], uint16(v))   //nolint:gosec // PCM reinterpretation
		binary.LittleEndian.PutUint16(pcm[off+2:], uint16(v)) //nolint:gosec // PCM reinterpretation
	}
	buf.Write(pcm)

	return buf.Bytes()
}
