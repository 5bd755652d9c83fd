package decode

import (
	"errors"
	"testing"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/riptide/internal/errmsg"
	"github.com/llehouerou/riptide/internal/testutil"
)

// drain reads the engine to the end and returns the number of frames seen.
func drain(e *Engine) int {
	buf := make([][2]float64, 1024)
	total := 0
	for {
		n, ok := e.Stream(buf)
		total += n
		if !ok {
			return total
		}
	}
}

// unseekable hides the Seek method of a decoder.
type unseekable struct {
	beep.Streamer
}

// brokenSeeker is seekable but every Seek fails.
type brokenSeeker struct {
	beep.StreamSeeker
}

func (brokenSeeker) Seek(int) error { return errors.New("index damaged") }

func openWAV(t *testing.T, length time.Duration, rate int) *Engine {
	t.Helper()
	e, err := Open(testutil.WAV(length, rate))
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func TestOpen_WAV(t *testing.T) {
	e := openWAV(t, 2*time.Second, 44100)

	assert.Equal(t, ContainerWAV, e.Container())
	assert.Equal(t, "PCM", e.Codec())
	assert.Equal(t, beep.SampleRate(44100), e.Format().SampleRate)
	assert.Equal(t, 2*time.Second, e.Duration())
	assert.True(t, e.Seekable())
	assert.Equal(t, 88200, drain(e))
	assert.NoError(t, e.Err())
}

func TestOpen_Unsupported(t *testing.T) {
	_, err := Open([]byte("this is plainly not an audio file at all"))
	require.Error(t, err)
	assert.ErrorIs(t, err, errmsg.ErrUnsupportedFormat)
}

func TestOpen_CorruptWAV(t *testing.T) {
	data := append([]byte("RIFF\x00\x00\x00\x00WAVE"), []byte("junkjunkjunkjunk")...)

	_, err := Open(data)
	require.Error(t, err)
	assert.ErrorIs(t, err, errmsg.ErrDecode)
}

func TestOpen_OggWithUnknownCodec(t *testing.T) {
	data := buildOggPage(oggFlagBOS, 0, 7, 0, [][]byte{[]byte("\x80theora-ish header")})

	_, err := Open(data)
	assert.ErrorIs(t, err, errmsg.ErrUnsupportedFormat)
}

func TestSeekTo_Native(t *testing.T) {
	e := openWAV(t, 3*time.Second, 44100)

	res, err := e.SeekTo(1500*time.Millisecond, nil)
	require.NoError(t, err)
	assert.Equal(t, SeekNative, res.Strategy)
	assert.Equal(t, 1500*time.Millisecond, res.Target)
	assert.NoError(t, res.NativeErr)
	assert.Equal(t, 1500*time.Millisecond, e.Position())

	// remaining 1.5 s
	assert.Equal(t, 66150, drain(e))
}

func TestSeekTo_NegativeClampsToZero(t *testing.T) {
	e := openWAV(t, time.Second, 44100)

	res, err := e.SeekTo(-5*time.Second, nil)
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), res.Target)
	assert.Equal(t, 44100, drain(e))
}

func TestSeekTo_PastEndClamps(t *testing.T) {
	e := openWAV(t, time.Second, 44100)

	_, err := e.SeekTo(10*time.Second, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, drain(e))
}

func TestSeekTo_FallbackWhenNotSeekable(t *testing.T) {
	src := openWAV(t, 3*time.Second, 44100)
	e := newEngine(unseekable{src}, src.Format(), ContainerWAV, "PCM")
	require.False(t, e.Seekable())
	assert.Equal(t, time.Duration(0), e.Duration())

	res, err := e.SeekTo(time.Second, nil)
	require.NoError(t, err)
	assert.Equal(t, SeekFallback, res.Strategy)
	assert.Equal(t, int64(88200), res.Skipped)
	assert.NoError(t, res.NativeErr)
	assert.Equal(t, time.Second, e.Position())
	assert.Equal(t, 88200, drain(e))
}

func TestSeekTo_FallbackAfterNativeFailure(t *testing.T) {
	src := openWAV(t, 2*time.Second, 44100)
	seeker, ok := src.src.(beep.StreamSeeker)
	require.True(t, ok)
	e := newEngine(brokenSeeker{seeker}, src.Format(), ContainerWAV, "PCM")
	require.True(t, e.Seekable())

	res, err := e.SeekTo(500*time.Millisecond, nil)
	require.NoError(t, err)
	assert.Equal(t, SeekFallback, res.Strategy)
	assert.EqualError(t, res.NativeErr, "index damaged")
	assert.Equal(t, int64(44100), res.Skipped)
}

func TestSeekTo_FallbackStopsAtEnd(t *testing.T) {
	src := openWAV(t, time.Second, 44100)
	e := newEngine(unseekable{src}, src.Format(), ContainerWAV, "PCM")

	res, err := e.SeekTo(5*time.Second, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(88200), res.Skipped)
	assert.Equal(t, 0, drain(e))
}

func TestSeekTo_FallbackReportsProgress(t *testing.T) {
	src := openWAV(t, 13*time.Second, 44100)
	e := newEngine(unseekable{src}, src.Format(), ContainerWAV, "PCM")

	var reports []int64
	res, err := e.SeekTo(12*time.Second, func(skipped, total int64) {
		assert.Equal(t, int64(12*88200), total)
		reports = append(reports, skipped)
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1058400), res.Skipped)
	require.Len(t, reports, 1)
	assert.GreaterOrEqual(t, reports[0], int64(ProgressInterval))
}

// The fallback counts samples at 44.1 kHz stereo whatever the stream's real
// format, so a 48 kHz stream lands early.
func TestSeekTo_FallbackUsesNominalRate(t *testing.T) {
	src := openWAV(t, 2*time.Second, 48000)
	e := newEngine(unseekable{src}, src.Format(), ContainerWAV, "PCM")

	_, err := e.SeekTo(time.Second, nil)
	require.NoError(t, err)
	assert.Equal(t, beep.SampleRate(48000).D(44100), e.Position())
	assert.Less(t, e.Position(), time.Second)
}

func TestSeekStrategy_String(t *testing.T) {
	assert.Equal(t, "native", SeekNative.String())
	assert.Equal(t, "fallback", SeekFallback.String())
	assert.Equal(t, "unknown", SeekStrategy(9).String())
}
