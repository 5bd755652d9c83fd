//go:build !windows

package stderr

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCapture(t *testing.T) {
	c, err := Start()
	require.NoError(t, err)

	_, err = os.Stderr.WriteString("ALSA lib pcm.c: underrun\n\n  \n")
	require.NoError(t, err)

	select {
	case line := <-c.Lines():
		assert.Equal(t, "ALSA lib pcm.c: underrun", line)
	case <-time.After(2 * time.Second):
		t.Fatal("captured line not delivered")
	}

	c.Stop()
	c.Stop()

	_, open := <-c.Lines()
	assert.False(t, open, "Lines should close after Stop")
}
