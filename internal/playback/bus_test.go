package playback

import (
	"sync"
	"testing"
	"testing/synctest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/riptide/internal/errmsg"
)

func TestMailbox_PreservesOrder(t *testing.T) {
	mb := newMailbox()

	for i := range 100 {
		require.NoError(t, mb.send(setVolumeCmd{volume: float64(i)}))
	}

	got := mb.take()
	require.Len(t, got, 100)
	for i, c := range got {
		assert.InDelta(t, float64(i), c.(setVolumeCmd).volume, 0)
	}
	assert.Empty(t, mb.take())
}

func TestMailbox_ConcurrentSenders(t *testing.T) {
	mb := newMailbox()

	var wg sync.WaitGroup
	for range 8 {
		wg.Go(func() {
			for range 50 {
				_ = mb.send(pauseCmd{})
			}
		})
	}
	wg.Wait()

	assert.Len(t, mb.take(), 400)
	select {
	case <-mb.wake:
	default:
		t.Error("wake signal missing")
	}
}

func TestMailbox_Close(t *testing.T) {
	mb := newMailbox()
	require.NoError(t, mb.send(stopCmd{}))

	pending := mb.close()
	assert.Len(t, pending, 1)
	assert.ErrorIs(t, mb.send(stopCmd{}), errmsg.ErrChannelClosed)
}

func TestSubscription_ReceivesInOrder(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		b := newBroadcaster(8)
		sub := b.subscribe()

		b.publish(PositionUpdate{Position: 1})
		b.publish(TrackChanged{})
		b.publish(PositionUpdate{Position: 2})

		assert.Equal(t, PositionUpdate{Position: 1}, <-sub.Events)
		assert.Equal(t, TrackChanged{}, <-sub.Events)
		assert.Equal(t, PositionUpdate{Position: 2}, <-sub.Events)
	})
}

func TestSubscription_OnlyLaterEvents(t *testing.T) {
	b := newBroadcaster(8)
	b.publish(PositionUpdate{Position: 1})

	sub := b.subscribe()
	b.publish(PositionUpdate{Position: 2})

	require.Len(t, sub.Events, 1)
	assert.Equal(t, PositionUpdate{Position: 2}, <-sub.Events)
}

func TestSubscription_DropsOldestWhenFull(t *testing.T) {
	b := newBroadcaster(4)
	sub := b.subscribe()

	for i := range 10 {
		b.publish(PositionUpdate{Position: float64(i)})
	}

	var got []float64
	for len(sub.Events) > 0 {
		got = append(got, (<-sub.Events).(PositionUpdate).Position)
	}
	assert.Equal(t, []float64{6, 7, 8, 9}, got)
}

func TestSubscription_Close(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		b := newBroadcaster(4)
		sub := b.subscribe()
		other := b.subscribe()

		sub.Close()
		sub.Close()
		<-sub.Done

		b.publish(TrackChanged{})
		assert.Empty(t, sub.Events)
		assert.Len(t, other.Events, 1)
	})
}

func TestBroadcaster_CloseEndsSubscriptions(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		b := newBroadcaster(4)
		sub := b.subscribe()

		b.close()
		<-sub.Done

		late := b.subscribe()
		<-late.Done
		late.Close()
	})
}
