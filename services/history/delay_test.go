package history

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"
)

func TestClockDelayWaitsForClock(t *testing.T) {
	mock := clock.NewMock()
	start := mock.Now()
	delay := NewClockDelay(mock)

	done := make(chan error, 1)
	go func() {
		done <- delay(context.Background(), 5*time.Second)
	}()
	for {
		select {
		case err := <-done:
			require.NoError(t, err)
			require.GreaterOrEqual(t, int64(mock.Now().Sub(start)), int64(5*time.Second))
			return
		default:
			mock.Add(time.Second)
		}
	}
}

func TestClockDelayCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	delay := NewClockDelay(clock.NewMock())

	done := make(chan error, 1)
	go func() {
		done <- delay(ctx, time.Hour)
	}()
	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}

func TestClockDelayZero(t *testing.T) {
	delay := NewClockDelay(clock.NewMock())
	require.NoError(t, delay(context.Background(), 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, delay(ctx, 0), context.Canceled)
}
