package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Normaly0/galaxy-gen/galaxy"
)

func TestLoopStopsOnStop(t *testing.T) {
	loop := NewLoop()
	calls := 0
	err := loop.Run(context.Background(), Immediate{}, func() error {
		calls++
		if calls == 3 {
			loop.Stop()
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, int64(3), loop.Frames())

	loop.Stop() // second stop is harmless
}

func TestLoopFrameLimit(t *testing.T) {
	loop := NewLoop()
	calls := 0
	err := loop.Run(context.Background(), FrameLimit(Immediate{}, 5), func() error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 5, calls)
}

func TestLoopContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	loop := NewLoop()
	calls := 0
	err := loop.Run(ctx, Immediate{}, func() error {
		calls++
		if calls == 2 {
			cancel()
		}
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, calls)
}

func TestLoopReturnsTickError(t *testing.T) {
	boom := errors.New("boom")
	loop := NewLoop()
	err := loop.Run(context.Background(), Immediate{}, func() error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int64(0), loop.Frames())
}

func TestLoopStopFromAnotherGoroutine(t *testing.T) {
	loop := NewLoop()
	ticker := NewTicker(1000)
	defer ticker.Stop()

	go func() {
		time.Sleep(20 * time.Millisecond)
		loop.Stop()
	}()

	done := make(chan error, 1)
	go func() {
		done <- loop.Run(context.Background(), ticker, func() error { return nil })
	}()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("loop did not stop")
	}
}

func TestChanSourceReturnsNewest(t *testing.T) {
	ch := make(chan galaxy.Parameters, 3)
	src := ChanSource(ch)

	_, ok := src.Poll()
	assert.False(t, ok)

	ch <- smallParams(1)
	ch <- smallParams(2)
	p, ok := src.Poll()
	require.True(t, ok)
	assert.Equal(t, 2, p.Count)
}
