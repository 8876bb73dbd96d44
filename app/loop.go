package app

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Refresher paces the loop. Next blocks until the next refresh and reports
// false once the host wants the loop to end (window closed, frame budget
// spent).
type Refresher interface {
	Next() bool
}

// Loop calls a function once per refresh until stopped.
type Loop struct {
	stop   chan struct{}
	once   sync.Once
	frames atomic.Int64
}

// NewLoop creates a stopped-on-demand loop.
func NewLoop() *Loop {
	return &Loop{stop: make(chan struct{})}
}

// Run calls fn once per refresh. It returns nil after Stop or when the
// refresher ends, ctx.Err() on cancellation, or the first error from fn.
func (l *Loop) Run(ctx context.Context, r Refresher, fn func() error) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.stop:
			return nil
		default:
		}

		if !r.Next() {
			return nil
		}
		if err := fn(); err != nil {
			return err
		}
		l.frames.Add(1)
	}
}

// Stop ends Run before its next refresh. Safe to call more than once and
// from any goroutine.
func (l *Loop) Stop() {
	l.once.Do(func() { close(l.stop) })
}

// Frames returns the number of completed iterations.
func (l *Loop) Frames() int64 {
	return l.frames.Load()
}

// FrameLimit ends a refresher after n refreshes. n <= 0 means no limit.
func FrameLimit(r Refresher, n int64) Refresher {
	if n <= 0 {
		return r
	}
	return &limitRefresher{r: r, left: n}
}

type limitRefresher struct {
	r    Refresher
	left int64
}

func (l *limitRefresher) Next() bool {
	if l.left <= 0 {
		return false
	}
	l.left--
	return l.r.Next()
}

// Immediate refreshes as fast as the loop runs.
type Immediate struct{}

// Next always reports true.
func (Immediate) Next() bool { return true }

// Ticker refreshes at a fixed interval, for hosts without a display.
type Ticker struct {
	t *time.Ticker
}

// NewTicker creates a ticker refresher at fps refreshes per second.
func NewTicker(fps int) *Ticker {
	if fps <= 0 {
		fps = 60
	}
	return &Ticker{t: time.NewTicker(time.Second / time.Duration(fps))}
}

// Next waits for the next tick.
func (t *Ticker) Next() bool {
	<-t.t.C
	return true
}

// Stop releases the ticker.
func (t *Ticker) Stop() {
	t.t.Stop()
}
