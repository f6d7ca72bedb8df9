package pgresult

import (
	"context"
	"time"
)

// deadlineTime is in the past, so setting it as deadline makes blocked reads return immediately.
var deadlineTime = time.Date(1, 1, 1, 1, 1, 1, 1, time.UTC)

type setDeadliner interface {
	SetDeadline(time.Time) error
}

// ctxDeadline interrupts reads on conn when a context is done.
type ctxDeadline struct {
	conn           setDeadliner
	unwatchChan    chan struct{}
	doneChan       chan struct{}
	deadlineWasSet bool
}

func watchContext(ctx context.Context, conn setDeadliner) *ctxDeadline {
	w := &ctxDeadline{
		conn:        conn,
		unwatchChan: make(chan struct{}),
		doneChan:    make(chan struct{}),
	}

	if ctx.Done() == nil {
		close(w.doneChan)
		return w
	}

	go func() {
		defer close(w.doneChan)
		select {
		case <-ctx.Done():
			conn.SetDeadline(deadlineTime)
			w.deadlineWasSet = true
		case <-w.unwatchChan:
		}
	}()

	return w
}

// unwatch stops watching and clears the deadline if it was set. conn is usable again afterwards.
func (w *ctxDeadline) unwatch() {
	close(w.unwatchChan)
	<-w.doneChan
	if w.deadlineWasSet {
		w.conn.SetDeadline(time.Time{})
	}
}
