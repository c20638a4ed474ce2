package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countingDispatcher struct {
	calls atomic.Int32
}

func (d *countingDispatcher) DispatchDue(context.Context) (int, error) {
	d.calls.Add(1)
	return 1, nil
}

func TestQuoteDispatchWorker_RunsUntilCanceled(t *testing.T) {
	d := &countingDispatcher{}
	w := NewQuoteDispatchWorker(d, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return d.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}
