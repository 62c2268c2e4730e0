package jobs

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestRunEveryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var runs int32
	done := RunEvery(ctx, 5*time.Millisecond, func(context.Context) {
		atomic.AddInt32(&runs, 1)
	})

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&runs) >= 2 }, time.Second, time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("job tidak berhenti setelah cancel")
	}
}

func TestRunEveryRunsOnceWhenAlreadyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var runs int32
	<-RunEvery(ctx, time.Hour, func(context.Context) { atomic.AddInt32(&runs, 1) })
	assert.Equal(t, int32(1), atomic.LoadInt32(&runs))
}
