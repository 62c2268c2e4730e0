package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("github.com/rollbar/rollbar-go.NewAsyncTransport.func1"))
}

func TestOverdueSchedulerStopsOnCancel(t *testing.T) {
	t.Setenv("OVERDUE_CHECK_HOURS", "1")
	ctx, cancel := context.WithCancel(context.Background())
	done := StartOverdueScheduler(ctx, nil)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler overdue tidak berhenti setelah cancel")
	}
}

func TestOverdueJobWithoutDB(t *testing.T) {
	require.NotPanics(t, func() { overdueJob(nil)(context.Background()) })
}
