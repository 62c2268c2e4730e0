package main

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("github.com/rollbar/rollbar-go.NewAsyncTransport.func1"))
}

func classes(n int) []classRef {
	out := make([]classRef, n)
	for i := range out {
		out[i] = classRef{ClassID: uuid.New(), ClassName: string(rune('A' + i))}
	}
	return out
}

func TestRecomputeBatchCollectsFailures(t *testing.T) {
	cs := classes(5)
	boom := errors.New("boom")
	ok, failed, err := recomputeBatch(context.Background(), cs, 2, func(_ context.Context, c classRef) error {
		if c.ClassName == "B" || c.ClassName == "D" {
			return boom
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, ok)
	require.Len(t, failed, 2)
	for _, f := range failed {
		assert.ErrorIs(t, f.Err, boom)
	}
}

func TestRecomputeBatchRespectsLimit(t *testing.T) {
	var running, peak int32
	_, _, err := recomputeBatch(context.Background(), classes(8), 3, func(context.Context, classRef) error {
		n := atomic.AddInt32(&running, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&running, -1)
		return nil
	})
	require.NoError(t, err)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(3))
}

func TestRecomputeBatchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ok, _, err := recomputeBatch(ctx, classes(3), 0, func(context.Context, classRef) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, ok)
}

func TestUUIDFlag(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.Flags().String("class", "", "")

	id, err := uuidFlag(cmd, "class")
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, id)

	want := uuid.New()
	require.NoError(t, cmd.Flags().Set("class", want.String()))
	id, err = uuidFlag(cmd, "class")
	require.NoError(t, err)
	assert.Equal(t, want, id)

	require.NoError(t, cmd.Flags().Set("class", "bukan-uuid"))
	_, err = uuidFlag(cmd, "class")
	assert.Error(t, err)
}

func TestCommandTree(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"migrate", "seed", "overdue", "purge-tokens", "averages", "export"} {
		assert.True(t, names[want], "perintah %s harus terdaftar", want)
	}
	sub, _, err := rootCmd.Find([]string{"export", "grades"})
	require.NoError(t, err)
	assert.Equal(t, "grades", sub.Name())
	assert.NotNil(t, sub.Flags().Lookup("out"))
}
