package tasks

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kidcanvas/pkg/logger"
)

func TestRunnerRunsTasks(t *testing.T) {
	r := New(logger.Nop(), 2, 8, time.Second)
	r.Start()

	var n atomic.Int32
	for i := 0; i < 5; i++ {
		require.True(t, r.Submit("count", func(ctx context.Context) error {
			n.Add(1)
			return nil
		}))
	}

	require.NoError(t, r.Shutdown(context.Background()))
	assert.Equal(t, int32(5), n.Load())
}

func TestSubmitNeverBlocksWhenFull(t *testing.T) {
	r := New(logger.Nop(), 1, 1, time.Second)
	// not started: the single slot fills and the next submit is dropped

	assert.True(t, r.Submit("first", func(ctx context.Context) error { return nil }))

	done := make(chan bool, 1)
	go func() {
		done <- r.Submit("second", func(ctx context.Context) error { return nil })
	}()

	select {
	case ok := <-done:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("Submit blocked on a full queue")
	}

	require.NoError(t, r.Shutdown(context.Background()))
}

func TestSubmitAfterShutdown(t *testing.T) {
	r := New(logger.Nop(), 1, 1, time.Second)
	r.Start()
	require.NoError(t, r.Shutdown(context.Background()))

	assert.False(t, r.Submit("late", func(ctx context.Context) error { return nil }))
}

func TestPanicsAndErrorsDoNotKillWorkers(t *testing.T) {
	r := New(logger.Nop(), 1, 4, time.Second)
	r.Start()

	ran := make(chan struct{})
	r.Submit("panics", func(ctx context.Context) error { panic("boom") })
	r.Submit("fails", func(ctx context.Context) error { return errors.New("nope") })
	r.Submit("after", func(ctx context.Context) error {
		close(ran)
		return nil
	})

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("worker died after panic")
	}
	require.NoError(t, r.Shutdown(context.Background()))
}

func TestTaskTimeout(t *testing.T) {
	r := New(logger.Nop(), 1, 1, 20*time.Millisecond)
	r.Start()

	errc := make(chan error, 1)
	r.Submit("slow", func(ctx context.Context) error {
		<-ctx.Done()
		errc <- ctx.Err()
		return ctx.Err()
	})

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	case <-time.After(2 * time.Second):
		t.Fatal("task timeout not applied")
	}
	require.NoError(t, r.Shutdown(context.Background()))
}

func TestShutdownDeadline(t *testing.T) {
	r := New(logger.Nop(), 1, 1, time.Minute)
	r.Start()

	started := make(chan struct{})
	r.Submit("stuck", func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return nil
	})
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, r.Shutdown(ctx), context.DeadlineExceeded)
}
