package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaptureGuard_QueuesSameKey(t *testing.T) {
	g := newCaptureGuard()
	release, err := g.Acquire(context.Background(), "k")
	require.NoError(t, err)

	acquired := make(chan struct{})
	go func() {
		r, err := g.Acquire(context.Background(), "k")
		if err == nil {
			close(acquired)
			r()
		}
	}()

	select {
	case <-acquired:
		t.Fatal("second acquire must wait for release")
	case <-time.After(30 * time.Millisecond):
	}

	release()
	release() // no-op
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second acquire never ran")
	}
}

func TestCaptureGuard_IndependentKeys(t *testing.T) {
	g := newCaptureGuard()
	r1, err := g.Acquire(context.Background(), "a")
	require.NoError(t, err)
	r2, err := g.Acquire(context.Background(), "b")
	require.NoError(t, err)
	r1()
	r2()
	assert.False(t, g.Busy("a"))
	assert.False(t, g.Busy("b"))
}

func TestCaptureGuard_ContextEndsWait(t *testing.T) {
	g := newCaptureGuard()
	release, err := g.Acquire(context.Background(), "k")
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = g.Acquire(ctx, "k")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, g.Busy("k"))
}

func TestCaptureGuard_WaitAll(t *testing.T) {
	g := newCaptureGuard()
	release, err := g.Acquire(context.Background(), "k")
	require.NoError(t, err)

	go func() {
		time.Sleep(10 * time.Millisecond)
		release()
	}()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	g.WaitAll(ctx)
	assert.NoError(t, ctx.Err())
}
