package transition

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type countingAnimator struct {
	opens  atomic.Int32
	closes atomic.Int32
	gate   chan struct{}
}

func (a *countingAnimator) Open(ctx context.Context) error {
	a.opens.Add(1)
	return nil
}

func (a *countingAnimator) Close(ctx context.Context) error {
	a.closes.Add(1)
	if a.gate != nil {
		select {
		case <-a.gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func waitClosed(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(time.Second):
		require.Fail(t, "channel not closed in time")
	}
}

func TestNew_StartsCreated(t *testing.T) {
	w := New(nil)
	require.Equal(t, StateCreated, w.State())
	require.NotEmpty(t, w.ID())
}

func TestMarkOpened(t *testing.T) {
	w := New(nil)
	w.MarkOpened()
	require.Equal(t, StateOpened, w.State())
}

func TestClose_RunsOnceAndReachesClosed(t *testing.T) {
	anim := &countingAnimator{gate: make(chan struct{})}
	w := New(anim)
	w.MarkOpened()

	first := w.Close(context.Background())
	second := w.Close(context.Background())
	require.Equal(t, first, second, "repeated Close returns the same completion")

	require.Eventually(t, func() bool { return w.State() == StateClosePending }, time.Second, time.Millisecond)

	close(anim.gate)
	waitClosed(t, first)
	require.Equal(t, StateClosed, w.State())
	require.Equal(t, int32(1), anim.closes.Load())
}

func TestOpen_RunsOnce(t *testing.T) {
	anim := &countingAnimator{}
	w := New(anim)

	waitClosed(t, w.Open(context.Background()))
	waitClosed(t, w.Open(context.Background()))
	require.Equal(t, int32(1), anim.opens.Load())
}

func TestClose_ContextCancelledStillCompletes(t *testing.T) {
	anim := &countingAnimator{gate: make(chan struct{})}
	w := New(anim)

	ctx, cancel := context.WithCancel(context.Background())
	done := w.Close(ctx)
	cancel()

	waitClosed(t, done)
	require.Equal(t, StateClosed, w.State())
}

func TestClosed_IsClosed(t *testing.T) {
	waitClosed(t, Closed())
}

func TestDelay_Waits(t *testing.T) {
	d := Delay{OpenFor: 15 * time.Millisecond}
	start := time.Now()
	require.NoError(t, d.Open(context.Background()))
	require.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond)
	require.NoError(t, d.Close(context.Background()))
}

func TestDelay_Cancelled(t *testing.T) {
	d := Delay{CloseFor: time.Hour}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, d.Close(ctx), context.Canceled)
}

func TestStateString(t *testing.T) {
	require.Equal(t, "created", StateCreated.String())
	require.Equal(t, "opened", StateOpened.String())
	require.Equal(t, "close_pending", StateClosePending.String())
	require.Equal(t, "closed", StateClosed.String())
	require.Equal(t, "unknown", State(42).String())
}
