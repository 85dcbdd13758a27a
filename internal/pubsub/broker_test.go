package pubsub

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func receive[T any](t *testing.T, ch <-chan Event[T]) Event[T] {
	t.Helper()
	select {
	case ev, ok := <-ch:
		require.True(t, ok, "channel closed")
		return ev
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
		return Event[T]{}
	}
}

func TestBroker_FansOut(t *testing.T) {
	broker := NewBroker[string]()
	defer broker.Close()

	subs := make([]<-chan Event[string], 3)
	for i := range subs {
		subs[i] = broker.Subscribe(context.Background())
	}
	require.Equal(t, 3, broker.SubscriberCount())

	before := time.Now()
	broker.Publish(eventPing, "navigated")
	for _, ch := range subs {
		ev := receive(t, ch)
		require.Equal(t, eventPing, ev.Type)
		require.Equal(t, "navigated", ev.Payload)
		require.False(t, ev.Timestamp.Before(before))
	}
}

func TestBroker_UnsubscribesOnCancel(t *testing.T) {
	broker := NewBroker[int]()
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch := broker.Subscribe(ctx)
	cancel()

	require.Eventually(t, func() bool { return broker.SubscriberCount() == 0 }, time.Second, 5*time.Millisecond)
	_, ok := <-ch
	require.False(t, ok)
}

func TestBroker_PublishDropsWhenFull(t *testing.T) {
	broker := NewBrokerWithBuffer[int](1)
	defer broker.Close()
	ch := broker.Subscribe(context.Background())

	broker.Publish(eventPing, 1)
	broker.Publish(eventPing, 2)
	broker.Publish(eventPing, 3)

	require.Equal(t, uint64(2), broker.Dropped())
	require.Equal(t, 1, receive(t, ch).Payload)
}

func TestBroker_Close(t *testing.T) {
	broker := NewBroker[int]()
	ch := broker.Subscribe(context.Background())

	broker.Close()
	broker.Close()

	_, ok := <-ch
	require.False(t, ok)
	require.Zero(t, broker.SubscriberCount())

	broker.Publish(eventPing, 1)
	require.NoError(t, broker.PublishWait(context.Background(), eventPing, 1))

	late := broker.Subscribe(context.Background())
	_, ok = <-late
	require.False(t, ok, "subscribing after close yields a closed channel")
}

func TestBroker_ConcurrentPublishers(t *testing.T) {
	broker := NewBrokerWithBuffer[int](100)
	defer broker.Close()
	ch := broker.Subscribe(context.Background())

	var wg sync.WaitGroup
	for i := range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range 25 {
				broker.Publish(eventPing, i*100+j)
			}
		}()
	}
	wg.Wait()
	require.Len(t, ch, 100)
}

func TestBroker_PublishWaitBlocksUntilDelivered(t *testing.T) {
	broker := NewBrokerWithBuffer[int](1)
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := broker.Subscribe(ctx)

	require.NoError(t, broker.PublishWait(ctx, eventPing, 1))

	done := make(chan error, 1)
	go func() {
		done <- broker.PublishWait(ctx, eventPing, 2)
	}()

	select {
	case <-done:
		require.Fail(t, "PublishWait should block while the buffer is full")
	case <-time.After(20 * time.Millisecond):
	}

	require.Equal(t, 1, (<-ch).Payload)
	require.NoError(t, <-done)
	require.Equal(t, 2, (<-ch).Payload)
}

func TestBroker_PublishWaitSkipsCancelledSubscriber(t *testing.T) {
	broker := NewBrokerWithBuffer[int](1)
	defer broker.Close()

	subCtx, subCancel := context.WithCancel(context.Background())
	_ = broker.Subscribe(subCtx)
	require.NoError(t, broker.PublishWait(context.Background(), eventPing, 1))

	done := make(chan error, 1)
	go func() {
		done <- broker.PublishWait(context.Background(), eventPing, 2)
	}()
	subCancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		require.Fail(t, "PublishWait did not skip the cancelled subscriber")
	}
}

func TestBroker_PublishWaitHonorsContext(t *testing.T) {
	broker := NewBrokerWithBuffer[int](1)
	defer broker.Close()

	_ = broker.Subscribe(context.Background())
	require.NoError(t, broker.PublishWait(context.Background(), eventPing, 1))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := broker.PublishWait(ctx, eventPing, 2)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestBroker_OrderPreserved(t *testing.T) {
	broker := NewBroker[int]()
	defer broker.Close()

	ch := broker.Subscribe(context.Background())
	for i := 0; i < 10; i++ {
		broker.Publish(eventPing, i)
	}
	for i := 0; i < 10; i++ {
		require.Equal(t, i, (<-ch).Payload)
	}
}
