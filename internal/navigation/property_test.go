package navigation_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/zjrosen/twinview/internal/headless"
	"github.com/zjrosen/twinview/internal/navigation"
	"github.com/zjrosen/twinview/internal/pubsub"
)

// TestNavigator_SessionInvariants drives random navigate/crash/script
// sequences and checks the at-rest invariants after every step.
func TestNavigator_SessionInvariants(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		h := newHarness(t, withoutEvents())
		defer func() { _ = h.nav.Close() }()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		events := h.nav.Subscribe(ctx)
		counts := make(chan map[pubsub.EventType]int, 1)
		go func() {
			seen := map[pubsub.EventType]int{}
			navigated := map[string]bool{}
			for ev := range events {
				// a transition is displayed only after it navigated
				if ev.Type == navigation.EventDisplayed && !navigated[ev.Payload.TransitionID] {
					seen["out_of_order"]++
				}
				if ev.Type == navigation.EventNavigated {
					navigated[ev.Payload.TransitionID] = true
				}
				seen[ev.Type]++
			}
			counts <- seen
		}()

		views := []any{&Home{}, &Person{}, &Home{Title: "other"}}
		var expectedRoot any
		swaps := 0

		steps := rapid.IntRange(1, 12).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			switch rapid.IntRange(0, 2).Draw(rt, "action") {
			case 0:
				vm := views[rapid.IntRange(0, len(views)-1).Draw(rt, "view")]
				require.NoError(rt, h.nav.Navigate(context.Background(), vm))
				expectedRoot = vm
				swaps++
			case 1:
				active := h.nav.Active()
				if active == nil {
					continue
				}
				crashed := active.(*headless.Window)
				crashed.Crash("random")
				require.Eventually(rt, func() bool {
					a := h.nav.Active()
					return h.nav.State() == navigation.StateIdle && a != nil && a != crashed
				}, 2*time.Second, time.Millisecond)
				swaps++
			case 2:
				h.nav.ExecuteScript("tick()")
			}

			h.nav.Wait()
			require.Equal(rt, navigation.StateIdle, h.nav.State())
			live := h.provider.Live()
			if expectedRoot == nil {
				require.Empty(rt, live)
				require.Nil(rt, h.nav.Active())
				continue
			}
			require.Len(rt, live, 1, "exactly one window at rest")
			require.Same(rt, live[0], h.nav.Active())
			require.True(rt, live[0].Visible())
			require.Same(rt, expectedRoot, h.nav.Root())
		}

		require.NoError(rt, h.nav.Close())
		seen := <-counts
		require.Zero(rt, seen["out_of_order"])
		require.Equal(rt, swaps, seen[navigation.EventNavigated])
		if swaps > 0 {
			require.Equal(rt, 1, seen[navigation.EventFirstLoad])
		} else {
			require.Zero(rt, seen[navigation.EventFirstLoad])
		}
	})
}
