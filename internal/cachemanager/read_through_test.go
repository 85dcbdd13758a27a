package cachemanager

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/twinview/internal/mocks"
)

func loader(calls *int, v string, err error) func() (string, error) {
	return func() (string, error) {
		*calls++
		return v, err
	}
}

func TestReadThrough_Disabled(t *testing.T) {
	cache := mocks.NewMockCache[string, string](t)
	calls := 0

	got, err := NewReadThrough[string, string](cache, 0).Get("home", loader(&calls, "/home", nil))
	require.NoError(t, err)
	require.Equal(t, "/home", got)
	require.Equal(t, 1, calls)
	cache.AssertNotCalled(t, "Touch", mock.Anything, mock.Anything)
}

func TestReadThrough_Hit(t *testing.T) {
	cache := mocks.NewMockCache[string, string](t)
	cache.On("Touch", "home", time.Minute).Return("/cached", true).Once()
	calls := 0

	got, err := NewReadThrough[string, string](cache, time.Minute).Get("home", loader(&calls, "/home", nil))
	require.NoError(t, err)
	require.Equal(t, "/cached", got)
	require.Zero(t, calls)
}

func TestReadThrough_MissLoadsAndStores(t *testing.T) {
	cache := mocks.NewMockCache[string, string](t)
	cache.On("Touch", "home", time.Minute).Return("", false).Once()
	cache.On("Set", "home", "/home", time.Minute).Return().Once()
	calls := 0

	got, err := NewReadThrough[string, string](cache, time.Minute).Get("home", loader(&calls, "/home", nil))
	require.NoError(t, err)
	require.Equal(t, "/home", got)
	require.Equal(t, 1, calls)
}

func TestReadThrough_ErrorNotStored(t *testing.T) {
	cache := mocks.NewMockCache[string, string](t)
	cache.On("Touch", "home", time.Minute).Return("", false).Once()
	calls := 0

	_, err := NewReadThrough[string, string](cache, time.Minute).Get("home", loader(&calls, "", errors.New("not registered")))
	require.Error(t, err)
	cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
}

func TestReadThrough_Invalidate(t *testing.T) {
	cache := mocks.NewMockCache[string, string](t)
	cache.On("Flush").Return().Once()

	NewReadThrough[string, string](cache, time.Minute).Invalidate()
}

func TestReadThrough_WithMemory(t *testing.T) {
	rt := NewReadThrough[string, string](NewMemory[string, string]("paths", time.Minute), time.Minute)
	calls := 0

	for range 3 {
		got, err := rt.Get("home", loader(&calls, "/home", nil))
		require.NoError(t, err)
		require.Equal(t, "/home", got)
	}
	require.Equal(t, 1, calls)

	rt.Invalidate()
	_, _ = rt.Get("home", loader(&calls, "/home", nil))
	require.Equal(t, 2, calls)
}
