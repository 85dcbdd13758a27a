package flags

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistry_Enabled(t *testing.T) {
	tests := []struct {
		name     string
		registry *Registry
		flag     string
		expected bool
	}{
		{
			name:     "declared flag defaults on",
			registry: New(nil),
			flag:     FlagRecoveryThrottle,
			expected: true,
		},
		{
			name:     "config turns declared flag off",
			registry: New(map[string]bool{FlagDiagnosticsStore: false}),
			flag:     FlagDiagnosticsStore,
			expected: false,
		},
		{
			name:     "configured unknown flag is honored",
			registry: New(map[string]bool{"feature-a": true}),
			flag:     "feature-a",
			expected: true,
		},
		{
			name:     "unknown flag returns false",
			registry: New(map[string]bool{"feature-a": true}),
			flag:     "unknown-flag",
			expected: false,
		},
		{
			name:     "nil registry returns false",
			registry: nil,
			flag:     FlagRecoveryThrottle,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, tt.registry.Enabled(tt.flag))
		})
	}
}

func TestRegistry_All(t *testing.T) {
	require.Equal(t, map[string]bool{
		FlagDiagnosticsStore: true,
		FlagRecoveryThrottle: false,
		"extra":              true,
	}, New(map[string]bool{FlagRecoveryThrottle: false, "extra": true}).All())

	var nilRegistry *Registry
	require.Empty(t, nilRegistry.All())
}

func TestRegistry_All_ReturnsDefensiveCopy(t *testing.T) {
	r := New(nil)

	copy := r.All()
	copy[FlagRecoveryThrottle] = false
	copy["new-flag"] = true

	require.True(t, r.Enabled(FlagRecoveryThrottle), "registry should not be affected by copy mutation")
	require.False(t, r.Enabled("new-flag"))
}

func TestNew_DoesNotShareDefaults(t *testing.T) {
	_ = New(map[string]bool{FlagDiagnosticsStore: false})
	require.True(t, New(nil).Enabled(FlagDiagnosticsStore))
}

func TestKnown(t *testing.T) {
	require.Equal(t, []string{FlagDiagnosticsStore, FlagRecoveryThrottle}, Known())
}
