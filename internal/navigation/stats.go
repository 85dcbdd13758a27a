package navigation

import (
	"fmt"
	"time"
)

// Stats counts what a navigator has done since it was created.
type Stats struct {
	Navigations    int `json:"navigations"`
	Recoveries     int `json:"recoveries"`
	Crashes        int `json:"crashes"`
	PendingCrashes int `json:"pending_crashes"`
	Failures       int `json:"failures"`
	Dropped        int `json:"dropped"`

	LastDuration    time.Duration `json:"last_duration"`
	LastNavigatedAt time.Time     `json:"last_navigated_at"`
}

// FormatSummary returns a one-line summary, e.g. "4 navigations, 1 recovery, 1 crash".
func (s Stats) FormatSummary() string {
	return fmt.Sprintf("%s, %s, %s",
		plural(s.Navigations, "navigation", "navigations"),
		plural(s.Recoveries, "recovery", "recoveries"),
		plural(s.Crashes+s.PendingCrashes, "crash", "crashes"),
	)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}
