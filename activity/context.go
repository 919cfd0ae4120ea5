package activity

import (
	"time"

	"clementus360/nudge-agent/types"
)

const (
	ShortSwitchWindow = 5 * time.Minute
	LongSwitchWindow  = 30 * time.Minute
	RecentAppsLimit   = 5

	workdayStartHour = 9
	workdayEndHour   = 18
)

// The functions below are pure over an oldest-first slice of samples so they
// can run on a snapshot outside any lock.

// FocusDuration is how long (app, title) has been the focused window without
// interruption, in whole seconds. It is 0 when the newest sample differs.
func FocusDuration(samples []types.ActivitySample, app, title string, now time.Time) int {
	var since time.Time
	for i := len(samples) - 1; i >= 0; i-- {
		s := samples[i]
		if s.App != app || s.Title != title {
			break
		}
		since = s.Timestamp
	}
	if since.IsZero() {
		return 0
	}

	d := int(now.Sub(since).Seconds())
	if d < 0 {
		return 0
	}
	return d
}

// AppSwitches counts adjacent samples within the last window whose app differs
func AppSwitches(samples []types.ActivitySample, window time.Duration, now time.Time) int {
	cutoff := now.Add(-window)

	switches := 0
	var prev *types.ActivitySample
	for i := range samples {
		s := &samples[i]
		if s.Timestamp.Before(cutoff) {
			continue
		}
		if prev != nil && prev.App != s.App {
			switches++
		}
		prev = s
	}
	return switches
}

// RecentApps lists up to n distinct apps, most recent first
func RecentApps(samples []types.ActivitySample, n int) []string {
	seen := make([]string, 0, n)
	if n <= 0 {
		return seen
	}

	for i := len(samples) - 1; i >= 0 && len(seen) < n; i-- {
		app := samples[i].App
		dup := false
		for _, s := range seen {
			if s == app {
				dup = true
				break
			}
		}
		if !dup {
			seen = append(seen, app)
		}
	}
	return seen
}

// IsWorkHours is a weekday 9:00-18:00 heuristic in t's location
func IsWorkHours(t time.Time) bool {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	return t.Hour() >= workdayStartHour && t.Hour() < workdayEndHour
}

// BuildContext derives the full behavioural context for the current window
func BuildContext(samples []types.ActivitySample, app, title string, now time.Time) types.ActivityContext {
	return types.ActivityContext{
		FocusDurationSec:     FocusDuration(samples, app, title, now),
		AppSwitchesLast5Min:  AppSwitches(samples, ShortSwitchWindow, now),
		AppSwitchesLast30Min: AppSwitches(samples, LongSwitchWindow, now),
		TimeOfDay:            now.Format("15:04"),
		IsWorkHours:          IsWorkHours(now),
		RecentApps:           RecentApps(samples, RecentAppsLimit),
	}
}
