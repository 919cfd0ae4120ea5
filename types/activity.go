package types

import "time"

// Sentinel reported by the window probe when the platform can't tell us anything
const UnknownWindow = "Unknown"

// ActivitySample is one observation of the focused window
type ActivitySample struct {
	Timestamp time.Time `json:"timestamp"`
	App       string    `json:"app"`
	Title     string    `json:"title"`
}

// ActivityContext is derived per request and never cached
type ActivityContext struct {
	FocusDurationSec     int      `json:"focus_duration_sec"`
	AppSwitchesLast5Min  int      `json:"app_switches_last_5min"`
	AppSwitchesLast30Min int      `json:"app_switches_last_30min"`
	TimeOfDay            string   `json:"time_of_day"`
	IsWorkHours          bool     `json:"is_work_hours"`
	RecentApps           []string `json:"recent_apps"`
}

type ActivitySnapshot struct {
	AppName     string          `json:"app_name"`
	WindowTitle string          `json:"window_title"`
	Timestamp   time.Time       `json:"timestamp"`
	Context     ActivityContext `json:"context"`
	PrivacyMode bool            `json:"privacy_mode"`
}
