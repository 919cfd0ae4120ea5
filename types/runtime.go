package types

// RuntimeConfig is treated as immutable once published; writers build a new one
type RuntimeConfig struct {
	PrivacyMode   bool     `json:"privacy_mode"`
	AppWhitelist  []string `json:"app_whitelist"`
	UseLocalModel bool     `json:"use_local_model"`
	MuteStart     string   `json:"mute_start"` // "HH:MM"
	MuteEnd       string   `json:"mute_end"`   // "HH:MM"
}

// RuntimeConfigPatch carries a partial update; nil fields are left alone
type RuntimeConfigPatch struct {
	PrivacyMode   *bool     `json:"privacy_mode,omitempty"`
	AppWhitelist  *[]string `json:"app_whitelist,omitempty"`
	UseLocalModel *bool     `json:"use_local_model,omitempty"`
	MuteStart     *string   `json:"mute_start,omitempty"`
	MuteEnd       *string   `json:"mute_end,omitempty"`
}

type ConfigResponse struct {
	Success bool          `json:"success"`
	Config  RuntimeConfig `json:"config"`
	Error   string        `json:"error,omitempty"`
}
