package config

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"clementus360/nudge-agent/types"
)

const clockLayout = "15:04"

// DefaultRuntimeConfig matches what the desktop app assumes before it
// pushes its first update.
func DefaultRuntimeConfig() types.RuntimeConfig {
	return types.RuntimeConfig{
		PrivacyMode:   false,
		AppWhitelist:  []string{},
		UseLocalModel: false,
		MuteStart:     "22:00",
		MuteEnd:       "08:00",
	}
}

// Runtime holds the live runtime config. Readers get an immutable snapshot
// through an atomic pointer; writers serialise on mu and publish a new value.
type Runtime struct {
	mu      sync.Mutex
	current atomic.Pointer[types.RuntimeConfig]
}

func NewRuntime(initial types.RuntimeConfig) *Runtime {
	r := &Runtime{}
	snapshot := cloneRuntime(initial)
	r.current.Store(&snapshot)
	return r
}

// Snapshot returns a copy that callers are free to keep
func (r *Runtime) Snapshot() types.RuntimeConfig {
	return cloneRuntime(*r.current.Load())
}

// Apply validates patch against the current snapshot and publishes the result
func (r *Runtime) Apply(patch types.RuntimeConfigPatch) (types.RuntimeConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := cloneRuntime(*r.current.Load())
	if patch.PrivacyMode != nil {
		next.PrivacyMode = *patch.PrivacyMode
	}
	if patch.UseLocalModel != nil {
		next.UseLocalModel = *patch.UseLocalModel
	}
	if patch.AppWhitelist != nil {
		next.AppWhitelist = append([]string{}, (*patch.AppWhitelist)...)
	}
	if patch.MuteStart != nil {
		if _, err := time.Parse(clockLayout, *patch.MuteStart); err != nil {
			return r.Snapshot(), fmt.Errorf("invalid mute_start %q, expected HH:MM", *patch.MuteStart)
		}
		next.MuteStart = *patch.MuteStart
	}
	if patch.MuteEnd != nil {
		if _, err := time.Parse(clockLayout, *patch.MuteEnd); err != nil {
			return r.Snapshot(), fmt.Errorf("invalid mute_end %q, expected HH:MM", *patch.MuteEnd)
		}
		next.MuteEnd = *patch.MuteEnd
	}

	published := next
	r.current.Store(&published)
	return cloneRuntime(next), nil
}

// Muted reports whether t falls inside the configured mute window. The window
// may wrap past midnight (22:00 -> 08:00). Equal or unparsable bounds mean no window.
func Muted(cfg types.RuntimeConfig, t time.Time) bool {
	start, err := time.Parse(clockLayout, cfg.MuteStart)
	if err != nil {
		return false
	}
	end, err := time.Parse(clockLayout, cfg.MuteEnd)
	if err != nil {
		return false
	}

	from := start.Hour()*60 + start.Minute()
	to := end.Hour()*60 + end.Minute()
	now := t.Hour()*60 + t.Minute()

	switch {
	case from == to:
		return false
	case from < to:
		return now >= from && now < to
	default:
		return now >= from || now < to
	}
}

func cloneRuntime(c types.RuntimeConfig) types.RuntimeConfig {
	out := c
	out.AppWhitelist = append([]string{}, c.AppWhitelist...)
	return out
}
