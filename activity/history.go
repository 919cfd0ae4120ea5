package activity

import (
	"sync"
	"time"

	"clementus360/nudge-agent/types"
)

// DefaultCapacity is 30 minutes of samples at one per second
const DefaultCapacity = 1800

// History is a fixed-capacity ring of samples, oldest evicted first.
// One goroutine appends; any number may read. The lock only covers the
// slot write or the copy out.
type History struct {
	mu    sync.RWMutex
	buf   []types.ActivitySample
	start int // index of the oldest sample
	size  int
}

func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &History{buf: make([]types.ActivitySample, capacity)}
}

// Append stores s, evicting the oldest sample when full. A timestamp older
// than the newest stored one is raised to it so reads stay ordered.
func (h *History) Append(s types.ActivitySample) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.size > 0 {
		last := h.buf[(h.start+h.size-1)%len(h.buf)]
		if s.Timestamp.Before(last.Timestamp) {
			s.Timestamp = last.Timestamp
		}
	}

	if h.size < len(h.buf) {
		h.buf[(h.start+h.size)%len(h.buf)] = s
		h.size++
		return
	}
	h.buf[h.start] = s
	h.start = (h.start + 1) % len(h.buf)
}

// Snapshot copies every sample, oldest first
func (h *History) Snapshot() []types.ActivitySample {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]types.ActivitySample, h.size)
	for i := 0; i < h.size; i++ {
		out[i] = h.buf[(h.start+i)%len(h.buf)]
	}
	return out
}

// Since copies the samples with Timestamp >= cutoff, oldest first
func (h *History) Since(cutoff time.Time) []types.ActivitySample {
	h.mu.RLock()
	defer h.mu.RUnlock()

	// timestamps are non-decreasing, so walk back from the newest until we pass the cutoff
	first := h.size
	for first > 0 && !h.buf[(h.start+first-1)%len(h.buf)].Timestamp.Before(cutoff) {
		first--
	}

	out := make([]types.ActivitySample, h.size-first)
	for i := first; i < h.size; i++ {
		out[i-first] = h.buf[(h.start+i)%len(h.buf)]
	}
	return out
}

// Latest returns the newest sample, if any
func (h *History) Latest() (types.ActivitySample, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.size == 0 {
		return types.ActivitySample{}, false
	}
	return h.buf[(h.start+h.size-1)%len(h.buf)], true
}

func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.size
}

func (h *History) Cap() int {
	return len(h.buf)
}
