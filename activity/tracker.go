package activity

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"clementus360/nudge-agent/config"
	"clementus360/nudge-agent/metrics"
	"clementus360/nudge-agent/types"

	"github.com/sirupsen/logrus"
)

// DefaultPollInterval is one sample per second
const DefaultPollInterval = time.Second

// Tracker owns the background sampler and the history it feeds. It is the
// only writer to its History; everything else reads snapshots.
type Tracker struct {
	history  *History
	probe    Prober
	interval time.Duration
	now      func() time.Time
	metrics  *metrics.Provider

	// number of outstanding holds; sampling is skipped while > 0
	holds atomic.Int32

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

type TrackerOption func(*Tracker)

func WithClock(now func() time.Time) TrackerOption {
	return func(t *Tracker) {
		t.now = now
	}
}

func WithMetrics(m *metrics.Provider) TrackerOption {
	return func(t *Tracker) {
		t.metrics = m
	}
}

func NewTracker(history *History, probe Prober, interval time.Duration, opts ...TrackerOption) *Tracker {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	t := &Tracker{
		history:  history,
		probe:    probe,
		interval: interval,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Start launches the sampler. Calling it on a running tracker is a no-op.
func (t *Tracker) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel
	t.done = make(chan struct{})
	t.running = true

	go t.loop(ctx, t.done)
	config.Logger.WithFields(logrus.Fields{
		"interval": t.interval,
		"capacity": t.history.Cap(),
	}).Info("Activity sampler started")
}

// Stop halts the sampler and waits for the in-flight tick to finish
func (t *Tracker) Stop() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	t.running = false
	cancel, done := t.cancel, t.done
	t.mu.Unlock()

	cancel()
	<-done
	config.Logger.Info("Activity sampler stopped")
}

func (t *Tracker) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	t.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.tick(ctx)
		}
	}
}

// tick probes once and records the result unless a hold is outstanding.
// The flag is checked before the probe and again before the append; a hold
// taken between the second check and the append can still let one sample in.
func (t *Tracker) tick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			config.Logger.WithField("panic", r).Error("Activity sampler tick panicked")
		}
	}()

	if t.Paused() {
		t.metrics.SampleSkipped()
		return
	}

	ts := t.now()
	app, title := t.probe.Probe(ctx)
	if ctx.Err() != nil {
		return
	}
	if t.Paused() {
		t.metrics.SampleSkipped()
		return
	}

	t.history.Append(types.ActivitySample{Timestamp: ts, App: app, Title: title})
	t.metrics.SampleRecorded(t.history.Len())
}

// Hold pauses recording until the returned release func is called. Holds
// nest, so concurrent pokes can each take one.
func (t *Tracker) Hold() (release func()) {
	t.holds.Add(1)
	var once sync.Once
	return func() {
		once.Do(func() { t.holds.Add(-1) })
	}
}

func (t *Tracker) Paused() bool {
	return t.holds.Load() > 0
}

func (t *Tracker) History() *History {
	return t.history
}

func (t *Tracker) CurrentFocusDuration(app, title string) int {
	return FocusDuration(t.history.Snapshot(), app, title, t.now())
}

func (t *Tracker) AppSwitches(window time.Duration) int {
	now := t.now()
	return AppSwitches(t.history.Since(now.Add(-window)), window, now)
}

func (t *Tracker) RecentApps(n int) []string {
	return RecentApps(t.history.Snapshot(), n)
}

func (t *Tracker) IsWorkHours() bool {
	return IsWorkHours(t.now())
}

// Context takes one snapshot and derives every signal from it, so the
// fields are consistent with each other.
func (t *Tracker) Context(app, title string) types.ActivityContext {
	return BuildContext(t.history.Snapshot(), app, title, t.now())
}
