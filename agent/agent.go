// Package agent is the single object request handlers talk to. It owns
// nothing with a lifecycle; main starts and stops the tracker it is given.
package agent

import (
	"context"
	"time"

	"clementus360/nudge-agent/activity"
	"clementus360/nudge-agent/cache"
	"clementus360/nudge-agent/config"
	"clementus360/nudge-agent/llm"
	"clementus360/nudge-agent/nudge"
	"clementus360/nudge-agent/privacy"
	"clementus360/nudge-agent/tts"
	"clementus360/nudge-agent/types"
)

type Deps struct {
	Tracker    *activity.Tracker
	Probe      activity.Prober
	Runtime    *config.Runtime
	Classifier *llm.Orchestrator
	Phrases    *cache.PhraseCache
	Synth      tts.Synthesizer

	// PauseDuringNudge holds the sampler while a poke is being handled
	PauseDuringNudge bool
	Now              func() time.Time
}

type Agent struct {
	tracker    *activity.Tracker
	probe      activity.Prober
	runtime    *config.Runtime
	classifier *llm.Orchestrator
	phrases    *cache.PhraseCache
	pipeline   *nudge.Pipeline
	now        func() time.Time
}

func New(d Deps, opts ...nudge.Option) *Agent {
	a := &Agent{
		tracker:    d.Tracker,
		probe:      d.Probe,
		runtime:    d.Runtime,
		classifier: d.Classifier,
		phrases:    d.Phrases,
		now:        d.Now,
	}
	if a.now == nil {
		a.now = time.Now
	}

	pipelineOpts := []nudge.Option{nudge.WithClock(a.now)}
	if d.PauseDuringNudge {
		pipelineOpts = append(pipelineOpts, nudge.WithHold(d.Tracker.Hold))
	}
	pipelineOpts = append(pipelineOpts, opts...)

	a.pipeline = nudge.NewPipeline(a.Snapshot, d.Classifier, d.Phrases, d.Synth, d.Runtime, pipelineOpts...)
	return a
}

// Snapshot probes the focused window and derives its context from the
// unfiltered history. Redaction happens last so focus tracking still works
// in privacy mode.
func (a *Agent) Snapshot(ctx context.Context) types.ActivitySnapshot {
	app, title := a.probe.Probe(ctx)
	cfg := a.runtime.Snapshot()
	activityCtx := a.tracker.Context(app, title)

	filter := privacy.Filter{Enabled: cfg.PrivacyMode, Whitelist: cfg.AppWhitelist}
	app, title, activityCtx.RecentApps = filter.Apply(app, title, activityCtx.RecentApps)

	return types.ActivitySnapshot{
		AppName:     app,
		WindowTitle: title,
		Timestamp:   a.now(),
		Context:     activityCtx,
		PrivacyMode: cfg.PrivacyMode,
	}
}

// Classify labels a caller-supplied activity with the current routing
func (a *Agent) Classify(ctx context.Context, req types.ClassifyRequest) types.ClassificationResult {
	cfg := a.runtime.Snapshot()
	return a.classifier.Classify(ctx, redact(cfg, req), cfg.UseLocalModel)
}

func (a *Agent) ClassifyLocal(ctx context.Context, req types.ClassifyRequest) (types.ClassificationResult, error) {
	return a.classifier.ClassifyLocal(ctx, redact(a.runtime.Snapshot(), req))
}

func (a *Agent) Nudge(ctx context.Context, sender string) types.NudgeResult {
	return a.pipeline.Run(ctx, sender)
}

func (a *Agent) Runtime() *config.Runtime {
	return a.runtime
}

func (a *Agent) CacheStats() types.CacheStats {
	return a.phrases.Stats()
}

func (a *Agent) Tracker() *activity.Tracker {
	return a.tracker
}

func redact(cfg types.RuntimeConfig, req types.ClassifyRequest) types.ClassifyRequest {
	filter := privacy.Filter{Enabled: cfg.PrivacyMode, Whitelist: cfg.AppWhitelist}
	req.AppName, req.WindowTitle, req.Context.RecentApps = filter.Apply(req.AppName, req.WindowTitle, req.Context.RecentApps)
	return req
}
