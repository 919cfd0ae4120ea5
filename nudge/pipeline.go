// Package nudge turns a poke into a classified, voiced message.
package nudge

import (
	"context"
	"fmt"
	"time"

	"clementus360/nudge-agent/cache"
	"clementus360/nudge-agent/config"
	"clementus360/nudge-agent/metrics"
	"clementus360/nudge-agent/tts"
	"clementus360/nudge-agent/types"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultConfidenceThreshold = 0.75
	DefaultSender              = "A friend"
)

type State string

const (
	StateSampling        State = "SAMPLING"
	StateSnapshotTaken   State = "SNAPSHOT_TAKEN"
	StateClassified      State = "CLASSIFIED"
	StateMessageSelected State = "MESSAGE_SELECTED"
	StateCacheChecked    State = "CACHE_CHECKED"
	StateCacheHit        State = "CACHE_HIT"
	StateCacheMiss       State = "CACHE_MISS"
	StateSynthesizing    State = "SYNTHESIZING"
	StateDone            State = "DONE"
)

// SnapshotFunc reads the current window and its context, already
// privacy-filtered when the runtime config asks for it.
type SnapshotFunc func(ctx context.Context) types.ActivitySnapshot

// Classifier never fails; failures come back as a fail-closed result
type Classifier interface {
	Classify(ctx context.Context, req types.ClassifyRequest, useLocal bool) types.ClassificationResult
}

type Pipeline struct {
	snapshot   SnapshotFunc
	classifier Classifier
	phrases    *cache.PhraseCache
	synth      tts.Synthesizer
	runtime    *config.Runtime

	threshold float64
	choose    Chooser
	now       func() time.Time
	hold      func() (release func())
	metrics   *metrics.Provider

	// coalesces concurrent synthesis for the same cache key
	flights singleflight.Group
}

type Option func(*Pipeline)

func WithThreshold(t float64) Option {
	return func(p *Pipeline) {
		p.threshold = t
	}
}

func WithChooser(c Chooser) Option {
	return func(p *Pipeline) {
		if c != nil {
			p.choose = c
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		p.now = now
	}
}

// WithHold pauses activity sampling for the length of each run
func WithHold(hold func() (release func())) Option {
	return func(p *Pipeline) {
		p.hold = hold
	}
}

func WithMetrics(m *metrics.Provider) Option {
	return func(p *Pipeline) {
		p.metrics = m
	}
}

func NewPipeline(snapshot SnapshotFunc, classifier Classifier, phrases *cache.PhraseCache, synth tts.Synthesizer, runtime *config.Runtime, opts ...Option) *Pipeline {
	p := &Pipeline{
		snapshot:   snapshot,
		classifier: classifier,
		phrases:    phrases,
		synth:      synth,
		runtime:    runtime,
		threshold:  DefaultConfidenceThreshold,
		choose:     randomChooser,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// flight is what a coalesced synthesis hands to every waiter
type flight struct {
	entry  cache.Entry
	cached bool
}

// Run drives one poke through every state and always returns a result.
// A panic anywhere inside becomes a degraded result with Error set.
func (p *Pipeline) Run(ctx context.Context, sender string) (result types.NudgeResult) {
	if sender == "" {
		sender = DefaultSender
	}
	start := p.now()
	pokeID := uuid.NewString()
	log := config.Logger.WithFields(logrus.Fields{
		"poke_id": pokeID,
		"sender":  sender,
	})

	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Error("Nudge pipeline failed, returning fallback")
			result = Degraded(pokeID, sender, fmt.Errorf("nudge pipeline failed: %v", r))
		}
		status := string(result.Status)
		if result.Error != "" {
			status = "degraded"
		}
		p.metrics.NudgeCompleted(status, p.now().Sub(start).Seconds())
	}()

	if p.hold != nil {
		release := p.hold()
		defer release()
	}

	p.enter(log, StateSampling, nil)
	snap := p.snapshot(ctx)
	cfg := p.runtime.Snapshot()
	p.enter(log, StateSnapshotTaken, logrus.Fields{
		"app":     snap.AppName,
		"privacy": snap.PrivacyMode,
	})

	classification := p.classifier.Classify(ctx, types.ClassifyRequest{
		AppName:     snap.AppName,
		WindowTitle: snap.WindowTitle,
		Context:     snap.Context,
		SenderName:  sender,
	}, cfg.UseLocalModel)
	p.enter(log, StateClassified, logrus.Fields{
		"status":     classification.Status,
		"confidence": classification.Confidence,
	})

	message := SelectMessage(classification, sender, p.threshold, p.choose)
	p.enter(log, StateMessageSelected, nil)

	result = types.NudgeResult{
		PokeID:                  pokeID,
		Status:                  classification.Status,
		Confidence:              classification.Confidence,
		MessageText:             message,
		ClassificationReasoning: classification.Reasoning,
		Muted:                   config.Muted(cfg, p.now()),
	}

	summary := cache.Summary(snap.AppName, snap.WindowTitle)
	entry, hit := p.phrases.Get(sender, classification.Status, summary)
	p.enter(log, StateCacheChecked, nil)

	switch {
	case hit:
		p.enter(log, StateCacheHit, nil)
		result.MessageText = entry.MessageText
		result.AudioBase64 = entry.Audio
		result.DurationSec = entry.DurationSec
		result.Cached = true
	case result.Muted:
		p.enter(log, StateCacheMiss, logrus.Fields{"muted": true})
	default:
		p.enter(log, StateCacheMiss, nil)
		p.enter(log, StateSynthesizing, nil)
		f := p.synthesize(ctx, log, sender, classification.Status, summary, message)
		result.MessageText = f.entry.MessageText
		result.AudioBase64 = f.entry.Audio
		result.DurationSec = f.entry.DurationSec
		result.Cached = f.cached
	}

	if result.Muted {
		result.AudioBase64 = tts.SilentMP3
		result.DurationSec = 0
	}

	p.enter(log, StateDone, logrus.Fields{"cached": result.Cached, "muted": result.Muted})
	return result
}

// synthesize voices message once per cache key, however many pokes race
// for it. Failed synthesis is returned but not cached.
func (p *Pipeline) synthesize(ctx context.Context, log *logrus.Entry, sender string, status types.TaskStatus, summary, message string) flight {
	key := cache.Key(sender, status, summary)

	// the leader's cancellation must not starve the waiters; the synthesizer has its own timeout
	flightCtx := context.WithoutCancel(ctx)

	v, _, shared := p.flights.Do(key, func() (any, error) {
		if e, ok := p.phrases.Peek(sender, status, summary); ok {
			return flight{entry: e, cached: true}, nil
		}

		audio, duration, err := p.synth.Synthesize(flightCtx, message)
		e := cache.Entry{Audio: audio, DurationSec: duration, MessageText: message}
		if err != nil {
			log.WithError(err).Warn("Synthesis unavailable, returning silent audio")
			return flight{entry: e}, nil
		}

		p.phrases.Put(sender, status, summary, e)
		return flight{entry: e}, nil
	})

	f := v.(flight)
	if shared {
		log.Debug("Joined in-flight synthesis")
	}
	return f
}

func (p *Pipeline) enter(log *logrus.Entry, s State, fields logrus.Fields) {
	entry := log.WithField("state", s)
	if fields != nil {
		entry = entry.WithFields(fields)
	}
	entry.Debug("Nudge state transition")
}

// Degraded is the result returned when the pipeline could not finish
func Degraded(pokeID, sender string, err error) types.NudgeResult {
	if sender == "" {
		sender = DefaultSender
	}
	return types.NudgeResult{
		PokeID:      pokeID,
		Status:      types.OffTask,
		Confidence:  0.5,
		MessageText: DegradedMessage(sender),
		AudioBase64: tts.SilentMP3,
		Error:       err.Error(),
	}
}
