// Package metrics holds the Prometheus collectors shared by the sampler,
// classifier, phrase cache and nudge pipeline. A nil *Provider is valid and
// records nothing, so components can be built without a registry in tests.
package metrics

import "github.com/prometheus/client_golang/prometheus"

type Provider struct {
	samples          *prometheus.CounterVec
	classifyAttempts *prometheus.CounterVec
	cacheLookups     *prometheus.CounterVec
	nudges           *prometheus.CounterVec
	nudgeDuration    prometheus.Histogram
	historyLen       prometheus.Gauge
}

func NewProvider(registry *prometheus.Registry) *Provider {
	if registry == nil {
		return nil
	}

	p := &Provider{
		samples: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "activity_samples_total",
				Help: "Sampler ticks by outcome (recorded, paused)",
			},
			[]string{"outcome"},
		),
		classifyAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "classifier_attempts_total",
				Help: "Classification attempts by route and outcome",
			},
			[]string{"route", "outcome"},
		),
		cacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "phrase_cache_lookups_total",
				Help: "Phrase cache lookups by result",
			},
			[]string{"result"},
		),
		nudges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nudges_total",
				Help: "Completed nudge pipeline runs by status",
			},
			[]string{"status"},
		),
		nudgeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "nudge_duration_seconds",
			Help:    "Wall time of a nudge pipeline run",
			Buckets: prometheus.DefBuckets,
		}),
		historyLen: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "activity_history_samples",
			Help: "Samples currently held in the activity history",
		}),
	}

	registry.MustRegister(
		p.samples,
		p.classifyAttempts,
		p.cacheLookups,
		p.nudges,
		p.nudgeDuration,
		p.historyLen,
	)

	return p
}

func (p *Provider) SampleRecorded(historyLen int) {
	if p != nil {
		p.samples.WithLabelValues("recorded").Inc()
		p.historyLen.Set(float64(historyLen))
	}
}

func (p *Provider) SampleSkipped() {
	if p != nil {
		p.samples.WithLabelValues("paused").Inc()
	}
}

func (p *Provider) ClassifyAttempt(route, outcome string) {
	if p != nil {
		p.classifyAttempts.WithLabelValues(route, outcome).Inc()
	}
}

func (p *Provider) CacheLookup(hit bool) {
	if p == nil {
		return
	}
	if hit {
		p.cacheLookups.WithLabelValues("hit").Inc()
	} else {
		p.cacheLookups.WithLabelValues("miss").Inc()
	}
}

func (p *Provider) NudgeCompleted(status string, seconds float64) {
	if p != nil {
		p.nudges.WithLabelValues(status).Inc()
		p.nudgeDuration.Observe(seconds)
	}
}
