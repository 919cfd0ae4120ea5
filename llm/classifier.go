package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"clementus360/nudge-agent/config"
	"clementus360/nudge-agent/metrics"
	"clementus360/nudge-agent/types"

	"github.com/sirupsen/logrus"
)

const (
	DefaultClassifyTimeout = 15 * time.Second

	RoutePrimary  = "primary"
	RouteFallback = "fallback"
	RouteLocal    = "local"

	serviceErrorConfidence = 0.5
	serviceErrorReasoning  = "service error"
)

var ErrNoLocalModel = errors.New("no local model configured")

// Route binds a classifier to the name it is logged and counted under
type Route struct {
	Name       string
	Model      string
	Classifier Classifier
}

// Orchestrator is the only place classification failure policy lives.
// It reports; deciding what to do with low confidence is the caller's job.
type Orchestrator struct {
	primary  Route
	fallback Route
	local    *Route
	timeout  time.Duration
	metrics  *metrics.Provider
}

type OrchestratorOption func(*Orchestrator)

func WithLocal(local Route) OrchestratorOption {
	return func(o *Orchestrator) {
		o.local = &local
	}
}

func WithTimeout(d time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		if d > 0 {
			o.timeout = d
		}
	}
}

func WithMetrics(m *metrics.Provider) OrchestratorOption {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

func NewOrchestrator(primary, fallback Route, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		primary:  primary,
		fallback: fallback,
		timeout:  DefaultClassifyTimeout,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ServiceErrorResult is what callers get when every route failed
func ServiceErrorResult() types.ClassificationResult {
	return types.ClassificationResult{
		Status:     types.OffTask,
		Confidence: serviceErrorConfidence,
		Reasoning:  serviceErrorReasoning,
	}
}

// Classify tries the route pair in order and never fails. With useLocal set
// (and a local route configured) the local model goes first and the primary
// remote model backs it up.
func (o *Orchestrator) Classify(ctx context.Context, req types.ClassifyRequest, useLocal bool) types.ClassificationResult {
	for _, route := range o.routes(useLocal) {
		result, err := o.attempt(ctx, route, req)
		if err == nil {
			return result
		}
		config.Logger.WithFields(logrus.Fields{
			"route": route.Name,
			"model": route.Model,
		}).WithError(err).Warn("Classification attempt failed")
	}

	config.Logger.Warn("All classification routes failed, defaulting to OFF_TASK")
	return ServiceErrorResult()
}

// ClassifyLocal runs the local model only and hands its failure back
func (o *Orchestrator) ClassifyLocal(ctx context.Context, req types.ClassifyRequest) (types.ClassificationResult, error) {
	if o.local == nil {
		return types.ClassificationResult{}, ErrNoLocalModel
	}
	return o.attempt(ctx, *o.local, req)
}

func (o *Orchestrator) HasLocal() bool {
	return o.local != nil
}

func (o *Orchestrator) routes(useLocal bool) []Route {
	if useLocal && o.local != nil {
		return []Route{*o.local, o.primary}
	}
	return []Route{o.primary, o.fallback}
}

type attemptResult struct {
	result types.ClassificationResult
	err    error
}

func (o *Orchestrator) attempt(ctx context.Context, route Route, req types.ClassifyRequest) (types.ClassificationResult, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	start := time.Now()

	// buffered so a classifier that ignores ctx can still finish and exit
	done := make(chan attemptResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- attemptResult{err: fmt.Errorf("%s classifier panicked: %v", route.Name, r)}
			}
		}()
		result, err := route.Classifier.Classify(ctx, req)
		done <- attemptResult{result: result, err: err}
	}()

	var res attemptResult
	select {
	case res = <-done:
	case <-ctx.Done():
		res = attemptResult{err: ctx.Err()}
	}
	if res.err != nil {
		o.metrics.ClassifyAttempt(route.Name, outcome(res.err))
		return types.ClassificationResult{}, res.err
	}
	o.metrics.ClassifyAttempt(route.Name, "ok")

	result := res.result
	if !result.Status.Valid() {
		result.Status = types.OffTask
	}
	result.Confidence = clamp(result.Confidence)
	if result.Model == "" {
		result.Model = route.Model
	}
	config.Logger.WithFields(logrus.Fields{
		"route":      route.Name,
		"model":      result.Model,
		"status":     result.Status,
		"confidence": result.Confidence,
		"elapsed":    time.Since(start),
	}).Debug("Classified activity")
	return result, nil
}

func outcome(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, ErrNoJSON), errors.Is(err, ErrNonConforming):
		return "invalid"
	default:
		return "error"
	}
}
