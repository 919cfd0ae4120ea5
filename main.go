package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clementus360/nudge-agent/activity"
	"clementus360/nudge-agent/agent"
	"clementus360/nudge-agent/cache"
	"clementus360/nudge-agent/config"
	"clementus360/nudge-agent/handlers"
	"clementus360/nudge-agent/llm"
	"clementus360/nudge-agent/metrics"
	"clementus360/nudge-agent/middleware"
	"clementus360/nudge-agent/nudge"
	"clementus360/nudge-agent/routes"
	"clementus360/nudge-agent/supabase"
	"clementus360/nudge-agent/tts"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const shutdownTimeout = 5 * time.Second

func main() {

	config.LoadEnv()
	config.InitLogger()

	settings, err := config.LoadSettings()
	if err != nil {
		config.Logger.Fatal("Invalid settings: ", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewProvider(registry)

	probe := activity.NewWindowProbe(activity.NewSystemReader(), settings.ProbeTimeout)
	tracker := activity.NewTracker(activity.NewHistory(settings.HistoryCapacity), probe, settings.PollInterval,
		activity.WithMetrics(m))

	phrases, err := cache.NewPhraseCache(settings.PhraseCacheSize, m)
	if err != nil {
		config.Logger.Fatal("Failed to create phrase cache: ", err)
	}

	a := agent.New(agent.Deps{
		Tracker:          tracker,
		Probe:            probe,
		Runtime:          config.NewRuntime(config.DefaultRuntimeConfig()),
		Classifier:       llm.NewOrchestratorFromSettings(settings, m, nil),
		Phrases:          phrases,
		Synth:            tts.NewFromSettings(settings),
		PauseDuringNudge: settings.PauseDuringNudge,
	}, nudge.WithThreshold(settings.ConfidenceThreshold), nudge.WithMetrics(m))

	h := handlers.New(a, supabase.NewFeedbackStoreFromSettings(settings), handlers.NewLocalModelProbe(settings.LocalBaseURL))

	mux := http.NewServeMux()
	routes.RegisterAllRoutes(mux, h, registry)

	server := &http.Server{
		Addr:              "127.0.0.1:" + settings.Port,
		Handler:           middleware.Chain(middleware.RecoverMiddleware, middleware.LoggingMiddleware, middleware.CORSMiddleware)(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	tracker.Start()

	go func() {
		config.Logger.Infof("Server is running on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			config.Logger.Fatal("Server failed: ", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	config.Logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		config.Logger.Error("Graceful shutdown failed: ", err)
	}
	tracker.Stop()
}
