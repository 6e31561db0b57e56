// Command worker is the debate engine's long-running process: it owns the
// scheduler and watchdog for the lifetime of the process, and serves the
// thin manual-trigger/read-model HTTP surface alongside them. Mirrors the
// teacher's cmd/pipeline/main.go bootstrap (.env via godotenv, a single
// process driving the pipeline end to end).
package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/debatelab/engine/internal/config"
	"github.com/debatelab/engine/internal/httpapi"
	"github.com/debatelab/engine/internal/logging"
	"github.com/debatelab/engine/internal/provider"
	"github.com/debatelab/engine/internal/scheduler"
	"github.com/debatelab/engine/internal/selector"
	"github.com/debatelab/engine/internal/store"
	"github.com/debatelab/engine/internal/watchdog"
)

func main() {
	configPath := flag.String("config", "config/engine.yaml", "path to the static YAML config file")
	addr := flag.String("addr", ":8080", "address to serve the manual-trigger/read-model HTTP surface on")
	logFormat := flag.String("log-format", "text", "log output format: text or json")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	logger := logging.Configure(logging.ParseLevel(*logLevel), *logFormat, os.Stdout)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := store.InitDB(ctx, cfg.DatabaseURL); err != nil {
		logger.Error("failed to initialize database pool", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	debates := &store.DebateRepo{}
	topics := &store.TopicRepo{}
	models := &store.ModelRepo{}
	transcripts := &store.TranscriptRepo{}
	excuses := &store.ExcuseRepo{}

	modelSelector := &selector.ModelSelector{Models: models, Debates: debates}
	topicSelector := &selector.TopicSelector{Topics: topics}

	resolve := func(m *store.Model) (provider.Provider, error) {
		apiKey := cfg.ProviderAPIKeys[m.Provider]
		return provider.New(m.Provider, apiKey, m.APIModelID)
	}

	runner := &scheduler.Runner{
		Config:        cfg,
		Topics:        topics,
		Models:        models,
		Debates:       debates,
		Transcripts:   transcripts,
		Excuses:       excuses,
		TopicSelector: topicSelector,
		ModelSelector: modelSelector,
		Resolve:       resolve,
	}

	sched := scheduler.New(runner, logger)
	if err := sched.Start(ctx, cfg.DebateSlots); err != nil {
		logger.Error("failed to start scheduler", "error", err)
		os.Exit(1)
	}
	defer sched.Stop()

	wd := &watchdog.Watchdog{
		Config:        cfg,
		Debates:       debates,
		Topics:        topics,
		Models:        models,
		Transcripts:   transcripts,
		Excuses:       excuses,
		ModelSelector: modelSelector,
		Resolve:       resolve,
		Logger:        logger,
	}
	wdRunner := watchdog.NewRunner(wd)
	if err := wdRunner.Start(ctx, cfg.DebateSlots); err != nil {
		logger.Error("failed to start watchdog", "error", err)
		os.Exit(1)
	}
	defer wdRunner.Stop()

	api := &httpapi.Server{Runner: runner, Debates: debates, Models: models, Topics: topics, Logger: logger}
	httpServer := &http.Server{Addr: *addr, Handler: api.Handler()}

	go func() {
		logger.Info("serving manual-trigger/read-model HTTP surface", "addr", *addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server failed", "error", err)
		}
	}()

	logger.Info("debate engine worker started", "slots", len(cfg.DebateSlots))
	<-ctx.Done()
	logger.Info("shutting down")
	_ = httpServer.Shutdown(context.Background())
}
