package app

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"ChatDigest/internal/classifier"
	"ChatDigest/internal/collector"
	"ChatDigest/internal/config"
	"ChatDigest/internal/infrastructure/export"
	"ChatDigest/internal/infrastructure/llm"
	"ChatDigest/internal/infrastructure/scheduler"
	"ChatDigest/internal/infrastructure/storage"
	"ChatDigest/internal/infrastructure/telegram"
	"ChatDigest/internal/logging"
	"ChatDigest/internal/ports"
	"ChatDigest/internal/usecase"
)

// Options selects how a single invocation behaves.
type Options struct {
	// TestMode caps traversal and classification volume.
	TestMode bool
	// AnalyzeLatest classifies the most recent persisted snapshot
	// instead of collecting.
	AnalyzeLatest bool
	// Once runs a single pipeline execution and exits instead of
	// starting the scheduler.
	Once bool
}

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	pipeline  *usecase.Pipeline
	scheduler *usecase.Scheduler
	opts      Options
}

// New builds a runnable application instance. Source may be nil, in
// which case the export-file source from config is used; collection
// requires one of the two.
func New(cfg config.Config, baseLogger *slog.Logger, source ports.StreamSource, opts Options) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	if source == nil && cfg.Collection.ExportDir != "" {
		source = export.NewSource(cfg.Collection.ExportDir, cfg.Account.SelfName)
	}
	if source == nil && !opts.AnalyzeLatest {
		return nil, fmt.Errorf("no stream source configured: set collection.exportDir or inject a platform client")
	}

	var model ports.ChatModel
	if cfg.OpenAI.APIKey != "" {
		model = llm.NewOpenAIModel(cfg.OpenAI)
	} else {
		return nil, fmt.Errorf("openai api key is not configured")
	}

	var notifier ports.Notifier
	if cfg.Notifications.Telegram.BotToken != "" && cfg.Notifications.Telegram.ChatID != "" {
		notifier = telegram.NewNotifier(cfg.Notifications.Telegram.BotToken, cfg.Notifications.Telegram.ChatID)
	}

	artifacts := storage.NewArtifactStore(cfg.Storage.Root, cfg.Account.ID)

	runDB := cfg.Storage.RunDB
	if runDB == "" {
		runDB = filepath.Join(cfg.Storage.Root, "runs.bolt")
	}
	runs, err := storage.NewRunStore(runDB)
	if err != nil {
		return nil, fmt.Errorf("open run store: %w", err)
	}

	var coll *collector.Collector
	if source != nil {
		coll = collector.New(source, baseLogger.With("component", "collector"))
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Collector:  coll,
		Classifier: classifier.New(model, baseLogger.With("component", "classifier")),
		Artifacts:  artifacts,
		Runs:       runs,
		Notifier:   notifier,
		Logger:     baseLogger.With("component", "pipeline"),
		Account:    cfg.Account.ID,
		Window:     time.Duration(cfg.Collection.WindowHours) * time.Hour,
	})

	driver := scheduler.NewIntervalScheduler(cfg.Scheduler.Interval())
	sched := usecase.NewScheduler(driver, pipeline, baseLogger.With("component", "scheduler"), opts.TestMode)

	return &Application{
		cfg:       cfg,
		logger:    baseLogger,
		pipeline:  pipeline,
		scheduler: sched,
		opts:      opts,
	}, nil
}

// Run executes the selected mode: analyze-latest, a single run, or the
// recurring scheduler loop.
func (a *Application) Run(ctx context.Context) error {
	if a.opts.AnalyzeLatest {
		return a.pipeline.AnalyzeLatest(ctx, a.opts.TestMode)
	}

	if a.opts.Once {
		return a.pipeline.Run(ctx, time.Now(), a.opts.TestMode)
	}

	if err := a.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	<-ctx.Done()
	return a.scheduler.Stop(context.Background())
}
