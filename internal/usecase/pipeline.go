package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"ChatDigest/internal/classifier"
	"ChatDigest/internal/collector"
	"ChatDigest/internal/digest"
	"ChatDigest/internal/ports"
)

const runKeyLayout = "2006-01-02_15-04"

// defaultSendDelay spaces consecutive notice sends to stay under the
// transport's rate limits.
const defaultSendDelay = 500 * time.Millisecond

// PipelineDeps wires the pipeline's collaborators.
type PipelineDeps struct {
	Collector  *collector.Collector
	Classifier *classifier.Classifier
	Artifacts  ports.ArtifactRepository
	Runs       ports.RunRepository
	Notifier   ports.Notifier
	Logger     *slog.Logger

	Account string
	// Window is the default lookback for a collection run.
	Window time.Duration
	// SendDelay overrides the spacing between notice sends.
	SendDelay time.Duration
}

// Pipeline orchestrates one full digest run: collect, persist the
// snapshot, classify, persist the digest, deliver.
type Pipeline struct {
	collector  *collector.Collector
	classifier *classifier.Classifier
	artifacts  ports.ArtifactRepository
	runs       ports.RunRepository
	notifier   ports.Notifier
	logger     *slog.Logger

	account   string
	window    time.Duration
	sendDelay time.Duration
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	window := deps.Window
	if window <= 0 {
		window = 24 * time.Hour
	}
	sendDelay := deps.SendDelay
	if sendDelay <= 0 {
		sendDelay = defaultSendDelay
	}
	return &Pipeline{
		collector:  deps.Collector,
		classifier: deps.Classifier,
		artifacts:  deps.Artifacts,
		runs:       deps.Runs,
		notifier:   deps.Notifier,
		logger:     logger,
		account:    deps.Account,
		window:     window,
		sendDelay:  sendDelay,
	}
}

// Run executes a full collection-and-classification run ending at now.
// The window starts where the previous run ended when that is more
// recent than the default lookback, so consecutive runs do not re-scan
// the same messages. Delivery failures never invalidate the persisted
// artifacts.
func (p *Pipeline) Run(ctx context.Context, now time.Time, testMode bool) error {
	end := now.UTC()
	start := p.windowStart(end)
	runKey := end.Format(runKeyLayout)

	snap, err := p.collector.Collect(ctx, start, end, testMode)
	if err != nil {
		return fmt.Errorf("collect: %w", err)
	}

	path, err := p.artifacts.SaveSnapshot(runKey, snap)
	if err != nil {
		return fmt.Errorf("persist snapshot: %w", err)
	}
	p.logger.Info("snapshot persisted", "path", path,
		"chats", snap.Metadata.TotalChats, "messages", snap.Metadata.TotalMessages)

	res := p.classifier.Classify(ctx, snap, testMode)
	notices := digest.Format(res.Entries)

	if _, err := p.artifacts.SaveDigest(runKey, notices); err != nil {
		return fmt.Errorf("persist digest: %w", err)
	}

	p.deliver(ctx, notices, end)
	p.recordRun(runKey, start, end, snap.Metadata.TotalChats, snap.Metadata.TotalMessages,
		res.ModelCalls, len(notices), testMode)
	return nil
}

// AnalyzeLatest classifies the most recent persisted snapshot without
// collecting again. A missing snapshot is a hard failure: there is
// nothing to process.
func (p *Pipeline) AnalyzeLatest(ctx context.Context, testMode bool) error {
	snap, runKey, err := p.artifacts.LatestSnapshot()
	if err != nil {
		return fmt.Errorf("load latest snapshot: %w", err)
	}
	p.logger.Info("analyzing persisted snapshot", "run_key", runKey,
		"conversations", len(snap.Conversations))

	res := p.classifier.Classify(ctx, snap, testMode)
	notices := digest.Format(res.Entries)

	if _, err := p.artifacts.SaveDigest(runKey, notices); err != nil {
		return fmt.Errorf("persist digest: %w", err)
	}

	p.deliver(ctx, notices, time.Now())
	return nil
}

func (p *Pipeline) windowStart(end time.Time) time.Time {
	start := end.Add(-p.window)
	if p.runs == nil {
		return start
	}

	last, ok, err := p.runs.Last(p.account)
	if err != nil {
		p.logger.Warn("run history lookup failed, using default window", "error", err)
		return start
	}
	if ok && last.WindowEnd.After(start) && last.WindowEnd.Before(end) {
		return last.WindowEnd.UTC()
	}
	return start
}

// deliver sends the header plus one notice per entry, spaced to respect
// transport rate limits. Send failures are logged and never propagate:
// the artifacts are already persisted.
func (p *Pipeline) deliver(ctx context.Context, notices []string, at time.Time) {
	if len(notices) == 0 {
		p.logger.Info("no relevant items found, skipping delivery")
		return
	}
	if p.notifier == nil {
		p.logger.Warn("no notifier configured, skipping delivery", "notices", len(notices))
		return
	}

	sent := 0
	if err := p.notifier.Send(ctx, digest.Header(len(notices), at)); err != nil {
		p.logger.Error("header delivery failed", "error", err)
	}

	for _, notice := range notices {
		if !p.pause(ctx) {
			p.logger.Warn("delivery interrupted", "sent", sent, "total", len(notices))
			return
		}
		if err := p.notifier.Send(ctx, notice); err != nil {
			p.logger.Error("notice delivery failed", "error", err)
			continue
		}
		sent++
	}
	p.logger.Info("digest delivered", "sent", sent, "total", len(notices))
}

func (p *Pipeline) pause(ctx context.Context) bool {
	timer := time.NewTimer(p.sendDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func (p *Pipeline) recordRun(runKey string, start, end time.Time, chats, messages, modelCalls, notices int, testMode bool) {
	if p.runs == nil {
		return
	}

	rec := ports.RunRecord{
		ID:          uuid.NewString(),
		Account:     p.account,
		RunKey:      runKey,
		WindowStart: start,
		WindowEnd:   end,
		FinishedAt:  time.Now().UTC(),
		Chats:       chats,
		Messages:    messages,
		ModelCalls:  modelCalls,
		Notices:     notices,
		TestMode:    testMode,
	}
	if err := p.runs.Save(rec); err != nil {
		p.logger.Warn("run history write failed", "run_key", runKey, "error", err)
	}
}
