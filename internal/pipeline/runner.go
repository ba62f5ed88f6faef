package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"flowshot/internal/config"
	"flowshot/internal/logging"
	"flowshot/internal/naming"
	"flowshot/internal/report"
	"flowshot/internal/services"
	"flowshot/internal/source"
	"flowshot/internal/store"
)

// Importer is the slice of the engine client the pipeline needs.
type Importer interface {
	CreateWorkflow(ctx context.Context, def source.Definition) (string, error)
	DeleteWorkflow(ctx context.Context, id string) error
	CanvasURL(id string) string
}

// Capturer extracts a raster snapshot of a canvas view.
type Capturer interface {
	Capture(ctx context.Context, canvasURL string) ([]byte, error)
}

// ContentStore answers existence checks and publishes artifacts.
type ContentStore interface {
	Exists(ctx context.Context, path string) (bool, string, error)
	Publish(ctx context.Context, path string, data []byte, message string) (store.PublishResult, error)
}

// Item is one workflow moving through the pipeline. The remote handle is
// owned exclusively by the current iteration and never outlives it.
type Item struct {
	Workflow source.Workflow
	Status   Status
	RemoteID string
}

// Runner sequences the import, capture, publish, and delete operations over
// a discovered input set. Items are processed strictly sequentially in
// discovery order; a failed item is recorded and never aborts the run.
type Runner struct {
	cfg     *config.Config
	engine  Importer
	browser Capturer
	store   ContentStore
	logger  *slog.Logger
	sleep   func(context.Context, time.Duration)
}

// NewRunner wires a Runner from its collaborators.
func NewRunner(cfg *config.Config, engine Importer, browser Capturer, contentStore ContentStore, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Runner{
		cfg:     cfg,
		engine:  engine,
		browser: browser,
		store:   contentStore,
		logger:  logger.With(logging.String(logging.FieldComponent, "pipeline")),
		sleep:   sleepContext,
	}
}

// Run processes every discovered workflow plus the files that failed to
// parse, and returns the aggregate report. The report is complete even when
// the run contains only failures; callers always write it.
func (r *Runner) Run(ctx context.Context, workflows []source.Workflow, invalid []source.Invalid) *report.RunReport {
	if limit := r.cfg.Pipeline.BatchLimit; limit > 0 && len(workflows) > limit {
		r.logger.Info("batch limit applied", logging.Args(
			logging.Int("limit", limit),
			logging.Int("discovered", len(workflows)),
		)...)
		workflows = workflows[:limit]
	}

	rep := report.New(len(workflows) + len(invalid))
	r.logger.Info("run started", logging.Args(
		logging.String(logging.FieldRunID, rep.RunID),
		logging.Int("total", rep.Stats.Total),
	)...)

	for _, inv := range invalid {
		rep.RecordFailure(inv.Path, fmt.Errorf("parse workflow file: %w", inv.Err))
		r.logger.Error("workflow file unreadable", logging.Args(
			logging.String("path", inv.Path),
			logging.Error(inv.Err),
		)...)
	}

	for i, wf := range workflows {
		if ctx.Err() != nil {
			r.logger.Warn("run canceled between items", logging.Args(
				logging.Int("remaining", len(workflows)-i),
			)...)
			break
		}
		if i > 0 {
			// Fixed pacing between consecutive items regardless of outcome,
			// to respect engine and store rate limits.
			r.sleep(ctx, time.Duration(r.cfg.Pipeline.InterItemDelayMS)*time.Millisecond)
		}
		r.processItem(ctx, wf, rep)
		r.logger.Info("progress", logging.Args(
			logging.Int("processed", rep.Processed()),
			logging.Int("total", rep.Stats.Total),
			logging.Int("succeeded", rep.Stats.Succeeded),
			logging.Int("failed", rep.Stats.Failed),
			logging.Int("skipped", rep.Stats.Skipped),
		)...)
	}

	r.logger.Info("run finished", logging.Args(
		logging.String(logging.FieldRunID, rep.RunID),
		logging.Int("succeeded", rep.Stats.Succeeded),
		logging.Int("failed", rep.Stats.Failed),
		logging.Int("skipped", rep.Stats.Skipped),
	)...)
	return rep
}

// processItem drives one workflow through the state machine. All stage
// errors are absorbed here; the run continues with the next item.
func (r *Runner) processItem(ctx context.Context, wf source.Workflow, rep *report.RunReport) {
	item := &Item{Workflow: wf, Status: StatusPending}
	logger := r.logger.With(logging.Args(
		logging.String(logging.FieldWorkflow, wf.Name),
		logging.String(logging.FieldCategory, wf.Category),
	)...)
	path := naming.ArtifactPath(wf.Category, wf.FileName)

	if r.cfg.Pipeline.SkipExisting {
		exists, _, err := r.store.Exists(ctx, path)
		if err != nil {
			if r.cfg.Pipeline.SkipOnCheckError {
				logger.Warn("existence check failed, skipping per policy", logging.Args(logging.Error(err))...)
				item.Status = StatusSkipped
				rep.RecordSkip()
				item.Status = StatusDone
				return
			}
			// Reference policy: favor duplicate work over a silent skip.
			logger.Warn("existence check failed, reprocessing", logging.Args(logging.Error(err))...)
			exists = false
		}
		item.Status = StatusChecked
		if exists {
			logger.Info("artifact already published, skipping", logging.Args(logging.String("path", path))...)
			item.Status = StatusSkipped
			rep.RecordSkip()
			item.Status = StatusDone
			return
		}
	}

	if err := r.runStages(ctx, item, path, rep, logger); err != nil {
		item.Status = StatusFailed
		rep.RecordFailure(wf.Name, err)
		logger.Error("item failed", logging.Args(
			logging.String("error_kind", services.Kind(err)),
			logging.Error(err),
		)...)
	}
	item.Status = StatusDone
}

// runStages performs import, capture, and publish. Once the import hands out
// a remote handle, the deferred delete releases it on every exit path;
// cleanup failure is logged and never masks the primary outcome.
func (r *Runner) runStages(ctx context.Context, item *Item, path string, rep *report.RunReport, logger *slog.Logger) error {
	wf := item.Workflow

	item.Status = StatusImporting
	remoteID, err := r.engine.CreateWorkflow(ctx, wf.Definition)
	if err != nil {
		return err
	}
	item.RemoteID = remoteID
	item.Status = StatusImported
	defer func() {
		// The delete still runs when the surrounding context was canceled.
		cleanupCtx := context.WithoutCancel(ctx)
		if delErr := r.engine.DeleteWorkflow(cleanupCtx, remoteID); delErr != nil {
			logger.Warn("cleanup failed, transient workflow may linger in engine",
				logging.Args(logging.String("remote_id", remoteID), logging.Error(delErr))...)
		}
		item.Status = StatusCleaned
	}()

	r.sleep(ctx, time.Duration(r.cfg.Pipeline.PostImportDelayMS)*time.Millisecond)

	item.Status = StatusCapturing
	image, err := r.browser.Capture(ctx, r.engine.CanvasURL(remoteID))
	if err != nil {
		return err
	}
	item.Status = StatusCaptured

	r.writeBackup(wf, image, logger)

	item.Status = StatusPublishing
	result, err := r.store.Publish(ctx, path, image, "Add workflow screenshot: "+wf.Name)
	if err != nil {
		return err
	}
	item.Status = StatusPublished

	rep.RecordSuccess(report.Screenshot{
		Workflow: wf.Name,
		Category: wf.Category,
		Filename: wf.FileName,
		URL:      result.URL,
	})
	logger.Info("published", logging.Args(logging.String("url", result.URL))...)
	return nil
}

// writeBackup mirrors the artifact locally. Failures are logged only; the
// remote publish is the outcome that matters.
func (r *Runner) writeBackup(wf source.Workflow, image []byte, logger *slog.Logger) {
	dir := r.cfg.Paths.BackupDir
	if dir == "" {
		return
	}
	target := filepath.Join(dir, wf.Category, wf.FileName)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		logger.Warn("backup directory not writable", logging.Args(logging.Error(err))...)
		return
	}
	if err := os.WriteFile(target, image, 0o644); err != nil {
		logger.Warn("backup write failed", logging.Args(logging.Error(err))...)
	}
}

func sleepContext(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
