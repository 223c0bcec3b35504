package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"worklog-go/internal/config"
	"worklog-go/internal/history"
	"worklog-go/internal/notion"
	"worklog-go/internal/worklog"
)

// App is the application layer between the CLI and the worklog service.
// It constructs all dependencies from config and environment, tracks the
// run in the history store, and manages resource lifecycle on Close.
type App struct {
	cfg     *config.Config
	store   history.Store
	service *worklog.Service
	logger  worklog.Logger

	run     *RunRecord
	logFile *os.File
}

// New creates a fully wired App for the named operation (e.g. "Daily",
// "WeeklyArchive"). Missing configuration is a fatal error here, before any
// remote call is made. The caller must call Close when done.
func New(operation string) (*App, error) {
	paths, err := DefaultPaths()
	if err != nil {
		return nil, fmt.Errorf("resolving paths: %w", err)
	}

	cfg, err := config.ReadFromFile(paths.ConfigPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no config file at %s (run `worklog config init` first)", paths.ConfigPath)
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg.ApplyEnv()

	token := os.Getenv(config.EnvToken)
	if err := cfg.Validate(token); err != nil {
		return nil, err
	}

	store, err := history.NewStoreFromConfig(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("opening run history: %w", err)
	}

	// Correlation ID tying log lines from one invocation together.
	runID := worklog.UUIDGenerator{}.New()
	logger, logFile, err := newLogger(cfg.LogDir, runID)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	opts := []notion.Option{
		notion.WithProperties(cfg.Notion.TitleProperty, cfg.Notion.DateProperty),
		notion.WithPacing(
			time.Duration(cfg.API.MutationDelayMS)*time.Millisecond,
			time.Duration(cfg.API.RetryDelayMS)*time.Millisecond,
			uint64(cfg.API.MaxRetries),
		),
	}
	if cfg.API.BaseURL != "" {
		opts = append(opts, notion.WithBaseURL(cfg.API.BaseURL))
	}
	if cfg.API.PageSize > 0 {
		opts = append(opts, notion.WithPageSize(cfg.API.PageSize))
	}
	client := notion.New(token, opts...)

	adapted := &slogAdapter{l: logger}
	svc := worklog.NewService(client, adapted, worklog.RealClock{})

	return &App{
		cfg:     cfg,
		store:   store,
		service: svc,
		logger:  adapted,
		run:     NewRunRecord(operation),
		logFile: logFile,
	}, nil
}

// persistRun saves the run record to the store, giving it an auto-increment
// ID. Only remote-mutating commands call this.
func (a *App) persistRun() error {
	if a.run.Persisted() {
		return nil // already persisted
	}
	stored, err := a.store.CreateRun(a.run.Operation)
	if err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	a.run.ID = stored.ID
	return nil
}

// RunDaily creates today's entry (and optionally the next business day's).
// Block-level copy errors are logged and counted but do not fail the run.
func (a *App) RunDaily(ctx context.Context, prepareNext bool) ([]worklog.DailyEntry, error) {
	if err := a.persistRun(); err != nil {
		return nil, err
	}

	entries, err := a.service.RunDaily(ctx, a.cfg.Notion.TemplatePageID, a.cfg.Notion.DatabaseID, prepareNext)
	for _, e := range entries {
		if e.Status == worklog.StatusCreated {
			a.run.Counts.Created++
		} else {
			a.run.Counts.Skipped++
		}
		a.run.Counts.Failed += e.Errs
	}
	if err != nil {
		a.run.Status = history.StatusError
	}
	return entries, err
}

// RunArchive moves last week's entries into the archive container.
func (a *App) RunArchive(ctx context.Context) (worklog.ArchiveResult, error) {
	if err := a.persistRun(); err != nil {
		return worklog.ArchiveResult{}, err
	}

	res, err := a.service.RunWeeklyArchive(ctx, a.cfg.Notion.DatabaseID, a.cfg.Notion.ArchivePageID)
	a.run.Counts.Moved += res.Moved
	a.run.Counts.Skipped += res.Skipped
	a.run.Counts.Failed += res.Failed
	if err != nil {
		a.run.Status = history.StatusError
	}
	return res, err
}

// Outline returns a depth-first sketch of a page's blocks.
func (a *App) Outline(ctx context.Context, pageID string) ([]worklog.OutlineItem, error) {
	return a.service.Outline(ctx, pageID)
}

// ChildPages lists the pages nested directly under a container.
func (a *App) ChildPages(ctx context.Context, containerID string) ([]worklog.Page, error) {
	return a.service.ChildPages(ctx, containerID)
}

// ArchivePageID returns the configured archive container ID.
func (a *App) ArchivePageID() string {
	return a.cfg.Notion.ArchivePageID
}

// History returns the most recent runs from the history store.
func (a *App) History(limit int) ([]*history.Run, error) {
	return a.store.ListRuns(limit)
}

// Close finalizes the run record (if persisted) and releases all resources.
func (a *App) Close() error {
	var firstErr error

	if a.run.Persisted() {
		if err := a.store.FinishRun(a.run.ID, a.run.Status, a.run.Counts); err != nil {
			firstErr = fmt.Errorf("finishing run: %w", err)
		}
	}
	if err := a.store.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("closing run history: %w", err)
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
	return firstErr
}
