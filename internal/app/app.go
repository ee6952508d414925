package app

import (
	"context"
	"fmt"
	"time"

	"s3batch/internal/config"
	"s3batch/internal/journal"
	"s3batch/internal/metrics"
	"s3batch/internal/progress"
	"s3batch/internal/storage"
	"s3batch/internal/worker"

	"go.uber.org/zap"
)

// App wires the gateway, task runner, journal and metrics behind the
// user-facing commands
type App struct {
	cfg     *config.Config
	logger  *zap.Logger
	client  storage.Client
	journal journal.Store
	metrics *metrics.Collector
	runner  *worker.Runner
}

// New creates a new application instance
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	client, err := storage.NewMinIOClient(storage.Config{
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Secure:    cfg.Storage.Secure,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	journalStore, err := journal.NewSQLiteStore(cfg.Transfer.Journal)
	if err != nil {
		return nil, fmt.Errorf("failed to create journal store: %w", err)
	}

	a := newApp(cfg, logger, client, journalStore)

	if cfg.Transfer.MetricsListen != "" {
		go func() {
			if err := a.metrics.StartServer(cfg.Transfer.MetricsListen); err != nil {
				logger.Error("Failed to start metrics server", zap.Error(err))
			}
		}()
	}

	return a, nil
}

// newApp wires an App from already-constructed collaborators
func newApp(cfg *config.Config, logger *zap.Logger, client storage.Client, journalStore journal.Store) *App {
	return &App{
		cfg:     cfg,
		logger:  logger,
		client:  client,
		journal: journalStore,
		metrics: metrics.New(),
		runner:  worker.NewRunner(logger),
	}
}

// Close cleans up resources
func (a *App) Close() error {
	if a.journal != nil {
		return a.journal.Close()
	}
	return nil
}

// Summary aggregates the outcomes of one run
type Summary struct {
	Total     int
	Succeeded int
	Failed    int
}

// Err returns nil when every item succeeded, otherwise an error carrying the
// partial-success counts
func (s Summary) Err(operation string) error {
	if s.Failed == 0 {
		return nil
	}
	return fmt.Errorf("%d of %d %s operations failed", s.Failed, s.Total, operation)
}

// execute runs the items through the bounded task runner and records every
// outcome in the journal and metrics. All items are attempted; failures are
// collected, never aborting siblings.
func (a *App) execute(ctx context.Context, bucket string, items []worker.Item, parallelism int, fn worker.Fn) Summary {
	var totalBytes int64
	for _, item := range items {
		totalBytes += item.Size
	}
	a.metrics.SetTotalCounts(int64(len(items)), totalBytes)
	a.metrics.SetInflightWorkers(parallelism)
	defer a.metrics.SetInflightWorkers(0)

	display := a.startDisplay()

	start := time.Now()
	outcomes := a.runner.Run(ctx, items, parallelism, fn)
	a.metrics.ObserveDuration(time.Since(start))

	if display != nil {
		display.Stop()
	}

	summary := Summary{Total: len(items)}
	for _, outcome := range outcomes {
		a.record(bucket, outcome)
		if outcome.Err != nil {
			summary.Failed++
		} else {
			summary.Succeeded++
		}
	}

	return summary
}

// record journals one outcome and counts it in metrics. Journal failures are
// logged, never surfaced: bookkeeping must not fail a transfer.
func (a *App) record(bucket string, outcome worker.Outcome) {
	rec := &journal.Record{
		Bucket:    bucket,
		Key:       outcome.Item.Key,
		Operation: string(outcome.Item.Op),
		Status:    journal.StatusSuccess,
		Bytes:     outcome.Item.Size,
	}

	if outcome.Err != nil {
		rec.Status = journal.StatusFailed
		rec.LastError = outcome.Err.Error()
		a.metrics.IncFailed(string(outcome.Item.Op))
	} else {
		a.metrics.IncSuccess(string(outcome.Item.Op))
		a.metrics.AddBytes(outcome.Item.Size)
	}

	if err := a.journal.Append(rec); err != nil {
		a.logger.Warn("Failed to journal outcome",
			zap.String("key", outcome.Item.Key),
			zap.Error(err),
		)
	}
}

func (a *App) startDisplay() *progress.Display {
	if !a.cfg.Transfer.ShowProgress || !progress.IsTerminalSupported() {
		return nil
	}

	display := progress.NewDisplay(a.metrics.GetProgressTracker(), 500*time.Millisecond)
	display.Start()
	return display
}
