package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultWorkers is the default number of concurrent tasks.
const DefaultWorkers = 8

// CheckpointFunc persists crawl progress. It is never called concurrently
// with itself.
type CheckpointFunc func(ctx context.Context) error

// PageHook observes every finished task. It may be called from several
// goroutines at once.
type PageHook func(task *Task)

// Stats summarizes an Engine run.
type Stats struct {
	// Processed counts tasks that ran, failed ones included.
	Processed int64

	// Failed counts tasks that ended with an error.
	Failed int64

	// Enqueued counts links handed to the frontier.
	Enqueued int64

	// Checkpoints counts successful periodic checkpoints.
	Checkpoints int64

	// Elapsed is the wall time of the run.
	Elapsed time.Duration
}

// queueStats is implemented by frontiers that can report their progress.
type queueStats interface {
	Fetched() int
	Len() int
}

// Engine pulls URLs from a Frontier and runs each through a Pipeline on a
// bounded pool of workers.
type Engine struct {
	frontier Frontier
	pipeline *Pipeline
	logger   *slog.Logger
	workers  int

	checkpointEvery int
	checkpoint      CheckpointFunc
	checkpointMu    sync.Mutex

	onPage PageHook
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithWorkers sets how many tasks run at once.
func WithWorkers(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithEngineLogger sets the logger.
func WithEngineLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithCheckpoint calls fn after every n processed pages.
func WithCheckpoint(n int, fn CheckpointFunc) EngineOption {
	return func(e *Engine) {
		if n > 0 && fn != nil {
			e.checkpointEvery = n
			e.checkpoint = fn
		}
	}
}

// WithPageHook calls fn after every task.
func WithPageHook(fn PageHook) EngineOption {
	return func(e *Engine) {
		e.onPage = fn
	}
}

// NewEngine creates an Engine.
func NewEngine(frontier Frontier, pipeline *Pipeline, opts ...EngineOption) *Engine {
	e := &Engine{
		frontier: frontier,
		pipeline: pipeline,
		workers:  DefaultWorkers,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

// Run crawls until the frontier is exhausted or ctx is cancelled.
//
// A failing task is logged and the crawl continues. On cancellation no new
// task is started and Run waits for running tasks before returning the
// context error. A failing checkpoint is logged and does not stop the crawl.
func (e *Engine) Run(ctx context.Context) (Stats, error) {
	start := time.Now()

	var (
		stats    Stats
		inflight atomic.Int64
		counters struct {
			processed, failed, enqueued, checkpoints atomic.Int64
		}
	)
	wake := make(chan struct{}, 1)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	e.logger.Info("starting crawl", "workers", e.workers)

	for {
		if ctx.Err() != nil {
			break
		}

		// Read before HasNextURL: when no worker was running, nothing can
		// add URLs after this point, so an empty frontier is final.
		busy := inflight.Load()

		if e.frontier.HasNextURL() {
			rawURL := e.frontier.NextURL()
			if rawURL == "" {
				continue
			}
			e.logProgress(rawURL)

			inflight.Add(1)
			g.Go(func() error {
				defer func() {
					inflight.Add(-1)
					select {
					case wake <- struct{}{}:
					default:
					}
				}()

				task := NewTask(rawURL)
				if err := e.pipeline.Execute(gctx, task); err != nil && gctx.Err() == nil {
					counters.failed.Add(1)
					e.logger.Warn("failed to process URL", "url", rawURL, "error", err)
				}
				counters.enqueued.Add(int64(task.Enqueued))
				n := counters.processed.Add(1)

				if e.onPage != nil {
					e.onPage(task)
				}
				if e.checkpoint != nil && n%int64(e.checkpointEvery) == 0 {
					if e.runCheckpoint(gctx) {
						counters.checkpoints.Add(1)
					}
				}
				return nil
			})
			continue
		}

		if busy == 0 {
			break
		}

		select {
		case <-wake:
		case <-ctx.Done():
		}
	}

	_ = g.Wait()

	stats.Processed = counters.processed.Load()
	stats.Failed = counters.failed.Load()
	stats.Enqueued = counters.enqueued.Load()
	stats.Checkpoints = counters.checkpoints.Load()
	stats.Elapsed = time.Since(start)

	e.logger.Info("crawl finished",
		"processed", stats.Processed,
		"failed", stats.Failed,
		"elapsed", stats.Elapsed,
	)

	return stats, ctx.Err()
}

func (e *Engine) runCheckpoint(ctx context.Context) bool {
	e.checkpointMu.Lock()
	defer e.checkpointMu.Unlock()

	if err := e.checkpoint(ctx); err != nil {
		e.logger.Warn("checkpoint failed", "error", err)
		return false
	}
	return true
}

func (e *Engine) logProgress(rawURL string) {
	if qs, ok := e.frontier.(queueStats); ok {
		e.logger.Debug("fetching URL", "url", rawURL, "fetched", qs.Fetched(), "queue", qs.Len())
		return
	}
	e.logger.Debug("fetching URL", "url", rawURL)
}
