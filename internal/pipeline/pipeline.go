package pipeline

import (
	"context"
	"log/slog"

	"github.com/chris00234/web-crawler/internal/model"
)

// Frontier supplies URLs to crawl and accepts new ones.
// AddURL may be called from several goroutines at once.
type Frontier interface {
	HasNextURL() bool
	NextURL() string
	AddURL(rawURL string)
}

// Corpus fetches pages and decides whether a URL can be stored.
type Corpus interface {
	FetchURL(ctx context.Context, rawURL string) (*model.FetchResult, error)

	// HasStorageFor returns the storage name for rawURL and whether one
	// exists. URLs without storage are never enqueued.
	HasStorageFor(rawURL string) (string, bool)
}

// Task carries one URL through the steps.
type Task struct {
	// URL is the URL taken from the frontier.
	URL string

	// Result is set by the fetch step.
	Result *model.FetchResult

	// Links are every candidate link found on the page.
	Links []string

	// Valid are the links the validator accepted.
	Valid []string

	// Enqueued counts valid links handed to the frontier.
	Enqueued int

	// Err is the first step error, if any.
	Err error
}

// NewTask creates a Task for rawURL.
func NewTask(rawURL string) *Task {
	return &Task{URL: rawURL}
}

// Step is one stage of processing a Task.
type Step interface {
	// Do runs the step. Returning an error ends the task.
	Do(ctx context.Context, task *Task) error

	// Name returns the step's name for logging.
	Name() string
}

// Pipeline runs steps in order. Steps hold no per-task state, so one
// Pipeline may execute many tasks concurrently.
type Pipeline struct {
	steps []Step

	logger *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates a Pipeline with the given steps.
func New(steps []Step, opts ...Option) *Pipeline {
	p := &Pipeline{steps: append([]Step(nil), steps...)}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// Execute runs every step on task in order, checking for cancellation
// before each one. The first error stops the task and is recorded in
// task.Err.
func (p *Pipeline) Execute(ctx context.Context, task *Task) error {
	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			p.logger.Debug("pipeline cancelled", "step", step.Name(), "url", task.URL, "reason", err)
			task.Err = err
			return err
		}

		if err := step.Do(ctx, task); err != nil {
			p.logger.Debug("step failed", "step", step.Name(), "url", task.URL, "error", err)
			task.Err = err
			return err
		}
	}
	return nil
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
