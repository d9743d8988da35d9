package pipeline

import (
	"context"
	"fmt"

	"github.com/chris00234/web-crawler/internal/model"
)

// LinkExtractor turns a fetch result into candidate links.
type LinkExtractor interface {
	Extract(result *model.FetchResult) []string
}

// URLValidator decides whether a link should be crawled.
type URLValidator interface {
	IsValid(rawURL string) bool
}

// FetchStep fetches the task URL from the corpus.
type FetchStep struct {
	corpus Corpus
}

// NewFetchStep creates a FetchStep.
func NewFetchStep(corpus Corpus) *FetchStep {
	return &FetchStep{corpus: corpus}
}

// Name returns the step name.
func (s *FetchStep) Name() string {
	return "fetch"
}

// Do fetches the page.
func (s *FetchStep) Do(ctx context.Context, task *Task) error {
	result, err := s.corpus.FetchURL(ctx, task.URL)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFetch, err)
	}
	if result == nil {
		result = &model.FetchResult{RequestedURL: task.URL}
	}
	task.Result = result
	return nil
}

// ExtractStep collects candidate links and records page statistics.
type ExtractStep struct {
	extractor LinkExtractor
}

// NewExtractStep creates an ExtractStep.
func NewExtractStep(extractor LinkExtractor) *ExtractStep {
	return &ExtractStep{extractor: extractor}
}

// Name returns the step name.
func (s *ExtractStep) Name() string {
	return "extract"
}

// Do extracts the links of the fetched page.
func (s *ExtractStep) Do(_ context.Context, task *Task) error {
	if task.Result == nil {
		return ErrNoResult
	}
	task.Links = s.extractor.Extract(task.Result)
	return nil
}

// ValidateStep filters candidate links through the validator.
type ValidateStep struct {
	validator URLValidator
}

// NewValidateStep creates a ValidateStep.
func NewValidateStep(validator URLValidator) *ValidateStep {
	return &ValidateStep{validator: validator}
}

// Name returns the step name.
func (s *ValidateStep) Name() string {
	return "validate"
}

// Do keeps the valid links. Every link is checked, duplicates included,
// since validation feeds the trap and subdomain counters.
func (s *ValidateStep) Do(_ context.Context, task *Task) error {
	valid := make([]string, 0, len(task.Links))
	for _, link := range task.Links {
		if s.validator.IsValid(link) {
			valid = append(valid, link)
		}
	}
	task.Valid = valid
	return nil
}

// EnqueueStep hands valid links with storage to the frontier.
type EnqueueStep struct {
	frontier Frontier
	corpus   Corpus
}

// NewEnqueueStep creates an EnqueueStep.
func NewEnqueueStep(frontier Frontier, corpus Corpus) *EnqueueStep {
	return &EnqueueStep{frontier: frontier, corpus: corpus}
}

// Name returns the step name.
func (s *EnqueueStep) Name() string {
	return "enqueue"
}

// Do adds each valid link the corpus can store.
func (s *EnqueueStep) Do(_ context.Context, task *Task) error {
	for _, link := range task.Valid {
		if _, ok := s.corpus.HasStorageFor(link); !ok {
			continue
		}
		s.frontier.AddURL(link)
		task.Enqueued++
	}
	return nil
}

// CrawlSteps returns the standard steps in order.
func CrawlSteps(frontier Frontier, corpus Corpus, extractor LinkExtractor, validator URLValidator) []Step {
	return []Step{
		NewFetchStep(corpus),
		NewExtractStep(extractor),
		NewValidateStep(validator),
		NewEnqueueStep(frontier, corpus),
	}
}
