package pipeline

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/chris00234/web-crawler/internal/model"
)

// fakeCorpus serves pages from a map. URLs listed in failing return an
// error; URLs in noStorage have no storage.
type fakeCorpus struct {
	mu        sync.Mutex
	pages     map[string]string
	failing   map[string]bool
	noStorage map[string]bool
	fetches   map[string]int
}

func newFakeCorpus(pages map[string]string) *fakeCorpus {
	return &fakeCorpus{
		pages:     pages,
		failing:   make(map[string]bool),
		noStorage: make(map[string]bool),
		fetches:   make(map[string]int),
	}
}

func (c *fakeCorpus) FetchURL(ctx context.Context, rawURL string) (*model.FetchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.fetches[rawURL]++

	if c.failing[rawURL] {
		return nil, errors.New("connection refused")
	}
	body, ok := c.pages[rawURL]
	if !ok {
		return &model.FetchResult{RequestedURL: rawURL}, nil
	}
	return &model.FetchResult{
		RequestedURL: rawURL,
		Content:      []byte(body),
		Size:         int64(len(body)),
		HTTPStatus:   200,
	}, nil
}

func (c *fakeCorpus) HasStorageFor(rawURL string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.noStorage[rawURL] {
		return "", false
	}
	return rawURL, true
}

func (c *fakeCorpus) fetchCount(rawURL string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fetches[rawURL]
}

// recordingFrontier records added URLs.
type recordingFrontier struct {
	mu    sync.Mutex
	added []string
}

func (f *recordingFrontier) HasNextURL() bool { return false }
func (f *recordingFrontier) NextURL() string  { return "" }
func (f *recordingFrontier) AddURL(rawURL string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.added = append(f.added, rawURL)
}

type extractorFunc func(*model.FetchResult) []string

func (fn extractorFunc) Extract(r *model.FetchResult) []string { return fn(r) }

type validatorFunc func(string) bool

func (fn validatorFunc) IsValid(u string) bool { return fn(u) }

// TestFetchStep tests fetching through the corpus.
func TestFetchStep(t *testing.T) {
	t.Parallel()

	corpus := newFakeCorpus(map[string]string{"http://a/": "<p>hi</p>"})
	corpus.failing["http://down/"] = true
	step := NewFetchStep(corpus)

	t.Run("stores the result", func(t *testing.T) {
		t.Parallel()

		task := NewTask("http://a/")
		if err := step.Do(context.Background(), task); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if task.Result == nil || string(task.Result.Content) != "<p>hi</p>" {
			t.Errorf("unexpected result %+v", task.Result)
		}
	})

	t.Run("wraps corpus errors", func(t *testing.T) {
		t.Parallel()

		err := step.Do(context.Background(), NewTask("http://down/"))
		if !errors.Is(err, ErrFetch) {
			t.Errorf("expected ErrFetch, got %v", err)
		}
	})

	t.Run("nil result becomes an empty one", func(t *testing.T) {
		t.Parallel()

		nilCorpus := &nilResultCorpus{}
		task := NewTask("http://a/")
		if err := NewFetchStep(nilCorpus).Do(context.Background(), task); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if task.Result == nil || !task.Result.Empty() {
			t.Errorf("expected empty result, got %+v", task.Result)
		}
	})
}

type nilResultCorpus struct{}

func (nilResultCorpus) FetchURL(context.Context, string) (*model.FetchResult, error) {
	return nil, nil
}

func (nilResultCorpus) HasStorageFor(string) (string, bool) { return "", false }

// TestExtractAndValidateSteps tests link collection and filtering.
func TestExtractAndValidateSteps(t *testing.T) {
	t.Parallel()

	t.Run("extract needs a result", func(t *testing.T) {
		t.Parallel()

		step := NewExtractStep(extractorFunc(func(*model.FetchResult) []string { return nil }))
		if err := step.Do(context.Background(), NewTask("http://a/")); !errors.Is(err, ErrNoResult) {
			t.Errorf("expected ErrNoResult, got %v", err)
		}
	})

	t.Run("validate keeps valid links in order", func(t *testing.T) {
		t.Parallel()

		var checked []string
		step := NewValidateStep(validatorFunc(func(u string) bool {
			checked = append(checked, u)
			return strings.HasPrefix(u, "http://in/")
		}))

		task := NewTask("http://in/")
		task.Links = []string{"http://in/1", "http://out/", "http://in/2", "http://in/1"}
		if err := step.Do(context.Background(), task); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := []string{"http://in/1", "http://in/2", "http://in/1"}
		if !reflect.DeepEqual(task.Valid, want) {
			t.Errorf("expected %v, got %v", want, task.Valid)
		}
		if len(checked) != 4 {
			t.Errorf("expected every link to be checked, got %d", len(checked))
		}
	})
}

// TestEnqueueStep tests the storage gate.
func TestEnqueueStep(t *testing.T) {
	t.Parallel()

	corpus := newFakeCorpus(nil)
	corpus.noStorage["http://in/nostore"] = true
	frontier := &recordingFrontier{}

	task := NewTask("http://in/")
	task.Valid = []string{"http://in/1", "http://in/nostore", "http://in/2"}
	if err := NewEnqueueStep(frontier, corpus).Do(context.Background(), task); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"http://in/1", "http://in/2"}
	if !reflect.DeepEqual(frontier.added, want) {
		t.Errorf("expected %v, got %v", want, frontier.added)
	}
	if task.Enqueued != 2 {
		t.Errorf("expected 2 enqueued, got %d", task.Enqueued)
	}
}

// TestCrawlSteps tests the standard step order.
func TestCrawlSteps(t *testing.T) {
	t.Parallel()

	steps := CrawlSteps(&recordingFrontier{}, newFakeCorpus(nil),
		extractorFunc(func(*model.FetchResult) []string { return nil }),
		validatorFunc(func(string) bool { return true }),
	)
	got := New(steps).StepNames()
	want := []string{"fetch", "extract", "validate", "enqueue"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}
