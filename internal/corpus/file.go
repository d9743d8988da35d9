package corpus

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/chris00234/web-crawler/internal/model"
)

// FileCorpus replays pages stored on disk.
type FileCorpus struct {
	dir string
}

// NewFileCorpus opens the corpus stored under dir.
func NewFileCorpus(dir string) (*FileCorpus, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open corpus: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, dir)
	}
	return &FileCorpus{dir: dir}, nil
}

// Dir returns the corpus directory.
func (c *FileCorpus) Dir() string {
	return c.dir
}

// FetchURL reads the stored page for rawURL.
// A page that is not stored yields a result without content and no error.
// Without a sidecar the page is reported as a 200 with no redirect.
func (c *FileCorpus) FetchURL(ctx context.Context, rawURL string) (*model.FetchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &model.FetchResult{RequestedURL: rawURL}

	name := FileName(rawURL)
	content, err := os.ReadFile(filepath.Join(c.dir, name))
	if os.IsNotExist(err) {
		return result, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read stored page: %w", err)
	}

	result.Content = content
	result.Size = int64(len(content))
	result.HTTPStatus = http.StatusOK

	meta, err := readMetadata(c.dir, name)
	if err != nil {
		return nil, err
	}
	if meta != nil {
		result.HTTPStatus = meta.Status
		result.FinalURL = meta.FinalURL
		result.WasRedirected = meta.Redirected
		result.ContentType = meta.ContentType
	}
	return result, nil
}

// HasStorageFor reports whether a page for rawURL is stored.
func (c *FileCorpus) HasStorageFor(rawURL string) (string, bool) {
	name := FileName(rawURL)
	info, err := os.Stat(filepath.Join(c.dir, name))
	if err != nil || info.IsDir() {
		return "", false
	}
	return name, true
}

// Store writes result into the corpus. It is used to build corpora by
// hand and in tests.
func (c *FileCorpus) Store(result *model.FetchResult) error {
	return writeEntry(c.dir, result, time.Now())
}
