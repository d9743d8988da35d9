package corpus

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/crypto/sha3"
	"gopkg.in/yaml.v3"

	"github.com/chris00234/web-crawler/internal/model"
)

// metadataSuffix is appended to a page file name for its sidecar.
const metadataSuffix = ".yaml"

// FileName returns the storage name of rawURL: the hex SHA3-256 digest of
// the URL string. It is stable across runs and safe on every filesystem.
func FileName(rawURL string) string {
	sum := sha3.Sum256([]byte(rawURL))
	return hex.EncodeToString(sum[:])
}

// Metadata describes a stored page.
type Metadata struct {
	URL         string    `yaml:"url"`
	FinalURL    string    `yaml:"final_url,omitempty"`
	Redirected  bool      `yaml:"redirected,omitempty"`
	Status      int       `yaml:"status"`
	ContentType string    `yaml:"content_type,omitempty"`
	Size        int64     `yaml:"size"`
	FetchedAt   time.Time `yaml:"fetched_at"`
}

// writeEntry stores result under dir. The body is written before the
// sidecar, so a sidecar always refers to a complete body.
func writeEntry(dir string, result *model.FetchResult, fetchedAt time.Time) error {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	name := FileName(result.RequestedURL)
	if err := os.WriteFile(filepath.Join(dir, name), result.Content, 0600); err != nil {
		return fmt.Errorf("failed to write cached page: %w", err)
	}

	meta := Metadata{
		URL:         result.RequestedURL,
		FinalURL:    result.FinalURL,
		Redirected:  result.WasRedirected,
		Status:      result.HTTPStatus,
		ContentType: result.ContentType,
		Size:        result.Size,
		FetchedAt:   fetchedAt.UTC(),
	}
	data, err := yaml.Marshal(&meta)
	if err != nil {
		return fmt.Errorf("failed to encode page metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name+metadataSuffix), data, 0600); err != nil {
		return fmt.Errorf("failed to write page metadata: %w", err)
	}
	return nil
}

// readMetadata loads the sidecar for name. A missing sidecar is not an
// error and yields nil.
func readMetadata(dir, name string) (*Metadata, error) {
	data, err := os.ReadFile(filepath.Join(dir, name+metadataSuffix))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read page metadata: %w", err)
	}

	var meta Metadata
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to decode page metadata: %w", err)
	}
	return &meta, nil
}
