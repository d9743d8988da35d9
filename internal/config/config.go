package config

import (
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/adrg/xdg"

	"github.com/chris00234/web-crawler/internal/crawler"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "webcrawler"

	// DefaultScope is the host suffix a URL must end with to be crawled.
	DefaultScope = crawler.DefaultScope

	// DefaultReportFile is where the crawl report is written.
	DefaultReportFile = "output.txt"

	// DefaultReportFormat is the format of the crawl report.
	DefaultReportFormat = "text"

	// DefaultMaxURLLength is the longest URL that is not a trap.
	DefaultMaxURLLength = crawler.DefaultMaxURLLength

	// DefaultFamilyThreshold is how many URLs may share a query-stripped
	// prefix before further ones are traps.
	DefaultFamilyThreshold = crawler.DefaultFamilyThreshold

	// DefaultRepeatThreshold is how often one path segment may repeat.
	DefaultRepeatThreshold = crawler.DefaultRepeatThreshold

	// DefaultTopWords is the number of words listed in the report.
	DefaultTopWords = 50

	// DefaultWorkers is the number of pages processed concurrently.
	DefaultWorkers = 8

	// DefaultTimeout bounds a single page fetch.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxBodySize limits the response body read per page.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultCheckpointEvery is how many processed pages pass between
	// checkpoints.
	DefaultCheckpointEvery = 100

	// DefaultUserAgent identifies the crawler in HTTP requests.
	DefaultUserAgent = "webcrawler/1.0 (+https://github.com/chris00234/web-crawler)"
)

// reportFormats are the accepted values of ReportFormat.
var reportFormats = []string{"text", "txt", "markdown", "md", "json"}

// Config holds every option of a crawl.
// It is populated from defaults, the configuration file and CLI flags,
// in that order, and passed down explicitly.
type Config struct {
	// Seeds are the URLs the crawl starts from.
	Seeds []string

	// Scope is the host suffix a URL must end with to be crawled.
	Scope string

	// DeniedExtensions are path extensions that are never crawled.
	DeniedExtensions []string

	// MaxURLLength is the longest URL that is not a trap.
	MaxURLLength int

	// FamilyThreshold is how many URLs may share a query-stripped prefix.
	FamilyThreshold int

	// RepeatThreshold is how often one path segment may repeat in a path.
	RepeatThreshold int

	// TopWords is the number of words listed in the report.
	TopWords int

	// Workers is the number of pages processed concurrently.
	Workers int

	// Timeout bounds a single page fetch.
	Timeout time.Duration

	// MaxBodySize limits the response body read per page.
	MaxBodySize int64

	// RequestsPerSecond limits the fetch rate. Zero means unlimited.
	RequestsPerSecond float64

	// CheckpointEvery is how many processed pages pass between checkpoints.
	// Zero disables periodic checkpoints; a final one is still written.
	CheckpointEvery int

	// MaxPages stops the crawl after this many fetches. Zero means unlimited.
	MaxPages int

	// UserAgent is sent with every request.
	UserAgent string

	// Proxy is an optional http, https, socks5 or socks5h proxy URL.
	Proxy string

	// CacheDir, when set, receives a copy of every fetched page.
	CacheDir string

	// CorpusDir, when set, replaces live fetching with an offline corpus.
	CorpusDir string

	// DBDir is the directory of the checkpoint database.
	// Defaults to the XDG data directory.
	DBDir string

	// SaveToDB enables checkpointing.
	SaveToDB bool

	// ReportFile is the path of the crawl report.
	ReportFile string

	// ReportFormat is text, markdown or json, or a comma-separated list of
	// them to write one report file per format.
	ReportFormat string

	// Verbose enables debug logging.
	Verbose bool

	// LogFile, when set, receives logs instead of stderr.
	LogFile string

	// ConfigFilePath is the configuration file given on the command line.
	ConfigFilePath string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Scope:            DefaultScope,
		DeniedExtensions: slices.Clone(crawler.DefaultDeniedExtensions),
		MaxURLLength:     DefaultMaxURLLength,
		FamilyThreshold:  DefaultFamilyThreshold,
		RepeatThreshold:  DefaultRepeatThreshold,
		TopWords:         DefaultTopWords,
		Workers:          DefaultWorkers,
		Timeout:          DefaultTimeout,
		MaxBodySize:      DefaultMaxBodySize,
		CheckpointEvery:  DefaultCheckpointEvery,
		UserAgent:        DefaultUserAgent,
		DBDir:            XDGDataDir(),
		SaveToDB:         true,
		ReportFile:       DefaultReportFile,
		ReportFormat:     DefaultReportFormat,
	}
}

// XDGDataDir returns the XDG data directory for the crawler.
// On Linux: ~/.local/share/webcrawler
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for the crawler.
// On Linux: ~/.config/webcrawler
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for the crawler.
// On Linux: ~/.cache/webcrawler
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// Validate checks if the configuration is valid and returns the first
// violated rule.
func (c *Config) Validate() error {
	if len(c.Seeds) == 0 {
		return ErrNoSeed
	}
	if c.Scope == "" {
		return ErrEmptyScope
	}
	if c.Workers <= 0 {
		return ErrInvalidWorkers
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.MaxURLLength <= 0 || c.FamilyThreshold <= 0 || c.RepeatThreshold <= 0 {
		return ErrInvalidThreshold
	}
	if c.TopWords <= 0 {
		return ErrInvalidTopWords
	}
	if c.RequestsPerSecond < 0 {
		return ErrInvalidRate
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	if c.MaxPages < 0 {
		return ErrInvalidMaxPages
	}
	if c.CheckpointEvery < 0 {
		return ErrInvalidCheckpointInterval
	}
	for _, name := range strings.Split(c.ReportFormat, ",") {
		if !slices.Contains(reportFormats, strings.ToLower(strings.TrimSpace(name))) {
			return ErrInvalidReportFormat
		}
	}
	return nil
}
