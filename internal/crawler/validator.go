package crawler

import (
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"github.com/chris00234/web-crawler/internal/model"
)

// DefaultScope is the host suffix the crawl is restricted to by default.
const DefaultScope = ".ics.uci.edu"

// DefaultDeniedExtensions lists path extensions of binary, media, document
// and archive files that are never crawled.
var DefaultDeniedExtensions = []string{
	"css", "js", "bmp", "gif", "jpg", "jpeg", "ico",
	"png", "tif", "tiff", "mid", "mp2", "mp3", "mp4",
	"wav", "avi", "mov", "mpeg", "ram", "m4v", "mkv", "ogg", "ogv", "pdf",
	"ps", "eps", "tex", "ppt", "pptx", "doc", "docx", "xls", "xlsx", "names",
	"data", "dat", "exe", "bz2", "tar", "msi", "bin", "7z", "psd", "dmg", "iso",
	"epub", "dll", "cnf", "tgz", "sha1",
	"thmx", "mso", "arff", "rtf", "jar", "csv",
	"rm", "smil", "wmv", "swf", "wma", "zip", "rar", "gz",
}

// Verdict is the terminal classification of one URL by the Validator.
type Verdict int

const (
	// RejectedScheme means the URL is not http or https.
	RejectedScheme Verdict = iota

	// RejectedScope means the host is out of scope, missing or malformed,
	// or the path ends with a denied extension.
	RejectedScope

	// RejectedTrap means the trap detector fired.
	RejectedTrap

	// Accepted means the URL should be crawled.
	Accepted
)

// String returns a short name for the verdict, for logging.
func (v Verdict) String() string {
	switch v {
	case RejectedScheme:
		return "rejected-scheme"
	case RejectedScope:
		return "rejected-scope"
	case RejectedTrap:
		return "rejected-trap"
	case Accepted:
		return "accepted"
	default:
		return "unknown"
	}
}

// Validator decides whether a candidate URL is worth crawling and records
// the outcome in the crawl state.
type Validator struct {
	state    *model.CrawlState
	detector *TrapDetector
	logger   *slog.Logger

	// scope is the lowercased host suffix URLs must end with.
	scope string

	// denied matches lowercased paths ending with a denied extension.
	denied *regexp.Regexp
}

// ValidatorOption configures a Validator.
type ValidatorOption func(*Validator)

// WithScope sets the host suffix the crawl is restricted to.
func WithScope(suffix string) ValidatorOption {
	return func(v *Validator) {
		if suffix != "" {
			v.scope = strings.ToLower(suffix)
		}
	}
}

// WithDeniedExtensions replaces the extension denylist.
// Extensions are given without the leading dot.
func WithDeniedExtensions(exts []string) ValidatorOption {
	return func(v *Validator) {
		v.denied = compileExtensions(exts)
	}
}

// WithValidatorLogger sets the logger used for classification diagnostics.
func WithValidatorLogger(logger *slog.Logger) ValidatorOption {
	return func(v *Validator) {
		v.logger = logger
	}
}

// NewValidator creates a Validator that consults detector for traps.
func NewValidator(state *model.CrawlState, detector *TrapDetector, opts ...ValidatorOption) *Validator {
	v := &Validator{
		state:    state,
		detector: detector,
		scope:    DefaultScope,
		denied:   compileExtensions(DefaultDeniedExtensions),
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.logger == nil {
		v.logger = slog.Default()
	}
	return v
}

// IsValid reports whether rawURL should be crawled.
func (v *Validator) IsValid(rawURL string) bool {
	return v.Check(rawURL) == Accepted
}

// Check classifies rawURL.
//
// Scheme and scope rejections leave the state untouched. Every in-scope URL
// reaches the trap detector, which counts it in its query-string family.
// A trap is recorded in the trap set. An accepted URL increments its
// subdomain counter and is recorded in the accepted set.
func (v *Validator) Check(rawURL string) Verdict {
	u, err := url.Parse(rawURL)
	if err != nil {
		v.logger.Debug("rejecting malformed URL", "url", rawURL, "error", err)
		if scheme, _, ok := strings.Cut(rawURL, ":"); ok && isHTTPScheme(strings.ToLower(scheme)) {
			return RejectedScope
		}
		return RejectedScheme
	}

	if !isHTTPScheme(u.Scheme) {
		return RejectedScheme
	}

	host := strings.ToLower(u.Hostname())
	if host == "" || !strings.HasSuffix(host, v.scope) {
		return RejectedScope
	}
	if v.denied.MatchString(strings.ToLower(u.EscapedPath())) {
		return RejectedScope
	}

	if reason := v.detector.Classify(rawURL); reason != TrapNone {
		v.state.AddTrap(rawURL)
		v.logger.Debug("trap detected", "url", rawURL, "reason", reason.String())
		return RejectedTrap
	}

	v.state.Accept(rawURL, Subdomain(host))
	return Accepted
}

// Subdomain returns the leftmost label of host when it has three or more
// labels, and the empty string otherwise.
func Subdomain(host string) string {
	labels := strings.Split(host, ".")
	if len(labels) < 3 {
		return ""
	}
	return labels[0]
}

func isHTTPScheme(scheme string) bool {
	return scheme == "http" || scheme == "https"
}

// compileExtensions builds a matcher for paths ending in ".<ext>".
// An empty list matches nothing.
func compileExtensions(exts []string) *regexp.Regexp {
	quoted := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext != "" {
			quoted = append(quoted, regexp.QuoteMeta(ext))
		}
	}
	if len(quoted) == 0 {
		return regexp.MustCompile(`[^\s\S]`)
	}
	return regexp.MustCompile(`\.(` + strings.Join(quoted, "|") + `)$`)
}
