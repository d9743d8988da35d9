package crawler

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/chris00234/web-crawler/internal/model"
)

// Default trap thresholds.
const (
	// DefaultMaxURLLength is the longest URL, in characters, that is not a trap.
	DefaultMaxURLLength = 750

	// DefaultFamilyThreshold is how many URLs may share one query-stripped
	// prefix before the rest of that family is treated as a trap.
	DefaultFamilyThreshold = 25

	// DefaultRepeatThreshold is how often one path segment may appear in a
	// single path before the URL is a directory trap.
	DefaultRepeatThreshold = 10
)

// TrapReason identifies which heuristic classified a URL as a trap.
type TrapReason int

const (
	// TrapNone means no heuristic fired.
	TrapNone TrapReason = iota

	// TrapLength means the URL is longer than the maximum length.
	TrapLength

	// TrapDynamic means the URL's query-stripped prefix has been seen more
	// often than the family threshold.
	TrapDynamic

	// TrapDirectory means one path segment repeats too often within the path.
	TrapDirectory
)

// String returns a short name for the reason, for logging.
func (r TrapReason) String() string {
	switch r {
	case TrapNone:
		return "none"
	case TrapLength:
		return "length"
	case TrapDynamic:
		return "dynamic"
	case TrapDirectory:
		return "directory"
	default:
		return "unknown"
	}
}

// TrapDetector classifies URLs that would lead into unbounded crawl spaces.
// It keeps its family counters in the crawl state, so verdicts depend on
// every URL classified before.
type TrapDetector struct {
	state *model.CrawlState

	maxURLLength    int
	familyThreshold int
	repeatThreshold int
}

// TrapOption configures a TrapDetector.
type TrapOption func(*TrapDetector)

// WithMaxURLLength sets the length above which a URL is a trap.
func WithMaxURLLength(n int) TrapOption {
	return func(d *TrapDetector) {
		if n > 0 {
			d.maxURLLength = n
		}
	}
}

// WithFamilyThreshold sets how many members a query-string family may have.
func WithFamilyThreshold(n int) TrapOption {
	return func(d *TrapDetector) {
		if n > 0 {
			d.familyThreshold = n
		}
	}
}

// WithRepeatThreshold sets how often a path segment may occur before the
// URL is a trap.
func WithRepeatThreshold(n int) TrapOption {
	return func(d *TrapDetector) {
		if n > 0 {
			d.repeatThreshold = n
		}
	}
}

// NewTrapDetector creates a TrapDetector using the default thresholds
// unless overridden by opts.
func NewTrapDetector(state *model.CrawlState, opts ...TrapOption) *TrapDetector {
	d := &TrapDetector{
		state:           state,
		maxURLLength:    DefaultMaxURLLength,
		familyThreshold: DefaultFamilyThreshold,
		repeatThreshold: DefaultRepeatThreshold,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// IsTrap reports whether rawURL is a trap.
func (d *TrapDetector) IsTrap(rawURL string) bool {
	return d.Classify(rawURL) != TrapNone
}

// Classify runs the heuristics in order and returns the first that fires.
//
// Every URL that gets past the length check increments its family counter,
// whatever the final verdict. Counters are never reset, so once a family
// crosses the threshold all its later members are traps.
func (d *TrapDetector) Classify(rawURL string) TrapReason {
	if utf8.RuneCountInString(rawURL) > d.maxURLLength {
		return TrapLength
	}

	prefix, _, _ := strings.Cut(rawURL, "?")
	if d.state.ObserveFamily(prefix) > d.familyThreshold {
		return TrapDynamic
	}

	if d.hasRepeatedSegment(rawURL) {
		return TrapDirectory
	}

	return TrapNone
}

// hasRepeatedSegment splits the URL path on "/" and reports whether any
// segment, the empty one included, occurs repeatThreshold times or more.
func (d *TrapDetector) hasRepeatedSegment(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	seen := make(map[string]int)
	for _, segment := range strings.Split(u.EscapedPath(), "/") {
		seen[segment]++
		if seen[segment] >= d.repeatThreshold {
			return true
		}
	}
	return false
}
