package frontier

import (
	"net/url"
	"strings"
	"sync"
)

// Queue is an in-memory crawl frontier. It is safe for concurrent use.
type Queue struct {
	mu sync.Mutex

	// pending holds URLs not yet handed out, oldest first.
	pending []string

	// seen holds the normalized form of every URL ever added or marked.
	seen map[string]struct{}

	// fetched counts URLs handed out by NextURL.
	fetched int

	// maxFetch stops the queue after that many URLs; 0 means unlimited.
	maxFetch int
}

// QueueOption configures a Queue.
type QueueOption func(*Queue)

// WithMaxFetch limits how many URLs NextURL hands out in total.
func WithMaxFetch(n int) QueueOption {
	return func(q *Queue) {
		if n > 0 {
			q.maxFetch = n
		}
	}
}

// WithFetched starts the fetched counter at n, for a resumed crawl.
func WithFetched(n int) QueueOption {
	return func(q *Queue) {
		if n > 0 {
			q.fetched = n
		}
	}
}

// NewQueue creates an empty Queue.
func NewQueue(opts ...QueueOption) *Queue {
	q := &Queue{
		pending: make([]string, 0),
		seen:    make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Add enqueues rawURL unless an equivalent URL was seen before.
// It reports whether the URL was enqueued.
func (q *Queue) Add(rawURL string) bool {
	key := Normalize(rawURL)

	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.seen[key]; ok {
		return false
	}
	q.seen[key] = struct{}{}
	q.pending = append(q.pending, rawURL)
	return true
}

// AddURL enqueues rawURL, ignoring duplicates.
func (q *Queue) AddURL(rawURL string) {
	q.Add(rawURL)
}

// MarkSeen records URLs as seen without enqueuing them.
func (q *Queue) MarkSeen(rawURLs ...string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, u := range rawURLs {
		q.seen[Normalize(u)] = struct{}{}
	}
}

// HasNextURL reports whether NextURL would return a URL.
func (q *Queue) HasNextURL() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.hasNext()
}

// NextURL removes and returns the oldest pending URL.
// It returns the empty string when HasNextURL is false.
func (q *Queue) NextURL() string {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.hasNext() {
		return ""
	}
	next := q.pending[0]
	q.pending[0] = ""
	q.pending = q.pending[1:]
	q.fetched++
	return next
}

func (q *Queue) hasNext() bool {
	if len(q.pending) == 0 {
		return false
	}
	return q.maxFetch == 0 || q.fetched < q.maxFetch
}

// Fetched returns how many URLs NextURL has handed out.
func (q *Queue) Fetched() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.fetched
}

// Len returns the number of pending URLs.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Pending returns a copy of the pending URLs, oldest first.
func (q *Queue) Pending() []string {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]string, len(q.pending))
	copy(out, q.pending)
	return out
}

// Normalize returns the form of rawURL used for deduplication.
// The fragment is dropped, scheme and host are lowercased and an empty path
// becomes "/". Unparsable input is returned unchanged.
func Normalize(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	u.Fragment = ""
	u.RawFragment = ""
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	if u.Path == "" && u.Host != "" {
		u.Path = "/"
	}

	return u.String()
}
