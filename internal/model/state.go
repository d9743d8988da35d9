package model

import "sync"

// CrawlState holds every statistic the crawl accumulates.
// It is created once per crawl and is safe for concurrent use.
//
// Counters and sets only grow. A URL is never both a trap and accepted:
// whichever classification is recorded first wins.
type CrawlState struct {
	mu sync.Mutex

	bestLinkPage PageStat
	bestWordPage PageStat

	traps    orderedSet
	accepted orderedSet

	dynamicURLs counter
	subdomains  counter
	words       counter
}

// NewCrawlState creates a CrawlState with every field at its zero value.
func NewCrawlState() *CrawlState {
	return &CrawlState{
		traps:       newOrderedSet(),
		accepted:    newOrderedSet(),
		dynamicURLs: newCounter(),
		subdomains:  newCounter(),
		words:       newCounter(),
	}
}

// NewCrawlStateFromSnapshot rebuilds a CrawlState from a checkpoint.
func NewCrawlStateFromSnapshot(snap *Snapshot) *CrawlState {
	s := NewCrawlState()
	s.Restore(snap)
	return s
}

// RecordWords folds the tokens of one page into the word-frequency table and
// makes the page the best word page if its token count strictly exceeds
// the stored maximum. It reports whether the best word page changed.
func (s *CrawlState) RecordWords(pageURL string, tokens []string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, token := range tokens {
		s.words.incr(token, 1)
	}
	if len(tokens) > s.bestWordPage.Count {
		s.bestWordPage = PageStat{URL: pageURL, Count: len(tokens)}
		return true
	}
	return false
}

// RecordLinks makes the page the best link page if count strictly exceeds
// the stored maximum. It reports whether the best link page changed.
func (s *CrawlState) RecordLinks(pageURL string, count int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if count > s.bestLinkPage.Count {
		s.bestLinkPage = PageStat{URL: pageURL, Count: count}
		return true
	}
	return false
}

// ObserveFamily increments the observation counter of a query-stripped URL
// prefix and returns the new value.
func (s *CrawlState) ObserveFamily(prefix string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dynamicURLs.incr(prefix, 1)
}

// AddTrap records a URL as a trap. It returns false when the URL was
// already recorded as a trap or had been accepted earlier.
func (s *CrawlState) AddTrap(rawURL string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.accepted.has(rawURL) {
		return false
	}
	return s.traps.add(rawURL)
}

// Accept increments the subdomain counter (when subdomain is non-empty) and
// records the URL as accepted. The counter is bumped on every call while the
// URL itself is stored once. It returns whether the URL was newly added.
func (s *CrawlState) Accept(rawURL, subdomain string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if subdomain != "" {
		s.subdomains.incr(subdomain, 1)
	}
	if s.traps.has(rawURL) {
		return false
	}
	return s.accepted.add(rawURL)
}

// BestLinkPage returns the page with the most outbound links so far.
func (s *CrawlState) BestLinkPage() PageStat {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bestLinkPage
}

// BestWordPage returns the page with the most words so far.
func (s *CrawlState) BestWordPage() PageStat {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bestWordPage
}

// WordCount returns how often word has been seen.
func (s *CrawlState) WordCount(word string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.words.get(word)
}

// SubdomainCount returns the accepted-URL count for a subdomain label.
func (s *CrawlState) SubdomainCount(label string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subdomains.get(label)
}

// FamilyCount returns how many URLs with the given query-stripped prefix
// have been observed.
func (s *CrawlState) FamilyCount(prefix string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dynamicURLs.get(prefix)
}

// IsTrap reports whether the URL has been recorded as a trap.
func (s *CrawlState) IsTrap(rawURL string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.traps.has(rawURL)
}

// IsAccepted reports whether the URL has been accepted.
func (s *CrawlState) IsAccepted(rawURL string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accepted.has(rawURL)
}

// Counts summarizes the size of each collection, for logging.
type Counts struct {
	Traps       int
	Accepted    int
	Words       int
	Subdomains  int
	DynamicURLs int
}

// Counts returns the current collection sizes.
func (s *CrawlState) Counts() Counts {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Counts{
		Traps:       s.traps.len(),
		Accepted:    s.accepted.len(),
		Words:       s.words.len(),
		Subdomains:  s.subdomains.len(),
		DynamicURLs: s.dynamicURLs.len(),
	}
}

// Snapshot returns a deep copy of the state.
func (s *CrawlState) Snapshot() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &Snapshot{
		BestLinkPage: s.bestLinkPage,
		BestWordPage: s.bestWordPage,
		Words:        s.words.list(),
		Subdomains:   s.subdomains.list(),
		DynamicURLs:  s.dynamicURLs.list(),
		Traps:        s.traps.list(),
		Accepted:     s.accepted.list(),
	}
}

// Restore replaces the state with the contents of snap.
// A nil snapshot resets the state.
func (s *CrawlState) Restore(snap *Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.bestLinkPage = PageStat{}
	s.bestWordPage = PageStat{}
	s.traps = newOrderedSet()
	s.accepted = newOrderedSet()
	s.dynamicURLs = newCounter()
	s.subdomains = newCounter()
	s.words = newCounter()
	if snap == nil {
		return
	}

	s.bestLinkPage = snap.BestLinkPage
	s.bestWordPage = snap.BestWordPage
	for _, c := range snap.Words {
		s.words.incr(c.Key, c.Count)
	}
	for _, c := range snap.Subdomains {
		s.subdomains.incr(c.Key, c.Count)
	}
	for _, c := range snap.DynamicURLs {
		s.dynamicURLs.incr(c.Key, c.Count)
	}
	for _, u := range snap.Traps {
		s.traps.add(u)
	}
	for _, u := range snap.Accepted {
		if !s.traps.has(u) {
			s.accepted.add(u)
		}
	}
}
