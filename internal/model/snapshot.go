package model

// PageStat pairs a page URL with the count it produced.
type PageStat struct {
	URL   string `json:"url"`
	Count int    `json:"count"`
}

// Count is one entry of a counter, such as a word and its frequency.
type Count struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// Snapshot is a point-in-time copy of a CrawlState.
// Every slice is in first-seen order.
type Snapshot struct {
	// BestLinkPage is the page with the most outbound candidate links.
	BestLinkPage PageStat `json:"best_link_page"`

	// BestWordPage is the page with the most tokenized words.
	BestWordPage PageStat `json:"best_word_page"`

	// Words is the global word-frequency table.
	Words []Count `json:"words"`

	// Subdomains counts accepted URLs per subdomain label.
	Subdomains []Count `json:"subdomains"`

	// DynamicURLs counts observations per query-stripped URL prefix.
	DynamicURLs []Count `json:"dynamic_urls"`

	// Traps lists every URL classified as a trap.
	Traps []string `json:"traps"`

	// Accepted lists every URL accepted for crawling.
	Accepted []string `json:"accepted"`
}

// NewSnapshot returns an empty snapshot with non-nil slices.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Words:       make([]Count, 0),
		Subdomains:  make([]Count, 0),
		DynamicURLs: make([]Count, 0),
		Traps:       make([]string, 0),
		Accepted:    make([]string, 0),
	}
}
