// Package model defines the data shared by the crawler, the report writers
// and the checkpoint store.
//
// This package contains the following main types:
//   - FetchResult: what a corpus returns for one requested URL
//   - CrawlState: the aggregate statistics of a crawl, guarded by a mutex
//   - Snapshot: an immutable, ordered copy of a CrawlState
//
// CrawlState is only mutated through its methods. Every method is a single
// critical section, so a best-page URL is always stored together with the
// count it produced and a counter is never observed half updated.
package model
