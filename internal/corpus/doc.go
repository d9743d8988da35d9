// Package corpus fetches pages for the crawler.
//
// HTTPCorpus downloads pages live, optionally through a proxy and under a
// request rate limit, and can keep a copy of every page on disk.
// FileCorpus replays such a copy offline. Both name stored pages with
// FileName, so a cache written by one crawl is a corpus for the next.
//
// Directory layout:
//
//	<dir>/<sha3-256 of URL>       page body
//	<dir>/<sha3-256 of URL>.yaml  Metadata
package corpus
