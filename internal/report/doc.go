// Package report renders the aggregate crawl state.
//
// The text format is the canonical artifact of a crawl. Markdown and JSON
// carry the same sections for sharing and for tools. Every writer takes a
// model.Snapshot, so a report can be produced from a live crawl or from a
// stored checkpoint alike.
//
// Stop-word filtering and top-word ranking happen here and nowhere else;
// the crawl state counts every token.
package report
