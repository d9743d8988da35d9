// Package pipeline drives a crawl.
//
// Every URL taken from the frontier becomes a Task that runs through an
// ordered list of Steps: fetch, extract, validate and enqueue. The Engine
// runs many tasks at once on a bounded worker pool and stops when the
// frontier is empty and no worker is busy, or when its context is
// cancelled.
//
// The frontier and the corpus are consumed through the small Frontier and
// Corpus interfaces, so the engine works the same against live HTTP and an
// offline corpus.
package pipeline
