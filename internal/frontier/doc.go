// Package frontier holds the URLs waiting to be crawled.
//
// Queue is a FIFO that drops URLs it has already seen. Two spellings of the
// same page (a fragment, an uppercase host, an empty root path) count as one.
package frontier
