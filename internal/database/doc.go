// Package database stores crawl checkpoints in SQLite.
//
// Every crawl is a run with a UUID. A checkpoint holds the complete
// aggregate state of the run plus the pending frontier, so an interrupted
// crawl can be resumed and a finished one can be reported on again.
// Ordinal columns keep every collection in first-seen order.
//
// The driver is modernc.org/sqlite, which needs no cgo. The database is a
// single webcrawler.db file opened in WAL mode with one connection.
package database
