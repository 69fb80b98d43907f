// Package database provides the SQLite archive of crawl history.
//
// The archive stores:
//   - one run per crawl process
//   - one row per cycle with its counts
//   - every submission first seen during a run
//   - every resource written to disk
//
// The crawl engine only writes to the archive. Deduplication always starts
// empty in a new process and is never restored from these tables. The
// history command reads them back.
//
// SQLite is provided by modernc.org/sqlite, which needs no cgo.
package database
