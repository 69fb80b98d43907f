// Package model defines the data types shared by the crawl engine.
//
// The types here are plain values: a Submission parsed from the index page,
// the FetchResult returned by the fetcher, and the SavedResource describing
// one completed write. None of them carry behavior beyond small helpers.
package model
