// Package main provides the entry point for the hncrawl CLI.
//
// hncrawl polls the front page of a news aggregation site, and for every
// submission it has not seen before it downloads the linked article and
// every URL referenced from the comment thread into a per-submission
// directory.
//
// Usage:
//
//	hncrawl crawl
//	hncrawl crawl --once --limit 10
//	hncrawl history --markdown
//
// See --help for all available options.
package main

func main() {
	Execute()
}
