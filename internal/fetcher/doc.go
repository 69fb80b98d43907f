// Package fetcher wraps a single HTTP GET into a uniform FetchResult.
//
// Each call is bounded by the client's timeout. Connection refusals,
// timeouts, I/O errors and truncated payloads are returned as *Error values
// matching ErrTransport; they never escape as panics. A non-200 status is
// not an error: it is returned as a normal result and the caller decides
// what to do with it.
package fetcher
