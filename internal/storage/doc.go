// Package storage persists fetched resources to submission directories.
//
// A Saver fetches one URL and writes the payload to dir/base+ext, where base
// is either a caller-supplied fixed name or the first 50 hex characters of
// the SHA-256 of the URL, and ext is derived from the declared content type.
// Writes go through a temporary file and a rename, so a reader never sees a
// partial file. Concurrent saves that resolve to the same destination are
// collapsed into one fetch and one write.
package storage
