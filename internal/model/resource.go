package model

import (
	"net/http"
	"strings"
	"time"
)

// DefaultContentType is assumed when a response does not declare one.
const DefaultContentType = "text/html"

// FetchResult is the uniform result of one HTTP GET.
type FetchResult struct {
	// URL is the requested URL.
	URL string

	// StatusCode is the HTTP status code of the response.
	StatusCode int

	// ContentType is the declared Content-Type header, or DefaultContentType
	// when the header is absent.
	ContentType string

	// Body is the full response payload.
	Body []byte
}

// OK reports whether the response has status 200. Any other status is a
// valid result that callers treat as "nothing to do".
func (r *FetchResult) OK() bool {
	return r != nil && r.StatusCode == http.StatusOK
}

// MediaType returns the content type without parameters, lower-cased.
// "text/html; charset=utf-8" becomes "text/html".
func (r *FetchResult) MediaType() string {
	ct := r.ContentType
	if ct == "" {
		ct = DefaultContentType
	}
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.ToLower(strings.TrimSpace(ct))
}

// SavedResource records one completed write of a fetched resource.
type SavedResource struct {
	// SubmissionID is the submission the resource belongs to.
	SubmissionID int64 `json:"submission_id"`

	// URL is the source URL.
	URL string `json:"url"`

	// Path is the destination file path.
	Path string `json:"path"`

	// ContentType is the media type the extension was derived from.
	ContentType string `json:"content_type"`

	// Size is the number of bytes written.
	Size int `json:"size"`

	// SavedAt is when the write completed.
	SavedAt time.Time `json:"saved_at"`
}
