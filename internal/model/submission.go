package model

import (
	"strconv"
	"strings"
)

// ItemPrefix is the page-relative prefix the site uses for links that point
// back into the site itself (e.g. "item?id=123").
const ItemPrefix = "item"

// Submission is one top-level entry on the index page.
type Submission struct {
	// ID is the numeric row identifier taken from the row marker.
	ID int64 `json:"id"`

	// Title is the submission title. It may be empty when the row has no
	// title anchor.
	Title string `json:"title"`

	// Href is the absolute target URL of the submission. Empty means there
	// is nothing to fetch for the submission's own target.
	Href string `json:"href"`
}

// DirName returns the name of the output directory for the submission.
func (s Submission) DirName() string {
	return strconv.FormatInt(s.ID, 10)
}

// HasTarget reports whether the submission links to a fetchable target.
func (s Submission) HasTarget() bool {
	return s.Href != ""
}

// ItemURL returns the comment page URL for a submission id on the given site.
func ItemURL(base string, id int64) string {
	return strings.TrimRight(base, "/") + "/item?id=" + strconv.FormatInt(id, 10)
}

// Absolutize rewrites site-relative "item" links into absolute URLs.
// Any other href is returned unchanged.
func Absolutize(base, href string) string {
	if strings.HasPrefix(href, ItemPrefix) {
		return strings.TrimRight(base, "/") + "/" + href
	}
	return href
}
