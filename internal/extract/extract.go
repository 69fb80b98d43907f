package extract

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"

	"github.com/nao1215/hncrawl/internal/model"
)

// Selectors describing the site's markup.
const (
	// submissionRowSelector matches front-page rows. The site tags rows with
	// either class; a row carrying both is matched once.
	submissionRowSelector = "tr.athing, tr.submission"

	// titleAnchorSelector matches the title link inside a row.
	titleAnchorSelector = "span.titleline a"

	// commentTextSelector matches comment bodies on an item page.
	commentTextSelector = "div.commtext, div.c00"
)

// Submissions returns up to limit submission rows of an index page in
// document order. Rows whose id attribute is not an integer are dropped;
// they still count toward limit, so rows past the first limit are never
// inspected.
func Submissions(page []byte, base string, limit int) []model.Submission {
	if limit <= 0 {
		return nil
	}

	doc, ok := parse(page)
	if !ok {
		return nil
	}

	rows := doc.Find(submissionRowSelector)
	if rows.Length() > limit {
		rows = rows.Slice(0, limit)
	}

	submissions := make([]model.Submission, 0, rows.Length())
	rows.Each(func(_ int, row *goquery.Selection) {
		rawID, _ := row.Attr("id")
		id, err := strconv.ParseInt(strings.TrimSpace(rawID), 10, 64)
		if err != nil {
			return
		}

		title, href := titleLink(row, base)
		submissions = append(submissions, model.Submission{
			ID:    id,
			Title: title,
			Href:  href,
		})
	})

	return submissions
}

// titleLink returns the text and absolute href of the first title anchor
// in row, or two empty strings when there is none.
func titleLink(row *goquery.Selection, base string) (string, string) {
	anchor := row.Find(titleAnchorSelector).First()
	if anchor.Length() == 0 {
		return "", ""
	}
	href, _ := anchor.Attr("href")
	return cleanText(anchor.Text()), model.Absolutize(base, strings.TrimSpace(href))
}

// CommentLinks returns the href of every anchor inside every comment body
// of an item page, in document order, with site-relative item links made
// absolute. Anchors without an href are skipped. Duplicates are kept.
func CommentLinks(page []byte, base string) []string {
	doc, ok := parse(page)
	if !ok {
		return nil
	}

	links := make([]string, 0)
	doc.Find(commentTextSelector).Each(func(_ int, comment *goquery.Selection) {
		comment.Find("a").Each(func(_ int, a *goquery.Selection) {
			href, exists := a.Attr("href")
			href = strings.TrimSpace(href)
			if !exists || href == "" {
				return
			}
			links = append(links, model.Absolutize(base, href))
		})
	})

	return links
}

// Unique returns links with duplicates removed, keeping first occurrences
// in order.
func Unique(links []string) []string {
	seen := make(map[string]struct{}, len(links))
	out := make([]string, 0, len(links))
	for _, link := range links {
		if _, dup := seen[link]; dup {
			continue
		}
		seen[link] = struct{}{}
		out = append(out, link)
	}
	return out
}

// parse builds a goquery document. x/net/html recovers from nearly any
// input, so failure only happens on reader errors.
func parse(page []byte) (*goquery.Document, bool) {
	root, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return nil, false
	}
	return goquery.NewDocumentFromNode(root), true
}

// cleanText trims and NFC-normalizes anchor text so titles compare and
// log consistently.
func cleanText(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
