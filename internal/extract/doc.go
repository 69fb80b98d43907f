// Package extract pulls submissions and comment links out of the news
// site's HTML.
//
// The functions are pure: they take a page body and return a finite,
// ordered slice. Malformed or missing markup produces fewer results rather
// than an error. Parsing uses golang.org/x/net/html and the CSS selectors
// of github.com/PuerkitoBio/goquery.
package extract
