// Package report renders the crawl archive for the history command.
//
// Writers produce three formats from the same History value:
//   - SimpleWriter: plain text for the terminal
//   - MarkdownWriter: GitHub-flavored markdown built with nao1215/markdown
//   - JSONWriter: JSON for other tools
//
// Writers implement the Writer interface and can be combined with
// MultiWriter.
package report
