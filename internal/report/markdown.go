package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

// MarkdownWriter outputs history as GitHub-flavored markdown.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs h as markdown.
func (w *MarkdownWriter) Write(h *History) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Crawl History")
	md.PlainText("")

	if h.Empty() {
		md.Note("No crawl history found.")
		return len(md.String()), md.Build()
	}

	w.writeRuns(md, h)
	w.writeSubmissions(md, h)
	w.writeResources(md, h)
	w.writeFooter(md, h)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeRuns(md *markdown.Markdown, h *History) {
	md.H2("Runs")
	md.PlainText("")

	rows := make([][]string, 0, len(h.Runs))
	interrupted := 0
	for _, run := range h.Runs {
		if !run.Finished() {
			interrupted++
		}
		rows = append(rows, []string{
			strconv.FormatInt(run.ID, 10),
			"`" + run.BaseURL + "`",
			formatTime(run.StartedAt),
			formatTime(run.FinishedAt),
			strconv.Itoa(run.Iterations),
			strconv.Itoa(run.Submissions),
			strconv.Itoa(run.Resources),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Run", "Site", "Started", "Finished", "Iterations", "Submissions", "Resources"},
		Rows:   rows,
	})
	md.PlainText("")

	if interrupted > 0 {
		md.Warningf("%d run(s) have no recorded end and may still be running.", interrupted)
		md.PlainText("")
	}

	for _, run := range h.Runs {
		if len(run.Cycles) == 0 {
			continue
		}
		md.H3("Run " + strconv.FormatInt(run.ID, 10) + " cycles")
		md.PlainText("")

		cycleRows := make([][]string, 0, len(run.Cycles))
		for _, c := range run.Cycles {
			index := "✅"
			if !c.IndexOK {
				index = "❌"
			}
			cycleRows = append(cycleRows, []string{
				strconv.Itoa(c.Iteration),
				index,
				strconv.Itoa(c.Found),
				strconv.Itoa(c.New),
				strconv.Itoa(c.Skipped),
				strconv.Itoa(c.Failed),
				c.Duration().String(),
			})
		}
		md.Table(markdown.TableSet{
			Header: []string{"Iteration", "Index", "Found", "New", "Skipped", "Failed", "Duration"},
			Rows:   cycleRows,
		})
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writeSubmissions(md *markdown.Markdown, h *History) {
	md.H2("Submissions")
	md.PlainText("")

	if len(h.Submissions) == 0 {
		md.PlainText("No submissions recorded.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, len(h.Submissions))
	for _, s := range h.Submissions {
		href := s.Href
		if href == "" {
			href = "-"
		}
		rows = append(rows, []string{
			strconv.FormatInt(s.ID, 10),
			truncateString(s.Title, 60),
			truncateString(href, 60),
			formatTime(s.SeenAt),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"ID", "Title", "URL", "Seen"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeResources(md *markdown.Markdown, h *History) {
	md.H2("Resources")
	md.PlainText("")

	counts := h.ContentTypeCounts()
	if len(counts) == 0 {
		md.PlainText("No resources saved.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, len(counts))
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Saved resources by content type"),
		piechart.WithShowData(true),
	)
	for _, c := range counts {
		rows = append(rows, []string{"`" + c.ContentType + "`", strconv.Itoa(c.Count)})
		chart.LabelAndIntValue(c.ContentType, uint64(c.Count)) //nolint:gosec // counts are never negative
	}
	md.Table(markdown.TableSet{
		Header: []string{"Content type", "Files"},
		Rows:   rows,
	})
	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown, h *History) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Generated by hncrawl at %s*", formatTime(h.GeneratedAt))
}
