package report

import (
	"fmt"
	"io"
	"strings"
)

// SimpleWriter outputs plain text for terminal display.
type SimpleWriter struct {
	baseWriter

	// verbose lists every cycle and every resource instead of a summary.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose lists every cycle and resource.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs h as text.
func (w *SimpleWriter) Write(h *History) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb)
	if h.Empty() {
		sb.WriteString("No crawl history found.\n")
		return w.output.Write([]byte(sb.String()))
	}

	w.writeRuns(&sb, h)
	w.writeSubmissions(&sb, h)
	w.writeResources(&sb, h)

	return w.output.Write([]byte(sb.String()))
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                          CRAWL HISTORY\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")
}

func section(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
}

func (w *SimpleWriter) writeRuns(sb *strings.Builder, h *History) {
	section(sb, "RUNS")

	for _, run := range h.Runs {
		status := "running or interrupted"
		if run.Finished() {
			status = "finished " + formatTime(run.FinishedAt)
		}
		fmt.Fprintf(sb, "Run #%d  %s\n", run.ID, run.BaseURL)
		fmt.Fprintf(sb, "  Started:     %s (%s)\n", formatTime(run.StartedAt), status)
		fmt.Fprintf(sb, "  Output:      %s\n", run.OutputDir)
		fmt.Fprintf(sb, "  Iterations:  %d\n", run.Iterations)
		fmt.Fprintf(sb, "  Submissions: %d\n", run.Submissions)
		fmt.Fprintf(sb, "  Resources:   %d\n", run.Resources)

		if w.verbose {
			for _, c := range run.Cycles {
				index := "ok"
				if !c.IndexOK {
					index = "failed"
				}
				fmt.Fprintf(sb, "    Iteration #%d: index %s, found %d, new %d, skipped %d, failed %d (%s)\n",
					c.Iteration, index, c.Found, c.New, c.Skipped, c.Failed, c.Duration())
			}
		}
		sb.WriteString("\n")
	}
}

func (w *SimpleWriter) writeSubmissions(sb *strings.Builder, h *History) {
	if len(h.Submissions) == 0 {
		return
	}
	section(sb, "SUBMISSIONS")

	for _, s := range h.Submissions {
		title := s.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Fprintf(sb, "  [%d] %s\n", s.ID, title)
		if s.Href != "" {
			fmt.Fprintf(sb, "      %s\n", s.Href)
		}
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeResources(sb *strings.Builder, h *History) {
	if len(h.Resources) == 0 {
		return
	}
	section(sb, "RESOURCES")

	for _, c := range h.ContentTypeCounts() {
		fmt.Fprintf(sb, "  %-30s %d\n", c.ContentType, c.Count)
	}
	sb.WriteString("\n")

	if !w.verbose {
		return
	}
	for _, r := range h.Resources {
		fmt.Fprintf(sb, "  [%d] %s\n", r.SubmissionID, r.URL)
		fmt.Fprintf(sb, "      -> %s (%d bytes)\n", r.Path, r.Size)
	}
	sb.WriteString("\n")
}
