package crawler

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/hncrawl/internal/extract"
	"github.com/nao1215/hncrawl/internal/model"
)

// Default cycle settings.
const (
	DefaultBaseURL   = "http://news.ycombinator.com"
	DefaultLimit     = 30
	DefaultOutputDir = "data"
)

// Stats summarizes one cycle.
type Stats = model.CycleStats

// Archive receives crawl bookkeeping. Errors are logged and never change
// the crawl.
type Archive interface {
	RecordSubmission(ctx context.Context, sub model.Submission, dir string) error
	RecordCycle(ctx context.Context, stats model.CycleStats) error
}

// Cycle performs one pass over the index page.
type Cycle struct {
	// fetcher retrieves the index page.
	fetcher Fetcher

	// processor handles each new submission.
	processor *Processor

	// seen is owned by the cycle; RunOnce is its only writer.
	seen *SeenSet

	// baseURL is the index page and the root for item links.
	baseURL string

	// limit caps the number of rows taken from the index.
	limit int

	// outputDir is the root under which per-submission directories live.
	outputDir string

	logger  *slog.Logger
	archive Archive
	now     func() time.Time
}

// CycleOption configures a Cycle.
type CycleOption func(*Cycle)

// WithBaseURL sets the site URL.
func WithBaseURL(u string) CycleOption {
	return func(c *Cycle) {
		c.baseURL = u
	}
}

// WithLimit sets the maximum number of rows taken per cycle.
func WithLimit(n int) CycleOption {
	return func(c *Cycle) {
		c.limit = n
	}
}

// WithOutputDir sets the output root.
func WithOutputDir(dir string) CycleOption {
	return func(c *Cycle) {
		c.outputDir = dir
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) CycleOption {
	return func(c *Cycle) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithArchive records every new submission in a.
func WithArchive(a Archive) CycleOption {
	return func(c *Cycle) {
		c.archive = a
	}
}

// NewCycle creates a Cycle that marks submissions in seen.
func NewCycle(f Fetcher, p *Processor, seen *SeenSet, opts ...CycleOption) *Cycle {
	c := &Cycle{
		fetcher:   f,
		processor: p,
		seen:      seen,
		baseURL:   DefaultBaseURL,
		limit:     DefaultLimit,
		outputDir: DefaultOutputDir,
		logger:    slog.New(slog.DiscardHandler),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Dir returns the output directory for a submission id.
func (c *Cycle) Dir(id int64) string {
	return filepath.Join(c.outputDir, strconv.FormatInt(id, 10))
}

// RunOnce fetches the index, schedules every submission not seen before
// and waits for all of them to finish. If the index cannot be fetched or
// does not answer 200, nothing is created and the SeenSet is unchanged.
func (c *Cycle) RunOnce(ctx context.Context) Stats {
	stats := Stats{StartedAt: c.now()}

	result, err := c.fetcher.Fetch(ctx, c.baseURL)
	if err != nil {
		c.logger.Error("failed to fetch index page", "url", c.baseURL, "error", err)
		stats.FinishedAt = c.now()
		return stats
	}
	if !result.OK() {
		c.logger.Error("index page returned non-200 status", "url", c.baseURL, "status", result.StatusCode)
		stats.FinishedAt = c.now()
		return stats
	}
	stats.IndexOK = true

	submissions := extract.Submissions(result.Body, c.baseURL, c.limit)
	stats.Found = len(submissions)

	var g errgroup.Group
	for _, sub := range submissions {
		if !c.seen.Add(sub.ID) {
			stats.Skipped++
			continue
		}
		stats.New++

		dir := c.Dir(sub.ID)
		if err := os.MkdirAll(dir, 0o750); err != nil {
			c.logger.Error("failed to create submission directory", "id", sub.ID, "dir", dir, "error", err)
			stats.Failed++
			continue
		}

		c.logger.Info("NEWS ID", "id", sub.ID)
		c.logger.Info("NEWS TEXT", "title", sub.Title)
		c.logger.Info("NEWS URL", "url", sub.Href)

		if c.archive != nil {
			if err := c.archive.RecordSubmission(context.WithoutCancel(ctx), sub, dir); err != nil {
				c.logger.Warn("failed to record submission", "id", sub.ID, "error", err)
			}
		}

		g.Go(func() error {
			out := c.processor.Process(ctx, sub, dir)
			c.logger.Debug("submission processed",
				"id", sub.ID,
				"index_saved", out.IndexSaved,
				"links", out.Links,
				"saved", out.Saved,
				"failed", out.Failed,
			)
			return nil
		})
	}
	_ = g.Wait()

	stats.FinishedAt = c.now()
	return stats
}
