package crawler

import (
	"context"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/hncrawl/internal/extract"
	"github.com/nao1215/hncrawl/internal/model"
)

// IndexName is the fixed base name of a submission's own target page.
const IndexName = "index"

// Fetcher retrieves one page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*model.FetchResult, error)
}

// Saver fetches one resource and writes it into a directory. Failures are
// logged by the Saver; the error is only used for counting.
type Saver interface {
	Save(ctx context.Context, url, dir, fixedName string) (*model.SavedResource, error)
}

// Outcome counts what a Processor did for one submission.
type Outcome struct {
	// IndexSaved reports whether the submission's own target was written.
	IndexSaved bool

	// CommentPageOK reports whether the comment page answered 200.
	CommentPageOK bool

	// Links is the number of distinct links found in the comments.
	Links int

	// Saved and Failed count the comment link saves.
	Saved  int
	Failed int
}

// Processor downloads everything belonging to one submission.
type Processor struct {
	fetcher Fetcher
	saver   Saver
	baseURL string
	logger  *slog.Logger
}

// NewProcessor creates a Processor that resolves comment pages against
// baseURL. A nil logger discards output.
func NewProcessor(f Fetcher, s Saver, baseURL string, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Processor{
		fetcher: f,
		saver:   s,
		baseURL: baseURL,
		logger:  logger,
	}
}

// Process saves sub's target as "index" and every link of its comment page
// into dir. The two branches run concurrently and both are joined before
// Process returns. dir must already exist.
func (p *Processor) Process(ctx context.Context, sub model.Submission, dir string) Outcome {
	var (
		out        Outcome
		indexSaved atomic.Bool
		g          errgroup.Group
	)

	if sub.HasTarget() {
		g.Go(func() error {
			if _, err := p.saver.Save(ctx, sub.Href, dir, IndexName); err == nil {
				indexSaved.Store(true)
			}
			return nil
		})
	}

	g.Go(func() error {
		out.CommentPageOK, out.Links, out.Saved, out.Failed = p.processComments(ctx, sub, dir)
		return nil
	})

	_ = g.Wait()
	out.IndexSaved = indexSaved.Load()
	return out
}

// processComments fetches the comment page and saves each distinct link in
// its own goroutine.
func (p *Processor) processComments(ctx context.Context, sub model.Submission, dir string) (bool, int, int, int) {
	itemURL := model.ItemURL(p.baseURL, sub.ID)
	result, err := p.fetcher.Fetch(ctx, itemURL)
	if err != nil {
		p.logger.Error("failed to fetch comment page", "id", sub.ID, "url", itemURL, "error", err)
		return false, 0, 0, 0
	}
	if !result.OK() {
		p.logger.Debug("comment page not available", "id", sub.ID, "url", itemURL, "status", result.StatusCode)
		return false, 0, 0, 0
	}

	links := extract.Unique(extract.CommentLinks(result.Body, p.baseURL))

	var (
		saved, failed atomic.Int64
		g             errgroup.Group
	)
	for _, link := range links {
		g.Go(func() error {
			if _, err := p.saver.Save(ctx, link, dir, ""); err != nil {
				failed.Add(1)
				return nil
			}
			saved.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	return true, len(links), int(saved.Load()), int(failed.Load())
}
