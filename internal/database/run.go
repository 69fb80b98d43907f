package database

import (
	"context"
	"fmt"
	"time"

	"github.com/nao1215/hncrawl/internal/model"
)

// Run records the activity of one crawl process. It implements the
// archive interfaces of the crawler and storage packages.
type Run struct {
	archive *ArchiveDB

	// ID is the run's primary key.
	ID int64

	now func() time.Time
}

// StartRun inserts a new run row.
func (a *ArchiveDB) StartRun(ctx context.Context, baseURL, outputDir string) (*Run, error) {
	r := &Run{archive: a, now: time.Now}

	result, err := a.db.ExecContext(ctx,
		`INSERT INTO runs (base_url, output_dir, started_at) VALUES (?, ?, ?)`,
		baseURL, outputDir, formatTimestamp(r.now()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start run: %w", err)
	}

	r.ID, err = result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read run id: %w", err)
	}
	return r, nil
}

// RecordSubmission stores a newly seen submission.
func (r *Run) RecordSubmission(ctx context.Context, sub model.Submission, dir string) error {
	_, err := r.archive.db.ExecContext(ctx,
		`INSERT INTO submissions (run_id, id, title, href, dir, seen_at) VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, sub.ID, sub.Title, sub.Href, dir, formatTimestamp(r.now()),
	)
	if err != nil {
		return fmt.Errorf("failed to record submission %d: %w", sub.ID, err)
	}
	return nil
}

// RecordCycle stores the counts of a finished cycle and bumps the run's
// iteration counter.
func (r *Run) RecordCycle(ctx context.Context, stats model.CycleStats) error {
	indexOK := 0
	if stats.IndexOK {
		indexOK = 1
	}

	_, err := r.archive.db.ExecContext(ctx, `
	INSERT INTO cycles (run_id, iteration, index_ok, found, new_count, skipped, failed, started_at, finished_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		r.ID,
		stats.Iteration,
		indexOK,
		stats.Found,
		stats.New,
		stats.Skipped,
		stats.Failed,
		formatTimestamp(stats.StartedAt),
		formatTimestamp(stats.FinishedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to record cycle %d: %w", stats.Iteration, err)
	}

	_, err = r.archive.db.ExecContext(ctx,
		`UPDATE runs SET iterations = MAX(iterations, ?) WHERE id = ?`,
		stats.Iteration, r.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	return nil
}

// RecordResource stores one saved file.
func (r *Run) RecordResource(ctx context.Context, res *model.SavedResource) error {
	_, err := r.archive.db.ExecContext(ctx, `
	INSERT INTO resources (run_id, submission_id, url, path, content_type, size, saved_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		r.ID,
		res.SubmissionID,
		res.URL,
		res.Path,
		res.ContentType,
		res.Size,
		formatTimestamp(res.SavedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to record resource %s: %w", res.URL, err)
	}
	return nil
}

// Finish marks the run as ended.
func (r *Run) Finish(ctx context.Context) error {
	_, err := r.archive.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ? WHERE id = ?`,
		formatTimestamp(r.now()), r.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	return nil
}
