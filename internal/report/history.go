package report

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/nao1215/hncrawl/internal/database"
)

// Source is the read side of the archive.
type Source interface {
	ListRuns(ctx context.Context, filter database.Filter) ([]database.RunRecord, error)
	ListCycles(ctx context.Context, runID int64) ([]database.CycleRecord, error)
	ListSubmissions(ctx context.Context, filter database.Filter) ([]database.SubmissionRecord, error)
	ListResources(ctx context.Context, filter database.Filter) ([]database.ResourceRecord, error)
}

// RunHistory is one run with its cycles.
type RunHistory struct {
	database.RunRecord
	Cycles []database.CycleRecord `json:"cycles"`
}

// History is everything the history command shows.
type History struct {
	GeneratedAt time.Time                   `json:"generated_at"`
	Filter      database.Filter             `json:"-"`
	Runs        []RunHistory                `json:"runs"`
	Submissions []database.SubmissionRecord `json:"submissions"`
	Resources   []database.ResourceRecord   `json:"resources"`
}

// Empty reports whether the archive had nothing matching the filter.
func (h *History) Empty() bool {
	return len(h.Runs) == 0
}

// ContentTypeCounts returns the number of saved resources per content type,
// most frequent first and ties ordered by name.
func (h *History) ContentTypeCounts() []ContentTypeCount {
	counts := make(map[string]int)
	for _, r := range h.Resources {
		ct := r.ContentType
		if ct == "" {
			ct = "unknown"
		}
		counts[ct]++
	}

	result := make([]ContentTypeCount, 0, len(counts))
	for ct, n := range counts {
		result = append(result, ContentTypeCount{ContentType: ct, Count: n})
	}
	slices.SortFunc(result, func(a, b ContentTypeCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.ContentType, b.ContentType)
	})
	return result
}

// ContentTypeCount is one row of ContentTypeCounts.
type ContentTypeCount struct {
	ContentType string `json:"content_type"`
	Count       int    `json:"count"`
}

// Collect reads the runs matching filter, their cycles, submissions and
// resources from src.
func Collect(ctx context.Context, src Source, filter database.Filter) (*History, error) {
	runs, err := src.ListRuns(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	h := &History{
		GeneratedAt: time.Now(),
		Filter:      filter,
		Runs:        make([]RunHistory, 0, len(runs)),
	}
	for _, run := range runs {
		cycles, err := src.ListCycles(ctx, run.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list cycles of run %d: %w", run.ID, err)
		}
		h.Runs = append(h.Runs, RunHistory{RunRecord: run, Cycles: cycles})
	}

	h.Submissions, err = src.ListSubmissions(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	h.Resources, err = src.ListResources(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list resources: %w", err)
	}
	return h, nil
}
