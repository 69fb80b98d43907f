package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/nao1215/hncrawl/internal/model"
)

// setupTestDB creates a temporary archive for testing.
func setupTestDB(t *testing.T) *ArchiveDB {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "newdir", "subdir")
		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if _, err := os.Stat(filepath.Join(dbDir, FileName)); err != nil {
			t.Errorf("database file was not created: %v", err)
		}
		if db.Path() != filepath.Join(dbDir, FileName) {
			t.Errorf("unexpected path %s", db.Path())
		}
	})

	t.Run("read only open of missing database fails", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "missing")
		_, err := Open(dbDir, Options{CreateIfNotExists: false})
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
		if _, statErr := os.Stat(dbDir); !errors.Is(statErr, os.ErrNotExist) {
			t.Error("expected no directory to be created")
		}
	})

	t.Run("reopens existing database", func(t *testing.T) {
		t.Parallel()

		dbDir := t.TempDir()
		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatal(err)
		}
		if _, err := db.StartRun(context.Background(), "http://a.example", "data"); err != nil {
			t.Fatal(err)
		}
		_ = db.Close()

		db, err = Open(dbDir, Options{CreateIfNotExists: false, EnableWAL: true})
		if err != nil {
			t.Fatalf("failed to reopen: %v", err)
		}
		defer db.Close()

		runs, err := db.ListRuns(context.Background(), Filter{})
		if err != nil {
			t.Fatal(err)
		}
		if len(runs) != 1 {
			t.Errorf("expected 1 run, got %d", len(runs))
		}
	})
}

func TestRunLifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := setupTestDB(t)

	run, err := db.StartRun(ctx, "http://news.example", "data")
	if err != nil {
		t.Fatalf("failed to start run: %v", err)
	}

	subs := []model.Submission{
		{ID: 100, Title: "A", Href: "http://a.example/"},
		{ID: 101, Title: "B", Href: ""},
	}
	for _, sub := range subs {
		if err := run.RecordSubmission(ctx, sub, filepath.Join("data", sub.DirName())); err != nil {
			t.Fatalf("failed to record submission: %v", err)
		}
	}

	savedAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	res := &model.SavedResource{
		SubmissionID: 100,
		URL:          "http://a.example/",
		Path:         "data/100/index.html",
		ContentType:  "text/html",
		Size:         42,
		SavedAt:      savedAt,
	}
	if err := run.RecordResource(ctx, res); err != nil {
		t.Fatalf("failed to record resource: %v", err)
	}

	started := time.Date(2024, 5, 1, 11, 59, 0, 0, time.UTC)
	stats := model.CycleStats{
		Iteration:  1,
		Found:      2,
		New:        2,
		IndexOK:    true,
		StartedAt:  started,
		FinishedAt: started.Add(3 * time.Second),
	}
	if err := run.RecordCycle(ctx, stats); err != nil {
		t.Fatalf("failed to record cycle: %v", err)
	}
	if err := run.Finish(ctx); err != nil {
		t.Fatalf("failed to finish run: %v", err)
	}

	runs, err := db.ListRuns(ctx, Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	got := runs[0]
	if got.ID != run.ID || got.BaseURL != "http://news.example" || got.OutputDir != "data" {
		t.Errorf("unexpected run: %+v", got)
	}
	if got.Iterations != 1 || got.Submissions != 2 || got.Resources != 1 {
		t.Errorf("unexpected counts: %+v", got)
	}
	if !got.Finished() {
		t.Error("expected run to be finished")
	}

	cycles, err := db.ListCycles(ctx, run.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(cycles) != 1 {
		t.Fatalf("expected 1 cycle, got %d", len(cycles))
	}
	if !cycles[0].IndexOK || cycles[0].New != 2 || cycles[0].Duration() != 3*time.Second {
		t.Errorf("unexpected cycle: %+v", cycles[0])
	}

	stored, err := db.ListSubmissions(ctx, Filter{RunID: run.ID})
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != 2 || stored[0].ID != 100 || stored[1].ID != 101 {
		t.Errorf("unexpected submissions: %+v", stored)
	}
	if stored[0].Dir != filepath.Join("data", "100") {
		t.Errorf("unexpected dir %s", stored[0].Dir)
	}

	resources, err := db.ListResources(ctx, Filter{SubmissionID: 100})
	if err != nil {
		t.Fatal(err)
	}
	if len(resources) != 1 {
		t.Fatalf("expected 1 resource, got %d", len(resources))
	}
	if !resources[0].SavedAt.Equal(savedAt) || resources[0].Size != 42 {
		t.Errorf("unexpected resource: %+v", resources[0])
	}
}

func TestRecordSubmissionTwiceInOneRun(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := setupTestDB(t)
	run, err := db.StartRun(ctx, "http://news.example", "data")
	if err != nil {
		t.Fatal(err)
	}

	sub := model.Submission{ID: 1, Title: "x"}
	if err := run.RecordSubmission(ctx, sub, "data/1"); err != nil {
		t.Fatal(err)
	}
	if err := run.RecordSubmission(ctx, sub, "data/1"); err == nil {
		t.Error("expected duplicate submission in one run to fail")
	}
}

func TestFilters(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := setupTestDB(t)

	first, err := db.StartRun(ctx, "http://news.example", "data")
	if err != nil {
		t.Fatal(err)
	}
	second, err := db.StartRun(ctx, "http://news.example", "data")
	if err != nil {
		t.Fatal(err)
	}

	_ = first.RecordSubmission(ctx, model.Submission{ID: 1}, "data/1")
	_ = second.RecordSubmission(ctx, model.Submission{ID: 2}, "data/2")
	_ = second.RecordResource(ctx, &model.SavedResource{SubmissionID: 2, URL: "u", Path: "p", SavedAt: time.Now()})

	tests := []struct {
		name      string
		filter    Filter
		wantRuns  int
		wantSubs  int
		wantFiles int
	}{
		{name: "no filter", filter: Filter{}, wantRuns: 2, wantSubs: 2, wantFiles: 1},
		{name: "by run", filter: Filter{RunID: first.ID}, wantRuns: 1, wantSubs: 1, wantFiles: 0},
		{name: "by submission", filter: Filter{SubmissionID: 2}, wantRuns: 1, wantSubs: 1, wantFiles: 1},
		{name: "no match", filter: Filter{SubmissionID: 99}, wantRuns: 0, wantSubs: 0, wantFiles: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			runs, err := db.ListRuns(ctx, tt.filter)
			if err != nil {
				t.Fatal(err)
			}
			if len(runs) != tt.wantRuns {
				t.Errorf("expected %d runs, got %d", tt.wantRuns, len(runs))
			}
			subs, err := db.ListSubmissions(ctx, tt.filter)
			if err != nil {
				t.Fatal(err)
			}
			if len(subs) != tt.wantSubs {
				t.Errorf("expected %d submissions, got %d", tt.wantSubs, len(subs))
			}
			files, err := db.ListResources(ctx, tt.filter)
			if err != nil {
				t.Fatal(err)
			}
			if len(files) != tt.wantFiles {
				t.Errorf("expected %d resources, got %d", tt.wantFiles, len(files))
			}
		})
	}

	runs, err := db.ListRuns(ctx, Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) == 2 && runs[0].ID != second.ID {
		t.Error("expected newest run first")
	}
}

func TestConcurrentRecordResource(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := setupTestDB(t)
	run, err := db.StartRun(ctx, "http://news.example", "data")
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := &model.SavedResource{SubmissionID: int64(i), URL: "u", Path: "p", SavedAt: time.Now()}
			if err := run.RecordResource(ctx, res); err != nil {
				t.Errorf("failed to record resource: %v", err)
			}
		}()
	}
	wg.Wait()

	files, err := db.ListResources(ctx, Filter{RunID: run.ID})
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 20 {
		t.Errorf("expected 20 resources, got %d", len(files))
	}
}

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		zero bool
	}{
		{"2024-01-02T03:04:05.123456789Z", false},
		{"2024-01-02T03:04:05Z", false},
		{"2024-01-02 03:04:05", false},
		{"not a time", true},
	}
	for _, tt := range tests {
		if got := parseTimestamp(tt.in); got.IsZero() != tt.zero {
			t.Errorf("parseTimestamp(%q) zero=%v, expected %v", tt.in, got.IsZero(), tt.zero)
		}
	}
}
