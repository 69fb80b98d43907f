package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/nao1215/hncrawl/internal/model"
)

// Fetcher retrieves one resource.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*model.FetchResult, error)
}

// Recorder receives every completed save. Recording failures are logged and
// never undo the write.
type Recorder interface {
	RecordResource(ctx context.Context, res *model.SavedResource) error
}

// Saver fetches resources and writes them to disk.
type Saver struct {
	fetcher  Fetcher
	logger   *slog.Logger
	recorder Recorder
	inflight singleflight.Group
	now      func() time.Time
}

// Option configures a Saver.
type Option func(*Saver)

// WithRecorder reports every successful save to r.
func WithRecorder(r Recorder) Option {
	return func(s *Saver) {
		s.recorder = r
	}
}

// WithClock overrides the time source used for SavedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Saver) {
		s.now = now
	}
}

// NewSaver creates a Saver. A nil logger discards output.
func NewSaver(f Fetcher, logger *slog.Logger, opts ...Option) *Saver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Saver{
		fetcher: f,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save fetches url and writes the payload into dir. The base name is
// fixedName when non-empty, otherwise HashName(url). Nothing is written
// unless the response is 200. Failures are logged here; the returned error
// is for bookkeeping only.
func (s *Saver) Save(ctx context.Context, url, dir, fixedName string) (*model.SavedResource, error) {
	base := fixedName
	if base == "" {
		base = HashName(url)
	}

	key := filepath.Join(dir, base)
	v, err, _ := s.inflight.Do(key, func() (any, error) {
		return s.save(ctx, url, dir, base, fixedName == "")
	})
	if err != nil {
		return nil, err
	}
	res, ok := v.(*model.SavedResource)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected result for %s", ErrWrite, url)
	}
	return res, nil
}

func (s *Saver) save(ctx context.Context, url, dir, base string, comment bool) (*model.SavedResource, error) {
	result, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		s.logger.Error("failed to fetch resource", "url", url, "error", err)
		return nil, err
	}
	if !result.OK() {
		s.logger.Debug("skipping resource", "url", url, "status", result.StatusCode)
		return nil, fmt.Errorf("%w: %d for %s", ErrUnexpectedStatus, result.StatusCode, url)
	}

	mediaType := result.MediaType()
	path := filepath.Join(dir, base+Extension(mediaType))
	if err := writeAtomic(dir, path, result.Body); err != nil {
		s.logger.Error("failed to save resource", "url", url, "path", path, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrWrite, err)
	}

	res := &model.SavedResource{
		SubmissionID: submissionID(dir),
		URL:          url,
		Path:         path,
		ContentType:  mediaType,
		Size:         len(result.Body),
		SavedAt:      s.now(),
	}

	if comment {
		s.logger.Info("COMMENT URL", "url", url)
		s.logger.Info("COMMENT PATH", "path", path)
	}

	if s.recorder != nil {
		if err := s.recorder.RecordResource(context.WithoutCancel(ctx), res); err != nil {
			s.logger.Warn("failed to record resource", "url", url, "error", err)
		}
	}
	return res, nil
}

// writeAtomic writes data to a temporary file in dir and renames it to path.
func writeAtomic(dir, path string, data []byte) error {
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// submissionID recovers the submission id from its output directory name.
// Directories that are not named after an id yield 0.
func submissionID(dir string) int64 {
	id, err := strconv.ParseInt(filepath.Base(dir), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
