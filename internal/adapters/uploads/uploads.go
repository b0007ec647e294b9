// Package uploads holds uploaded label images in temporary files for the
// duration of one request.
package uploads

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/okian/ingredex/pkg/logger"
	"github.com/okian/ingredex/pkg/metrics"
)

const (
	defaultMaxBytes = 5 << 20
	filePrefix      = "ingredient-scan-"
)

// Option applies a configuration option to the Store.
type Option func(*Store)

// WithMaxBytes sets the largest accepted upload.
func WithMaxBytes(n int64) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxBytes = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// Store writes uploads into a directory and tracks how many are still held.
type Store struct {
	dir         string
	maxBytes    int64
	log         logger.Logger
	outstanding atomic.Int64
}

// New creates a store rooted at dir, creating it if needed. An empty dir
// uses the system temp directory.
func New(dir string, opts ...Option) (*Store, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	s := &Store{dir: dir, maxBytes: defaultMaxBytes, log: logger.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// MaxBytes returns the upload size limit.
func (s *Store) MaxBytes() int64 { return s.maxBytes }

// Outstanding returns the number of acquired files not yet released.
func (s *Store) Outstanding() int64 { return s.outstanding.Load() }

// Acquire copies r into a new temporary file. Only images within the size
// limit are kept; the caller must Release the returned file.
func (s *Store) Acquire(ctx context.Context, r io.Reader) (*TempFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := filepath.Join(s.dir, filePrefix+uuid.NewString())
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	discard := func(cause error) (*TempFile, error) {
		_ = f.Close()
		if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			s.log.Warn(ctx, "discarding upload", logger.String("path", path), logger.Error(rmErr))
		}
		return nil, cause
	}

	n, err := io.Copy(f, io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return discard(fmt.Errorf("write upload: %w", err))
	}
	if n == 0 {
		return discard(ErrEmptyUpload)
	}
	if n > s.maxBytes {
		return discard(fmt.Errorf("%w: limit is %d bytes", ErrUploadTooLarge, s.maxBytes))
	}
	if err := f.Close(); err != nil {
		return discard(fmt.Errorf("close upload: %w", err))
	}

	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return discard(fmt.Errorf("detect type: %w", err))
	}
	if !strings.HasPrefix(mt.String(), "image/") {
		return discard(fmt.Errorf("%w: got %s", ErrUnsupportedMedia, mt.String()))
	}

	s.outstanding.Add(1)
	metrics.RecordTempFileAcquired()
	return &TempFile{
		Path:     path,
		MIMEType: mt.String(),
		Size:     n,
		store:    s,
	}, nil
}

// TempFile is an uploaded image on disk.
type TempFile struct {
	Path     string
	MIMEType string
	Size     int64

	store *Store
	once  sync.Once
	err   error
}

// Name returns the file's base name.
func (t *TempFile) Name() string { return filepath.Base(t.Path) }

// Release deletes the file. It is safe to call more than once.
func (t *TempFile) Release() error {
	t.once.Do(func() {
		t.store.outstanding.Add(-1)
		err := os.Remove(t.Path)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			t.err = fmt.Errorf("remove temp file: %w", err)
			metrics.RecordTempFileReleaseError()
			t.store.log.Error(context.Background(), "temp file release failed",
				logger.String("path", t.Path), logger.Error(err))
			return
		}
		metrics.RecordTempFileReleased()
	})
	return t.err
}
