package feed

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"catalogfeed/internal/stores"

	"github.com/gofrs/flock"
)

const (
	feedFileName = "facebook_products%s.csv"
	exportDir    = "export"
)

// FileName returns the artifact name for scope: no suffix for the default
// store, "_<store code>" otherwise.
func FileName(registry *stores.Registry, scope stores.Scope) (string, error) {
	if registry.IsDefault(scope) {
		return fmt.Sprintf(feedFileName, ""), nil
	}
	store, err := registry.Resolve(scope)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(feedFileName, "_"+store.Code), nil
}

// ArtifactPath places name in the export directory under varDir.
func ArtifactPath(varDir, name string) string {
	return filepath.Join(varDir, exportDir, name)
}

// Sink receives feed rows. Lock must be held while rows are written.
type Sink interface {
	Lock() error
	Unlock() error
	WriteRow(fields []string) error
}

// FileSink writes CSV rows to a file guarded by an exclusive advisory lock.
type FileSink struct {
	path string
	file *os.File
	lock *flock.Flock
	csv  *csv.Writer
}

// OpenFileSink creates the export directory and opens path for writing. The
// file is truncated only once the lock is held.
func OpenFileSink(path string) (*FileSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, &ArtifactError{Op: "create directory", Path: filepath.Dir(path), Err: err}
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, &ArtifactError{Op: "open", Path: path, Err: err}
	}
	return &FileSink{
		path: path,
		file: f,
		lock: flock.New(path),
		csv:  csv.NewWriter(f),
	}, nil
}

func (s *FileSink) Path() string {
	return s.path
}

func (s *FileSink) Lock() error {
	if err := s.lock.Lock(); err != nil {
		return &ArtifactError{Op: "lock", Path: s.path, Err: err}
	}
	if err := s.file.Truncate(0); err != nil {
		s.lock.Unlock()
		return &ArtifactError{Op: "truncate", Path: s.path, Err: err}
	}
	if _, err := s.file.Seek(0, io.SeekStart); err != nil {
		s.lock.Unlock()
		return &ArtifactError{Op: "seek", Path: s.path, Err: err}
	}
	return nil
}

// Unlock flushes buffered rows and releases the lock. The lock is released
// even when the flush fails.
func (s *FileSink) Unlock() error {
	s.csv.Flush()
	flushErr := s.csv.Error()
	if flushErr == nil {
		flushErr = s.file.Sync()
	}
	if err := s.lock.Unlock(); err != nil {
		return &ArtifactError{Op: "unlock", Path: s.path, Err: err}
	}
	if flushErr != nil {
		return &ArtifactError{Op: "flush", Path: s.path, Err: flushErr}
	}
	return nil
}

func (s *FileSink) WriteRow(fields []string) error {
	if err := s.csv.Write(fields); err != nil {
		return &ArtifactError{Op: "write", Path: s.path, Err: err}
	}
	return nil
}

func (s *FileSink) Close() error {
	if err := s.file.Close(); err != nil {
		return &ArtifactError{Op: "close", Path: s.path, Err: err}
	}
	return nil
}
