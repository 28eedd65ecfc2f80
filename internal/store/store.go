// Package store persists named JSON documents under a single data directory.
// It is the only code that touches the disk for the service: every collection
// (users, tasks, sessions, id counters) is loaded once at startup and written
// back after each mutation.
//
// Failures never propagate to callers. A document that cannot be read yields
// the caller-supplied default and a document that cannot be written is logged
// and skipped, leaving the mutation in memory only until the next successful
// save.
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// Document names used by the service.
const (
	Users    = "users"
	Tasks    = "tasks"
	Sessions = "sessions"
	LastIDs  = "lastIDs"
)

// Store reads and writes <dir>/<name>.json documents.
type Store struct {
	dir string
	log *logrus.Logger
}

// New prepares the data directory and returns a Store rooted at it.
func New(dir string, log *logrus.Logger) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("data dir is required")
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", dir, err)
	}
	return &Store{dir: dir, log: log}, nil
}

// Dir returns the data directory.
func (s *Store) Dir() string { return s.dir }

// Path returns the file backing the named document.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

// Load decodes the named document. A missing, unreadable or malformed
// document is logged and def is returned instead.
func Load[T any](s *Store, name string, def T) T {
	path := s.Path(name)
	var v T
	if err := readJSON(path, &v); err != nil {
		entry := s.log.WithFields(logrus.Fields{"document": name, "path": path})
		if errors.Is(err, fs.ErrNotExist) {
			entry.Info("document not found, starting empty")
		} else {
			entry.WithError(err).Error("load document failed, using default")
		}
		return def
	}
	return v
}

// Save serializes v and atomically replaces the named document. Errors are
// logged, not returned.
func (s *Store) Save(name string, v any) {
	path := s.Path(name)
	if err := s.write(path, v); err != nil {
		s.log.WithFields(logrus.Fields{"document": name, "path": path}).
			WithError(err).Error("persist document failed")
	}
}

func (s *Store) write(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	data = append(data, '\n')
	if err := writeFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

func readJSON(path string, dst any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("invalid JSON: trailing content")
	}
	return nil
}

// writeFileAtomic writes data to a temp file next to path, syncs it and
// renames it over path so readers never observe a partial document.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp.*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		_ = tmp.Close()
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := io.Copy(tmp, bytes.NewReader(data)); err != nil {
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}
	committed = true
	return syncDir(dir)
}

func syncDir(dir string) error {
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}
