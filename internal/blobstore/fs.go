// Package blobstore keeps artifact bytes on the local filesystem under
// <root>/<resourceID>/<filename>. Writes are staged in <root>/.tmp and
// renamed into place, so resource directories only ever hold whole files.
package blobstore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/FredericTischler/safe-zone/internal/errs"
)

const stagingDir = ".tmp"

// FS stores files below a root directory that must exist at startup.
type FS struct {
	root   string
	rename func(oldpath, newpath string) error
}

// Open checks that root exists and is a directory.
func Open(root string) (*FS, error) {
	if root == "" {
		return nil, errors.New("blobstore: empty root")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	fi, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("blobstore: root %s: %w", abs, err)
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("blobstore: root %s is not a directory", abs)
	}
	if err := os.MkdirAll(filepath.Join(abs, stagingDir), 0o750); err != nil {
		return nil, fmt.Errorf("blobstore: staging dir: %w", err)
	}
	return &FS{root: abs, rename: os.Rename}, nil
}

// Root returns the absolute root path.
func (s *FS) Root() string { return s.root }

// ValidSegment reports whether name is safe to use as one path element.
// Dot-prefixed names are reserved for the store itself.
func ValidSegment(name string) bool {
	if name == "" || strings.HasPrefix(name, ".") || len(name) > 255 {
		return false
	}
	return !strings.ContainsAny(name, `/\`+"\x00")
}

func (s *FS) dir(dir string) (string, error) {
	if !ValidSegment(dir) {
		return "", errs.Validation("bad directory name %q", dir)
	}
	return filepath.Join(s.root, dir), nil
}

func (s *FS) path(dir, name string) (string, error) {
	d, err := s.dir(dir)
	if err != nil {
		return "", err
	}
	if !ValidSegment(name) {
		return "", errs.Validation("bad file name %q", name)
	}
	return filepath.Join(d, name), nil
}

// Put writes data atomically to dir/name, creating dir as needed. A dir
// removed concurrently by RemoveDirIfEmpty is recreated once.
func (s *FS) Put(dir, name string, data []byte) error {
	p, err := s.path(dir, name)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Join(s.root, stagingDir), "upload-*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	for attempt := 0; ; attempt++ {
		if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
			return err
		}
		err := s.rename(tmp.Name(), p)
		if err == nil || attempt > 0 || !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
}

// Get reads dir/name. A missing file maps to errs.ErrNotFound.
func (s *FS) Get(dir, name string) ([]byte, error) {
	p, err := s.path(dir, name)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, errs.ErrNotFound
	}
	return b, err
}

// Remove deletes dir/name. A file that is already gone is not an error.
func (s *FS) Remove(dir, name string) error {
	p, err := s.path(dir, name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// RemoveDirIfEmpty deletes dir when it holds no entries and reports whether it
// did. A missing dir, or one refilled by a concurrent upload, is left alone
// without error.
func (s *FS) RemoveDirIfEmpty(dir string) (bool, error) {
	d, err := s.dir(dir)
	if err != nil {
		return false, err
	}
	entries, err := os.ReadDir(d)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	case err != nil:
		return false, err
	case len(entries) > 0:
		return false, nil
	}
	if err := os.Remove(d); err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTEMPTY) || errors.Is(err, syscall.EEXIST) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
