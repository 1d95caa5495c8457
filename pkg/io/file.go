package io

import (
	"bufio"
	"os"
	"path/filepath"

	"github.com/matzehuels/graphimg/pkg/errors"
)

// File is an artifact being written. Writes are buffered and land in a
// temporary file until Commit renames it to the destination path.
type File struct {
	*bufio.Writer
	f    *os.File
	path string
	done bool
}

// Create starts writing the artifact at path. The parent directory is
// created if needed.
func Create(path string) (*File, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "create directory %s", dir)
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "create %s", path)
	}
	return &File{Writer: bufio.NewWriterSize(f, 1<<20), f: f, path: path}, nil
}

// Path returns the destination path.
func (a *File) Path() string { return a.path }

// Commit flushes buffered data, syncs it to stable storage and moves the
// artifact into place. After Commit, Abort does nothing.
func (a *File) Commit() error {
	if a.done {
		return errors.New(errors.ErrCodeInternal, "%s already finished", a.path)
	}
	if err := a.Flush(); err != nil {
		a.Abort()
		return errors.Wrap(errors.ErrCodeIO, err, "write %s", a.path)
	}
	if err := a.f.Sync(); err != nil {
		a.Abort()
		return errors.Wrap(errors.ErrCodeIO, err, "sync %s", a.path)
	}
	if err := a.f.Close(); err != nil {
		a.done = true
		_ = os.Remove(a.f.Name())
		return errors.Wrap(errors.ErrCodeIO, err, "close %s", a.path)
	}
	a.done = true
	if err := os.Chmod(a.f.Name(), 0644); err != nil {
		_ = os.Remove(a.f.Name())
		return errors.Wrap(errors.ErrCodeIO, err, "chmod %s", a.path)
	}
	if err := os.Rename(a.f.Name(), a.path); err != nil {
		_ = os.Remove(a.f.Name())
		return errors.Wrap(errors.ErrCodeIO, err, "rename into %s", a.path)
	}
	return nil
}

// Abort discards the artifact. It is safe to call more than once.
func (a *File) Abort() {
	if a.done {
		return
	}
	a.done = true
	_ = a.f.Close()
	_ = os.Remove(a.f.Name())
}

// Open opens an existing artifact for reading. Missing, unreadable and empty
// files are reported as IO_ERROR.
func Open(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "open %s", path)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errors.Wrap(errors.ErrCodeIO, err, "stat %s", path)
	}
	if info.IsDir() {
		f.Close()
		return nil, errors.New(errors.ErrCodeIO, "%s is a directory", path)
	}
	if info.Size() == 0 {
		f.Close()
		return nil, errors.New(errors.ErrCodeIO, "%s is empty", path)
	}
	return f, nil
}
