package storage

import (
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Store accepts a byte stream and returns a stable reference for it.
// Size and MIME validation is the caller's responsibility, not the store's.
type Store interface {
	Save(name string, r io.Reader) (string, error)
	Open(ref string) (io.ReadCloser, error)
	Remove(ref string) error
}

// DiskStore writes files under a single directory, keyed by random names.
type DiskStore struct {
	dir string
}

// NewDiskStore creates the directory if needed.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskStore{dir: dir}, nil
}

// Save streams r to a new file and returns its reference. The original
// name only contributes the extension; the reference itself is random.
func (s *DiskStore) Save(name string, r io.Reader) (string, error) {
	ref := uuid.NewString() + filepath.Ext(name)
	f, err := os.Create(filepath.Join(s.dir, ref))
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return ref, nil
}

// Open returns a reader for a previously saved reference.
func (s *DiskStore) Open(ref string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(s.dir, filepath.Base(ref)))
}

// Remove deletes a stored file; missing files are not an error.
func (s *DiskStore) Remove(ref string) error {
	err := os.Remove(filepath.Join(s.dir, filepath.Base(ref)))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
