// Package filestore keeps the raw uploaded bank and declaration files on
// disk so an import can be re-run or audited after the fact.
package filestore

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Store handles local file storage
type Store struct {
	basePath string
}

// New creates a new file store with the given base path
func New(basePath string) (*Store, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("create filestore directory: %w", err)
	}
	return &Store{basePath: basePath}, nil
}

// Save stores a file under a fresh unique name, preserving the original
// extension, and returns the stored filename.
func (s *Store) Save(filename string, r io.Reader) (string, error) {
	newFilename := uuid.NewString() + filepath.Ext(filename)
	fullPath := filepath.Join(s.basePath, newFilename)

	f, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(fullPath)
		return "", fmt.Errorf("write file: %w", err)
	}
	return newFilename, nil
}

// Get returns a reader for the file at the given path
func (s *Store) Get(filename string) (*os.File, error) {
	f, err := os.Open(filepath.Join(s.basePath, filename))
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	return f, nil
}

// Delete removes the file at the given path
func (s *Store) Delete(filename string) error {
	if filename == "" {
		return nil
	}
	if err := os.Remove(filepath.Join(s.basePath, filename)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}

// FullPath returns the full filesystem path for a filename
func (s *Store) FullPath(filename string) string {
	return filepath.Join(s.basePath, filename)
}
