package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// FileStorage keeps objects as files under a root directory
type FileStorage struct {
	root string
}

// Ensure FileStorage implements StorageInterface
var _ StorageInterface = (*FileStorage)(nil)

// NewFileStorage creates the root directory if needed
func NewFileStorage(root string) (*FileStorage, error) {
	if root == "" {
		return nil, fmt.Errorf("storage directory is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", root, err)
	}
	return &FileStorage{root: root}, nil
}

func (s *FileStorage) path(name string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(name))
	if clean == "." || filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return "", fmt.Errorf("invalid object name %q", name)
	}
	return filepath.Join(s.root, clean), nil
}

// Store writes data atomically through a temporary file
func (s *FileStorage) Store(filename string, data []byte) error {
	path, err := s.path(filename)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", filename, err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", filename, err)
	}

	logrus.Debugf("Stored %s (%d bytes) on disk", filename, len(data))
	return nil
}

// Retrieve reads an object
func (s *FileStorage) Retrieve(filename string) ([]byte, error) {
	path, err := s.path(filename)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", filename, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	return data, nil
}

// List returns object names (slash separated) starting with prefix
func (s *FileStorage) List(prefix string) ([]string, error) {
	var names []string
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasSuffix(path, ".tmp") {
			return nil
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", s.root, err)
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes an object; deleting a missing object is not an error
func (s *FileStorage) Delete(filename string) error {
	path, err := s.path(filename)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete %s: %w", filename, err)
	}
	return nil
}
