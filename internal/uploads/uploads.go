// Package uploads stores product images on local disk.
package uploads

import (
	"errors"
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// URLPrefix is the public path images are served under.
const URLPrefix = "/uploads/"

// ErrExtensionNotAllowed is returned for files that are not images.
var ErrExtensionNotAllowed = errors.New("file extension not allowed")

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// SaveFunc writes an uploaded file to dst. It matches fiber's
// (*Ctx).SaveFile.
type SaveFunc func(file *multipart.FileHeader, dst string) error

// Store saves images under a directory.
type Store struct {
	dir string
	now func() time.Time
}

// NewStore creates dir if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create uploads dir %s: %w", dir, err)
	}
	return &Store{dir: dir, now: time.Now}, nil
}

// Dir returns the directory images are written to.
func (s *Store) Dir() string { return s.dir }

// Save writes file as <unix-nanos><ext> and returns its public path. The
// client file name is only used for its extension.
func (s *Store) Save(file *multipart.FileHeader, save SaveFunc) (string, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExtensions[ext] {
		return "", fmt.Errorf("%w: %q", ErrExtensionNotAllowed, ext)
	}
	name := strconv.FormatInt(s.now().UnixNano(), 10) + ext
	if err := save(file, filepath.Join(s.dir, name)); err != nil {
		return "", fmt.Errorf("failed to save upload: %w", err)
	}
	return URLPrefix + name, nil
}

// Remove deletes a previously saved image given its public path. Paths
// outside URLPrefix are ignored.
func (s *Store) Remove(publicPath string) error {
	if !strings.HasPrefix(publicPath, URLPrefix) {
		return nil
	}
	name := filepath.Base(publicPath)
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
