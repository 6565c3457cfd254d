package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrUnsupportedFile is returned for uploads that are not images.
var ErrUnsupportedFile = errors.New("unsupported file type")

// ErrFileTooLarge is returned when an upload exceeds the configured limit.
var ErrFileTooLarge = errors.New("file too large")

var imageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// FileStore persists uploaded complaint images and returns their public URL.
type FileStore interface {
	Store(ctx context.Context, filename string, content []byte) (string, error)
}

// LocalFileStore writes files below a directory served at baseURL.
type LocalFileStore struct {
	dir      string
	baseURL  string
	maxBytes int64
}

// NewLocalFileStore creates dir when missing.
func NewLocalFileStore(dir, baseURL string, maxBytes int64) (*LocalFileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalFileStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/"), maxBytes: maxBytes}, nil
}

// Dir returns the directory files are written to.
func (s *LocalFileStore) Dir() string {
	return s.dir
}

// Store sniffs the content type, writes the file under a random name and returns its URL.
// The client-supplied filename is only used in error messages.
func (s *LocalFileStore) Store(ctx context.Context, filename string, content []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(content) == 0 {
		return "", fmt.Errorf("%w: empty file", ErrUnsupportedFile)
	}
	if s.maxBytes > 0 && int64(len(content)) > s.maxBytes {
		return "", ErrFileTooLarge
	}
	ext, ok := imageTypes[http.DetectContentType(content)]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFile, filepath.Ext(filename))
	}

	name := uuid.NewString() + ext
	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck
	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		return "", err
	}
	return s.baseURL + "/" + name, nil
}
