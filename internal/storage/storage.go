package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

var ErrInvalidKey = errors.New("invalid storage key")

// FileStore keeps uploaded customer files and returns their public URL.
type FileStore interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
}

// LocalStore writes files under a directory that the HTTP server exposes
// at publicBaseURL.
type LocalStore struct {
	dir           string
	publicBaseURL string
}

func NewLocalStore(dir, publicBaseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return &LocalStore{dir: dir, publicBaseURL: strings.TrimRight(publicBaseURL, "/")}, nil
}

func (s *LocalStore) Put(ctx context.Context, key string, r io.Reader, _ string) (string, error) {
	clean, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	fullPath := filepath.Join(s.dir, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("mkdir: %w", err)
	}

	// write to a temp file first so readers never see a partial upload
	tmp, err := os.CreateTemp(filepath.Dir(fullPath), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write %s: %w", clean, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", clean, err)
	}
	if err := os.Rename(tmp.Name(), fullPath); err != nil {
		return "", fmt.Errorf("rename %s: %w", clean, err)
	}

	return s.publicURL(clean), nil
}

func (s *LocalStore) publicURL(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return s.publicBaseURL + "/" + strings.Join(parts, "/")
}

func cleanKey(key string) (string, error) {
	if key == "" || strings.Contains(key, "\\") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." {
			return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
		}
	}
	clean := strings.TrimPrefix(path.Clean("/"+key), "/")
	if clean == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return clean, nil
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// MaxFilenameLength caps stored file names, in runes.
const MaxFilenameLength = 100

// maxExtLength is the longest extension TruncateFilename keeps.
const maxExtLength = 16

// SafeFilename keeps letters, digits, dot, dash and underscore; anything else
// becomes an underscore. An empty result falls back to fallback.
func SafeFilename(name, fallback string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = unsafeChars.ReplaceAllString(name, "_")
	name = strings.TrimLeft(name, ".")
	if name == "" {
		return fallback
	}
	return TruncateFilename(name, MaxFilenameLength)
}

// TruncateFilename shortens name to at most limit runes, keeping a short
// extension intact.
func TruncateFilename(name string, limit int) string {
	runes := []rune(name)
	if len(runes) <= limit {
		return name
	}
	if limit <= 0 {
		return ""
	}
	ext := []rune(path.Ext(name))
	if len(ext) > maxExtLength || len(ext) >= limit {
		ext = nil
	}
	return string(runes[:limit-len(ext)]) + string(ext)
}
