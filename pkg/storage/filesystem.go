package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LocalStorage persists media objects on disk under a base directory.
// Object keys mirror the bucket layout: raw/<assetID>/source.mp4 and
// hls/<assetID>/playlist.m3u8.
type LocalStorage struct {
	baseDir string
}

// NewLocalStorage ensures the base directory exists and returns a handle.
func NewLocalStorage(baseDir string) (*LocalStorage, error) {
	if baseDir == "" {
		baseDir = "./media"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create media directory: %w", err)
	}
	return &LocalStorage{baseDir: baseDir}, nil
}

// SaveStream copies from reader into the object at key.
func (s *LocalStorage) SaveStream(key string, r io.Reader) (string, error) {
	path := s.resolve(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("prepare media directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create media object: %w", err)
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("write media object: %w", err)
	}
	return key, nil
}

// Open returns a reader over the stored object.
func (s *LocalStorage) Open(key string) (io.ReadCloser, error) {
	f, err := os.Open(s.resolve(key))
	if err != nil {
		return nil, fmt.Errorf("open media object: %w", err)
	}
	return f, nil
}

// Exists reports whether an object is present for the key.
func (s *LocalStorage) Exists(key string) bool {
	_, err := os.Stat(s.resolve(key))
	return err == nil
}

// Path exposes the absolute filesystem path backing a key.
func (s *LocalStorage) Path(key string) string {
	return s.resolve(key)
}

// Remove deletes the object tree rooted at key.
func (s *LocalStorage) Remove(key string) error {
	if err := os.RemoveAll(s.resolve(key)); err != nil {
		return fmt.Errorf("remove media object: %w", err)
	}
	return nil
}

func (s *LocalStorage) resolve(key string) string {
	return filepath.Join(s.baseDir, filepath.FromSlash(key))
}

// RawObjectKey returns the canonical key for an uploaded source video.
func RawObjectKey(assetID string) string {
	return fmt.Sprintf("raw/%s/source.mp4", assetID)
}

// HLSManifestKey returns the canonical key for a transcoded HLS playlist.
func HLSManifestKey(assetID string) string {
	return fmt.Sprintf("hls/%s/playlist.m3u8", assetID)
}
