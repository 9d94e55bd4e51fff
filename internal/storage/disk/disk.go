package disk

import (
	"context"
	"os"
	"path/filepath"
	"strings"
)

// Storage keeps uploads on the local filesystem, served under /media/.
type Storage struct {
	dir string
}

func New(dir string) (*Storage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Storage{dir: dir}, nil
}

func (s *Storage) Dir() string { return s.dir }

func (s *Storage) Put(_ context.Context, key, _ string, data []byte) error {
	return os.WriteFile(filepath.Join(s.dir, key), data, 0o644)
}

func (s *Storage) Remove(_ context.Context, key string) error {
	return os.Remove(filepath.Join(s.dir, key))
}

func (s *Storage) URL(key string) string { return "/media/" + key }

func (s *Storage) Key(url string) (string, bool) {
	key, ok := strings.CutPrefix(url, "/media/")
	return key, ok && key != ""
}
