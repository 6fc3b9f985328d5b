package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore keeps one <collection>.json file per collection and overwrites
// the whole file on every save.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) path(c Collection) string {
	return filepath.Join(s.dir, string(c)+".json")
}

func (s *FileStore) Load(_ context.Context, c Collection, dst any) (bool, error) {
	raw, err := os.ReadFile(s.path(c))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read %s: %w", c, err)
	}
	if len(raw) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", c, err)
	}
	return true, nil
}

func (s *FileStore) Save(_ context.Context, c Collection, value any) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", c, err)
	}
	if err := os.WriteFile(s.path(c), payload, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", c, err)
	}
	return nil
}

// List reports the collection files present in the data directory.
func (s *FileStore) List(_ context.Context) ([]CollectionInfo, error) {
	var infos []CollectionInfo
	for _, c := range AllCollections {
		fi, err := os.Stat(s.path(c))
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", c, err)
		}
		infos = append(infos, CollectionInfo{Name: c, SizeBytes: int(fi.Size()), UpdatedAt: fi.ModTime()})
	}
	return infos, nil
}

func (s *FileStore) Close() error {
	return nil
}
