package chips

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"questline/internal/models"
)

// FileStore persists one YAML file per session under a directory, so chips
// survive process restarts.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create chip dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(sessionKey string) string {
	// Session keys may contain separators; flatten them so every record
	// stays inside the store directory.
	safe := strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(sessionKey)
	return filepath.Join(s.dir, safe+".yaml")
}

func (s *FileStore) Get(sessionKey string) (*models.SuggestionRecord, error) {
	data, err := os.ReadFile(s.path(sessionKey))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read chips: %w", err)
	}
	var rec models.SuggestionRecord
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parse chips: %w", err)
	}
	return &rec, nil
}

func (s *FileStore) Set(sessionKey string, rec *models.SuggestionRecord) error {
	data, err := yaml.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode chips: %w", err)
	}
	if err := os.WriteFile(s.path(sessionKey), data, 0644); err != nil {
		return fmt.Errorf("write chips: %w", err)
	}
	return nil
}

func (s *FileStore) Clear(sessionKey string) error {
	err := os.Remove(s.path(sessionKey))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clear chips: %w", err)
	}
	return nil
}
