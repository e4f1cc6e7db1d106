package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/MikeSquared-Agency/Admit/internal/catalog"
)

// FileSource reads the catalog from a YAML document on disk. The file is
// re-read on every Load so a reload picks up edits.
type FileSource struct {
	path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) Load(_ context.Context) (*catalog.Dataset, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", s.path, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return ParseDataset(data)
}

// ParseDataset decodes a YAML catalog document.
func ParseDataset(data []byte) (*catalog.Dataset, error) {
	var ds catalog.Dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return &ds, nil
}
