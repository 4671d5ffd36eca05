package out

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"pulse/internal/modules/healthstore/domain"
)

const grantsSchemaVersion = 1

type grantsFile struct {
	SchemaVersion int      `yaml:"schema_version"`
	Granted       []string `yaml:"granted"`
}

// FileGrantStore keeps granted capabilities in a YAML file the user may
// edit directly; it doubles as the settings surface.
type FileGrantStore struct {
	mu   sync.Mutex
	path string
}

func NewFileGrantStore(path string) *FileGrantStore {
	return &FileGrantStore{path: path}
}

func (s *FileGrantStore) Path() string {
	return s.path
}

func (s *FileGrantStore) Load(_ context.Context) (domain.CapabilitySet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.CapabilitySet{}, nil
		}
		return nil, fmt.Errorf("read grants: %w", err)
	}
	file := grantsFile{}
	if err := yaml.Unmarshal(payload, &file); err != nil {
		return nil, fmt.Errorf("decode grants: %w", err)
	}
	caps := make([]domain.Capability, 0, len(file.Granted))
	for _, raw := range file.Granted {
		c, err := domain.ParseCapability(raw)
		if err != nil {
			return nil, fmt.Errorf("decode grants: %w", err)
		}
		caps = append(caps, c)
	}
	return domain.NewCapabilitySet(caps...), nil
}

func (s *FileGrantStore) Save(_ context.Context, grants domain.CapabilitySet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file := grantsFile{SchemaVersion: grantsSchemaVersion, Granted: make([]string, 0, len(grants))}
	for _, c := range grants {
		file.Granted = append(file.Granted, string(c))
	}
	payload, err := yaml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode grants: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create grants dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return fmt.Errorf("write grants: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace grants: %w", err)
	}
	return nil
}
