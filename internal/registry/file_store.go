package registry

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/vilaca/gitlab-desk/internal/domain"
)

// DefaultLockTimeout bounds how long Update waits for another process
// holding the registry file.
const DefaultLockTimeout = 5 * time.Second

// State is the persisted content of the registry file.
type State struct {
	Instances []domain.InstanceProfile `yaml:"instances"`
	Projects  []domain.ProjectSummary  `yaml:"projects"`
}

// Store loads and saves registry state.
type Store interface {
	Load() (*State, error)
	// Update loads the state, applies fn and saves the result atomically.
	// Nothing is written when fn returns an error.
	Update(fn func(*State) error) error
}

// FileStore persists registry state to a YAML file.
// Writes go through a temp file and a rename, and are serialized across
// processes by a lock file next to the registry file.
type FileStore struct {
	filePath    string
	lockTimeout time.Duration
	mu          sync.RWMutex
	flock       *flock.Flock
	logger      *zap.SugaredLogger
}

// NewFileStore creates a file store. A nil logger discards output.
func NewFileStore(filePath string, logger *zap.SugaredLogger) *FileStore {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &FileStore{
		filePath:    filePath,
		lockTimeout: DefaultLockTimeout,
		flock:       flock.New(filePath + ".lock"),
		logger:      logger,
	}
}

// Path returns the registry file location.
func (s *FileStore) Path() string {
	return s.filePath
}

// Load reads the registry file. A missing file yields an empty state.
func (s *FileStore) Load() (*State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.load()
}

// Update implements Store.
func (s *FileStore) Update(fn func(*State) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.filePath), 0o700); err != nil {
		return fmt.Errorf("failed to create registry directory: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.lockTimeout)
	defer cancel()

	locked, err := s.flock.TryLockContext(ctx, 50*time.Millisecond)
	if err != nil {
		return fmt.Errorf("failed to lock registry %s: %w", s.filePath, err)
	}
	if !locked {
		return fmt.Errorf("failed to lock registry %s: timed out", s.filePath)
	}
	defer func() {
		if err := s.flock.Unlock(); err != nil {
			s.logger.Warnw("Failed to release registry lock", "path", s.filePath, "error", err)
		}
	}()

	state, err := s.load()
	if err != nil {
		return err
	}
	if err := fn(state); err != nil {
		return err
	}
	return s.save(state)
}

func (s *FileStore) load() (*State, error) {
	data, err := os.ReadFile(s.filePath)
	if errors.Is(err, os.ErrNotExist) {
		s.logger.Debugw("No registry file found", "path", s.filePath)
		return &State{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read registry: %w", err)
	}

	var state State
	if err := yaml.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to parse registry %s: %w", s.filePath, err)
	}
	return &state, nil
}

func (s *FileStore) save(state *State) error {
	data, err := yaml.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode registry: %w", err)
	}

	// Write to temporary file first, then rename over the original
	tempFile := s.filePath + ".tmp"
	if err := os.WriteFile(tempFile, data, 0o600); err != nil {
		return fmt.Errorf("failed to write registry: %w", err)
	}
	if err := os.Rename(tempFile, s.filePath); err != nil {
		_ = os.Remove(tempFile)
		return fmt.Errorf("failed to write registry: %w", err)
	}

	s.logger.Debugw("Saved registry", "path", s.filePath,
		"instances", len(state.Instances), "projects", len(state.Projects))
	return nil
}
