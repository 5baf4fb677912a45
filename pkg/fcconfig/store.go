package fcconfig

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// Store manages persistence of a configuration to a JSON file.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore creates a store for the given path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Save writes the configuration to disk, creating parent directories
// as needed.
func (s *Store) Save(cfg Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	return os.WriteFile(s.path, data, 0644)
}

// Load reads the configuration from disk.
// Returns the default configuration if the file doesn't exist.
func (s *Store) Load() (Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, err
	}

	cfg := Config{}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
