// Package telemetry sends opt-in, anonymous usage events for cascade.
//
// Telemetry is off until the user enables it with
// `cascade config telemetry enable`, and stays off without a collection key.
// Events carry counts, modes and durations only: never seeds, prompts,
// objectives or generated text.
package telemetry

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// ConfigFileName is the name of the telemetry state file in the global config dir.
const ConfigFileName = "telemetry.json"

// Config holds the telemetry state. It is stored separately from
// config.yaml so that rewriting LLM settings never touches consent.
type Config struct {
	Enabled bool `json:"enabled"`

	// AnonymousID is a random UUID generated on first load. It is not
	// derived from anything about the user or machine.
	AnonymousID string `json:"anonymous_id"`

	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// Store reads and writes Config under a directory.
type Store struct {
	fs  afero.Fs
	dir string
}

// NewStore returns a store for dir on fsys.
func NewStore(fsys afero.Fs, dir string) *Store {
	return &Store{fs: fsys, dir: dir}
}

// Path returns the full path of the telemetry state file.
func (s *Store) Path() string {
	return filepath.Join(s.dir, ConfigFileName)
}

// Load reads the telemetry state. A missing file yields a disabled config
// with a fresh anonymous id.
func (s *Store) Load() (*Config, error) {
	cfg := &Config{}

	data, err := afero.ReadFile(s.fs, s.Path())
	switch {
	case errors.Is(err, fs.ErrNotExist):
		cfg.AnonymousID = uuid.New().String()
		return cfg, nil
	case err != nil:
		return nil, fmt.Errorf("read telemetry config: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse telemetry config: %w", err)
	}
	if cfg.AnonymousID == "" {
		cfg.AnonymousID = uuid.New().String()
	}
	return cfg, nil
}

// Save writes the state with owner-only permissions.
func (s *Store) Save(cfg *Config) error {
	if err := s.fs.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal telemetry config: %w", err)
	}
	if err := afero.WriteFile(s.fs, s.Path(), data, 0600); err != nil {
		return fmt.Errorf("write telemetry config: %w", err)
	}
	return nil
}

// SetEnabled loads, updates and saves the state in one step.
func (s *Store) SetEnabled(enabled bool, now time.Time) (*Config, error) {
	cfg, err := s.Load()
	if err != nil {
		return nil, err
	}
	cfg.Enabled = enabled
	cfg.UpdatedAt = now.UTC()
	if err := s.Save(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DoNotTrack reports whether the DO_NOT_TRACK convention is set in the
// environment. It overrides an enabled config.
func DoNotTrack() bool {
	v := os.Getenv("DO_NOT_TRACK")
	return v != "" && v != "0" && v != "false"
}
