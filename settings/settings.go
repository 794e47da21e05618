/*******************************************************************************
 * Copyright (c) 2026 Genome Research Ltd.
 *
 * Permission is hereby granted, free of charge, to any person obtaining
 * a copy of this software and associated documentation files (the
 * "Software"), to deal in the Software without restriction, including
 * without limitation the rights to use, copy, modify, merge, publish,
 * distribute, sublicense, and/or sell copies of the Software, and to
 * permit persons to whom the Software is furnished to do so, subject to
 * the following conditions:
 *
 * The above copyright notice and this permission notice shall be included
 * in all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND,
 * EXPRESS OR IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF
 * MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.
 * IN NO EVENT SHALL THE AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY
 * CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER IN AN ACTION OF CONTRACT,
 * TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN CONNECTION WITH THE
 * SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
 ******************************************************************************/

// Package settings persists previously resolved reference database paths in a
// small YAML file in the user's home directory, so they need not be supplied
// on every run.
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/inconshreveable/log15"
	"gopkg.in/yaml.v3"
)

const (
	// EnvPath overrides the default location of the settings file.
	EnvPath = "JOVIAN_SETTINGS"

	defaultBasename = ".Jovian_env.yaml"
	filePerms       = 0o600
)

// DefaultPath returns $JOVIAN_SETTINGS if set, otherwise .Jovian_env.yaml in
// the user's home directory.
func DefaultPath() (string, error) {
	if p := os.Getenv(EnvPath); p != "" {
		return p, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}

	return filepath.Join(home, defaultBasename), nil
}

// Store reads and writes the settings file at a fixed path.
type Store struct {
	path   string
	logger log15.Logger
}

// New returns a Store for the settings file at path. logger may be nil.
func New(path string, logger log15.Logger) *Store {
	if logger == nil {
		logger = log15.New()
		logger.SetHandler(log15.DiscardHandler())
	}

	return &Store{path: path, logger: logger}
}

// Path returns the location of the settings file.
func (s *Store) Path() string {
	return s.path
}

// Load returns the stored key/value pairs. A missing file gives an empty map,
// as does a malformed one (with a warning logged). Entries whose values are not
// non-empty strings are dropped.
func (s *Store) Load() map[string]string {
	stored := make(map[string]string)

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("could not read settings file", "path", s.path, "err", err)
		}

		return stored
	}

	var raw map[string]any

	if err := yaml.Unmarshal(data, &raw); err != nil {
		s.logger.Warn("ignoring malformed settings file", "path", s.path, "err", err)

		return stored
	}

	for key, value := range raw {
		if str, ok := value.(string); ok && str != "" {
			stored[key] = str
		}
	}

	return stored
}

// Save replaces the settings file with the non-empty entries of slots.
func (s *Store) Save(slots map[string]string) error {
	toWrite := make(map[string]string, len(slots))

	for key, value := range slots {
		if value != "" {
			toWrite[key] = value
		}
	}

	data, err := yaml.Marshal(toWrite)
	if err != nil {
		return err
	}

	if err := os.WriteFile(s.path, data, filePerms); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}

	return nil
}

// Reset deletes the settings file. It is not an error if it does not exist.
func (s *Store) Reset() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove settings file: %w", err)
	}

	return nil
}
