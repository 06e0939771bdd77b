package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// UserConfigName is the editable copy living in the engine's data dir.
const UserConfigName = "config.yml"

// EnsureUserConfig makes sure dataDir carries an editable config. The first
// run seeds it from the shipped default; after that the user's edits are
// left alone.
func EnsureUserConfig(dataDir, defaultPath string) (string, error) {
	userPath := filepath.Join(dataDir, UserConfigName)

	switch _, err := os.Stat(userPath); {
	case err == nil:
		return userPath, nil
	case !errors.Is(err, os.ErrNotExist):
		return "", fmt.Errorf("stat user config: %w", err)
	}

	def, err := os.ReadFile(defaultPath)
	if err != nil {
		return "", fmt.Errorf("read default config %s: %w", defaultPath, err)
	}
	if err := os.WriteFile(userPath, def, 0o644); err != nil {
		return "", fmt.Errorf("seed user config: %w", err)
	}
	return userPath, nil
}
