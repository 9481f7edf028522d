package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// WriteDefault creates the default configuration file at path with
// explanatory comments. If the file already exists, it returns nil
// without overwriting. The parent directory is created if needed.
// The file is written with 0640 permissions.
func WriteDefault(path string) error {
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat config file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure config dir: %w", err)
	}

	if err := os.WriteFile(path, []byte(defaultConfigTemplate), 0o640); err != nil {
		return fmt.Errorf("write default config: %w", err)
	}
	return nil
}
