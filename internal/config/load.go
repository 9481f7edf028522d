package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/blockhost/rootagent/internal/clog"
)

// Load loads the configuration from path.
// If the file doesn't exist, it returns DefaultConfig().
// If the file exists but cannot be read, parsed or validated, it returns
// an error.
func Load(path string) (*Config, error) {
	clog.Debug("config: loading from %s", path)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			clog.Debug("config: %s not found, using defaults", path)
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}

	return cfg, nil
}
