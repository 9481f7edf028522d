package config

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

// validLogLevels defines the allowed log level values.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks that every field of a parsed Config holds a usable value.
// Action names in Timeouts are checked later, when the action table is
// built from the config.
//
// Returns nil if the config is valid, or an error naming the invalid field.
func Validate(cfg *Config) error {
	if err := validateAbsPath(cfg.Socket.Path, "socket.path"); err != nil {
		return err
	}
	if _, err := parseMode(cfg.Socket.Mode); err != nil {
		return fmt.Errorf("socket.mode: %w", err)
	}
	if cfg.Socket.MaxConcurrent < 1 {
		return fmt.Errorf("socket.max_concurrent: must be at least 1, got %d", cfg.Socket.MaxConcurrent)
	}
	if cfg.Socket.MaxRequestBytes < 1 {
		return fmt.Errorf("socket.max_request_bytes: must be positive, got %d", cfg.Socket.MaxRequestBytes)
	}
	if err := validatePositiveDuration(cfg.Socket.ReadTimeout, "socket.read_timeout"); err != nil {
		return err
	}

	if cfg.Policy.VMIDMin < 0 {
		return fmt.Errorf("policy.vmid_min: must be non-negative, got %d", cfg.Policy.VMIDMin)
	}
	if cfg.Policy.VMIDMax < cfg.Policy.VMIDMin {
		return fmt.Errorf("policy.vmid_max: %d is below vmid_min %d", cfg.Policy.VMIDMax, cfg.Policy.VMIDMin)
	}
	if len(cfg.Policy.ImageRoots) == 0 {
		return fmt.Errorf("policy.image_roots: at least one directory is required")
	}
	for i, root := range cfg.Policy.ImageRoots {
		field := fmt.Sprintf("policy.image_roots[%d]", i)
		if err := validateAbsPath(root, field); err != nil {
			return err
		}
		if filepath.Clean(root) == "/" {
			return fmt.Errorf("%s: the filesystem root is not allowed", field)
		}
	}

	if err := validateAbsPath(cfg.Tools.QM, "tools.qm"); err != nil {
		return err
	}
	if err := validateAbsPath(cfg.Tools.Usermod, "tools.usermod"); err != nil {
		return err
	}

	for i, kv := range cfg.Exec.Env {
		if k, _, ok := strings.Cut(kv, "="); !ok || k == "" {
			return fmt.Errorf("exec.env[%d]: expected KEY=VALUE, got %q", i, kv)
		}
	}
	if err := validateDuration(cfg.Exec.KillGrace, "exec.kill_grace"); err != nil {
		return err
	}
	if cfg.Exec.MaxOutputBytes < 1 {
		return fmt.Errorf("exec.max_output_bytes: must be positive, got %d", cfg.Exec.MaxOutputBytes)
	}

	names := make([]string, 0, len(cfg.Timeouts))
	for name := range cfg.Timeouts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := validatePositiveDuration(cfg.Timeouts[name], "timeouts."+name); err != nil {
			return err
		}
	}

	if cfg.Log.Level != "" && !validLogLevels[cfg.Log.Level] {
		return fmt.Errorf("log.level: invalid value %q, must be one of: debug, info, warn, error", cfg.Log.Level)
	}
	if cfg.Log.File != "" {
		if err := validateAbsPath(cfg.Log.File, "log.file"); err != nil {
			return err
		}
	}
	if cfg.Log.AuditFile != "" {
		if err := validateAbsPath(cfg.Log.AuditFile, "log.audit_file"); err != nil {
			return err
		}
	}

	return nil
}

// validateAbsPath requires a non-empty absolute path.
func validateAbsPath(path, field string) error {
	if path == "" {
		return fmt.Errorf("%s: is required", field)
	}
	if !filepath.IsAbs(path) {
		return fmt.Errorf("%s: must be an absolute path, got %q", field, path)
	}
	return nil
}

// validateDuration validates that a duration string can be parsed by
// time.ParseDuration and is not negative.
func validateDuration(d, field string) error {
	v, err := time.ParseDuration(d)
	if err != nil {
		return fmt.Errorf("%s: invalid duration %q", field, d)
	}
	if v < 0 {
		return fmt.Errorf("%s: must not be negative, got %q", field, d)
	}
	return nil
}

// validatePositiveDuration is validateDuration that also rejects zero.
func validatePositiveDuration(d, field string) error {
	v, err := time.ParseDuration(d)
	if err != nil {
		return fmt.Errorf("%s: invalid duration %q", field, d)
	}
	if v <= 0 {
		return fmt.Errorf("%s: must be positive, got %q", field, d)
	}
	return nil
}

// parseMode parses an octal permission string. Permissions for others
// are refused since the socket mode is the only access control.
func parseMode(s string) (uint32, error) {
	m, err := strconv.ParseUint(s, 8, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid octal mode %q", s)
	}
	if m > 0o777 {
		return 0, fmt.Errorf("mode %q has bits outside 0777", s)
	}
	if m&0o007 != 0 {
		return 0, fmt.Errorf("mode %q grants access to others", s)
	}
	if m&0o600 != 0o600 {
		return 0, fmt.Errorf("mode %q must grant the owner read and write", s)
	}
	return uint32(m), nil
}
