package config

import (
	"strings"
	"testing"
)

func TestValidate_Defaults(t *testing.T) {
	if err := Validate(DefaultConfig()); err != nil {
		t.Errorf("Validate(DefaultConfig()) error = %v, want nil", err)
	}
}

func TestValidate_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"relative socket", func(c *Config) { c.Socket.Path = "agent.sock" }, "socket.path"},
		{"empty socket", func(c *Config) { c.Socket.Path = "" }, "socket.path: is required"},
		{"mode not octal", func(c *Config) { c.Socket.Mode = "rw-rw----" }, "socket.mode"},
		{"mode for others", func(c *Config) { c.Socket.Mode = "0666" }, "grants access to others"},
		{"mode without owner", func(c *Config) { c.Socket.Mode = "0060" }, "owner read and write"},
		{"mode too wide", func(c *Config) { c.Socket.Mode = "4660" }, "outside 0777"},
		{"zero concurrency", func(c *Config) { c.Socket.MaxConcurrent = 0 }, "socket.max_concurrent"},
		{"zero request size", func(c *Config) { c.Socket.MaxRequestBytes = 0 }, "socket.max_request_bytes"},
		{"bad read timeout", func(c *Config) { c.Socket.ReadTimeout = "soon" }, "socket.read_timeout"},
		{"zero read timeout", func(c *Config) { c.Socket.ReadTimeout = "0s" }, "socket.read_timeout"},
		{"negative vmid_min", func(c *Config) { c.Policy.VMIDMin = -1 }, "policy.vmid_min"},
		{"inverted range", func(c *Config) { c.Policy.VMIDMin, c.Policy.VMIDMax = 500, 400 }, "policy.vmid_max"},
		{"no image roots", func(c *Config) { c.Policy.ImageRoots = nil }, "policy.image_roots"},
		{"relative image root", func(c *Config) { c.Policy.ImageRoots = []string{"images"} }, "policy.image_roots[0]"},
		{"slash image root", func(c *Config) { c.Policy.ImageRoots = []string{"/var/lib/blockhost/", "/"} }, "policy.image_roots[1]"},
		{"relative qm", func(c *Config) { c.Tools.QM = "qm" }, "tools.qm"},
		{"relative usermod", func(c *Config) { c.Tools.Usermod = "usermod" }, "tools.usermod"},
		{"bad env entry", func(c *Config) { c.Exec.Env = []string{"PATH"} }, "exec.env[0]"},
		{"empty env key", func(c *Config) { c.Exec.Env = []string{"=x"} }, "exec.env[0]"},
		{"negative kill grace", func(c *Config) { c.Exec.KillGrace = "-1s" }, "exec.kill_grace"},
		{"zero output cap", func(c *Config) { c.Exec.MaxOutputBytes = 0 }, "exec.max_output_bytes"},
		{"bad timeout", func(c *Config) { c.Timeouts = map[string]string{"qm-start": "forever"} }, "timeouts.qm-start"},
		{"zero timeout", func(c *Config) { c.Timeouts = map[string]string{"qm-stop": "0s"} }, "timeouts.qm-stop"},
		{"bad log level", func(c *Config) { c.Log.Level = "verbose" }, "log.level"},
		{"relative log file", func(c *Config) { c.Log.File = "agent.log" }, "log.file"},
		{"relative audit file", func(c *Config) { c.Log.AuditFile = "audit.log" }, "log.audit_file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			if err == nil {
				t.Fatalf("Validate() error = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want it to contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestValidate_ZeroKillGraceAllowed(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Exec.KillGrace = "0s"
	if err := Validate(cfg); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}

func TestValidate_EmptyLogPathsAllowed(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Log.File = ""
	cfg.Log.AuditFile = ""
	if err := Validate(cfg); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}
