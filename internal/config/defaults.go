package config

import "github.com/blockhost/rootagent/internal/clog"

// DefaultConfig returns a Config with all defaults populated.
//
// The action table carries its own per-action timeouts, so Timeouts is
// empty by default and only lists overrides.
func DefaultConfig() *Config {
	return &Config{
		Socket: SocketConfig{
			Path:            "/run/blockhost/root-agent.sock",
			Mode:            "0660",
			MaxConcurrent:   8,
			MaxRequestBytes: 65536,
			ReadTimeout:     "10s",
		},
		Policy: PolicyConfig{
			VMIDMin:    100,
			VMIDMax:    999999999,
			ImageRoots: []string{"/var/lib/blockhost/", "/tmp/"},
		},
		Tools: ToolsConfig{
			QM:      "/usr/sbin/qm",
			Usermod: "/usr/sbin/usermod",
		},
		Exec: ExecConfig{
			Env: []string{
				"PATH=/usr/sbin:/usr/bin:/sbin:/bin",
				"LC_ALL=C",
			},
			KillGrace:      "5s",
			MaxOutputBytes: 1 << 20,
		},
		Log: LogConfig{
			File:      clog.DefaultLogPath(),
			AuditFile: "/var/log/blockhost/root-agent-audit.log",
			Level:     "info",
		},
	}
}

// defaultConfigTemplate is written by WriteDefault. It documents every
// field with its default value.
const defaultConfigTemplate = `# Root agent configuration.
#
# Every field is optional; the values shown are the defaults.

socket:
  # Unix socket the agent listens on.
  path: /run/blockhost/root-agent.sock
  # Permission bits of the socket file. Access to the socket is the only
  # access control, so never grant permissions to others.
  mode: "0660"
  # Group given ownership of the socket (name or numeric gid).
  # group: blockhost
  # Connections served at once; further clients wait.
  max_concurrent: 8
  max_request_bytes: 65536
  read_timeout: 10s

policy:
  # Inclusive VMID range callers may target. Proxmox reserves IDs below 100.
  vmid_min: 100
  vmid_max: 999999999
  # Directories disk images may be imported from.
  image_roots:
    - /var/lib/blockhost/
    - /tmp/

tools:
  qm: /usr/sbin/qm
  usermod: /usr/sbin/usermod

exec:
  # Complete environment of every child process.
  env:
    - PATH=/usr/sbin:/usr/bin:/sbin:/bin
    - LC_ALL=C
  # Delay between SIGTERM and SIGKILL when an action times out.
  kill_grace: 5s
  # Bytes of stdout and of stderr kept per action.
  max_output_bytes: 1048576

# Per-action timeout overrides, keyed by canonical action name.
# timeouts:
#   qm-importdisk: 15m
#   qm-shutdown: 10m

log:
  file: /var/log/blockhost/root-agent.log
  audit_file: /var/log/blockhost/root-agent-audit.log
  # debug, info, warn or error
  level: info
`
