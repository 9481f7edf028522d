// Package config provides the configuration types for the root agent.
// These types map to the YAML file at /etc/blockhost/root-agent.yaml.
package config

// Config represents the root agent configuration.
type Config struct {
	Socket   SocketConfig      `yaml:"socket,omitempty"`
	Policy   PolicyConfig      `yaml:"policy,omitempty"`
	Tools    ToolsConfig       `yaml:"tools,omitempty"`
	Exec     ExecConfig        `yaml:"exec,omitempty"`
	Timeouts map[string]string `yaml:"timeouts,omitempty"`
	Log      LogConfig         `yaml:"log,omitempty"`
}

// SocketConfig contains the Unix socket listener settings.
type SocketConfig struct {
	Path string `yaml:"path,omitempty"`
	// Mode is the octal permission string for the socket file, e.g. "0660".
	Mode string `yaml:"mode,omitempty"`
	// Group is a group name or numeric gid given ownership of the socket.
	Group           string `yaml:"group,omitempty"`
	MaxConcurrent   int    `yaml:"max_concurrent,omitempty"`
	MaxRequestBytes int    `yaml:"max_request_bytes,omitempty"`
	ReadTimeout     string `yaml:"read_timeout,omitempty"`
}

// PolicyConfig contains the limits applied to action parameters.
type PolicyConfig struct {
	VMIDMin    int      `yaml:"vmid_min"`
	VMIDMax    int      `yaml:"vmid_max"`
	ImageRoots []string `yaml:"image_roots,omitempty"`
}

// ToolsConfig contains absolute paths of the host tools.
type ToolsConfig struct {
	QM      string `yaml:"qm,omitempty"`
	Usermod string `yaml:"usermod,omitempty"`
}

// ExecConfig contains child process settings.
type ExecConfig struct {
	Env            []string `yaml:"env,omitempty"`
	KillGrace      string   `yaml:"kill_grace,omitempty"`
	MaxOutputBytes int      `yaml:"max_output_bytes,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	File      string `yaml:"file,omitempty"`
	AuditFile string `yaml:"audit_file,omitempty"`
	Level     string `yaml:"level,omitempty"`
}
