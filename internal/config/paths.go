package config

import "os"

// DefaultPath is the configuration file read when no path is given.
const DefaultPath = "/etc/blockhost/root-agent.yaml"

// PathEnv names the environment variable that overrides DefaultPath.
const PathEnv = "ROOT_AGENT_CONFIG"

// Path returns the configuration file path.
// An explicit path wins, then $ROOT_AGENT_CONFIG, then DefaultPath.
func Path(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if env := os.Getenv(PathEnv); env != "" {
		return env
	}
	return DefaultPath
}
