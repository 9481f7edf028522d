package config

import (
	"fmt"
	"os"
	"os/user"
	"strconv"
	"time"

	"github.com/blockhost/rootagent/internal/action"
)

// ActionPolicy converts the config into the policy the action table is
// built from.
func (c *Config) ActionPolicy() (action.Policy, error) {
	p := action.Policy{
		VMIDMin:     c.Policy.VMIDMin,
		VMIDMax:     c.Policy.VMIDMax,
		ImageRoots:  append([]string{}, c.Policy.ImageRoots...),
		QMPath:      c.Tools.QM,
		UsermodPath: c.Tools.Usermod,
	}
	if len(c.Timeouts) > 0 {
		p.Timeouts = make(map[string]time.Duration, len(c.Timeouts))
		for name, s := range c.Timeouts {
			d, err := time.ParseDuration(s)
			if err != nil {
				return action.Policy{}, fmt.Errorf("timeouts.%s: invalid duration %q", name, s)
			}
			p.Timeouts[name] = d
		}
	}
	return p, nil
}

// SocketMode returns the parsed socket permission bits.
func (c *Config) SocketMode() (os.FileMode, error) {
	m, err := parseMode(c.Socket.Mode)
	if err != nil {
		return 0, fmt.Errorf("socket.mode: %w", err)
	}
	return os.FileMode(m), nil
}

// SocketGID resolves socket.group to a gid. It returns -1 when no group
// is configured.
func (c *Config) SocketGID() (int, error) {
	g := c.Socket.Group
	if g == "" {
		return -1, nil
	}
	if gid, err := strconv.Atoi(g); err == nil {
		if gid < 0 {
			return 0, fmt.Errorf("socket.group: invalid gid %d", gid)
		}
		return gid, nil
	}
	grp, err := user.LookupGroup(g)
	if err != nil {
		return 0, fmt.Errorf("socket.group: %w", err)
	}
	gid, err := strconv.Atoi(grp.Gid)
	if err != nil {
		return 0, fmt.Errorf("socket.group: unexpected gid %q for %s", grp.Gid, g)
	}
	return gid, nil
}

// ReadTimeout returns socket.read_timeout as a duration.
func (c *Config) ReadTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Socket.ReadTimeout)
	return d
}

// KillGrace returns exec.kill_grace as a duration.
func (c *Config) KillGrace() time.Duration {
	d, _ := time.ParseDuration(c.Exec.KillGrace)
	return d
}
