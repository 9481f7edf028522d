package action

import (
	"time"

	"github.com/blockhost/rootagent/internal/validate"
)

// Policy is the administrative input to the registry.
type Policy struct {
	VMIDMin int
	VMIDMax int
	// ImageRoots are the directories disk images may be imported from.
	ImageRoots []string

	QMPath      string
	UsermodPath string

	// Timeouts overrides the default timeout of an action by canonical name.
	Timeouts map[string]time.Duration
}

// DefaultPolicy returns the policy used when no configuration is given.
func DefaultPolicy() Policy {
	return Policy{
		VMIDMin:     100,
		VMIDMax:     999999999,
		ImageRoots:  []string{"/var/lib/blockhost/", "/tmp/"},
		QMPath:      "/usr/sbin/qm",
		UsermodPath: "/usr/sbin/usermod",
	}
}

// CreateAllowedArgs are the flags a caller may pass to `qm create`.
var CreateAllowedArgs = []string{
	"--name", "--memory", "--balloon", "--cores", "--sockets", "--cpu",
	"--numa", "--ostype", "--machine", "--bios", "--scsihw", "--agent",
	"--net0", "--scsi0", "--virtio0", "--ide2", "--efidisk0",
	"--boot", "--bootdisk", "--serial0", "--vga",
	"--ciuser", "--ipconfig0", "--nameserver", "--searchdomain", "--sshkeys",
	"--onboot", "--description", "--tags",
}

// SetAllowedKeys are the keys a caller may pass to `qm set`.
var SetAllowedKeys = []string{
	"name", "memory", "balloon", "cores", "sockets", "cpu",
	"numa", "ostype", "scsihw", "agent",
	"net0", "scsi0", "virtio0", "ide2",
	"boot", "bootdisk", "serial0", "vga",
	"ciuser", "ipconfig0", "nameserver", "searchdomain", "sshkeys",
	"onboot", "description", "tags",
}

// definitions returns the full action table for a policy.
func definitions(p Policy) []*Descriptor {
	vmid := ParamSpec{Key: ParamVMID, Required: true, Validator: validate.VMIDRange{Min: p.VMIDMin, Max: p.VMIDMax}}

	simple := func(name, alias, sub string, timeout time.Duration, extra ...string) *Descriptor {
		return &Descriptor{
			Name:       name,
			Aliases:    []string{alias},
			Kind:       KindSimple,
			Tool:       p.QMPath,
			Subcommand: sub,
			ExtraArgs:  extra,
			Params:     []ParamSpec{vmid},
			Timeout:    timeout,
		}
	}

	createAllowed := validate.NewOneOf(CreateAllowedArgs...)
	setAllowed := validate.NewOneOf(SetAllowedKeys...)

	return []*Descriptor{
		simple("qm-start", "start", "start", 60*time.Second),
		simple("qm-stop", "stop", "stop", 60*time.Second),
		simple("qm-shutdown", "graceful-shutdown", "shutdown", 5*time.Minute),
		simple("qm-destroy", "force-destroy", "destroy", 5*time.Minute, "--purge"),
		simple("qm-template", "convert-to-template", "template", 2*time.Minute),
		simple("qm-status", "status", "status", 15*time.Second),
		{
			Name:       "qm-create",
			Aliases:    []string{"create"},
			Kind:       KindCreate,
			Tool:       p.QMPath,
			Subcommand: "create",
			Params: []ParamSpec{
				vmid,
				{Key: ParamArgs, Validator: validate.FlagPairs{Allowed: createAllowed}},
			},
			Allowed: createAllowed,
			Timeout: 2 * time.Minute,
		},
		{
			Name:       "qm-importdisk",
			Aliases:    []string{"attach-disk"},
			Kind:       KindImportDisk,
			Tool:       p.QMPath,
			Subcommand: "importdisk",
			Params: []ParamSpec{
				vmid,
				{Key: ParamImagePath, Required: true, Validator: validate.PathUnder{Roots: p.ImageRoots}},
				{Key: ParamStorage, Required: true, Validator: validate.Storage()},
			},
			Timeout: 10 * time.Minute,
		},
		{
			Name:       "qm-set",
			Aliases:    []string{"set-configuration"},
			Kind:       KindSet,
			Tool:       p.QMPath,
			Subcommand: "set",
			Params: []ParamSpec{
				vmid,
				{Key: ParamConfig, Required: true, Validator: validate.KeyValues{Allowed: setAllowed}},
			},
			Allowed: setAllowed,
			Timeout: 2 * time.Minute,
		},
		{
			Name:    "user-gecos",
			Aliases: []string{"update-identity-annotation"},
			Kind:    KindGecos,
			Tool:    p.UsermodPath,
			Params: []ParamSpec{
				{Key: ParamUsername, Required: true, Validator: validate.Username()},
				{Key: ParamGecos, Required: true, Validator: validate.Gecos()},
			},
			Timeout: 30 * time.Second,
		},
	}
}
