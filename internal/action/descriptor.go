// Package action implements the validation-and-dispatch pipeline of the
// root agent: the closed registry of actions, the argv builder, and the
// dispatcher that ties them to a process executor.
package action

import (
	"sort"
	"time"

	"github.com/blockhost/rootagent/internal/validate"
)

// Kind selects how the builder lays out an action's command line.
// The set is closed; Build switches over it exhaustively.
type Kind int

const (
	// KindSimple is `<tool> <subcommand> <vmid> [extra args...]`.
	KindSimple Kind = iota
	// KindCreate is `<tool> create <vmid> [flag value]...` from caller pairs.
	KindCreate
	// KindImportDisk is `<tool> importdisk <vmid> <image> <storage>`.
	KindImportDisk
	// KindSet is `<tool> set <vmid> [--key value]...` from a caller object.
	KindSet
	// KindGecos is `<tool> -c <gecos> <username>`.
	KindGecos
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindSimple:
		return "simple"
	case KindCreate:
		return "create"
	case KindImportDisk:
		return "importdisk"
	case KindSet:
		return "set"
	case KindGecos:
		return "gecos"
	default:
		return "unknown"
	}
}

// Parameter keys used on the wire.
const (
	ParamVMID      = "vmid"
	ParamArgs      = "args"
	ParamConfig    = "config"
	ParamImagePath = "image_path"
	ParamStorage   = "storage"
	ParamUsername  = "username"
	ParamGecos     = "gecos"
)

// ParamSpec describes one accepted parameter.
type ParamSpec struct {
	Key       string
	Required  bool
	Validator validate.Validator
}

// Descriptor is the static description of one action.
// Descriptors are built once by NewRegistry and never mutated.
type Descriptor struct {
	Name    string
	Aliases []string
	Kind    Kind

	// Tool is the absolute path of the program to run.
	Tool string
	// Subcommand is the fixed first argument, if any.
	Subcommand string
	// ExtraArgs are appended after the VMID for simple actions.
	ExtraArgs []string

	Params []ParamSpec
	// Allowed is the closed set of flags (create) or keys (set) the
	// caller may supply. Empty for actions that take no pairs.
	Allowed validate.OneOf

	Timeout time.Duration
}

// param returns the spec for key.
func (d *Descriptor) param(key string) (ParamSpec, bool) {
	for _, p := range d.Params {
		if p.Key == key {
			return p, true
		}
	}
	return ParamSpec{}, false
}

// AllowedList returns the allowlist sorted, for display.
func (d *Descriptor) AllowedList() []string {
	out := make([]string, 0, len(d.Allowed))
	for k := range d.Allowed {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
