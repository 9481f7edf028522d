package action

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/blockhost/rootagent/internal/validate"
)

// Command is the argument vector for one invocation.
// Argv[0] is the program path; no element is ever interpreted by a shell.
type Command struct {
	Argv []string
}

// String renders the command for logs. It is never executed.
func (c Command) String() string {
	quoted := make([]string, len(c.Argv))
	for i, a := range c.Argv {
		if a == "" || strings.ContainsAny(a, " \t\n\"'\\$`;&|<>()*?[]{}~#!") {
			quoted[i] = strconv.Quote(a)
		} else {
			quoted[i] = a
		}
	}
	return strings.Join(quoted, " ")
}

// Values holds normalized parameters keyed by parameter name.
type Values map[string]any

// Build lays out the argv for a descriptor from validated values.
// The tool, subcommand and VMID occupy fixed leading positions; caller
// pairs follow in caller order, flag and value as separate entries.
// Any flag or key outside the descriptor's allowlist is an error.
func Build(d *Descriptor, v Values) (Command, error) {
	switch d.Kind {
	case KindSimple:
		argv, err := leading(d, v)
		if err != nil {
			return Command{}, err
		}
		return Command{Argv: append(argv, d.ExtraArgs...)}, nil

	case KindCreate:
		argv, err := leading(d, v)
		if err != nil {
			return Command{}, err
		}
		pairs, err := pairsOf(v, ParamArgs, false)
		if err != nil {
			return Command{}, err
		}
		return appendPairs(d, argv, ParamArgs, pairs, "")

	case KindSet:
		argv, err := leading(d, v)
		if err != nil {
			return Command{}, err
		}
		pairs, err := pairsOf(v, ParamConfig, true)
		if err != nil {
			return Command{}, err
		}
		return appendPairs(d, argv, ParamConfig, pairs, "--")

	case KindImportDisk:
		argv, err := leading(d, v)
		if err != nil {
			return Command{}, err
		}
		image, err := stringOf(v, ParamImagePath)
		if err != nil {
			return Command{}, err
		}
		storage, err := stringOf(v, ParamStorage)
		if err != nil {
			return Command{}, err
		}
		return Command{Argv: append(argv, image, storage)}, nil

	case KindGecos:
		username, err := stringOf(v, ParamUsername)
		if err != nil {
			return Command{}, err
		}
		gecos, err := stringOf(v, ParamGecos)
		if err != nil {
			return Command{}, err
		}
		return Command{Argv: []string{d.Tool, "-c", gecos, username}}, nil

	default:
		return Command{}, fmt.Errorf("action %s has unsupported kind %d", d.Name, d.Kind)
	}
}

// leading returns tool, subcommand and VMID.
func leading(d *Descriptor, v Values) ([]string, error) {
	id, ok := v[ParamVMID].(int)
	if !ok {
		return nil, &ParamError{Field: ParamVMID, Reason: "not validated"}
	}
	return []string{d.Tool, d.Subcommand, strconv.Itoa(id)}, nil
}

func stringOf(v Values, key string) (string, error) {
	s, ok := v[key].(string)
	if !ok || s == "" {
		return "", &ParamError{Field: key, Reason: "not validated"}
	}
	return s, nil
}

func pairsOf(v Values, key string, required bool) ([]validate.Pair, error) {
	raw, present := v[key]
	if !present {
		if required {
			return nil, &ParamError{Field: key, Missing: true}
		}
		return nil, nil
	}
	pairs, ok := raw.([]validate.Pair)
	if !ok {
		return nil, &ParamError{Field: key, Reason: "not validated"}
	}
	return pairs, nil
}

// appendPairs re-checks every pair against the allowlist and rejects
// repeated flags, then appends flag and value as separate argv entries.
func appendPairs(d *Descriptor, argv []string, field string, pairs []validate.Pair, prefix string) (Command, error) {
	seen := make(map[string]struct{}, len(pairs))
	for _, p := range pairs {
		if !d.Allowed.Contains(p.Flag) {
			return Command{}, &ParamError{Field: field, Reason: fmt.Sprintf("disallowed flag %q", prefix+p.Flag)}
		}
		if _, dup := seen[p.Flag]; dup {
			return Command{}, &ParamError{Field: field, Reason: fmt.Sprintf("flag %q given more than once", prefix+p.Flag)}
		}
		seen[p.Flag] = struct{}{}
		argv = append(argv, prefix+p.Flag, p.Value)
	}
	return Command{Argv: argv}, nil
}
