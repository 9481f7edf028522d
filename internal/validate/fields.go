package validate

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Patterns for string fields. All are anchored at both ends.
var (
	// StoragePattern matches a Proxmox storage identifier.
	StoragePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

	// UsernamePattern matches a POSIX-style login name.
	UsernamePattern = regexp.MustCompile(`^[a-z_][a-z0-9_-]{0,31}$`)

	// GecosPattern matches one or two key=value annotations, e.g.
	// "wallet=0xabc123,nft=42". Values are alphanumeric and bounded.
	GecosPattern = regexp.MustCompile(`^[a-z][a-z0-9_]{0,15}=[A-Za-z0-9]{1,128}(,[a-z][a-z0-9_]{0,15}=[A-Za-z0-9]{1,128})?$`)
)

// VMIDRange validates a VM identifier against an inclusive range.
type VMIDRange struct {
	Min int
	Max int
}

// Validate accepts a JSON number, an integer, or a decimal string and
// returns the identifier as an int.
func (r VMIDRange) Validate(raw any) (any, error) {
	var s string
	switch v := raw.(type) {
	case int:
		return r.check(int64(v))
	case int64:
		return r.check(v)
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return nil, reject("vmid must be an integer, got %v", v)
		}
		if v < float64(r.Min) || v > float64(r.Max) {
			return nil, reject("vmid %v outside allowed range %d-%d", v, r.Min, r.Max)
		}
		return r.check(int64(v))
	case json.Number:
		s = v.String()
	case string:
		s = v
	default:
		return nil, reject("vmid must be an integer, got %s", typeName(raw))
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, reject("vmid must be a base-10 integer, got %q", s)
	}
	return r.check(n)
}

func (r VMIDRange) check(n int64) (any, error) {
	if n < int64(r.Min) || n > int64(r.Max) {
		return nil, reject("vmid %d outside allowed range %d-%d", n, r.Min, r.Max)
	}
	return int(n), nil
}

// String renders the range as "min-max".
func (r VMIDRange) String() string {
	return fmt.Sprintf("%d-%d", r.Min, r.Max)
}

// Pattern validates that a string parameter matches an anchored regex.
type Pattern struct {
	// What names the field category in error messages ("storage name").
	What string
	Re   *regexp.Regexp
}

// Validate returns the string unchanged if it matches.
func (p Pattern) Validate(raw any) (any, error) {
	s, err := String(raw)
	if err != nil {
		return nil, err
	}
	if !p.Re.MatchString(s) {
		return nil, reject("invalid %s: %q", p.What, s)
	}
	return s, nil
}

// Storage validates a storage-pool name.
func Storage() Validator {
	return Pattern{What: "storage name", Re: StoragePattern}
}

// Username validates an account name.
func Username() Validator {
	return Pattern{What: "username", Re: UsernamePattern}
}

// Gecos validates a structured GECOS annotation.
func Gecos() Validator {
	return Pattern{What: "gecos annotation", Re: GecosPattern}
}

// OneOf validates membership in a closed set of strings.
type OneOf map[string]struct{}

// NewOneOf builds a OneOf from its members.
func NewOneOf(members ...string) OneOf {
	set := make(OneOf, len(members))
	for _, m := range members {
		set[m] = struct{}{}
	}
	return set
}

// Contains reports whether s is in the set.
func (o OneOf) Contains(s string) bool {
	_, ok := o[s]
	return ok
}

// Validate returns the string if it is a member.
func (o OneOf) Validate(raw any) (any, error) {
	s, err := String(raw)
	if err != nil {
		return nil, err
	}
	if !o.Contains(s) {
		return nil, reject("%q is not allowed", s)
	}
	return s, nil
}

// FlagValue validates a value that will follow a flag on the command line.
// The value is rendered from a scalar, must be non-empty, must not contain
// control characters, and must not begin with '-' so the tool cannot
// mistake it for another flag.
func FlagValue(raw any) (string, error) {
	s, err := Scalar(raw)
	if err != nil {
		return "", err
	}
	if s == "" {
		return "", reject("value is empty")
	}
	if strings.HasPrefix(s, "-") {
		return "", reject("value %q must not begin with '-'", s)
	}
	if i := strings.IndexFunc(s, unicode.IsControl); i >= 0 {
		return "", reject("value contains control character at offset %d", i)
	}
	return s, nil
}
