package action

import (
	"fmt"
	"path/filepath"
)

// Registry maps action names and aliases to descriptors.
// It is read-only after NewRegistry returns and safe for concurrent use.
type Registry struct {
	byName      map[string]*Descriptor
	descriptors []*Descriptor
}

// NewRegistry builds the action table for a policy.
// It fails if the policy cannot produce a usable table.
func NewRegistry(p Policy) (*Registry, error) {
	if p.VMIDMin < 0 || p.VMIDMax < p.VMIDMin {
		return nil, fmt.Errorf("invalid vmid range %d-%d", p.VMIDMin, p.VMIDMax)
	}
	if !filepath.IsAbs(p.QMPath) {
		return nil, fmt.Errorf("qm path must be absolute: %q", p.QMPath)
	}
	if !filepath.IsAbs(p.UsermodPath) {
		return nil, fmt.Errorf("usermod path must be absolute: %q", p.UsermodPath)
	}
	for _, root := range p.ImageRoots {
		if !filepath.IsAbs(root) || filepath.Clean(root) == "/" {
			return nil, fmt.Errorf("image root must be an absolute directory other than /: %q", root)
		}
	}

	r := &Registry{byName: make(map[string]*Descriptor)}
	for _, d := range definitions(p) {
		if t, ok := p.Timeouts[d.Name]; ok {
			if t <= 0 {
				return nil, fmt.Errorf("timeout for %s must be positive", d.Name)
			}
			d.Timeout = t
		}
		for _, name := range append([]string{d.Name}, d.Aliases...) {
			if _, dup := r.byName[name]; dup {
				return nil, fmt.Errorf("duplicate action name %q", name)
			}
			r.byName[name] = d
		}
		r.descriptors = append(r.descriptors, d)
	}

	for name := range p.Timeouts {
		if d, ok := r.byName[name]; !ok || d.Name != name {
			return nil, fmt.Errorf("timeout override for unknown action %q", name)
		}
	}
	return r, nil
}

// Describe returns the descriptor for an action name or alias.
func (r *Registry) Describe(name string) (*Descriptor, error) {
	d, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, name)
	}
	return d, nil
}

// Descriptors returns every action in table order.
func (r *Registry) Descriptors() []*Descriptor {
	return append([]*Descriptor{}, r.descriptors...)
}
