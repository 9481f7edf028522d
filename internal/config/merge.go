package config

import "github.com/blockhost/rootagent/internal/validate"

// Overrides holds command-line settings that take precedence over the
// configuration file. Zero values leave the file's setting in place.
type Overrides struct {
	SocketPath string
	VMIDRange  *validate.VMIDRange
	// ImageRoots are added to the configured roots.
	ImageRoots []string
	Debug      bool
}

// Apply merges the overrides into cfg. The result should be validated
// again, since an override may conflict with the rest of the file.
func (o Overrides) Apply(cfg *Config) {
	if o.SocketPath != "" {
		cfg.Socket.Path = o.SocketPath
	}
	if o.VMIDRange != nil {
		cfg.Policy.VMIDMin = o.VMIDRange.Min
		cfg.Policy.VMIDMax = o.VMIDRange.Max
	}
	if len(o.ImageRoots) > 0 {
		cfg.Policy.ImageRoots = MergeImageRoots(cfg.Policy.ImageRoots, o.ImageRoots)
	}
	if o.Debug {
		cfg.Log.Level = "debug"
	}
}

// MergeImageRoots combines two root lists, dropping duplicates while
// keeping first-seen order.
func MergeImageRoots(base, extra []string) []string {
	if len(base) == 0 && len(extra) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(base)+len(extra))
	result := make([]string, 0, len(base)+len(extra))
	for _, list := range [][]string{base, extra} {
		for _, root := range list {
			if !seen[root] {
				seen[root] = true
				result = append(result, root)
			}
		}
	}
	return result
}
