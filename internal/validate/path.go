package validate

import (
	"os"
	"path/filepath"
	"strings"
)

// PathUnder validates a file path that must reside beneath one of a fixed
// set of root directories and name an existing regular file.
//
// Symlinks are resolved before the prefix check, so a link placed under
// an allowed root cannot point the tool at a file elsewhere. The check is
// performed at dispatch time and the result is consumed immediately.
type PathUnder struct {
	Roots []string
}

// Validate returns the cleaned, symlink-resolved path.
func (p PathUnder) Validate(raw any) (any, error) {
	path, err := String(raw)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return nil, reject("path is empty")
	}
	if strings.ContainsRune(path, 0) {
		return nil, reject("path contains NUL byte")
	}
	if !filepath.IsAbs(path) {
		return nil, reject("path must be absolute: %q", path)
	}

	clean := filepath.Clean(path)
	if !p.under(clean) {
		return nil, reject("path must be under %s: %q", strings.Join(p.Roots, " or "), path)
	}

	resolved, err := filepath.EvalSymlinks(clean)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, reject("file not found: %q", path)
		}
		return nil, reject("resolve %q: %v", path, err)
	}
	if !p.under(resolved) {
		return nil, reject("path resolves outside allowed roots: %q", path)
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return nil, reject("stat %q: %v", path, err)
	}
	if !info.Mode().IsRegular() {
		return nil, reject("not a regular file: %q", path)
	}
	return resolved, nil
}

// under reports whether path is strictly beneath one of the roots.
// A root is matched both as given and with its own symlinks resolved.
func (p PathUnder) under(path string) bool {
	for _, root := range p.Roots {
		for _, r := range rootForms(root) {
			if strings.HasPrefix(path, r+string(filepath.Separator)) {
				return true
			}
		}
	}
	return false
}

func rootForms(root string) []string {
	clean := filepath.Clean(root)
	forms := []string{clean}
	if resolved, err := filepath.EvalSymlinks(clean); err == nil && resolved != clean {
		forms = append(forms, resolved)
	}
	return forms
}
