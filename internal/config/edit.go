package config

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/blockhost/rootagent/internal/clog"
)

// Edit opens the configuration file at path in the user's editor.
// If the file doesn't exist, the default one is created first.
// The editor is determined by the EDITOR environment variable, falling back to "vi".
// After the editor exits, the file is loaded and validated; the validation
// error is returned so the caller can report it, but the edit is kept.
func Edit(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := WriteDefault(path); err != nil {
			return fmt.Errorf("create default config: %w", err)
		}
	}

	if err := openEditor(path); err != nil {
		return err
	}

	if _, err := Load(path); err != nil {
		clog.Warn("config %s has errors after edit: %v", path, err)
		return err
	}
	return nil
}

// openEditor opens the specified file in the user's editor.
func openEditor(path string) error {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi"
	}

	cmd := exec.Command(editor, path) //nolint:gosec // G204: editor chosen by the invoking administrator
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("editor %q failed: %w", editor, err)
	}
	return nil
}
