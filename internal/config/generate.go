// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrConfigExists is returned by WriteProjectConfig when the file already exists.
var ErrConfigExists = errors.New("config file already exists")

// GenerateCUE generates a CUE representation of the configuration.
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// envfile configuration\n")
	sb.WriteString("// Precedence: flags > this file > ENV_FILE_* variables > defaults.\n\n")

	fmt.Fprintf(&sb, "mode: %q\n", cfg.Mode)
	fmt.Fprintf(&sb, "override: %v\n", cfg.Override)
	fmt.Fprintf(&sb, "apply_to_all: %v\n", cfg.ApplyToAll)
	fmt.Fprintf(&sb, "task: %q\n", cfg.Task)
	fmt.Fprintf(&sb, "policy: %q\n", cfg.Policy)
	fmt.Fprintf(&sb, "priority: %q\n", cfg.Priority)
	fmt.Fprintf(&sb, "prefer_base: %v\n", cfg.PreferBase)
	fmt.Fprintf(&sb, "strict_style: %v\n", cfg.StrictStyle)
	fmt.Fprintf(&sb, "runtime: %q\n", cfg.Runtime)

	sb.WriteString("\nui: {\n")
	fmt.Fprintf(&sb, "\tverbose: %v\n", cfg.UI.Verbose)
	sb.WriteString("}\n")

	return sb.String()
}

// WriteProjectConfig writes cfg as envfile.cue into root and returns the path.
// An existing file is only replaced when force is set.
func WriteProjectConfig(root string, cfg *Config, force bool) (string, error) {
	path := filepath.Join(root, ProjectConfigFileName)

	if !force {
		if _, err := os.Stat(path); err == nil {
			return path, fmt.Errorf("%s: %w", path, ErrConfigExists)
		}
	}

	if err := os.WriteFile(path, []byte(GenerateCUE(cfg)), 0o644); err != nil {
		return path, fmt.Errorf("failed to write config file: %w", err)
	}
	return path, nil
}
