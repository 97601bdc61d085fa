// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jaehyunup/envfile/pkg/envfile"

	"gopkg.in/yaml.v3"
)

const (
	FormatDotenv OutputFormat = "dotenv"
	FormatJSON   OutputFormat = "json"
	FormatYAML   OutputFormat = "yaml"
	FormatShell  OutputFormat = "shell"
)

// OutputFormat selects how a mapping is printed.
type OutputFormat string

// String returns the string representation of the OutputFormat.
func (f OutputFormat) String() string { return string(f) }

// formatMapping renders m in the given format. Every format ends with a
// newline unless the mapping is empty.
func formatMapping(m envfile.Mapping, format OutputFormat) (string, error) {
	if len(m) == 0 {
		if format == FormatJSON {
			return "{}\n", nil
		}
		return "", nil
	}

	switch format {
	case FormatDotenv:
		return formatDotenv(m)
	case FormatJSON:
		data, err := json.MarshalIndent(m, "", "  ")
		if err != nil {
			return "", err
		}
		return string(data) + "\n", nil
	case FormatYAML:
		data, err := yaml.Marshal(map[string]string(m))
		if err != nil {
			return "", err
		}
		return string(data), nil
	case FormatShell:
		var sb strings.Builder
		for _, key := range m.Keys() {
			fmt.Fprintf(&sb, "export %s=%s\n", key, shellQuote(m[key]))
		}
		return sb.String(), nil
	default:
		return "", fmt.Errorf("unknown output format %q (expected dotenv, json, yaml or shell)", format)
	}
}

// formatDotenv writes one KEY="value" line per key. A double-quoted value
// is read back verbatim, so no escaping is applied; values that cannot
// survive that dialect are rejected instead of being written corrupted.
func formatDotenv(m envfile.Mapping) (string, error) {
	var sb strings.Builder
	for _, key := range m.Keys() {
		value := m[key]
		if reason := dotenvUnsafe(key, value); reason != "" {
			return "", fmt.Errorf("cannot write %q as dotenv: %s (use --format json or yaml)", key, reason)
		}
		fmt.Fprintf(&sb, "%s=\"%s\"\n", key, value)
	}
	return sb.String(), nil
}

// dotenvUnsafe reports why key=value cannot be written as a dotenv line, or
// "" when it can.
func dotenvUnsafe(key, value string) string {
	switch {
	case strings.Contains(value, "\n"):
		return "value contains a newline"
	case key == "" || key != strings.TrimSpace(key):
		return "name is empty or has surrounding whitespace"
	case strings.ContainsAny(key, "=\n"):
		return "name contains '=' or a newline"
	case strings.HasPrefix(key, "#"), strings.HasPrefix(key, "\uFEFF"):
		return "name starts with '#' or a byte order mark"
	case strings.HasPrefix(key, "export ") || strings.HasPrefix(key, "export\t"):
		return "name starts with the export keyword"
	}
	return ""
}

// shellQuote wraps value in single quotes for POSIX shells.
func shellQuote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", `'\''`) + "'"
}
