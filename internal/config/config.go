// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jaehyunup/envfile/internal/issue"
	"github.com/jaehyunup/envfile/pkg/envfile"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "envfile"
	// ProjectConfigFileName is the config file looked up in the project root.
	ProjectConfigFileName = "envfile.cue"
	// UserConfigFileName is the config file looked up in the user config directory.
	UserConfigFileName = "config.cue"

	// maxConfigFileSize caps how much of a config file is compiled.
	maxConfigFileSize = 1 << 20
)

//go:embed config_schema.cue
var configSchema string

// setting describes one configuration key and its flag and environment variable.
type setting struct {
	key     string
	flag    string
	env     string
	boolean bool
}

var settings = []setting{
	{key: "mode", flag: "mode", env: "ENV_FILE_MODE"},
	{key: "override", flag: "override", env: "ENV_FILE_OVERRIDE", boolean: true},
	{key: "apply_to_all", flag: "apply-to-all", env: "ENV_FILE_APPLY_TO_ALL", boolean: true},
	{key: "task", flag: "task", env: "ENV_FILE_TASK"},
	{key: "policy", flag: "policy", env: "ENV_FILE_POLICY"},
	{key: "priority", flag: "priority", env: "ENV_FILE_PRIORITY"},
	{key: "prefer_base", flag: "prefer-base", env: "ENV_FILE_PREFER_BASE", boolean: true},
	{key: "strict_style", flag: "strict-style", env: "ENV_FILE_STRICT_STYLE", boolean: true},
	{key: "runtime", flag: "runtime", env: "ENV_FILE_RUNTIME"},
	{key: "ui.verbose", flag: "verbose", env: "ENV_FILE_VERBOSE", boolean: true},
}

// ConfigDir returns the user configuration directory, $XDG_CONFIG_HOME/envfile
// on Linux and the platform equivalent elsewhere.
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// EnvVar returns the environment variable that sets key, or "" for unknown keys.
func EnvVar(key string) string {
	for _, s := range settings {
		if s.key == key {
			return s.env
		}
	}
	return ""
}

// FlagName returns the command-line flag that sets key, or "" for unknown keys.
func FlagName(key string) string {
	for _, s := range settings {
		if s.key == key {
			return s.flag
		}
	}
	return ""
}

// ParseBool reads an environment boolean: a case-insensitive "true" is true,
// anything else is false.
func ParseBool(raw string) bool {
	return strings.EqualFold(strings.TrimSpace(raw), "true")
}

// loadWithOptions performs option-driven config loading without mutating
// package-level state.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("mode", string(defaults.Mode))
	v.SetDefault("override", defaults.Override)
	v.SetDefault("apply_to_all", defaults.ApplyToAll)
	v.SetDefault("task", defaults.Task)
	v.SetDefault("policy", string(defaults.Policy))
	v.SetDefault("priority", string(defaults.Priority))
	v.SetDefault("prefer_base", defaults.PreferBase)
	v.SetDefault("strict_style", defaults.StrictStyle)
	v.SetDefault("runtime", string(defaults.Runtime))
	v.SetDefault("ui.verbose", defaults.UI.Verbose)

	origins := make(map[string]Origin)

	// Environment variables sit below the config file, so they are merged first.
	env := opts.Environment
	if env == nil {
		env = envfile.OSEnvironment{}
	}
	envLayer := make(map[string]any)
	for _, s := range settings {
		raw, ok := env.Lookup(s.env)
		if !ok {
			continue
		}
		if s.boolean {
			setNested(envLayer, s.key, ParseBool(raw))
		} else {
			if strings.TrimSpace(raw) == "" {
				continue
			}
			setNested(envLayer, s.key, strings.TrimSpace(raw))
		}
		origins[s.key] = OriginEnv
	}
	if len(envLayer) > 0 {
		if err := v.MergeConfigMap(envLayer); err != nil {
			return nil, fmt.Errorf("failed to merge environment settings: %w", err)
		}
	}

	path, err := configFilePath(opts)
	if err != nil {
		return nil, err
	}
	if path != "" {
		fileMap, err := loadCUEIntoViper(v, path)
		if err != nil {
			return nil, issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(path).
				WithIssue(issue.ConfigLoadFailedId).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Verify the configuration values match the expected schema").
				WithSuggestion("Use 'envfile config show' to see the effective configuration").
				Wrap(err).
				BuildError()
		}
		for _, key := range flattenKeys("", fileMap) {
			origins[key] = OriginFile
		}
	}

	if opts.Flags != nil {
		for _, s := range settings {
			f := opts.Flags.Lookup(s.flag)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(s.key, f); err != nil {
				return nil, fmt.Errorf("failed to bind flag --%s: %w", s.flag, err)
			}
			if f.Changed {
				origins[s.key] = OriginFlag
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.normalize()

	if valid, errs := cfg.IsValid(); !valid {
		errCtx := issue.NewErrorContext().
			WithOperation("validate configuration").
			WithIssue(issue.ConfigLoadFailedId).
			WithSuggestion("Use --runtime virtual or --runtime native").
			Wrap(errors.Join(errs...))
		if origin, ok := origins["runtime"]; ok {
			errCtx.WithResource(fmt.Sprintf("runtime (from %s)", origin))
		}
		return nil, errCtx.BuildError()
	}

	cfg.Path = path
	cfg.Origins = origins
	return &cfg, nil
}

// configFilePath picks the config file to load: an explicit path (which must
// exist), then envfile.cue in the project root, then the user config file.
// It returns "" when no config file exists.
func configFilePath(opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithIssue(issue.ConfigLoadFailedId).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Check that the file exists and is readable").
				Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
				BuildError()
		}
		return opts.ConfigFilePath, nil
	}

	if opts.ProjectRoot != "" {
		projectPath := filepath.Join(opts.ProjectRoot, ProjectConfigFileName)
		if fileExists(projectPath) {
			return projectPath, nil
		}
	}

	if opts.ConfigDirPath != "" {
		userPath := filepath.Join(opts.ConfigDirPath, UserConfigFileName)
		if fileExists(userPath) {
			return userPath, nil
		}
		return "", nil
	}

	// Also searches $XDG_CONFIG_DIRS.
	if userPath, err := xdg.SearchConfigFile(filepath.Join(AppName, UserConfigFileName)); err == nil {
		return userPath, nil
	}
	return "", nil
}

// loadCUEIntoViper parses a CUE file, validates it against the #Config schema,
// and merges its contents into Viper. The decoded map is returned so callers
// can tell which keys the file set.
func loadCUEIntoViper(v *viper.Viper, path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if len(data) > maxConfigFileSize {
		return nil, fmt.Errorf("%s: file size %d bytes exceeds maximum %d bytes", path, len(data), maxConfigFileSize)
	}

	ctx := cuecontext.New()

	schemaValue := ctx.CompileString(configSchema)
	if schemaValue.Err() != nil {
		return nil, fmt.Errorf("internal error: failed to compile config schema: %w", schemaValue.Err())
	}

	userValue := ctx.CompileBytes(data, cue.Filename(path))
	if userValue.Err() != nil {
		return nil, formatCUEError(userValue.Err(), path)
	}

	// Fields are optional, so concreteness is not required.
	schema := schemaValue.LookupPath(cue.ParsePath("#Config"))
	unified := schema.Unify(userValue)
	if err := unified.Validate(cue.Concrete(false)); err != nil {
		return nil, formatCUEError(err, path)
	}

	var configMap map[string]any
	if err := unified.Decode(&configMap); err != nil {
		return nil, formatCUEError(err, path)
	}

	if err := v.MergeConfigMap(configMap); err != nil {
		return nil, fmt.Errorf("failed to merge config: %w", err)
	}

	return configMap, nil
}

// setNested stores value under a dotted key, creating intermediate maps.
func setNested(m map[string]any, key string, value any) {
	parts := strings.Split(key, ".")
	for _, part := range parts[:len(parts)-1] {
		child, ok := m[part].(map[string]any)
		if !ok {
			child = make(map[string]any)
			m[part] = child
		}
		m = child
	}
	m[parts[len(parts)-1]] = value
}

// flattenKeys returns the dotted leaf keys of a nested map.
func flattenKeys(prefix string, m map[string]any) []string {
	var keys []string
	for k, val := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if child, ok := val.(map[string]any); ok {
			keys = append(keys, flattenKeys(key, child)...)
			continue
		}
		keys = append(keys, key)
	}
	return keys
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}
