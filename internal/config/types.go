// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jaehyunup/envfile/internal/inject"
	"github.com/jaehyunup/envfile/pkg/envfile"
)

const (
	// RuntimeVirtual runs task scripts in the embedded mvdan/sh interpreter.
	RuntimeVirtual RuntimeMode = "virtual"
	// RuntimeNative runs task scripts in the host system shell.
	RuntimeNative RuntimeMode = "native"

	// OriginDefault marks a value that no layer set.
	OriginDefault Origin = "default"
	// OriginEnv marks a value taken from an ENV_FILE_* variable.
	OriginEnv Origin = "env"
	// OriginFile marks a value taken from the config file.
	OriginFile Origin = "file"
	// OriginFlag marks a value taken from a command-line flag.
	OriginFlag Origin = "flag"
)

// ErrInvalidRuntimeMode is the sentinel error wrapped by InvalidRuntimeModeError.
var ErrInvalidRuntimeMode = errors.New("invalid runtime mode")

type (
	// RuntimeMode selects how task scripts are executed.
	RuntimeMode string

	// InvalidRuntimeModeError is returned when a RuntimeMode value is not recognized.
	// It wraps ErrInvalidRuntimeMode for errors.Is() compatibility.
	InvalidRuntimeModeError struct {
		Value RuntimeMode
	}

	// Origin names the layer an effective setting came from.
	Origin string

	// Config holds the effective settings.
	Config struct {
		// Mode is the env file style.
		Mode envfile.Style `json:"mode" mapstructure:"mode"`
		// Override lets resolved values replace ambient variables.
		Override bool `json:"override" mapstructure:"override"`
		// ApplyToAll injects into every exec task.
		ApplyToAll bool `json:"apply_to_all" mapstructure:"apply_to_all"`
		// Task is the exec task that receives the environment when ApplyToAll is off.
		Task string `json:"task" mapstructure:"task"`
		// Policy is the discovery policy.
		Policy envfile.Policy `json:"policy" mapstructure:"policy"`
		// Priority is the family read last by the merge policy.
		Priority envfile.Style `json:"priority" mapstructure:"priority"`
		// PreferBase makes base files win over their local variants.
		PreferBase bool `json:"prefer_base" mapstructure:"prefer_base"`
		// StrictStyle restricts the single policy to the Mode family.
		StrictStyle bool `json:"strict_style" mapstructure:"strict_style"`
		// Runtime selects the task runtime.
		Runtime RuntimeMode `json:"runtime" mapstructure:"runtime"`
		// UI configures the user interface.
		UI UIConfig `json:"ui" mapstructure:"ui"`

		// Path is the config file that was loaded, empty when none was found.
		Path string `json:"-" mapstructure:"-"`
		// Origins maps each key (in dotted form, e.g. "ui.verbose") to the layer it came from.
		Origins map[string]Origin `json:"-" mapstructure:"-"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// Verbose enables debug logging and error chains
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}
)

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Mode:       envfile.StyleDotenv,
		Override:   false,
		ApplyToAll: true,
		Task:       "bootRun",
		Policy:     envfile.PolicySingle,
		Priority:   envfile.StyleJSON,
		Runtime:    RuntimeVirtual,
	}
}

// Keys returns every setting key in display order.
func Keys() []string {
	return []string{
		"mode",
		"override",
		"apply_to_all",
		"task",
		"policy",
		"priority",
		"prefer_base",
		"strict_style",
		"runtime",
		"ui.verbose",
	}
}

// Value returns the effective value of key formatted for display.
func (c *Config) Value(key string) string {
	switch key {
	case "mode":
		return string(c.Mode)
	case "override":
		return fmt.Sprint(c.Override)
	case "apply_to_all":
		return fmt.Sprint(c.ApplyToAll)
	case "task":
		return c.Task
	case "policy":
		return string(c.Policy)
	case "priority":
		return string(c.Priority)
	case "prefer_base":
		return fmt.Sprint(c.PreferBase)
	case "strict_style":
		return fmt.Sprint(c.StrictStyle)
	case "runtime":
		return string(c.Runtime)
	case "ui.verbose":
		return fmt.Sprint(c.UI.Verbose)
	default:
		return ""
	}
}

// String returns the string representation of the Origin.
func (o Origin) String() string { return string(o) }

// Origin returns the layer key came from.
func (c *Config) Origin(key string) Origin {
	if o, ok := c.Origins[key]; ok {
		return o
	}
	return OriginDefault
}

// Options converts the settings into resolution options. The caller fills
// in Environment, FS and Logger.
func (c *Config) Options() envfile.Options {
	return envfile.Options{
		Policy:      c.Policy,
		Style:       c.Mode,
		StrictStyle: c.StrictStyle,
		Priority:    c.Priority,
		PreferBase:  c.PreferBase,
		Override:    c.Override,
	}
}

// Selector converts the settings into the task selection rules.
func (c *Config) Selector() inject.Selector {
	return inject.Selector{
		ApplyToAll: c.ApplyToAll,
		TaskName:   c.Task,
	}
}

// normalize maps lenient spellings onto canonical values.
func (c *Config) normalize() {
	c.Mode = envfile.ParseStyle(string(c.Mode))
	c.Priority = envfile.ParseStyle(string(c.Priority))
	c.Policy = envfile.ParsePolicy(string(c.Policy))
	c.Runtime = RuntimeMode(strings.ToLower(strings.TrimSpace(string(c.Runtime))))
}

// IsValid returns whether the Config has valid fields.
func (c *Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.Runtime.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Mode.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Priority.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Policy.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	return len(errs) == 0, errs
}

// String returns the string representation of the RuntimeMode.
func (m RuntimeMode) String() string { return string(m) }

// IsValid returns whether the RuntimeMode is one of the defined runtime modes.
func (m RuntimeMode) IsValid() (bool, []error) {
	switch m {
	case RuntimeVirtual, RuntimeNative:
		return true, nil
	default:
		return false, []error{&InvalidRuntimeModeError{Value: m}}
	}
}

// Error implements the error interface for InvalidRuntimeModeError.
func (e *InvalidRuntimeModeError) Error() string {
	return fmt.Sprintf("invalid runtime mode %q (valid: virtual, native)", e.Value)
}

// Unwrap returns ErrInvalidRuntimeMode for errors.Is() compatibility.
func (e *InvalidRuntimeModeError) Unwrap() error { return ErrInvalidRuntimeMode }
