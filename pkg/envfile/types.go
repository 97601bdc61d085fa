// SPDX-License-Identifier: MPL-2.0

package envfile

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

const (
	// StyleDotenv selects the line-oriented KEY=VALUE format.
	StyleDotenv Style = "dotenv"
	// StyleJSON selects the flat JSON object format.
	StyleJSON Style = "json"

	// PolicySingle checks an ordered candidate list and loads only the first existing file.
	PolicySingle Policy = "single"
	// PolicyMerge loads every existing candidate and merges them, later files winning.
	PolicyMerge Policy = "merge"
)

var (
	// ErrInvalidStyle is the sentinel error wrapped by InvalidStyleError.
	ErrInvalidStyle = errors.New("invalid env file style")
	// ErrInvalidPolicy is the sentinel error wrapped by InvalidPolicyError.
	ErrInvalidPolicy = errors.New("invalid discovery policy")
)

type (
	// Style identifies an env file format. It decides both which parser is
	// used and which file names belong to a candidate family.
	Style string

	// InvalidStyleError is returned when a Style value is not recognized.
	// It wraps ErrInvalidStyle for errors.Is() compatibility.
	InvalidStyleError struct {
		Value Style
	}

	// Policy selects how candidate files are discovered.
	Policy string

	// InvalidPolicyError is returned when a Policy value is not recognized.
	// It wraps ErrInvalidPolicy for errors.Is() compatibility.
	InvalidPolicyError struct {
		Value Policy
	}

	// Source is a candidate env file that was confirmed to exist as a regular
	// file at discovery time.
	Source struct {
		// Path is the file path joined with the root directory, used for display and errors.
		Path string
		// Name is the slash-separated file name relative to the root, used to read
		// the file through an fs.FS.
		Name string
		// Style selects the parser for this file.
		Style Style
	}

	// Mapping holds resolved environment variables. Keys are never blank;
	// values may be empty.
	Mapping map[string]string
)

// ParseStyle maps a user-supplied style name onto a Style.
// It accepts the case-insensitive aliases dotenv, env, properties and props
// for StyleDotenv and json for StyleJSON. Unrecognized values fall back to
// StyleDotenv.
func ParseStyle(raw string) Style {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "json":
		return StyleJSON
	default:
		// "dotenv", "env", "properties", "props" and anything unknown.
		return StyleDotenv
	}
}

// String returns the string representation of the Style.
func (s Style) String() string { return string(s) }

// IsValid returns whether the Style is one of the defined styles.
func (s Style) IsValid() (bool, []error) {
	switch s {
	case StyleDotenv, StyleJSON:
		return true, nil
	default:
		return false, []error{&InvalidStyleError{Value: s}}
	}
}

// other returns the style of the opposite candidate family.
func (s Style) other() Style {
	if s == StyleJSON {
		return StyleDotenv
	}
	return StyleJSON
}

// Error implements the error interface for InvalidStyleError.
func (e *InvalidStyleError) Error() string {
	return fmt.Sprintf("invalid env file style %q (valid: dotenv, json)", e.Value)
}

// Unwrap returns ErrInvalidStyle for errors.Is() compatibility.
func (e *InvalidStyleError) Unwrap() error { return ErrInvalidStyle }

// ParsePolicy maps a user-supplied policy name onto a Policy.
// "single" and "first" select PolicySingle; "merge" and "multi" select
// PolicyMerge. Unrecognized values fall back to PolicySingle.
func ParsePolicy(raw string) Policy {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "merge", "multi":
		return PolicyMerge
	default:
		return PolicySingle
	}
}

// String returns the string representation of the Policy.
func (p Policy) String() string { return string(p) }

// IsValid returns whether the Policy is one of the defined policies.
func (p Policy) IsValid() (bool, []error) {
	switch p {
	case PolicySingle, PolicyMerge:
		return true, nil
	default:
		return false, []error{&InvalidPolicyError{Value: p}}
	}
}

// Error implements the error interface for InvalidPolicyError.
func (e *InvalidPolicyError) Error() string {
	return fmt.Sprintf("invalid discovery policy %q (valid: single, merge)", e.Value)
}

// Unwrap returns ErrInvalidPolicy for errors.Is() compatibility.
func (e *InvalidPolicyError) Unwrap() error { return ErrInvalidPolicy }

// String renders the source as name:style, the form used in detection logs.
func (s Source) String() string {
	return s.Name + ":" + string(s.Style)
}

// Keys returns the mapping keys in sorted order.
func (m Mapping) Keys() []string {
	return slices.Sorted(maps.Keys(m))
}

// Clone returns a shallow copy of the mapping. Cloning a nil mapping yields
// an empty, non-nil mapping.
func (m Mapping) Clone() Mapping {
	out := make(Mapping, len(m))
	maps.Copy(out, m)
	return out
}

// Environ returns the mapping as KEY=VALUE pairs sorted by key, the form
// expected by os/exec and the virtual shell.
func (m Mapping) Environ() []string {
	keys := m.Keys()
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+m[k])
	}
	return out
}
