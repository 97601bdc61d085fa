// SPDX-License-Identifier: MPL-2.0

package envfile

import (
	"fmt"
	"io/fs"
	"maps"

	"github.com/charmbracelet/log"
)

// LoadSource reads a single source from fsys and parses it with the parser
// matching its style. Skipped dotenv lines are reported to logger at debug
// level; logger may be nil.
func LoadSource(fsys fs.FS, src Source, logger *log.Logger) (Mapping, error) {
	content, err := fs.ReadFile(fsys, src.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to read env file '%s': %w", src.Path, err)
	}

	switch src.Style {
	case StyleJSON:
		env, err := ParseJSON(content)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", src.Path, err)
		}
		return env, nil
	case StyleDotenv:
		env, skipped := ParseDotenvLines(content)
		if logger != nil {
			for _, s := range skipped {
				logger.Debug("skipping malformed dotenv line", "file", src.Path, "line", s.Line, "reason", s.Reason)
			}
		}
		return env, nil
	default:
		return nil, fmt.Errorf("%s: %w", src.Path, &InvalidStyleError{Value: src.Style})
	}
}

// Merge loads every source in order and folds the results: a key present in
// a later source replaces the value from any earlier source. Callers must
// pass sources already in precedence order (as returned by Discover).
// The first read or parse failure aborts the merge; no partial mapping is
// returned.
func Merge(sources []Source, fsys fs.FS, logger *log.Logger) (Mapping, error) {
	loaded := make([]Mapping, 0, len(sources))
	for _, src := range sources {
		env, err := LoadSource(fsys, src, logger)
		if err != nil {
			return nil, err
		}
		loaded = append(loaded, env)
	}
	return MergeMappings(loaded...), nil
}

// MergeMappings folds already-parsed mappings left to right, later mappings
// winning on key conflicts.
func MergeMappings(mappings ...Mapping) Mapping {
	merged := make(Mapping)
	for _, m := range mappings {
		maps.Copy(merged, m)
	}
	return merged
}
