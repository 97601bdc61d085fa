// SPDX-License-Identifier: MPL-2.0

package envfile

import (
	"os"
	"slices"
	"strings"
)

type (
	// EnvironmentReader gives read access to an ambient environment.
	EnvironmentReader interface {
		// IsSet reports whether key has a value, including the empty string.
		IsSet(key string) bool
		// Lookup returns the value of key and whether it is set.
		Lookup(key string) (string, bool)
	}

	// OSEnvironment reads the environment of the current process.
	OSEnvironment struct{}

	// MapEnvironment is a fixed environment snapshot.
	MapEnvironment map[string]string
)

// IsSet implements EnvironmentReader.
func (OSEnvironment) IsSet(key string) bool {
	_, ok := os.LookupEnv(key)
	return ok
}

// Lookup implements EnvironmentReader.
func (OSEnvironment) Lookup(key string) (string, bool) {
	return os.LookupEnv(key)
}

// IsSet implements EnvironmentReader.
func (m MapEnvironment) IsSet(key string) bool {
	_, ok := m[key]
	return ok
}

// Lookup implements EnvironmentReader.
func (m MapEnvironment) Lookup(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// EnvironmentFromList builds a MapEnvironment from KEY=VALUE entries such as
// those returned by os.Environ. Entries without '=' are ignored. A leading
// '=' is part of the name (Windows uses names like "=C:").
func EnvironmentFromList(entries []string) MapEnvironment {
	env := make(MapEnvironment, len(entries))
	for _, entry := range entries {
		idx := strings.IndexByte(entry, '=')
		if idx == 0 {
			idx = strings.IndexByte(entry[1:], '=')
			if idx >= 0 {
				idx++
			}
		}
		if idx < 0 {
			continue
		}
		env[entry[:idx]] = entry[idx+1:]
	}
	return env
}

// ApplyOverride decides which resolved keys may be injected.
//
// In override mode the mapping is returned unchanged (as a copy): every key
// will replace whatever the ambient environment holds. Otherwise
// (preserve-existing mode) every key already set in env is dropped, so an
// explicitly set ambient variable is never overwritten. The dropped keys are
// returned in sorted order.
func ApplyOverride(m Mapping, override bool, env EnvironmentReader) (Mapping, []string) {
	if override {
		return m.Clone(), nil
	}

	kept := make(Mapping, len(m))
	var dropped []string
	for k, v := range m {
		if env.IsSet(k) {
			dropped = append(dropped, k)
			continue
		}
		kept[k] = v
	}
	slices.Sort(dropped)
	return kept, dropped
}
