// SPDX-License-Identifier: MPL-2.0

package envfile

import (
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

type (
	// Options controls a resolution. The zero value selects the canonical
	// defaults: single-winner discovery, dotenv style, local files preferred
	// over base files, JSON priority for merge discovery, preserve-existing
	// override policy and the process environment as ambient environment.
	Options struct {
		// Policy selects single-winner or multi-file discovery.
		Policy Policy
		// Style selects which family is checked first by PolicySingle.
		Style Style
		// StrictStyle restricts PolicySingle to the Style family only.
		StrictStyle bool
		// Priority names the family read last (and therefore winning) by PolicyMerge.
		Priority Style
		// PreferBase makes base files (.env, .env.json) win over their local
		// override variants (.env.local, .env.local.json).
		PreferBase bool
		// Override lets resolved values replace variables already set in the
		// ambient environment.
		Override bool
		// Environment is the ambient environment. Defaults to OSEnvironment.
		Environment EnvironmentReader
		// FS is the filesystem rooted at the project root. Defaults to os.DirFS(root).
		FS fs.FS
		// Logger receives diagnostics. Defaults to a discarding logger.
		Logger *log.Logger
	}

	// Resolution is the outcome of resolving a project root. It is treated as
	// read-only once returned.
	Resolution struct {
		// Root is the resolved project root.
		Root string
		// Sources are the files that were read, in read order.
		Sources []Source
		// Raw is the merged mapping before the override policy.
		Raw Mapping
		// Env is the mapping to inject into tasks.
		Env Mapping
		// Dropped lists keys removed because they were already set in the ambient environment.
		Dropped []string
		// Options are the effective options, defaults applied.
		Options Options
	}
)

// withDefaults fills unset fields with their defaults.
func (o Options) withDefaults() Options {
	if o.Policy == "" {
		o.Policy = PolicySingle
	}
	if o.Style == "" {
		o.Style = StyleDotenv
	}
	if o.Priority == "" {
		o.Priority = StyleJSON
	}
	if o.Environment == nil {
		o.Environment = OSEnvironment{}
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	return o
}

// Resolve discovers, merges and filters the env files under root.
//
// Missing files are not errors: a root without candidates resolves to an
// empty Env. Unreadable files and invalid JSON abort the resolution.
func Resolve(root string, opts Options) (*Resolution, error) {
	opts = opts.withDefaults()
	logger := opts.Logger

	sources, err := Discover(root, opts)
	if err != nil {
		return nil, err
	}

	fsys := opts.FS
	if fsys == nil {
		fsys = os.DirFS(root)
	}

	logger.Info("resolving env files",
		"root", root,
		"policy", opts.Policy,
		"style", opts.Style,
		"priority", opts.Priority,
		"override", opts.Override,
		"files", describeSources(sources),
	)

	for _, src := range sources {
		logger.Info("loading env file", "file", src.Name, "style", src.Style)
	}

	raw, err := Merge(sources, fsys, logger)
	if err != nil {
		return nil, err
	}

	env, dropped := ApplyOverride(raw, opts.Override, opts.Environment)
	if len(dropped) > 0 {
		logger.Debug("keeping ambient values", "keys", dropped)
	}

	return &Resolution{
		Root:    root,
		Sources: sources,
		Raw:     raw,
		Env:     env,
		Dropped: dropped,
		Options: opts,
	}, nil
}

// ResolveEnv is Resolve returning only the injectable mapping.
func ResolveEnv(root string, opts Options) (Mapping, error) {
	res, err := Resolve(root, opts)
	if err != nil {
		return nil, err
	}
	return res.Env, nil
}

func describeSources(sources []Source) string {
	if len(sources) == 0 {
		return "<none>"
	}
	names := make([]string, 0, len(sources))
	for _, s := range sources {
		names = append(names, s.String())
	}
	return strings.Join(names, ",")
}
