// SPDX-License-Identifier: MPL-2.0

package envfile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const (
	// DotenvFile is the base dotenv file name.
	DotenvFile = ".env"
	// DotenvLocalFile is the local override dotenv file name.
	DotenvLocalFile = ".env.local"
	// JSONFile is the base JSON file name.
	JSONFile = ".env.json"
	// JSONLocalFile is the local override JSON file name.
	JSONLocalFile = ".env.local.json"
)

// Candidates returns the candidate files for opts in the order Discover checks
// them, without touching the filesystem. Path is left empty.
//
// For PolicySingle the list is in lookup order (the first existing file wins).
// For PolicyMerge it is in read order (the last file wins on key conflicts).
func Candidates(opts Options) []Source {
	opts = opts.withDefaults()

	if opts.Policy == PolicyMerge {
		// The priority family is read last; inside a family the preferred
		// variant is read last.
		first, last := family(opts.Priority.other(), opts.PreferBase), family(opts.Priority, opts.PreferBase)
		return []Source{first[1], first[0], last[1], last[0]}
	}

	candidates := family(opts.Style, opts.PreferBase)
	if !opts.StrictStyle {
		candidates = append(candidates, family(opts.Style.other(), opts.PreferBase)...)
	}
	return candidates
}

// Discover returns the existing candidate env files under root.
//
// Candidates that do not exist, or that exist but are not regular files, are
// skipped without error. Any other stat failure (for example a permission
// error) is returned. With PolicySingle at most one Source is returned; with
// PolicyMerge every existing candidate is returned in read order. Finding no
// file yields an empty slice and a nil error.
func Discover(root string, opts Options) ([]Source, error) {
	opts = opts.withDefaults()

	fsys := opts.FS
	if fsys == nil {
		if err := checkRoot(root); err != nil {
			return nil, err
		}
		fsys = os.DirFS(root)
	}

	candidates := Candidates(opts)
	found := make([]Source, 0, len(candidates))

	for _, c := range candidates {
		c.Path = filepath.Join(root, filepath.FromSlash(c.Name))

		info, err := fs.Stat(fsys, c.Name)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("failed to stat env file '%s': %w", c.Path, err)
		}
		if !info.Mode().IsRegular() {
			opts.Logger.Debug("skipping env file candidate that is not a regular file", "file", c.Path, "mode", info.Mode().String())
			continue
		}

		found = append(found, c)
		if opts.Policy == PolicySingle {
			break
		}
	}

	if len(found) == 0 {
		names := make([]string, 0, len(candidates))
		for _, c := range candidates {
			names = append(names, c.Name)
		}
		opts.Logger.Debug("no env file found", "root", root, "candidates", names)
	}

	return found, nil
}

// family returns the two candidates of a style, preferred variant first.
func family(style Style, preferBase bool) []Source {
	var local, base Source
	switch style {
	case StyleJSON:
		local = Source{Name: JSONLocalFile, Style: StyleJSON}
		base = Source{Name: JSONFile, Style: StyleJSON}
	default:
		local = Source{Name: DotenvLocalFile, Style: StyleDotenv}
		base = Source{Name: DotenvFile, Style: StyleDotenv}
	}

	if preferBase {
		return []Source{base, local}
	}
	return []Source{local, base}
}

func checkRoot(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("root directory does not exist: %s", root)
		}
		return fmt.Errorf("cannot access root directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("root is not a directory: %s", root)
	}
	return nil
}
