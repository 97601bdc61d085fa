// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
)

func TestWriteProject(t *testing.T) {
	t.Parallel()

	root := WriteProject(t, map[string]string{
		".env":           "A=1\n",
		"api/tasks.toml": "[[task]]\n",
	})

	for name, want := range map[string]string{".env": "A=1\n", "api/tasks.toml": "[[task]]\n"} {
		data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(name)))
		if err != nil {
			t.Fatalf("failed to read %s: %v", name, err)
		}
		if string(data) != want {
			t.Errorf("%s = %q, want %q", name, data, want)
		}
	}
}

func TestMustMkdirAll(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "a", "b")
	MustMkdirAll(t, dir)

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Fatalf("MustMkdirAll did not create %s: %v", dir, err)
	}
}

func TestSetConfigHome(t *testing.T) {
	dir := t.TempDir()
	SetConfigHome(t, dir)

	if xdg.ConfigHome != dir {
		t.Errorf("xdg.ConfigHome = %q, want %q", xdg.ConfigHome, dir)
	}
}
