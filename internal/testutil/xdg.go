// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"testing"

	"github.com/adrg/xdg"
)

// SetConfigHome points XDG_CONFIG_HOME at dir for the duration of the test
// and reloads the cached xdg base directories. Tests using it must not run
// in parallel.
func SetConfigHome(t *testing.T, dir string) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", dir)
	xdg.Reload()
	t.Cleanup(xdg.Reload)
}
