// SPDX-License-Identifier: MPL-2.0

// Package runner executes task scripts with the task environment overlaid on
// the host environment.
//
// Two runtimes are available: "virtual" interprets the script with the
// embedded mvdan/sh POSIX shell and works the same on every platform;
// "native" hands the script to the host shell.
package runner
