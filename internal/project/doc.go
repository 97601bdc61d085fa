// SPDX-License-Identifier: MPL-2.0

// Package project discovers the tasks declared in tasks.toml files across a
// project tree. The root directory is the root project; every subdirectory
// holding a tasks.toml is a subproject addressed by its slash-separated path.
package project
