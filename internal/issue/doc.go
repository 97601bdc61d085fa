// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// ActionableError carries the failed operation, the resource involved and
// remediation hints. Errors can point at an entry of the markdown issue
// catalogue (see Get), which the CLI renders with glamour in verbose mode.
package issue
