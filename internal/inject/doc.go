// SPDX-License-Identifier: MPL-2.0

// Package inject decides which tasks receive the resolved env file mapping
// and merges it into their environment.
package inject
