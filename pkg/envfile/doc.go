// SPDX-License-Identifier: MPL-2.0

// Package envfile resolves the environment that a project injects into its tasks.
//
// Resolution is a one-shot pipeline over a project root directory:
//
//  1. Discover finds the candidate env files that exist (.env, .env.local,
//     .env.json, .env.local.json) and orders them according to the selected
//     Policy, Style, Priority and PreferBase options.
//  2. Merge reads every Source with the parser matching its Style
//     (ParseDotenv or ParseJSON) and folds the results, later files winning.
//  3. ApplyOverride drops keys already present in the ambient environment
//     unless override mode is enabled.
//
// Resolve runs the whole pipeline and returns a Resolution; ResolveEnv returns
// only the injectable Mapping. A root without any candidate file resolves to an
// empty Mapping without error.
//
// The dotenv dialect is intentionally small: no escape sequences, no variable
// expansion, and '#' starts a comment anywhere in an unquoted value.
package envfile
