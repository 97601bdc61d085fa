// SPDX-License-Identifier: MPL-2.0

// Package config loads the envfile settings using Viper with CUE as the file format.
//
// Settings are layered, highest precedence first: command-line flags, the
// config file (envfile.cue in the project root, else config.cue in the XDG
// config directory), ENV_FILE_* environment variables and built-in defaults.
// Config files are validated against an embedded CUE schema (config_schema.cue).
package config
