// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"

	"github.com/jaehyunup/envfile/pkg/envfile"

	"github.com/spf13/pflag"
)

// LoadOptions defines explicit configuration loading inputs.
type LoadOptions struct {
	// ConfigFilePath forces loading from a specific config file when set.
	ConfigFilePath string
	// ProjectRoot is searched for envfile.cue before the user config directory.
	ProjectRoot string
	// ConfigDirPath overrides the user config directory lookup when set.
	ConfigDirPath string
	// Environment supplies the ENV_FILE_* variables. Defaults to the process environment.
	Environment envfile.EnvironmentReader
	// Flags are bound on top of every other layer; only flags the user set take effect.
	Flags *pflag.FlagSet
}

// Provider loads configuration from explicit options.
type Provider interface {
	Load(ctx context.Context, opts LoadOptions) (*Config, error)
}

type fileProvider struct{}

// NewProvider creates a configuration provider.
func NewProvider() Provider {
	return &fileProvider{}
}

// Load reads configuration from the requested sources.
func (p *fileProvider) Load(ctx context.Context, opts LoadOptions) (*Config, error) {
	return loadWithOptions(ctx, opts)
}
