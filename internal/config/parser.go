package config

import (
	"context"
	"os"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"

	"github.com/alexisbeaulieu97/tagsync/internal/ports"
	tagsyncerrors "github.com/alexisbeaulieu97/tagsync/pkg/errors"
)

// ParseConfig loads a configuration file from disk, merges it over
// Defaults(), validates the result, and returns it.
func ParseConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, tagsyncerrors.NewParseError(path, 0, err)
	}

	cfg := Defaults()
	var loaded Config
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return nil, tagsyncerrors.NewParseError(path, 0, err)
	}
	if err := mergo.Merge(&cfg, loaded, mergo.WithOverride); err != nil {
		return nil, tagsyncerrors.NewParseError(path, 0, err)
	}

	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ToSessionConfig converts the loaded document into the ports.SessionConfig
// application code consumes.
func (c Config) ToSessionConfig() ports.SessionConfig {
	return ports.SessionConfig{
		InterRequestDelayMS: c.InterRequestDelayMS,
		MaxRetries:          c.MaxRetries,
		BackoffBaseMS:       c.BackoffBaseMS,
		BackoffCapMS:        c.BackoffCapMS,
		CacheTTLSeconds:     c.CacheTTLSeconds,
		KnownTemplateEvents: c.KnownTemplateEvents,
		NamePrefix:          c.NamePrefix,
		NameSuffix:          c.NameSuffix,
	}
}

// Loader adapts ParseConfig to the ports.ConfigLoader interface.
type Loader struct{}

// NewLoader constructs a Loader.
func NewLoader() *Loader { return &Loader{} }

func (l *Loader) Load(_ context.Context, path string) (ports.SessionConfig, error) {
	cfg, err := ParseConfig(path)
	if err != nil {
		return ports.SessionConfig{}, err
	}
	return cfg.ToSessionConfig(), nil
}

func (l *Loader) Validate(_ context.Context, path string) error {
	_, err := ParseConfig(path)
	return err
}

var _ ports.ConfigLoader = (*Loader)(nil)
