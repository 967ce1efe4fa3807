// Package config loads and validates the session configuration spec.md
// §4.8/§7 describes: Builder pacing, the Backend Adapter's cache TTL, and
// a known-template-event table. It is grounded on the teacher's
// internal/config package - gopkg.in/yaml.v3 for decoding and
// go-playground/validator/v10 for struct-tag validation - generalized from
// pipeline/step documents to a single flat settings document, with
// dario.cat/mergo filling in any field a user config omits from Defaults().
package config

// Config is the on-disk session configuration document.
type Config struct {
	Version             string            `yaml:"version" validate:"required,semver"`
	InterRequestDelayMS int               `yaml:"inter_request_delay_ms,omitempty" validate:"omitempty,min=0,max=600000"`
	MaxRetries          int               `yaml:"max_retries,omitempty" validate:"omitempty,min=0,max=10"`
	BackoffBaseMS       int               `yaml:"backoff_base_ms,omitempty" validate:"omitempty,min=1"`
	BackoffCapMS        int               `yaml:"backoff_cap_ms,omitempty" validate:"omitempty,min=1"`
	CacheTTLSeconds     int               `yaml:"cache_ttl_seconds,omitempty" validate:"omitempty,min=0,max=3600"`
	NamePrefix          string            `yaml:"name_prefix,omitempty"`
	NameSuffix          string            `yaml:"name_suffix,omitempty"`
	KnownTemplateEvents map[string]string `yaml:"known_template_events,omitempty" validate:"omitempty,dive,keys,required,endkeys,required"`
}

// Defaults returns spec.md §4.8's documented defaults, the base mergo merges
// a loaded Config on top of so a user file need only set the fields it
// wants to override.
func Defaults() Config {
	return Config{
		Version:             "1",
		InterRequestDelayMS: 4000,
		MaxRetries:          3,
		BackoffBaseMS:       1000,
		BackoffCapMS:        60000,
		CacheTTLSeconds:     60,
	}
}
