package ports

import "context"

// SessionConfig is the user-tunable knobs for one replication run, spec.md
// §4.8/§7: the Builder's pacing, the Backend Adapter's cache TTL, and a
// known-template-event table.
type SessionConfig struct {
	InterRequestDelayMS int
	MaxRetries          int
	BackoffBaseMS       int
	BackoffCapMS        int
	CacheTTLSeconds     int
	KnownTemplateEvents map[string]string
	NamePrefix          string
	NameSuffix          string
}

// ConfigLoader loads a SessionConfig from an external source (filesystem,
// embedded default, remote). Implementations must be deterministic, respect
// context cancellation, and translate infrastructure failures into
// entity.ReplicationError values.
type ConfigLoader interface {
	// Load materializes a fully validated SessionConfig from path.
	Load(ctx context.Context, path string) (SessionConfig, error)

	// Validate performs the same parse+validate as Load but discards the
	// result, for a quick syntax check without a full run.
	Validate(ctx context.Context, path string) error
}
