package config

import "context"

// Loader is the interface for a format-specific settings loader.
type Loader interface {
	// Load reads every settings file under paths and overlays them, in order,
	// onto base. Paths that do not exist are skipped.
	Load(ctx context.Context, base *Settings, paths ...string) (*Settings, error)
}
