package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// parseEnv overlays Config with POSTBOX_* environment variables. Unset
// variables leave the current value untouched. Durations use Go syntax
// ("15m"). A malformed value panics, like the other config sources.
func parseEnv(config *Config) {
	if err := env.Parse(config); err != nil {
		panic(fmt.Errorf("parse env: %w", err))
	}
}
