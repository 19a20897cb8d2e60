package config

import (
	"fmt"
	"strings"
)

// KindConfig labels configuration failures.
const KindConfig = "config"

// ConfigError reports required settings that are absent from both the config
// file and the environment. The bot must not start polling without them.
type ConfigError struct {
	Missing []string
}

func (e *ConfigError) Error() string {
	parts := make([]string, 0, len(e.Missing))
	for _, key := range e.Missing {
		if env := envFor(key); env != "" {
			parts = append(parts, fmt.Sprintf("%s (env %s)", key, env))
			continue
		}
		parts = append(parts, key)
	}
	return "missing required settings: " + strings.Join(parts, ", ")
}

func (e *ConfigError) Kind() string { return KindConfig }
