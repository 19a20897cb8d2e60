package config

import (
	"fmt"
	"strings"
	"time"
)

// ParseDuration parses a Go duration string found at key. An empty value
// yields def; negative values are rejected.
func ParseDuration(key, raw string, def time.Duration) (time.Duration, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", key, raw, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: duration must be >= 0", key)
	}
	return d, nil
}

// ParsePositiveDuration is ParseDuration that additionally maps 0 to def.
func ParsePositiveDuration(key, raw string, def time.Duration) (time.Duration, error) {
	d, err := ParseDuration(key, raw, def)
	if err != nil {
		return 0, err
	}
	if d == 0 {
		return def, nil
	}
	return d, nil
}
