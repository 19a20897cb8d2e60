package config

// Config is the on-disk configuration. Secrets may be left empty here and
// supplied through the environment instead (see ApplyEnv).
type Config struct {
	Practicum PracticumConfig `json:"practicum"`
	Telegram  TelegramConfig  `json:"telegram"`
	Poll      PollConfig      `json:"poll"`
	Logging   LoggingConfig   `json:"logging"`
	Storage   *StorageConfig  `json:"storage,omitempty"`
	Metrics   MetricsConfig   `json:"metrics"`
}

// PracticumConfig addresses the homework status API.
type PracticumConfig struct {
	Token    string `json:"token" validate:"notblank"`
	Endpoint string `json:"endpoint,omitempty" validate:"omitempty,url"`
	// Timeout is a Go duration string (e.g. "10s"). Default: 10s.
	Timeout string `json:"timeout,omitempty"`
}

type TelegramConfig struct {
	Token string `json:"token" validate:"notblank"`
	// ChatID is a numeric chat id or an "@channel" username.
	ChatID string `json:"chat_id" validate:"notblank"`
	// APIURL overrides https://api.telegram.org (local Bot API servers).
	APIURL     string `json:"api_url,omitempty" validate:"omitempty,url"`
	Timeout    string `json:"timeout,omitempty"`
	RatePerSec int    `json:"rate_per_sec,omitempty" validate:"gte=0,lte=30"`
}

// PollConfig controls the poll loop.
//
// Defaults (when fields are omitted/zero):
//   - interval: "10m"
//   - lookback: "0s" (only changes after startup are reported)
//   - empty_homeworks: "error"
type PollConfig struct {
	Interval string `json:"interval,omitempty"`
	Lookback string `json:"lookback,omitempty"`
	// EmptyHomeworks is "error" (empty list is a protocol violation) or
	// "skip" (empty list means nothing to report).
	EmptyHomeworks string `json:"empty_homeworks,omitempty" validate:"omitempty,oneof=error skip"`
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// StorageConfig controls the optional notification journal.
//
// Example:
//
//	"storage": { "driver": "sqlite", "path": "./hwstatusbot.db" }
type StorageConfig struct {
	Driver      string `json:"driver" validate:"omitempty,oneof=none file sqlite"`
	Path        string `json:"path" validate:"required_if=Driver sqlite"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // Go duration string (sqlite)
}

// MetricsConfig controls the optional Prometheus listener.
// Prefer binding to localhost.
type MetricsConfig struct {
	Enabled bool   `json:"enabled"`
	Addr    string `json:"addr,omitempty" validate:"omitempty,hostname_port"` // default: "127.0.0.1:9464"
}

// Default is used when no config file exists: console + main.log, strict
// empty-list policy, 10 minute interval.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:   "info",
			Console: true,
			File:    LoggingFile{Enabled: true, Path: "main.log"},
		},
	}
}
