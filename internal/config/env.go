package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/subosito/gotenv"
)

// DefaultEnvFile is loaded when present; a missing default file is not an error.
const DefaultEnvFile = ".env"

type envBinding struct {
	key   string
	names []string
	get   func(*Config) string
	set   func(*Config, string)
}

// secretEnv lists the settings taken from the environment, first name wins.
// The second names are accepted for compatibility with older deployments.
var secretEnv = []envBinding{
	{
		key:   "practicum.token",
		names: []string{"PRACTICUM_TOKEN", "YAPRACTICUM_TOKEN"},
		get:   func(c *Config) string { return c.Practicum.Token },
		set:   func(c *Config, v string) { c.Practicum.Token = v },
	},
	{
		key:   "telegram.token",
		names: []string{"TELEGRAM_TOKEN", "TGBOT_TOKEN"},
		get:   func(c *Config) string { return c.Telegram.Token },
		set:   func(c *Config, v string) { c.Telegram.Token = v },
	},
	{
		key:   "telegram.chat_id",
		names: []string{"TELEGRAM_CHAT_ID", "MY_CHAT_ID"},
		get:   func(c *Config) string { return c.Telegram.ChatID },
		set:   func(c *Config, v string) { c.Telegram.ChatID = v },
	},
}

func envFor(key string) string {
	for _, b := range secretEnv {
		if b.key == key {
			return b.names[0]
		}
	}
	return ""
}

// LoadEnvFile exports variables from a dotenv file without overriding
// variables already present in the process environment. When path is empty
// DefaultEnvFile is tried and silently skipped if absent.
func LoadEnvFile(path string) error {
	optional := strings.TrimSpace(path) == ""
	if optional {
		path = DefaultEnvFile
	}
	if _, err := os.Stat(path); err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("env file: %w", err)
	}
	if err := gotenv.Load(path); err != nil {
		return fmt.Errorf("env file %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays secrets from the environment onto cfg. Non-empty
// variables win over values from the config file; values kept from the file
// are trimmed. lookup defaults to os.LookupEnv.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) {
	if cfg == nil {
		return
	}
	if lookup == nil {
		lookup = os.LookupEnv
	}
	for _, b := range secretEnv {
		b.set(cfg, strings.TrimSpace(b.get(cfg)))
		for _, name := range b.names {
			if v, ok := lookup(name); ok && strings.TrimSpace(v) != "" {
				b.set(cfg, strings.TrimSpace(v))
				break
			}
		}
	}
}
