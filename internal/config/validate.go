package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	logx "hwstatusbot/pkg/logx"
)

var fieldRules = newFieldRules()

func newFieldRules() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// secrets made of whitespace count as absent
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	// report json keys ("telegram.chat_id"), not Go field names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks cfg after the environment overlay. Malformed values are
// reported as a plain error; absent secrets as *ConfigError. Malformed values
// take precedence so a broken file is never mistaken for a missing token.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}

	var missing, invalid []string
	if err := fieldRules.Struct(cfg); err != nil {
		var fes validator.ValidationErrors
		if !errors.As(err, &fes) {
			return err
		}
		for _, fe := range fes {
			key := fieldKey(fe.Namespace())
			switch fe.Tag() {
			case "required", "notblank":
				missing = append(missing, key)
			case "required_if":
				invalid = append(invalid, fmt.Sprintf("%s is required when %s", key, strings.Replace(fe.Param(), " ", "=", 1)))
			default:
				invalid = append(invalid, describe(key, fe))
			}
		}
	}

	durations := []struct{ key, raw string }{
		{"practicum.timeout", cfg.Practicum.Timeout},
		{"telegram.timeout", cfg.Telegram.Timeout},
		{"poll.interval", cfg.Poll.Interval},
		{"poll.lookback", cfg.Poll.Lookback},
	}
	if cfg.Storage != nil {
		durations = append(durations, struct{ key, raw string }{"storage.busy_timeout", cfg.Storage.BusyTimeout})
	}
	for _, d := range durations {
		if _, err := ParseDuration(d.key, d.raw, 0); err != nil {
			invalid = append(invalid, err.Error())
		}
	}
	if !logx.ValidLevel(cfg.Logging.Level) {
		invalid = append(invalid, fmt.Sprintf("logging.level: unknown level %q", cfg.Logging.Level))
	}

	if len(invalid) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(invalid, "; "))
	}
	if len(missing) > 0 {
		return &ConfigError{Missing: missing}
	}
	return nil
}

// fieldKey turns "Config.telegram.chat_id" into "telegram.chat_id".
func fieldKey(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func describe(key string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "oneof":
		return fmt.Sprintf("%s: %q is not one of [%s]", key, fe.Value(), fe.Param())
	case "url":
		return fmt.Sprintf("%s: %q is not a valid URL", key, fe.Value())
	case "hostname_port":
		return fmt.Sprintf("%s: %q is not host:port", key, fe.Value())
	default:
		if fe.Param() != "" {
			return fmt.Sprintf("%s: failed %s=%s", key, fe.Tag(), fe.Param())
		}
		return fmt.Sprintf("%s: failed %s", key, fe.Tag())
	}
}
