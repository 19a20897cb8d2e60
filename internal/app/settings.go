package app

import (
	"strings"
	"time"

	"hwstatusbot/internal/config"
	"hwstatusbot/internal/homework"
	"hwstatusbot/internal/metrics"
	"hwstatusbot/internal/notifier"
	"hwstatusbot/internal/poller"
	"hwstatusbot/internal/practicum"
	"hwstatusbot/internal/storage"
	kit "hwstatusbot/internal/transport"
	telegram "hwstatusbot/internal/transport/telegram/adapter"
	logx "hwstatusbot/pkg/logx"
)

const (
	defaultInterval    = 10 * time.Minute
	defaultBusyTimeout = time.Second
)

// settings is a validated config mapped onto component configs.
type settings struct {
	practicum practicum.Config
	telegram  telegram.Config
	notifier  notifier.Config
	poll      poller.Config
	empty     homework.EmptyPolicy
	logging   logx.Config
	storage   storage.Config
	metrics   metrics.ServerConfig
}

// resolve maps cfg onto component configs. from_date is fixed here:
// now minus poll.lookback.
func resolve(cfg *config.Config, now time.Time) (settings, error) {
	var s settings
	var err error

	s.practicum = practicum.Config{
		Endpoint: strings.TrimSpace(cfg.Practicum.Endpoint),
		Token:    cfg.Practicum.Token,
	}
	if s.practicum.Timeout, err = config.ParseDuration("practicum.timeout", cfg.Practicum.Timeout, 0); err != nil {
		return s, err
	}

	s.telegram = telegram.Config{Token: cfg.Telegram.Token, APIURL: cfg.Telegram.APIURL}
	if s.telegram.Timeout, err = config.ParseDuration("telegram.timeout", cfg.Telegram.Timeout, 0); err != nil {
		return s, err
	}
	s.notifier = notifier.Config{
		Target:     kit.ChatTarget{ChatID: strings.TrimSpace(cfg.Telegram.ChatID)},
		RatePerSec: cfg.Telegram.RatePerSec,
	}

	interval, err := config.ParsePositiveDuration("poll.interval", cfg.Poll.Interval, defaultInterval)
	if err != nil {
		return s, err
	}
	lookback, err := config.ParseDuration("poll.lookback", cfg.Poll.Lookback, 0)
	if err != nil {
		return s, err
	}
	s.poll = poller.Config{Interval: interval, Since: now.Add(-lookback).Unix()}
	if s.empty, err = homework.ParseEmptyPolicy(cfg.Poll.EmptyHomeworks); err != nil {
		return s, err
	}

	s.logging = mapLogging(cfg)
	if s.storage, err = mapStorage(cfg); err != nil {
		return s, err
	}
	s.metrics = mapMetrics(cfg)
	return s, nil
}

func mapLogging(cfg *config.Config) logx.Config {
	return logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	}
}

func mapMetrics(cfg *config.Config) metrics.ServerConfig {
	return metrics.ServerConfig{Enabled: cfg.Metrics.Enabled, Addr: strings.TrimSpace(cfg.Metrics.Addr)}
}

// mapStorage returns a zero Config (journal disabled) when storage is
// omitted or driver is "none".
func mapStorage(cfg *config.Config) (storage.Config, error) {
	if cfg.Storage == nil {
		return storage.Config{}, nil
	}
	driver := strings.ToLower(strings.TrimSpace(cfg.Storage.Driver))
	if driver == "" || driver == "none" {
		return storage.Config{}, nil
	}
	busy, err := config.ParsePositiveDuration("storage.busy_timeout", cfg.Storage.BusyTimeout, defaultBusyTimeout)
	if err != nil {
		return storage.Config{}, err
	}
	return storage.Config{Driver: driver, Path: strings.TrimSpace(cfg.Storage.Path), BusyTimeout: busy}, nil
}
