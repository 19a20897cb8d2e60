package config

import (
	"sort"
	"strings"

	logx "hwstatusbot/pkg/logx"
)

// Sections applied live on reload; every other section needs a restart.
var liveSections = map[string]bool{"logging": true, "metrics": true}

// SummarizeChange returns (1) the sorted list of changed sections, (2) safe
// structured attrs for logging (never includes tokens or the chat id), and
// (3) the changed sections that only take effect after a restart.
func SummarizeChange(oldCfg, newCfg *Config) ([]string, []logx.Field, []string) {
	if oldCfg == nil {
		oldCfg = &Config{}
	}
	if newCfg == nil {
		newCfg = &Config{}
	}

	changed := make([]string, 0, 6)
	attrs := make([]logx.Field, 0, 16)
	same := func(a, b string) bool { return strings.TrimSpace(a) == strings.TrimSpace(b) }
	set := func(s string) bool { return strings.TrimSpace(s) != "" }

	op, np := oldCfg.Practicum, newCfg.Practicum
	if !same(op.Token, np.Token) || !same(op.Endpoint, np.Endpoint) || !same(op.Timeout, np.Timeout) {
		changed = append(changed, "practicum")
		attrs = append(attrs,
			logx.Bool("practicum.token_changed", !same(op.Token, np.Token)),
			logx.String("practicum.endpoint", strings.TrimSpace(np.Endpoint)),
			logx.String("practicum.timeout", strings.TrimSpace(np.Timeout)),
		)
	}

	ot, nt := oldCfg.Telegram, newCfg.Telegram
	if !same(ot.Token, nt.Token) || !same(ot.ChatID, nt.ChatID) || !same(ot.APIURL, nt.APIURL) ||
		!same(ot.Timeout, nt.Timeout) || ot.RatePerSec != nt.RatePerSec {
		changed = append(changed, "telegram")
		attrs = append(attrs,
			logx.Bool("telegram.token_changed", !same(ot.Token, nt.Token)),
			logx.Bool("telegram.chat_changed", !same(ot.ChatID, nt.ChatID)),
			logx.Bool("telegram.api_url_set", set(nt.APIURL)),
			logx.Int("telegram.rate_per_sec", nt.RatePerSec),
		)
	}

	if oldCfg.Poll != newCfg.Poll {
		changed = append(changed, "poll")
		attrs = append(attrs,
			logx.String("poll.interval", newCfg.Poll.Interval),
			logx.String("poll.lookback", newCfg.Poll.Lookback),
			logx.String("poll.empty_homeworks", newCfg.Poll.EmptyHomeworks),
		)
	}

	if oldCfg.Logging != newCfg.Logging {
		changed = append(changed, "logging")
		attrs = append(attrs,
			logx.String("logging.level", newCfg.Logging.Level),
			logx.Bool("logging.console", newCfg.Logging.Console),
			logx.Bool("logging.file_enabled", newCfg.Logging.File.Enabled),
		)
	}

	var oldS, newS StorageConfig
	if oldCfg.Storage != nil {
		oldS = *oldCfg.Storage
	}
	if newCfg.Storage != nil {
		newS = *newCfg.Storage
	}
	if !same(oldS.Driver, newS.Driver) || !same(oldS.Path, newS.Path) || !same(oldS.BusyTimeout, newS.BusyTimeout) {
		changed = append(changed, "storage")
		attrs = append(attrs,
			logx.String("storage.driver", strings.TrimSpace(newS.Driver)),
			logx.Bool("storage.path_set", set(newS.Path)),
		)
	}

	if oldCfg.Metrics.Enabled != newCfg.Metrics.Enabled || !same(oldCfg.Metrics.Addr, newCfg.Metrics.Addr) {
		changed = append(changed, "metrics")
		attrs = append(attrs,
			logx.Bool("metrics.enabled", newCfg.Metrics.Enabled),
			logx.String("metrics.addr", strings.TrimSpace(newCfg.Metrics.Addr)),
		)
	}

	sort.Strings(changed)
	var restart []string
	for _, s := range changed {
		if !liveSections[s] {
			restart = append(restart, s)
		}
	}
	return changed, attrs, restart
}
