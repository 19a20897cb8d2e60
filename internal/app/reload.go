package app

import (
	"context"
	"strings"

	"hwstatusbot/internal/config"
	logx "hwstatusbot/pkg/logx"
)

// consumeReloads applies logging and metrics changes live. Other sections
// are only reported; they take effect after a restart.
func (a *App) consumeReloads(ctx context.Context, sub <-chan *config.Config) {
	lastApplied := a.cfgm.Get()
	for {
		var newCfg *config.Config
		select {
		case <-ctx.Done():
			return
		case c, ok := <-sub:
			if !ok {
				return
			}
			newCfg = c
		}
		// coalesce bursts
	drain:
		for {
			select {
			case newer, ok := <-sub:
				if !ok {
					break drain
				}
				newCfg = newer
			default:
				break drain
			}
		}

		sections, attrs, restart := config.SummarizeChange(lastApplied, newCfg)
		lastApplied = newCfg
		if len(sections) == 0 {
			a.log.Info("config reloaded (no changes)")
			continue
		}

		a.logs.Apply(mapLogging(newCfg))
		a.mcfg = mapMetrics(newCfg)
		a.msrv.Apply(ctx, a.mcfg)

		fields := append([]logx.Field{logx.String("changed", strings.Join(sections, ","))}, attrs...)
		a.log.Info("config reloaded", fields...)
		if len(restart) > 0 {
			a.log.Warn("config changes need a restart to take effect", logx.String("sections", strings.Join(restart, ",")))
		}
	}
}
