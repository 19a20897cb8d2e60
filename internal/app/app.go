package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"hwstatusbot/internal/config"
	"hwstatusbot/internal/homework"
	"hwstatusbot/internal/metrics"
	"hwstatusbot/internal/notifier"
	"hwstatusbot/internal/poller"
	"hwstatusbot/internal/practicum"
	"hwstatusbot/internal/runtime/supervisor"
	"hwstatusbot/internal/storage"
	telegram "hwstatusbot/internal/transport/telegram/adapter"
	logx "hwstatusbot/pkg/logx"
	"hwstatusbot/pkg/systemd"
)

type Options struct {
	ConfigPath string
	// EnvFile is a dotenv file; empty means "./.env" if present.
	EnvFile string
	// Lookup replaces os.LookupEnv for the secret overlay.
	Lookup func(string) (string, bool)
	Now    func() time.Time
	// SdNotify replaces the sd_notify socket writer.
	SdNotify systemd.SendFunc
}

type App struct {
	cfgm *config.Manager
	sup  *supervisor.Supervisor

	log  logx.Logger
	logs *logx.Service

	journal storage.Journal
	reg     *prometheus.Registry
	msrv    *metrics.Server
	mcfg    metrics.ServerConfig
	loop    *poller.Loop
	poll    poller.Config

	sd *systemd.Notifier
}

// LoadConfig loads the env file and config and validates the result. It
// performs no network I/O.
func LoadConfig(opts Options) (*config.Manager, *config.Config, error) {
	if err := config.LoadEnvFile(opts.EnvFile); err != nil {
		return nil, nil, err
	}
	cfgm := config.NewManager(opts.ConfigPath)
	cfgm.SetLookup(opts.Lookup)
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return cfgm, cfg, err
	}
	return cfgm, cfg, nil
}

// New builds every component. Missing credentials abort here with a
// *config.ConfigError, before any request is made.
func New(opts Options) (*App, error) {
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	cfgm, cfg, err := LoadConfig(opts)
	if cfg == nil {
		return nil, err
	}

	// Logging comes up even for a config error so the reason reaches main.log.
	logs, log := logx.New(mapLogging(cfg))
	log = log.With(logx.String("comp", "app"))
	if err != nil {
		var ce *config.ConfigError
		if errors.As(err, &ce) {
			log.Error("required settings missing; not starting", logx.String("missing", strings.Join(ce.Missing, ",")))
		}
		_ = logs.Close()
		return nil, err
	}

	sd := systemd.New(opts.SdNotify, log.With(logx.String("comp", "systemd")))
	a, err := build(cfgm, cfg, now(), log, logs, sd)
	if err != nil {
		_ = logs.Close()
		return nil, err
	}
	return a, nil
}

func build(cfgm *config.Manager, cfg *config.Config, now time.Time, log logx.Logger, logs *logx.Service, sd *systemd.Notifier) (*App, error) {
	s, err := resolve(cfg, now)
	if err != nil {
		return nil, err
	}

	client, err := practicum.New(s.practicum, log.With(logx.String("comp", "practicum")))
	if err != nil {
		return nil, err
	}
	ad, err := telegram.New(s.telegram, log.With(logx.String("comp", "telegram")))
	if err != nil {
		return nil, err
	}
	notif := notifier.New(s.notifier, ad, log.With(logx.String("comp", "notifier")))

	journal, err := storage.Open(s.storage, log.With(logx.String("comp", "storage")))
	if err != nil {
		return nil, err
	}
	if journal != nil {
		log.Info("journal enabled", logx.String("driver", s.storage.Driver))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	a := &App{
		cfgm:    cfgm,
		log:     log,
		logs:    logs,
		journal: journal,
		reg:     reg,
		msrv:    metrics.NewServer(reg, log.With(logx.String("comp", "metrics"))),
		mcfg:    s.metrics,
		poll:    s.poll,
		sd:      sd,
	}
	a.loop = poller.New(s.poll, client, homework.NewResponseValidator(s.empty), homework.NewTracker(), notif,
		poller.WithLogger(log.With(logx.String("comp", "poller"))),
		poller.WithJournal(journal),
		poller.WithMetrics(m),
		poller.WithHeartbeat(sd.Watchdog),
	)
	return a, nil
}

// Run starts the ambient goroutines and polls until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	a.sup = supervisor.New(ctx, supervisor.WithLogger(a.log.With(logx.String("comp", "supervisor"))))
	a.msrv.Apply(a.sup.Context(), a.mcfg)

	a.cfgm.SetLogger(a.log.With(logx.String("comp", "config")))
	a.cfgm.SetValidator(func(_ context.Context, cfg *config.Config) error {
		if err := config.Validate(cfg); err != nil {
			return err
		}
		_, err := resolve(cfg, time.Now())
		return err
	})
	sub := a.cfgm.Subscribe(4)
	a.sup.Go("config.reload", func(c context.Context) error {
		defer a.cfgm.Unsubscribe(sub)
		a.consumeReloads(c, sub)
		return nil
	})
	a.sup.GoRestart("config.watch", a.cfgm.Watch, time.Second, 30*time.Second)

	if wd := systemd.WatchdogInterval(); wd > 0 && wd <= a.poll.Interval {
		a.log.Warn("systemd watchdog is shorter than the poll interval",
			logx.Duration("watchdog", wd), logx.Duration("interval", a.poll.Interval))
	}
	a.log.Info("bot started", logx.String("config", a.cfgm.Path()))
	a.sd.Ready()
	a.sd.Status("polling every " + a.poll.Interval.String())
	err := a.loop.Run(a.sup.Context())
	a.sd.Stopping()
	return err
}

// Close stops background goroutines and releases sinks, bounded by ctx.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.sup != nil {
		if err := a.sup.Stop(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.msrv.Stop(ctx)
	if a.journal != nil {
		if err := a.journal.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.log.Info("stopped")
	if err := a.logs.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// MetricsAddr reports the metrics listener address, "" when disabled.
func (a *App) MetricsAddr() string { return a.msrv.Addr() }
