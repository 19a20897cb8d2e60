package poller

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"hwstatusbot/internal/homework"
	"hwstatusbot/internal/metrics"
	"hwstatusbot/internal/storage"
	logx "hwstatusbot/pkg/logx"
)

// StatusSource fetches the raw status document.
type StatusSource interface {
	Fetch(ctx context.Context, since int64) (homework.RawResponse, error)
}

// Notifier delivers one message; "" means nothing to deliver.
type Notifier interface {
	Send(ctx context.Context, message string) error
}

// KindPanic labels iterations that panicked.
const KindPanic = "panic"

// PanicError carries a value recovered from a panicking stage.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string { return fmt.Sprintf("panic: %v", e.Value) }
func (e *PanicError) Kind() string  { return KindPanic }

type Config struct {
	Interval time.Duration
	// Since is passed as from_date on every fetch.
	Since int64
}

// Loop runs fetch → validate → diff → notify on a fixed interval. It owns the
// tracker; nothing else may call it while the loop runs.
type Loop struct {
	cfg       Config
	source    StatusSource
	validator *homework.ResponseValidator
	tracker   *homework.Tracker
	notifier  Notifier

	log       logx.Logger
	journal   storage.Journal
	metrics   *metrics.Metrics
	heartbeat func()
	sleep     func(ctx context.Context, d time.Duration) error

	state atomic.Int32
}

type Option func(*Loop)

func WithLogger(log logx.Logger) Option { return func(l *Loop) { l.log = log } }

// WithJournal records every notification attempt. A nil journal is ignored.
func WithJournal(j storage.Journal) Option { return func(l *Loop) { l.journal = j } }

func WithMetrics(m *metrics.Metrics) Option { return func(l *Loop) { l.metrics = m } }

// WithHeartbeat is called after every iteration, successful or not.
func WithHeartbeat(fn func()) Option { return func(l *Loop) { l.heartbeat = fn } }

// WithSleep replaces the interval wait (tests).
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(l *Loop) { l.sleep = fn }
}

func New(cfg Config, source StatusSource, validator *homework.ResponseValidator, tracker *homework.Tracker, notifier Notifier, opts ...Option) *Loop {
	if cfg.Interval <= 0 {
		cfg.Interval = 10 * time.Minute
	}
	l := &Loop{
		cfg:       cfg,
		source:    source,
		validator: validator,
		tracker:   tracker,
		notifier:  notifier,
		sleep:     sleepCtx,
	}
	for _, o := range opts {
		o(l)
	}
	if l.log.IsZero() {
		l.log = logx.Nop()
	}
	return l
}

// State reports the stage the loop is currently in.
func (l *Loop) State() State { return State(l.state.Load()) }

func (l *Loop) setState(s State) {
	prev := State(l.state.Swap(int32(s)))
	if prev != s && l.log.Enabled(logx.LevelTrace) {
		l.log.Trace("state", logx.String("from", prev.String()), logx.String("to", s.String()))
	}
}

// Run polls until ctx is cancelled. Iteration errors never stop it.
func (l *Loop) Run(ctx context.Context) error {
	l.log.Info("poll loop started",
		logx.Duration("interval", l.cfg.Interval),
		logx.Int64("from_date", l.cfg.Since),
	)
	defer l.setState(StateIdle)

	for {
		_ = l.Iterate(ctx)
		if l.heartbeat != nil {
			l.heartbeat()
		}

		l.setState(StateSleeping)
		if err := l.sleep(ctx, l.cfg.Interval); err != nil {
			l.log.Info("poll loop stopped", logx.String("reason", err.Error()))
			return nil
		}
	}
}

// Iterate runs the pipeline once. Any error (or panic) is logged and
// returned; the tracker only moves on a successful diff.
func (l *Loop) Iterate(ctx context.Context) (err error) {
	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			err = &PanicError{Value: p}
			l.log.Error("stage panicked", logx.Any("panic", p), logx.Stack(logx.StackTrace(3, 24)))
		}
		l.observe(start, err)
	}()
	return l.pipeline(ctx)
}

func (l *Loop) pipeline(ctx context.Context) error {
	l.setState(StateFetching)
	raw, err := l.source.Fetch(ctx, l.cfg.Since)
	if err != nil {
		return err
	}

	l.setState(StateValidating)
	resp, err := l.validator.Validate(raw)
	if err != nil {
		return err
	}
	rec, ok := resp.Latest()
	if !ok {
		l.log.Debug("no homework updates", logx.Int64("current_date", resp.CurrentDate))
		return nil
	}

	l.setState(StateDiffing)
	msg, changed, err := l.tracker.Diff(rec)
	if err != nil {
		return err
	}
	if !changed {
		l.log.Debug("status unchanged", logx.String("homework", rec.Name), logx.String("status", string(rec.Status)))
		return nil
	}
	l.log.Info("status changed", logx.String("homework", rec.Name), logx.String("status", string(rec.Status)))
	if l.metrics != nil {
		l.metrics.StatusChanges.WithLabelValues(string(rec.Status)).Inc()
	}

	l.setState(StateNotifying)
	sendErr := l.notifier.Send(ctx, msg)
	l.record(ctx, rec, msg, sendErr)
	return sendErr
}

func (l *Loop) record(ctx context.Context, rec homework.Record, msg string, sendErr error) {
	result := "delivered"
	if sendErr != nil {
		result = "failed"
	}
	if l.metrics != nil {
		l.metrics.NotificationsTotal.WithLabelValues(result).Inc()
	}
	if l.journal == nil {
		return
	}
	e := storage.Entry{
		At:        time.Now(),
		Homework:  rec.Name,
		Status:    string(rec.Status),
		Message:   msg,
		Delivered: sendErr == nil,
	}
	if sendErr != nil {
		e.Error = sendErr.Error()
	}
	if err := l.journal.Append(ctx, e); err != nil {
		l.log.Warn("journal append failed", logx.Err(err))
	}
}

func (l *Loop) observe(start time.Time, err error) {
	kind := errorKind(err)
	if err != nil {
		l.log.Error("iteration failed", logx.String("kind", kind), logx.Err(err))
	}
	if l.metrics == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
		l.metrics.FailuresTotal.WithLabelValues(kind).Inc()
	}
	l.metrics.PollsTotal.WithLabelValues(result).Inc()
	l.metrics.PollDuration.Observe(time.Since(start).Seconds())
	l.metrics.LastPollTimestamp.SetToCurrentTime()
}

func errorKind(err error) string {
	if err == nil {
		return ""
	}
	var k interface{ Kind() string }
	if errors.As(err, &k) {
		return k.Kind()
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "canceled"
	}
	return "unknown"
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
