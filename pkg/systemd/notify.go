// Package systemd reports service state to systemd (Type=notify units).
package systemd

import (
	"time"

	"github.com/coreos/go-systemd/v22/daemon"

	logx "hwstatusbot/pkg/logx"
)

// SendFunc delivers one sd_notify state line. It reports false when no
// notification socket is configured.
type SendFunc func(state string) (bool, error)

// Notifier sends READY/WATCHDOG/STOPPING. Outside systemd every call is a
// no-op.
type Notifier struct {
	send SendFunc
	log  logx.Logger
}

// New returns a Notifier backed by daemon.SdNotify. send overrides it when
// non-nil.
func New(send SendFunc, log logx.Logger) *Notifier {
	if send == nil {
		send = func(state string) (bool, error) { return daemon.SdNotify(false, state) }
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Notifier{send: send, log: log}
}

func (n *Notifier) Ready()    { n.notify(daemon.SdNotifyReady) }
func (n *Notifier) Stopping() { n.notify(daemon.SdNotifyStopping) }
func (n *Notifier) Watchdog() { n.notify(daemon.SdNotifyWatchdog) }

// Status sets the free-form status line shown by systemctl status.
func (n *Notifier) Status(msg string) { n.notify("STATUS=" + msg) }

// WatchdogInterval returns WatchdogSec of the unit, 0 when disabled.
func WatchdogInterval() time.Duration {
	d, err := daemon.SdWatchdogEnabled(false)
	if err != nil {
		return 0
	}
	return d
}

func (n *Notifier) notify(state string) {
	sent, err := n.send(state)
	if err != nil {
		n.log.Debug("sd_notify failed", logx.String("state", state), logx.Err(err))
		return
	}
	if sent {
		n.log.Trace("sd_notify", logx.String("state", state))
	}
}
