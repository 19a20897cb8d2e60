package systemd

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	logx "hwstatusbot/pkg/logx"
)

func TestNotifierSendsStates(t *testing.T) {
	var states []string
	n := New(func(state string) (bool, error) {
		states = append(states, state)
		return true, nil
	}, logx.Nop())

	n.Ready()
	n.Watchdog()
	n.Status("polling")
	n.Stopping()
	assert.Equal(t, []string{"READY=1", "WATCHDOG=1", "STATUS=polling", "STOPPING=1"}, states)
}

func TestNotifierSwallowsErrors(t *testing.T) {
	n := New(func(string) (bool, error) { return false, errors.New("socket gone") }, logx.Nop())
	assert.NotPanics(t, n.Ready)
}

func TestDefaultNotifierOutsideSystemd(t *testing.T) {
	t.Setenv("NOTIFY_SOCKET", "")
	t.Setenv("WATCHDOG_USEC", "")
	n := New(nil, logx.Nop())
	assert.NotPanics(t, n.Ready)
	assert.Zero(t, WatchdogInterval())
}
