package notifier

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kit "hwstatusbot/internal/transport"
	logx "hwstatusbot/pkg/logx"
)

type fakeSender struct {
	err   error
	sent  []string
	chats []string
}

func (f *fakeSender) SendText(ctx context.Context, to kit.ChatTarget, text string, opt *kit.SendOptions) (kit.MessageRef, error) {
	if f.err != nil {
		return kit.MessageRef{}, f.err
	}
	f.sent = append(f.sent, text)
	f.chats = append(f.chats, to.ChatID)
	return kit.MessageRef{ChatID: to.ChatID, MessageID: len(f.sent)}, nil
}

func TestSendDeliversToConfiguredChat(t *testing.T) {
	s := &fakeSender{}
	n := New(Config{Target: kit.ChatTarget{ChatID: "777"}}, s, logx.Nop())

	require.NoError(t, n.Send(context.Background(), "status changed"))
	assert.Equal(t, []string{"status changed"}, s.sent)
	assert.Equal(t, []string{"777"}, s.chats)
}

func TestSendEmptyMessageIsNoop(t *testing.T) {
	s := &fakeSender{err: errors.New("must not be called")}
	n := New(Config{Target: kit.ChatTarget{ChatID: "777"}}, s, logx.Nop())

	require.NoError(t, n.Send(context.Background(), ""))
	assert.Empty(t, s.sent)
}

func TestSendFailureIsDeliveryError(t *testing.T) {
	cause := errors.New("telegram: chat not found (400)")
	n := New(Config{Target: kit.ChatTarget{ChatID: "777"}}, &fakeSender{err: cause}, logx.Nop())

	err := n.Send(context.Background(), "hello")
	var delivery *DeliveryError
	require.ErrorAs(t, err, &delivery)
	assert.Equal(t, "777", delivery.ChatID)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, KindDelivery, delivery.Kind())
}

func TestSendCancelledContextIsDeliveryError(t *testing.T) {
	n := New(Config{Target: kit.ChatTarget{ChatID: "1"}, RatePerSec: 1}, &fakeSender{}, logx.Nop())
	require.NoError(t, n.Send(context.Background(), "first"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := n.Send(ctx, "second")
	var delivery *DeliveryError
	assert.ErrorAs(t, err, &delivery)
}

func TestSendWithoutSender(t *testing.T) {
	err := New(Config{}, nil, logx.Nop()).Send(context.Background(), "x")
	assert.ErrorIs(t, err, ErrNoSender)
}
