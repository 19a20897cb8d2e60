package notifier

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"

	kit "hwstatusbot/internal/transport"
	logx "hwstatusbot/pkg/logx"
)

// KindDelivery is the error kind of *DeliveryError.
const KindDelivery = "delivery"

var ErrNoSender = errors.New("notifier has no sender")

// DeliveryError wraps any failure to hand a message to the chat.
type DeliveryError struct {
	ChatID string
	Err    error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("deliver to chat %s: %v", e.ChatID, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }
func (e *DeliveryError) Kind() string  { return KindDelivery }

// Config for the notifier. The time bound of a single send belongs to the
// sender's transport (the Telegram adapter's HTTP client timeout).
type Config struct {
	Target     kit.ChatTarget
	RatePerSec int
}

// Service sends messages synchronously to one fixed chat.
type Service struct {
	log     logx.Logger
	sender  kit.Sender
	target  kit.ChatTarget
	limiter *rate.Limiter
}

func New(cfg Config, sender kit.Sender, log logx.Logger) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = 1
	}
	return &Service{
		log:    log,
		sender: sender,
		target: cfg.Target,
		// burst = rate, so a single message never waits.
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.RatePerSec),
	}
}

// Send delivers message to the configured chat. An empty message means
// "nothing to say" and is a no-op.
func (s *Service) Send(ctx context.Context, message string) error {
	if strings.TrimSpace(message) == "" {
		return nil
	}
	if s.sender == nil {
		return &DeliveryError{ChatID: s.target.ChatID, Err: ErrNoSender}
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return &DeliveryError{ChatID: s.target.ChatID, Err: err}
	}

	start := time.Now()
	ref, err := s.sender.SendText(ctx, s.target, message, &kit.SendOptions{DisablePreview: true})
	if err != nil {
		return &DeliveryError{ChatID: s.target.ChatID, Err: err}
	}
	s.log.Info("notification delivered",
		logx.String("chat_id", s.target.ChatID),
		logx.Int("message_id", ref.MessageID),
		logx.Duration("took", time.Since(start)),
	)
	return nil
}
