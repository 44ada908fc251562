package notify

import (
	"context"
	"errors"
	"fmt"

	"bizdesk/pkg/utils"

	"go.uber.org/zap"
)

type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

// ErrDeliveryFailed wraps every failure a Notifier reports to its caller.
var ErrDeliveryFailed = errors.New("notification delivery failed")

type Message struct {
	Channel   Channel `json:"channel"`
	Recipient string  `json:"recipient"`
	Subject   string  `json:"subject,omitempty"`
	Body      string  `json:"body"`
}

// Notifier delivers one message. A nil error means the message was handed
// off, not that the recipient has read it.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// New picks the notifier backend named by config.
func New(config utils.NotificationConfig, log *zap.Logger) (Notifier, func() error, error) {
	switch config.Backend {
	case "", "log":
		var opts []LogOption
		if config.LogBodies {
			opts = append(opts, WithBodies())
		}
		return NewLogNotifier(log, opts...), func() error { return nil }, nil
	case "amqp":
		n, err := NewAMQPNotifier(config, log)
		if err != nil {
			return nil, nil, err
		}
		return n, n.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown notification backend %q", config.Backend)
	}
}

// LogNotifier writes messages to the application log. Used in development.
// Bodies carry codes and invitation links, so only their length is logged
// unless WithBodies is set.
type LogNotifier struct {
	log      *zap.Logger
	withBody bool
}

type LogOption func(*LogNotifier)

// WithBodies logs message bodies verbatim.
func WithBodies() LogOption {
	return func(n *LogNotifier) { n.withBody = true }
}

func NewLogNotifier(log *zap.Logger, opts ...LogOption) *LogNotifier {
	n := &LogNotifier{log: log.With(zap.String("notifier", "log"))}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

func (n *LogNotifier) Send(ctx context.Context, msg Message) error {
	if msg.Recipient == "" {
		return fmt.Errorf("%w: empty recipient", ErrDeliveryFailed)
	}

	fields := []zap.Field{
		zap.String("channel", string(msg.Channel)),
		zap.String("recipient", msg.Recipient),
		zap.String("subject", msg.Subject),
	}
	if n.withBody {
		fields = append(fields, zap.String("body", msg.Body))
	} else {
		fields = append(fields, zap.Int("body_len", len(msg.Body)))
	}
	n.log.Info("notification", fields...)
	return nil
}
