package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"bizdesk/pkg/utils"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// AMQPNotifier publishes messages to a durable queue per channel. A separate
// worker owns the actual email and SMS providers.
type AMQPNotifier struct {
	mu     sync.Mutex
	conn   *amqp.Connection
	ch     *amqp.Channel
	queues map[Channel]string
	log    *zap.Logger
}

func NewAMQPNotifier(config utils.NotificationConfig, log *zap.Logger) (*AMQPNotifier, error) {
	if strings.TrimSpace(config.AMQPURL) == "" {
		return nil, errors.New("amqp url is required")
	}

	conn, err := amqp.Dial(config.AMQPURL)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open amqp channel: %w", err)
	}

	queues := map[Channel]string{
		ChannelEmail: config.EmailQueue,
		ChannelSMS:   config.SMSQueue,
	}
	for _, name := range queues {
		if _, err := ch.QueueDeclare(
			name,
			true,  // durable
			false, // autoDelete
			false, // exclusive
			false, // noWait
			nil,
		); err != nil {
			_ = ch.Close()
			_ = conn.Close()
			return nil, fmt.Errorf("declare queue %s: %w", name, err)
		}
	}

	return &AMQPNotifier{
		conn:   conn,
		ch:     ch,
		queues: queues,
		log:    log.With(zap.String("notifier", "amqp")),
	}, nil
}

func (n *AMQPNotifier) Send(ctx context.Context, msg Message) error {
	queue, ok := n.queues[msg.Channel]
	if !ok || queue == "" {
		return fmt.Errorf("%w: no queue for channel %q", ErrDeliveryFailed, msg.Channel)
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}

	// amqp channels are not safe for concurrent publishing
	n.mu.Lock()
	err = n.ch.PublishWithContext(ctx, "", queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	n.mu.Unlock()

	if err != nil {
		n.log.Error("publish failed", zap.String("queue", queue), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}
	return nil
}

func (n *AMQPNotifier) Close() error {
	if n.ch != nil {
		_ = n.ch.Close()
	}
	if n.conn != nil {
		return n.conn.Close()
	}
	return nil
}
