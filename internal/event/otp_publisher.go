package event

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Channel is the subset of *amqp.Channel the publisher needs.
type Channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	IsClosed() bool
}

// Dialer opens a fresh channel along with whatever must be closed to
// release it.
type Dialer func() (Channel, io.Closer, error)

var errNoChannel = errors.New("amqp channel unavailable")

// OTPPublisher publishes issued codes to a durable queue consumed by the
// notification service, which performs the actual email delivery.
type OTPPublisher struct {
	mu                sync.Mutex
	channel           Channel
	dial              Dialer
	conn              io.Closer
	queue             string
	declared          bool
	logger            *zap.Logger
	messagesPublished int64
	messagesFailed    int64
	lastPublishTime   time.Time
}

func NewOTPPublisher(channel Channel, queue string, logger *zap.Logger) *OTPPublisher {
	if queue == "" {
		queue = OTPQueue
	}
	return &OTPPublisher{
		channel:         channel,
		queue:           queue,
		logger:          logger,
		lastPublishTime: time.Now(),
	}
}

// NewReconnectingOTPPublisher dials once up front and dials again whenever
// the broker closes the channel.
func NewReconnectingOTPPublisher(dial Dialer, queue string, logger *zap.Logger) (*OTPPublisher, error) {
	p := NewOTPPublisher(nil, queue, logger)
	p.dial = dial
	if err := p.redial(); err != nil {
		return nil, err
	}
	return p, nil
}

// ensureChannel replaces a closed channel when a dialer is set. Callers
// hold p.mu.
func (p *OTPPublisher) ensureChannel() error {
	if p.channel != nil && (p.dial == nil || !p.channel.IsClosed()) {
		return nil
	}
	if p.dial == nil {
		return errNoChannel
	}
	p.logger.Warn("amqp channel closed, reconnecting", zap.String("queue", p.queue))
	return p.redial()
}

func (p *OTPPublisher) redial() error {
	p.release()
	ch, conn, err := p.dial()
	if err != nil {
		return fmt.Errorf("failed to reconnect to RabbitMQ: %w", err)
	}
	p.channel = ch
	p.conn = conn
	// A new channel may face a broker that lost the queue.
	p.declared = false
	return nil
}

func (p *OTPPublisher) release() {
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.channel = nil
	p.conn = nil
}

// Close releases the connection opened by the dialer, if any.
func (p *OTPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == nil {
		return nil
	}
	err := p.conn.Close()
	p.channel = nil
	p.conn = nil
	return err
}

func (p *OTPPublisher) SendOTP(ctx context.Context, n OTPNotification) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensureChannel(); err != nil {
		p.messagesFailed++
		return err
	}

	if !p.declared {
		_, err := p.channel.QueueDeclare(
			p.queue, // queue name
			true,    // durable
			false,   // delete when unused
			false,   // exclusive
			false,   // no-wait
			nil,     // arguments
		)
		if err != nil {
			p.messagesFailed++
			return fmt.Errorf("failed to declare queue: %w", err)
		}
		p.declared = true
	}

	body, err := json.Marshal(OTPEvent{
		ID:        uuid.NewString(),
		EventType: OTPIssued,
		Payload:   n,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		p.messagesFailed++
		return fmt.Errorf("failed to marshal otp event: %w", err)
	}

	err = p.channel.PublishWithContext(
		ctx,
		"",      // exchange
		p.queue, // routing key (queue name)
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		p.messagesFailed++
		return fmt.Errorf("failed to publish otp event: %w", err)
	}

	p.messagesPublished++
	p.lastPublishTime = time.Now()
	p.logger.Info("otp event published", zap.String("queue", p.queue), zap.Int64("user_id", n.UserID))
	return nil
}

// HealthCheck returns the health status of the publisher
func (p *OTPPublisher) HealthCheck() PublisherHealthStatus {
	p.mu.Lock()
	defer p.mu.Unlock()

	return PublisherHealthStatus{
		IsHealthy:         p.channel != nil && !p.channel.IsClosed(),
		MessagesPublished: p.messagesPublished,
		MessagesFailed:    p.messagesFailed,
		LastPublishTime:   p.lastPublishTime,
		Queue:             p.queue,
	}
}

type PublisherHealthStatus struct {
	IsHealthy         bool      `json:"is_healthy"`
	MessagesPublished int64     `json:"messages_published"`
	MessagesFailed    int64     `json:"messages_failed"`
	LastPublishTime   time.Time `json:"last_publish_time"`
	Queue             string    `json:"queue"`
}
