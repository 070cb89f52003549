package event

import (
	"auth-account/internal/config"
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

type fakeChannel struct {
	declared   []string
	published  []amqp.Publishing
	keys       []string
	publishErr error
	closed     bool
}

func (f *fakeChannel) QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error) {
	f.declared = append(f.declared, name)
	return amqp.Queue{Name: name}, nil
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.keys = append(f.keys, key)
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeChannel) IsClosed() bool { return f.closed }

func sampleNotification() OTPNotification {
	return OTPNotification{
		UserID:    7,
		Email:     "user@example.com",
		OTP:       "123456",
		ExpiresAt: time.Date(2026, time.October, 14, 8, 5, 0, 0, time.UTC),
	}
}

func TestOTPPublisher_PublishesPersistentJSON(t *testing.T) {
	ch := &fakeChannel{}
	p := NewOTPPublisher(ch, "", zap.NewNop())

	require.NoError(t, p.SendOTP(context.Background(), sampleNotification()))
	require.NoError(t, p.SendOTP(context.Background(), sampleNotification()))

	assert.Equal(t, []string{OTPQueue}, ch.declared, "queue is declared once")
	require.Len(t, ch.published, 2)
	assert.Equal(t, OTPQueue, ch.keys[0])
	assert.Equal(t, amqp.Persistent, ch.published[0].DeliveryMode)
	assert.Equal(t, "application/json", ch.published[0].ContentType)

	var evt OTPEvent
	require.NoError(t, json.Unmarshal(ch.published[0].Body, &evt))
	assert.Equal(t, OTPIssued, evt.EventType)
	assert.Equal(t, "123456", evt.Payload.OTP)
	assert.Equal(t, int64(7), evt.Payload.UserID)
	assert.NotEmpty(t, evt.ID)

	health := p.HealthCheck()
	assert.True(t, health.IsHealthy)
	assert.Equal(t, int64(2), health.MessagesPublished)
	assert.Zero(t, health.MessagesFailed)
}

func TestOTPPublisher_CountsFailures(t *testing.T) {
	ch := &fakeChannel{publishErr: errors.New("channel closed"), closed: true}
	p := NewOTPPublisher(ch, "custom", zap.NewNop())

	err := p.SendOTP(context.Background(), sampleNotification())
	require.Error(t, err)

	health := p.HealthCheck()
	assert.False(t, health.IsHealthy)
	assert.Equal(t, int64(1), health.MessagesFailed)
	assert.Equal(t, "custom", health.Queue)
}

type closeCounter struct{ closes int }

func (c *closeCounter) Close() error {
	c.closes++
	return nil
}

func TestOTPPublisher_ReplacesClosedChannel(t *testing.T) {
	first := &fakeChannel{}
	second := &fakeChannel{}
	channels := []*fakeChannel{first, second}
	conns := []*closeCounter{{}, {}}
	var dials int
	dial := func() (Channel, io.Closer, error) {
		ch, conn := channels[dials], conns[dials]
		dials++
		return ch, conn, nil
	}

	p, err := NewReconnectingOTPPublisher(dial, "", zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, p.SendOTP(context.Background(), sampleNotification()))

	first.closed = true
	assert.False(t, p.HealthCheck().IsHealthy)

	require.NoError(t, p.SendOTP(context.Background(), sampleNotification()))
	assert.Equal(t, 2, dials)
	assert.Equal(t, 1, conns[0].closes, "old connection is released")
	assert.Len(t, first.published, 1)
	assert.Len(t, second.published, 1)
	assert.Equal(t, []string{OTPQueue}, second.declared, "queue is declared on the new channel")
	assert.True(t, p.HealthCheck().IsHealthy)

	require.NoError(t, p.Close())
	assert.Equal(t, 1, conns[1].closes)
}

func TestOTPPublisher_RetriesFailedDial(t *testing.T) {
	ch := &fakeChannel{}
	var dialErr error
	dial := func() (Channel, io.Closer, error) {
		if dialErr != nil {
			return nil, nil, dialErr
		}
		return ch, &closeCounter{}, nil
	}

	p, err := NewReconnectingOTPPublisher(dial, "", zap.NewNop())
	require.NoError(t, err)

	ch.closed = true
	dialErr = errors.New("connection refused")
	err = p.SendOTP(context.Background(), sampleNotification())
	assert.ErrorContains(t, err, "connection refused")
	assert.Equal(t, int64(1), p.HealthCheck().MessagesFailed)
	assert.False(t, p.HealthCheck().IsHealthy)

	ch.closed = false
	dialErr = nil
	require.NoError(t, p.SendOTP(context.Background(), sampleNotification()))
	assert.Len(t, ch.published, 1)
}

func TestNewReconnectingOTPPublisher_DialError(t *testing.T) {
	dial := func() (Channel, io.Closer, error) {
		return nil, nil, errors.New("connection refused")
	}
	_, err := NewReconnectingOTPPublisher(dial, "", zap.NewNop())
	assert.ErrorContains(t, err, "failed to reconnect to RabbitMQ")
}

func TestOTPPublisher_NoChannel(t *testing.T) {
	p := NewOTPPublisher(nil, "", zap.NewNop())
	assert.ErrorIs(t, p.SendOTP(context.Background(), sampleNotification()), errNoChannel)
	assert.NoError(t, p.Close())
}

type fakeSender struct {
	sent []*gomail.Message
	err  error
}

func (f *fakeSender) DialAndSend(m ...*gomail.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, m...)
	return nil
}

func TestSMTPNotifier_SendOTP(t *testing.T) {
	sender := &fakeSender{}
	n := NewSMTPNotifierWithSender(sender, "noreply@example.com")

	require.NoError(t, n.SendOTP(context.Background(), sampleNotification()))
	require.Len(t, sender.sent, 1)
	assert.Equal(t, []string{"user@example.com"}, sender.sent[0].GetHeader("To"))
	assert.Equal(t, []string{"noreply@example.com"}, sender.sent[0].GetHeader("From"))

	sender.err = errors.New("smtp down")
	assert.ErrorContains(t, n.SendOTP(context.Background(), sampleNotification()), "smtp down")
}

func TestSMTPNotifier_HonoursCancelledContext(t *testing.T) {
	sender := &fakeSender{}
	n := NewSMTPNotifierWithSender(sender, "noreply@example.com")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, n.SendOTP(ctx, sampleNotification()), context.Canceled)
	assert.Empty(t, sender.sent)
}

func TestOTPBodiesCarryCode(t *testing.T) {
	n := sampleNotification()
	assert.Contains(t, otpTextBody(n), "123456")
	assert.Contains(t, otpHTMLBody(n), "<strong>123456</strong>")
	assert.Contains(t, otpTextBody(n), "2026-10-14 08:05:00")
}

func TestNewNotifier(t *testing.T) {
	logger := zap.NewNop()
	cfg := &config.ServiceConfig{}

	cfg.NotifierCfg.Driver = "none"
	n, closeFn, err := NewNotifier(cfg, logger)
	require.NoError(t, err)
	defer closeFn()
	assert.IsType(t, &LogNotifier{}, n)
	assert.NoError(t, n.SendOTP(context.Background(), sampleNotification()))

	cfg.NotifierCfg.Driver = "smtp"
	cfg.SMTPCfg = config.SMTPConfig{Host: "localhost", Port: 2525, Username: "u@example.com"}
	n, _, err = NewNotifier(cfg, logger)
	require.NoError(t, err)
	assert.IsType(t, &SMTPNotifier{}, n)

	cfg.NotifierCfg.Driver = "mailgun"
	cfg.MailgunCfg = config.MailgunConfig{Domain: "mg.example.com", APIKey: "key", From: "noreply@example.com"}
	n, _, err = NewNotifier(cfg, logger)
	require.NoError(t, err)
	assert.IsType(t, &MailgunNotifier{}, n)

	cfg.NotifierCfg.Driver = "pigeon"
	_, _, err = NewNotifier(cfg, logger)
	assert.Error(t, err)
}
