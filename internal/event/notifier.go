package event

import (
	"auth-account/internal/config"
	"fmt"
	"io"

	"go.uber.org/zap"
)

// NewNotifier builds the delivery driver selected by NOTIFIER_DRIVER. The
// returned close function releases any connection it opened.
func NewNotifier(cfg *config.ServiceConfig, logger *zap.Logger) (Notifier, func(), error) {
	noop := func() {}

	switch cfg.NotifierCfg.Driver {
	case "", "none":
		return NewLogNotifier(logger), noop, nil

	case "amqp":
		r := cfg.RabbitMQCfg
		dial := func() (Channel, io.Closer, error) {
			conn, err := ConnectRabbitMQ(r.URL())
			if err != nil {
				return nil, nil, err
			}
			logger.Info("connected to RabbitMQ", zap.String("host", r.Host), zap.String("port", r.Port))
			return conn.Channel, conn, nil
		}
		publisher, err := NewReconnectingOTPPublisher(dial, r.Queue, logger)
		if err != nil {
			return nil, nil, err
		}
		return publisher, func() { _ = publisher.Close() }, nil

	case "smtp":
		s := cfg.SMTPCfg
		return NewSMTPNotifier(s.Host, s.Port, s.Username, s.Password, s.From), noop, nil

	case "mailgun":
		m := cfg.MailgunCfg
		return NewMailgunNotifier(m.Domain, m.APIKey, m.APIBase, m.From), noop, nil

	default:
		return nil, nil, fmt.Errorf("unsupported notifier driver %q", cfg.NotifierCfg.Driver)
	}
}
