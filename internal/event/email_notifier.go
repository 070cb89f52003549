package event

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"
)

// MailSender is satisfied by *gomail.Dialer.
type MailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPNotifier emails codes directly over SMTP.
type SMTPNotifier struct {
	sender MailSender
	from   string
}

func NewSMTPNotifier(host string, port int, username, password, from string) *SMTPNotifier {
	if from == "" {
		from = username
	}
	return &SMTPNotifier{
		sender: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

// NewSMTPNotifierWithSender is used when the dialer is customised or faked.
func NewSMTPNotifierWithSender(sender MailSender, from string) *SMTPNotifier {
	return &SMTPNotifier{sender: sender, from: from}
}

func (s *SMTPNotifier) SendOTP(ctx context.Context, n OTPNotification) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", n.Email)
	m.SetHeader("Subject", otpSubject())
	m.SetBody("text/plain", otpTextBody(n))
	m.AddAlternative("text/html", otpHTMLBody(n))

	if err := s.sender.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send otp email: %w", err)
	}
	return nil
}
