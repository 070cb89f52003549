package event

import (
	"context"
	"fmt"
	"time"

	"github.com/mailgun/mailgun-go/v4"
)

// MailgunNotifier sends codes through the Mailgun HTTP API.
type MailgunNotifier struct {
	mg   *mailgun.MailgunImpl
	from string
}

func NewMailgunNotifier(domain, apiKey, apiBase, from string) *MailgunNotifier {
	mg := mailgun.NewMailgun(domain, apiKey)
	if apiBase != "" {
		mg.SetAPIBase(apiBase)
	}
	return &MailgunNotifier{mg: mg, from: from}
}

func (m *MailgunNotifier) SendOTP(ctx context.Context, n OTPNotification) error {
	message := mailgun.NewMessage(m.from, otpSubject(), otpTextBody(n), n.Email)
	message.SetHtml(otpHTMLBody(n))

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, _, err := m.mg.Send(ctx, message); err != nil {
		return fmt.Errorf("failed to send otp via mailgun: %w", err)
	}
	return nil
}
