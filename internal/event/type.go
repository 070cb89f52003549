package event

import (
	"context"
	"fmt"
	"time"
)

const OTPQueue string = "otp_notifications"

// OTPNotification is handed to a Notifier after a code is issued.
type OTPNotification struct {
	UserID    int64     `json:"user_id"`
	Email     string    `json:"email"`
	OTP       string    `json:"otp"`
	ExpiresAt time.Time `json:"expires_at"`
}

type OTPEventType string

const OTPIssued OTPEventType = "otp_issued"

// OTPEvent is the message body published to OTPQueue.
type OTPEvent struct {
	ID        string          `json:"id"`
	EventType OTPEventType    `json:"event_type"`
	Payload   OTPNotification `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// Notifier delivers one-time codes through a channel the caller does not
// see in the HTTP response.
type Notifier interface {
	SendOTP(ctx context.Context, n OTPNotification) error
}

func otpSubject() string {
	return "Your verification code"
}

func otpHTMLBody(n OTPNotification) string {
	return fmt.Sprintf(`
		<html>
		<body>
			<h2>Verification code</h2>
			<p>Your one-time code is <strong>%s</strong>.</p>
			<p>It expires at %s UTC. If you did not request it, ignore this email.</p>
		</body>
		</html>
		`, n.OTP, n.ExpiresAt.UTC().Format("2006-01-02 15:04:05"))
}

func otpTextBody(n OTPNotification) string {
	return fmt.Sprintf("Your one-time code is %s. It expires at %s UTC.",
		n.OTP, n.ExpiresAt.UTC().Format("2006-01-02 15:04:05"))
}
