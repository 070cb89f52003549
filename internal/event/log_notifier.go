package event

import (
	"context"

	"go.uber.org/zap"
)

// LogNotifier records that a code was issued without delivering it. The
// code itself is never logged.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (l *LogNotifier) SendOTP(_ context.Context, n OTPNotification) error {
	l.logger.Info("otp issued without delivery channel",
		zap.Int64("user_id", n.UserID),
		zap.String("email", n.Email),
		zap.Time("expires_at", n.ExpiresAt))
	return nil
}
