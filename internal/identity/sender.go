package identity

import (
	"context"

	"github.com/dmitrijs2005/campushub/internal/logging"
)

// OTPSender delivers one-time codes to an email address.
type OTPSender interface {
	Send(ctx context.Context, email, code string) error
}

// LogSender writes codes to the log. It is meant for local development,
// where no mail relay is configured.
type LogSender struct {
	logger logging.Logger
}

func NewLogSender(l logging.Logger) *LogSender {
	return &LogSender{logger: l.With("module", "otp_sender")}
}

func (s *LogSender) Send(ctx context.Context, email, code string) error {
	s.logger.Info(ctx, "one-time code issued", "email", email, "code", code)
	return nil
}
