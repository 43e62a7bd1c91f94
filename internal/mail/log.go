package mail

import (
	"context"
	"log/slog"
)

type logMailer struct {
	logger *slog.Logger
}

// NewLogMailer creates a Mailer that only logs messages. Used for local
// development and when no provider is configured.
func NewLogMailer(logger *slog.Logger) Mailer {
	return &logMailer{logger: logger}
}

func (m *logMailer) Send(ctx context.Context, message Message) error {
	if err := message.Validate(); err != nil {
		return err
	}
	m.logger.InfoContext(ctx, "email sent",
		slog.String("to", message.To),
		slog.String("subject", message.Subject),
		slog.String("tag", message.Tag),
		slog.Int("body_bytes", len(message.HTMLBody)),
	)
	return nil
}

// New builds the Mailer selected by cfg.Provider.
func New(cfg Config, logger *slog.Logger) (Mailer, error) {
	switch cfg.Provider {
	case ProviderPostmark:
		return NewPostmarkMailer(cfg)
	case ProviderLog, "":
		return NewLogMailer(logger), nil
	default:
		return nil, ErrInvalidConfig
	}
}
