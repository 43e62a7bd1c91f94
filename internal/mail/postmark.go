package mail

import (
	"context"
	"fmt"

	"github.com/mrz1836/postmark"

	apperrors "github.com/nazarli-shabnam/subscription-tracker/internal/errors"
	appValidation "github.com/nazarli-shabnam/subscription-tracker/internal/validation"
)

type postmarkMailer struct {
	client *postmark.Client
	config Config
}

// NewPostmarkMailer creates a Mailer backed by Postmark's transactional API.
func NewPostmarkMailer(cfg Config) (Mailer, error) {
	if cfg.PostmarkServerToken == "" {
		return nil, apperrors.Wrap(ErrInvalidConfig, "postmark server token is required")
	}
	if cfg.PostmarkAccountToken == "" {
		return nil, apperrors.Wrap(ErrInvalidConfig, "postmark account token is required")
	}
	if err := appValidation.Email.Validate(cfg.SenderEmail); err != nil || cfg.SenderEmail == "" {
		return nil, apperrors.Wrap(ErrInvalidConfig, "sender email must be a valid email address")
	}
	if cfg.SupportEmail == "" {
		cfg.SupportEmail = cfg.SenderEmail
	}

	return &postmarkMailer{
		client: postmark.NewClient(cfg.PostmarkServerToken, cfg.PostmarkAccountToken),
		config: cfg,
	}, nil
}

// Send delivers message through Postmark. Replies go to the support address.
func (m *postmarkMailer) Send(ctx context.Context, message Message) error {
	if err := message.Validate(); err != nil {
		return err
	}

	resp, err := m.client.SendEmail(ctx, postmark.Email{
		From:       m.config.SenderEmail,
		ReplyTo:    m.config.SupportEmail,
		To:         message.To,
		Subject:    message.Subject,
		Tag:        message.Tag,
		HTMLBody:   message.HTMLBody,
		TrackOpens: true,
	})
	if err != nil {
		return apperrors.Wrap(ErrFailedToSend, err.Error())
	}
	if resp.ErrorCode > 0 {
		return apperrors.Wrap(ErrFailedToSend, fmt.Sprintf("postmark error: %d - %s", resp.ErrorCode, resp.Message))
	}
	return nil
}
