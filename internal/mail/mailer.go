// Package mail sends transactional email. Postmark is used in production; the
// log mailer records messages instead of sending them.
package mail

import (
	"context"

	validation "github.com/jellydator/validation"

	apperrors "github.com/nazarli-shabnam/subscription-tracker/internal/errors"
	appValidation "github.com/nazarli-shabnam/subscription-tracker/internal/validation"
)

// Supported mail providers.
const (
	ProviderLog      = "log"
	ProviderPostmark = "postmark"
)

var (
	// ErrFailedToSend indicates the provider rejected or never received the message.
	ErrFailedToSend = apperrors.New("failed to send email")

	// ErrInvalidConfig indicates the mailer cannot be built from the configuration.
	ErrInvalidConfig = apperrors.New("invalid mail configuration")
)

// Mailer delivers a single message.
type Mailer interface {
	Send(ctx context.Context, message Message) error
}

// Message is an outgoing HTML email.
type Message struct {
	To       string
	Subject  string
	HTMLBody string
	// Tag groups messages in provider analytics.
	Tag string
}

// Validate checks the message before it reaches a provider.
func (m Message) Validate() error {
	err := validation.ValidateStruct(&m,
		validation.Field(&m.To, validation.Required, appValidation.Email),
		validation.Field(&m.Subject, validation.Required, appValidation.NotBlank, validation.Length(1, 998)),
		validation.Field(&m.HTMLBody, validation.Required),
	)
	return appValidation.WrapValidationError(err)
}

// Config selects and configures a provider.
type Config struct {
	Provider             string
	PostmarkServerToken  string
	PostmarkAccountToken string
	SenderEmail          string
	SupportEmail         string
}
