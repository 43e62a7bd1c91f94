// Package service delivers renewal reminders to subscription owners by email.
package service

import (
	"bytes"
	"context"
	"html/template"
	"log/slog"

	"github.com/google/uuid"

	apperrors "github.com/nazarli-shabnam/subscription-tracker/internal/errors"
	"github.com/nazarli-shabnam/subscription-tracker/internal/mail"
	"github.com/nazarli-shabnam/subscription-tracker/internal/metrics"
	subscriptionDomain "github.com/nazarli-shabnam/subscription-tracker/internal/subscription/domain"
	userDomain "github.com/nazarli-shabnam/subscription-tracker/internal/user/domain"
	webhookDomain "github.com/nazarli-shabnam/subscription-tracker/internal/webhook/domain"
)

const (
	metricsChannel = "email"
	mailTag        = "renewal-reminder"
)

const reminderTemplate = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <p>Hello {{.UserName}},</p>
  <p>Your <strong>{{.Name}}</strong> subscription renews on <strong>{{.RenewalDate}}</strong> ({{.Label}}).</p>
  <table style="border-collapse: collapse;">
    <tr><td style="padding: 4px 12px 4px 0;">Plan</td><td>{{.Name}}</td></tr>
    <tr><td style="padding: 4px 12px 4px 0;">Price</td><td>{{.Price}} {{.Currency}}</td></tr>
    <tr><td style="padding: 4px 12px 4px 0;">Billing</td><td>{{.Frequency}}</td></tr>
    {{- if .PaymentMethod}}
    <tr><td style="padding: 4px 12px 4px 0;">Payment method</td><td>{{.PaymentMethod}}</td></tr>
    {{- end}}
  </table>
  <p>If you no longer need it, cancel before the renewal date.</p>
</body>
</html>`

var reminderTmpl = template.Must(template.New("renewal_reminder").Parse(reminderTemplate))

// UserReader resolves the owner of a subscription.
type UserReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*userDomain.User, error)
}

type reminderView struct {
	UserName      string
	Name          string
	Price         string
	Currency      string
	Frequency     string
	PaymentMethod string
	RenewalDate   string
	Label         string
}

// MailDispatcher composes a reminder email and hands it to the Mailer.
type MailDispatcher struct {
	users   UserReader
	mailer  mail.Mailer
	metrics metrics.BusinessMetrics
	logger  *slog.Logger
}

// NewMailDispatcher creates a new MailDispatcher
func NewMailDispatcher(
	users UserReader,
	mailer mail.Mailer,
	businessMetrics metrics.BusinessMetrics,
	logger *slog.Logger,
) *MailDispatcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if businessMetrics == nil {
		businessMetrics = metrics.NewNoOpBusinessMetrics()
	}
	return &MailDispatcher{
		users:   users,
		mailer:  mailer,
		metrics: businessMetrics,
		logger:  logger,
	}
}

// Dispatch emails the owner of s a reminder labeled label. Owners with email
// disabled are skipped without error.
func (d *MailDispatcher) Dispatch(ctx context.Context, label string, s *subscriptionDomain.Subscription) error {
	event := webhookDomain.EventSubscriptionRenewalReminder.String()

	user, err := d.users.GetByID(ctx, s.OwnerID)
	if err != nil {
		d.metrics.RecordDelivery(ctx, metricsChannel, event, metrics.OutcomeFailed)
		return err
	}

	if !user.Preferences.EmailEnabled {
		d.logger.Debug("reminder email disabled by owner",
			slog.String("subscription_id", s.ID.String()),
			slog.String("owner_id", s.OwnerID.String()),
		)
		d.metrics.RecordDelivery(ctx, metricsChannel, event, metrics.OutcomeSkipped)
		return nil
	}

	message, err := ComposeReminder(user, label, s)
	if err != nil {
		d.metrics.RecordDelivery(ctx, metricsChannel, event, metrics.OutcomeFailed)
		return err
	}

	if err := d.mailer.Send(ctx, message); err != nil {
		d.metrics.RecordDelivery(ctx, metricsChannel, event, metrics.OutcomeFailed)
		return err
	}

	d.logger.Info("renewal reminder sent",
		slog.String("subscription_id", s.ID.String()),
		slog.String("label", label),
	)
	d.metrics.RecordDelivery(ctx, metricsChannel, event, metrics.OutcomeDelivered)
	return nil
}

// ComposeReminder renders the reminder email for user about s.
func ComposeReminder(user *userDomain.User, label string, s *subscriptionDomain.Subscription) (mail.Message, error) {
	view := reminderView{
		UserName:      user.Name,
		Name:          s.Name,
		Price:         s.Price.StringFixed(2),
		Currency:      s.Currency,
		Frequency:     string(s.Frequency),
		PaymentMethod: s.PaymentMethod,
		RenewalDate:   s.RenewalDate.UTC().Format("January 2, 2006"),
		Label:         label,
	}

	var body bytes.Buffer
	if err := reminderTmpl.Execute(&body, view); err != nil {
		return mail.Message{}, apperrors.Wrap(err, "failed to render reminder email")
	}

	return mail.Message{
		To:       user.Email,
		Subject:  "Reminder: your " + s.Name + " subscription renews soon (" + label + ")",
		HTMLBody: body.String(),
		Tag:      mailTag,
	}, nil
}
