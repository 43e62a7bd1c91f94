package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/nazarli-shabnam/subscription-tracker/internal/clock"
	"github.com/nazarli-shabnam/subscription-tracker/internal/database"
	outboxDomain "github.com/nazarli-shabnam/subscription-tracker/internal/outbox/domain"
	"github.com/nazarli-shabnam/subscription-tracker/internal/subscription/domain"
	appValidation "github.com/nazarli-shabnam/subscription-tracker/internal/validation"
	webhookDomain "github.com/nazarli-shabnam/subscription-tracker/internal/webhook/domain"
)

const (
	// DefaultUpcomingDays is the renewal window used when none is requested.
	DefaultUpcomingDays = 30
	// MaxUpcomingDays bounds the renewal window.
	MaxUpcomingDays = 365
)

var (
	frequencyNames = lo.Map(domain.AllFrequencies, func(f domain.Frequency, _ int) string { return string(f) })

	// Owners may only choose these statuses; expiry is derived from the renewal date.
	creatableStatuses = appValidation.OneOf{string(domain.StatusActive), string(domain.StatusTrial)}
	updatableStatuses = appValidation.OneOf{
		string(domain.StatusActive),
		string(domain.StatusTrial),
		string(domain.StatusCancelled),
	}

	// decimal.Decimal is a driver.Valuer, so validation.Indirect would turn it into a string.
	positivePrice = validation.By(func(value interface{}) error {
		var price decimal.Decimal
		switch v := value.(type) {
		case decimal.Decimal:
			price = v
		case *decimal.Decimal:
			if v == nil {
				return nil
			}
			price = *v
		}
		if !price.IsPositive() {
			return validation.NewError("validation_positive_price", "must be greater than zero")
		}
		return nil
	})
)

// SubscriptionUseCase handles subscription business logic
type SubscriptionUseCase struct {
	txManager        database.TxManager
	subscriptionRepo SubscriptionRepository
	outboxRepo       OutboxRepository
	reminders        ReminderStarter
	clock            clock.Clock
	logger           *slog.Logger
}

// NewSubscriptionUseCase creates a new SubscriptionUseCase
func NewSubscriptionUseCase(
	txManager database.TxManager,
	subscriptionRepo SubscriptionRepository,
	outboxRepo OutboxRepository,
	reminders ReminderStarter,
	clk clock.Clock,
	logger *slog.Logger,
) *SubscriptionUseCase {
	if clk == nil {
		clk = clock.System()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SubscriptionUseCase{
		txManager:        txManager,
		subscriptionRepo: subscriptionRepo,
		outboxRepo:       outboxRepo,
		reminders:        reminders,
		clock:            clk,
		logger:           logger,
	}
}

func normalizeCreateInput(input *CreateSubscriptionInput) {
	input.Name = strings.TrimSpace(input.Name)
	input.Description = strings.TrimSpace(input.Description)
	input.Currency = strings.ToUpper(strings.TrimSpace(input.Currency))
	input.Frequency = strings.ToLower(strings.TrimSpace(input.Frequency))
	input.Category = strings.TrimSpace(input.Category)
	input.PaymentMethod = strings.TrimSpace(input.PaymentMethod)
	input.Status = strings.ToLower(strings.TrimSpace(input.Status))
}

func validateCreateInput(input CreateSubscriptionInput) error {
	err := validation.ValidateStruct(&input,
		validation.Field(&input.Name,
			validation.Required.Error("name is required"),
			validation.Length(2, 100).Error("name must be between 2 and 100 characters"),
		),
		validation.Field(&input.Description, validation.Length(0, 500)),
		validation.Field(&input.Price, positivePrice),
		validation.Field(&input.Currency, validation.Required, appValidation.Currency),
		validation.Field(&input.Frequency, validation.Required, appValidation.OneOf(frequencyNames)),
		validation.Field(&input.Category, validation.Required, validation.Length(1, 50)),
		validation.Field(&input.PaymentMethod, validation.Required, validation.Length(1, 100)),
		validation.Field(&input.Status, creatableStatuses),
		validation.Field(&input.StartDate, validation.Required.Error("start date is required")),
	)
	return appValidation.WrapValidationError(err)
}

// Create stores a subscription, records a subscription.created event and starts
// its reminder workflow. A workflow that fails to start is logged and does not
// fail the creation.
func (uc *SubscriptionUseCase) Create(
	ctx context.Context,
	input CreateSubscriptionInput,
) (*domain.Subscription, error) {
	normalizeCreateInput(&input)
	if err := validateCreateInput(input); err != nil {
		return nil, err
	}

	now := uc.clock.Now()
	s := &domain.Subscription{
		ID:            uuid.Must(uuid.NewV7()),
		OwnerID:       input.OwnerID,
		Name:          input.Name,
		Description:   input.Description,
		Price:         input.Price.Round(2),
		Currency:      input.Currency,
		Frequency:     domain.Frequency(input.Frequency),
		Category:      input.Category,
		PaymentMethod: input.PaymentMethod,
		Status:        domain.Status(lo.CoalesceOrEmpty(input.Status, string(domain.StatusActive))),
		StartDate:     input.StartDate.UTC(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	s.Renew()
	s.RefreshStatus(now)

	err := uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := uc.subscriptionRepo.Create(ctx, s); err != nil {
			return err
		}
		return uc.emit(ctx, webhookDomain.EventSubscriptionCreated, s, now)
	})
	if err != nil {
		return nil, err
	}

	uc.startReminders(ctx, s)
	return s, nil
}

// Get returns a subscription owned by ownerID with its status refreshed.
func (uc *SubscriptionUseCase) Get(ctx context.Context, ownerID, id uuid.UUID) (*domain.Subscription, error) {
	s, err := uc.getOwned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	s.RefreshStatus(uc.clock.Now())
	return s, nil
}

// List returns a page of ownerID's subscriptions.
func (uc *SubscriptionUseCase) List(
	ctx context.Context,
	ownerID uuid.UUID,
	offset, limit int,
) ([]*domain.Subscription, error) {
	subscriptions, err := uc.subscriptionRepo.ListByOwner(ctx, ownerID, offset, limit)
	if err != nil {
		return nil, err
	}
	now := uc.clock.Now()
	for _, s := range subscriptions {
		s.RefreshStatus(now)
	}
	return subscriptions, nil
}

// Upcoming returns ownerID's active and trial subscriptions renewing within the
// next days days. A non-positive window means DefaultUpcomingDays.
func (uc *SubscriptionUseCase) Upcoming(ctx context.Context, ownerID uuid.UUID, days int) ([]UpcomingRenewal, error) {
	if days <= 0 {
		days = DefaultUpcomingDays
	}
	if days > MaxUpcomingDays {
		return nil, appValidation.WrapValidationError(
			validation.NewError("validation_days", "days must not exceed 365"),
		)
	}

	now := uc.clock.Now()
	subscriptions, err := uc.subscriptionRepo.ListUpcomingRenewals(ctx, ownerID, now, clock.AddDays(now, days))
	if err != nil {
		return nil, err
	}

	return lo.Map(subscriptions, func(s *domain.Subscription, _ int) UpcomingRenewal {
		return UpcomingRenewal{Subscription: s, DaysUntilRenewal: s.DaysUntilRenewal(now)}
	}), nil
}

// Update applies a partial update. The renewal date is recomputed whenever the
// start date or frequency changes; switching back from cancelled clears the
// cancellation date.
func (uc *SubscriptionUseCase) Update(
	ctx context.Context,
	ownerID, id uuid.UUID,
	input UpdateSubscriptionInput,
) (*domain.Subscription, error) {
	if err := validateUpdateInput(input); err != nil {
		return nil, err
	}

	now := uc.clock.Now()
	var updated *domain.Subscription
	err := uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		s, err := uc.getOwned(ctx, ownerID, id)
		if err != nil {
			return err
		}

		applyUpdate(s, input, now)
		s.RefreshStatus(now)
		s.UpdatedAt = now

		if err := uc.subscriptionRepo.Update(ctx, s); err != nil {
			return err
		}
		updated = s
		return uc.emit(ctx, webhookDomain.EventSubscriptionUpdated, s, now)
	})
	if err != nil {
		return nil, err
	}

	uc.startReminders(ctx, updated)
	return updated, nil
}

// Cancel cancels a subscription. Cancelling twice returns the subscription
// unchanged and emits no second event.
func (uc *SubscriptionUseCase) Cancel(ctx context.Context, ownerID, id uuid.UUID) (*domain.Subscription, error) {
	now := uc.clock.Now()
	var cancelled *domain.Subscription
	err := uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		s, err := uc.getOwned(ctx, ownerID, id)
		if err != nil {
			return err
		}
		cancelled = s
		if !s.Cancel(now) {
			return nil
		}
		s.UpdatedAt = now

		if err := uc.subscriptionRepo.Update(ctx, s); err != nil {
			return err
		}
		return uc.emit(ctx, webhookDomain.EventSubscriptionCancelled, s, now)
	})
	if err != nil {
		return nil, err
	}
	return cancelled, nil
}

// Delete removes a subscription after recording a subscription.deleted event.
func (uc *SubscriptionUseCase) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	now := uc.clock.Now()
	return uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		s, err := uc.getOwned(ctx, ownerID, id)
		if err != nil {
			return err
		}
		if err := uc.emit(ctx, webhookDomain.EventSubscriptionDeleted, s, now); err != nil {
			return err
		}
		return uc.subscriptionRepo.Delete(ctx, s.ID)
	})
}

func (uc *SubscriptionUseCase) getOwned(ctx context.Context, ownerID, id uuid.UUID) (*domain.Subscription, error) {
	s, err := uc.subscriptionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.IsOwnedBy(ownerID) {
		return nil, domain.ErrSubscriptionForbidden
	}
	return s, nil
}

func (uc *SubscriptionUseCase) emit(
	ctx context.Context,
	event webhookDomain.Event,
	s *domain.Subscription,
	now time.Time,
) error {
	outboxEvent, err := outboxDomain.NewOutboxEvent(event.String(), s.OwnerID, s.ToEventData(), now)
	if err != nil {
		return err
	}
	return uc.outboxRepo.Create(ctx, outboxEvent)
}

// startReminders arms the reminder workflow of an active subscription. Starting
// is idempotent while a workflow is pending.
func (uc *SubscriptionUseCase) startReminders(ctx context.Context, s *domain.Subscription) {
	if uc.reminders == nil || !s.IsActive() {
		return
	}
	runID, err := uc.reminders.Start(ctx, s.ID)
	if err != nil {
		uc.logger.Error("failed to start reminder workflow",
			slog.String("subscription_id", s.ID.String()),
			slog.Any("error", err),
		)
		return
	}
	uc.logger.Debug("reminder workflow started",
		slog.String("subscription_id", s.ID.String()),
		slog.String("workflow_run_id", runID.String()),
	)
}

func validateUpdateInput(input UpdateSubscriptionInput) error {
	err := validation.ValidateStruct(&input,
		validation.Field(&input.Name,
			validation.NilOrNotEmpty.Error("name must not be empty"),
			validation.Length(2, 100).Error("name must be between 2 and 100 characters"),
		),
		validation.Field(&input.Description, validation.Length(0, 500)),
		validation.Field(&input.Price, positivePrice),
		validation.Field(&input.Currency, validation.NilOrNotEmpty, appValidation.Currency),
		validation.Field(&input.Frequency, validation.NilOrNotEmpty, appValidation.OneOf(frequencyNames)),
		validation.Field(&input.Category, validation.NilOrNotEmpty, validation.Length(1, 50)),
		validation.Field(&input.PaymentMethod, validation.NilOrNotEmpty, validation.Length(1, 100)),
		validation.Field(&input.Status, validation.NilOrNotEmpty, updatableStatuses),
		validation.Field(&input.StartDate, validation.When(
			input.StartDate != nil,
			validation.By(func(value interface{}) error {
				if input.StartDate.IsZero() {
					return validation.NewError("validation_start_date", "start date must not be zero")
				}
				return nil
			}),
		)),
	)
	return appValidation.WrapValidationError(err)
}

func applyUpdate(s *domain.Subscription, input UpdateSubscriptionInput, now time.Time) {
	if input.Name != nil {
		s.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		s.Description = strings.TrimSpace(*input.Description)
	}
	if input.Price != nil {
		s.Price = input.Price.Round(2)
	}
	if input.Currency != nil {
		s.Currency = *input.Currency
	}
	if input.Category != nil {
		s.Category = strings.TrimSpace(*input.Category)
	}
	if input.PaymentMethod != nil {
		s.PaymentMethod = strings.TrimSpace(*input.PaymentMethod)
	}

	renew := false
	if input.Frequency != nil && domain.Frequency(*input.Frequency) != s.Frequency {
		s.Frequency = domain.Frequency(*input.Frequency)
		renew = true
	}
	if input.StartDate != nil && !input.StartDate.Equal(s.StartDate) {
		s.StartDate = input.StartDate.UTC()
		renew = true
	}
	if renew {
		s.Renew()
	}

	if input.Status != nil {
		switch status := domain.Status(*input.Status); status {
		case domain.StatusCancelled:
			s.Cancel(now)
		default:
			s.Status = status
			s.CancellationDate = nil
		}
	}
}
