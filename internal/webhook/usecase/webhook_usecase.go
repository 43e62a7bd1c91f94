package usecase

import (
	"context"
	"strings"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	"github.com/nazarli-shabnam/subscription-tracker/internal/clock"
	appValidation "github.com/nazarli-shabnam/subscription-tracker/internal/validation"
	"github.com/nazarli-shabnam/subscription-tracker/internal/webhook/domain"
	"github.com/nazarli-shabnam/subscription-tracker/internal/webhook/service"
)

// WebhookUseCase manages webhook registrations
type WebhookUseCase struct {
	webhookRepo        WebhookRepository
	keeper             service.SecretKeeper
	clock              clock.Clock
	defaultMaxFailures int
}

// NewWebhookUseCase creates a new WebhookUseCase
func NewWebhookUseCase(
	webhookRepo WebhookRepository,
	keeper service.SecretKeeper,
	clk clock.Clock,
	defaultMaxFailures int,
) *WebhookUseCase {
	if defaultMaxFailures <= 0 {
		defaultMaxFailures = domain.DefaultMaxFailures
	}
	return &WebhookUseCase{
		webhookRepo:        webhookRepo,
		keeper:             keeper,
		clock:              clk,
		defaultMaxFailures: defaultMaxFailures,
	}
}

func validateURL(raw string) error {
	err := validation.Validate(raw,
		validation.Required,
		appValidation.NotBlank,
		validation.Length(1, 2048),
		appValidation.HTTPURL,
	)
	if err != nil {
		return domain.ErrInvalidURL
	}
	return nil
}

func validateMaxFailures(maxFailures *int) error {
	if maxFailures != nil && *maxFailures <= 0 {
		return domain.ErrInvalidMaxFailures
	}
	return nil
}

// Create registers a webhook with a freshly generated secret.
func (uc *WebhookUseCase) Create(ctx context.Context, input CreateWebhookInput) (*CreateWebhookOutput, error) {
	input.URL = strings.TrimSpace(input.URL)
	if err := validateURL(input.URL); err != nil {
		return nil, err
	}
	events, err := domain.ParseEvents(input.Events)
	if err != nil {
		return nil, err
	}
	if err := validateMaxFailures(input.MaxFailures); err != nil {
		return nil, err
	}

	secret, err := service.GenerateSecret()
	if err != nil {
		return nil, err
	}
	sealed, err := uc.keeper.Seal(ctx, secret)
	if err != nil {
		return nil, err
	}

	maxFailures := uc.defaultMaxFailures
	if input.MaxFailures != nil {
		maxFailures = *input.MaxFailures
	}

	now := uc.clock.Now()
	webhook := &domain.Webhook{
		ID:           uuid.Must(uuid.NewV7()),
		OwnerID:      input.OwnerID,
		URL:          input.URL,
		SealedSecret: sealed,
		Events:       events,
		IsActive:     true,
		MaxFailures:  maxFailures,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := uc.webhookRepo.Create(ctx, webhook); err != nil {
		return nil, err
	}
	return &CreateWebhookOutput{Webhook: webhook, Secret: secret}, nil
}

// Get returns a webhook owned by ownerID.
func (uc *WebhookUseCase) Get(ctx context.Context, ownerID, id uuid.UUID) (*domain.Webhook, error) {
	webhook, err := uc.webhookRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !webhook.IsOwnedBy(ownerID) {
		return nil, domain.ErrWebhookForbidden
	}
	return webhook, nil
}

// List returns every webhook owned by ownerID.
func (uc *WebhookUseCase) List(ctx context.Context, ownerID uuid.UUID) ([]*domain.Webhook, error) {
	return uc.webhookRepo.ListByOwner(ctx, ownerID)
}

// Update applies a partial update. Registration fields and activity are written
// separately: activity changes only when IsActive is supplied, so a concurrent
// failure that trips the breaker is never undone by an unrelated edit. Setting
// IsActive to true reactivates the webhook and clears its failure streak.
func (uc *WebhookUseCase) Update(
	ctx context.Context,
	ownerID, id uuid.UUID,
	input UpdateWebhookInput,
) (*domain.Webhook, error) {
	webhook, err := uc.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if input.URL != nil {
		url := strings.TrimSpace(*input.URL)
		if err := validateURL(url); err != nil {
			return nil, err
		}
		webhook.URL = url
	}
	if input.Events != nil {
		events, err := domain.ParseEvents(*input.Events)
		if err != nil {
			return nil, err
		}
		webhook.Events = events
	}
	if input.MaxFailures != nil {
		if err := validateMaxFailures(input.MaxFailures); err != nil {
			return nil, err
		}
		webhook.MaxFailures = *input.MaxFailures
	}

	now := uc.clock.Now()
	webhook.UpdatedAt = now
	if err := uc.webhookRepo.Update(ctx, webhook); err != nil {
		return nil, err
	}

	if input.IsActive != nil {
		state, err := uc.webhookRepo.SetActive(ctx, id, *input.IsActive, now)
		if err != nil {
			return nil, err
		}
		webhook.ApplyState(state)
	}
	return webhook, nil
}

// Delete removes a webhook owned by ownerID.
func (uc *WebhookUseCase) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	if _, err := uc.Get(ctx, ownerID, id); err != nil {
		return err
	}
	return uc.webhookRepo.Delete(ctx, id)
}

// Reactivate turns a webhook back on and clears its failure streak.
func (uc *WebhookUseCase) Reactivate(ctx context.Context, id uuid.UUID) (*domain.Webhook, error) {
	webhook, err := uc.webhookRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := uc.clock.Now()
	state, err := uc.webhookRepo.SetActive(ctx, id, true, now)
	if err != nil {
		return nil, err
	}
	webhook.ApplyState(state)
	webhook.UpdatedAt = now
	return webhook, nil
}
