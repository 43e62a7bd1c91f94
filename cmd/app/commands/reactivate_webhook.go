package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	webhookUsecase "github.com/nazarli-shabnam/subscription-tracker/internal/webhook/usecase"
)

// RunReactivateWebhook turns a deactivated webhook back on and resets its
// failure count.
func RunReactivateWebhook(
	ctx context.Context,
	webhookUseCase webhookUsecase.UseCase,
	logger *slog.Logger,
	writer io.Writer,
	id string,
	format string,
) error {
	webhookID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid webhook ID format: %w", err)
	}

	webhook, err := webhookUseCase.Reactivate(ctx, webhookID)
	if err != nil {
		return fmt.Errorf("failed to reactivate webhook: %w", err)
	}

	logger.Info("webhook reactivated",
		slog.String("webhook_id", webhook.ID.String()),
		slog.String("owner_id", webhook.OwnerID.String()),
	)

	if format == "json" {
		return writeJSON(writer, map[string]any{
			"id":            webhook.ID.String(),
			"url":           webhook.URL,
			"is_active":     webhook.IsActive,
			"failure_count": webhook.FailureCount,
		})
	}

	_, err = fmt.Fprintf(writer, "Webhook %s reactivated (%s)\n", webhook.ID, webhook.URL)
	return err
}
