package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	reminderUsecase "github.com/nazarli-shabnam/subscription-tracker/internal/reminder/usecase"
)

// RunStartReminder starts, or returns the pending, reminder workflow of a
// subscription.
func RunStartReminder(
	ctx context.Context,
	reminderUseCase reminderUsecase.UseCase,
	logger *slog.Logger,
	writer io.Writer,
	subscriptionID string,
	format string,
) error {
	id, err := uuid.Parse(subscriptionID)
	if err != nil {
		return fmt.Errorf("invalid subscription ID format: %w", err)
	}

	runID, err := reminderUseCase.Start(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to start reminder workflow: %w", err)
	}

	logger.Info("reminder workflow started",
		slog.String("subscription_id", id.String()),
		slog.String("workflow_run_id", runID.String()),
	)

	if format == "json" {
		return writeJSON(writer, map[string]any{
			"subscription_id": id.String(),
			"workflow_run_id": runID.String(),
		})
	}

	_, err = fmt.Fprintf(writer, "Workflow run ID: %s\n", runID)
	return err
}
