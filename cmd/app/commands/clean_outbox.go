package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	outboxUsecase "github.com/nazarli-shabnam/subscription-tracker/internal/outbox/usecase"
)

// RunCleanOutbox deletes processed outbox events older than days.
func RunCleanOutbox(
	ctx context.Context,
	outboxUseCase outboxUsecase.UseCase,
	logger *slog.Logger,
	writer io.Writer,
	days int,
	format string,
) error {
	if days < 0 {
		return fmt.Errorf("days must be a positive number, got: %d", days)
	}

	logger.Info("cleaning outbox events", slog.Int("days", days))

	count, err := outboxUseCase.Cleanup(ctx, time.Duration(days)*24*time.Hour)
	if err != nil {
		return fmt.Errorf("failed to delete outbox events: %w", err)
	}

	if format == "json" {
		return writeJSON(writer, map[string]any{
			"count": count,
			"days":  days,
		})
	}

	_, err = fmt.Fprintf(writer, "Successfully deleted %d outbox event(s) older than %d day(s)\n", count, days)
	return err
}
