package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	userUsecase "github.com/nazarli-shabnam/subscription-tracker/internal/user/usecase"
)

// RunCreateUser registers a user so reminders have an address to go to.
func RunCreateUser(
	ctx context.Context,
	userUseCase userUsecase.UseCase,
	logger *slog.Logger,
	writer io.Writer,
	name string,
	email string,
	format string,
) error {
	user, err := userUseCase.Register(ctx, userUsecase.RegisterUserInput{
		Name:  name,
		Email: email,
	})
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	logger.Info("user created", slog.String("user_id", user.ID.String()))

	if format == "json" {
		return writeJSON(writer, map[string]any{
			"id":    user.ID.String(),
			"name":  user.Name,
			"email": user.Email,
		})
	}

	_, err = fmt.Fprintf(writer, "User created\nID: %s\nEmail: %s\n", user.ID, user.Email)
	return err
}
