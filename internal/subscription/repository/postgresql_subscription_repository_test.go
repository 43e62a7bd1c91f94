package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nazarli-shabnam/subscription-tracker/internal/subscription/domain"
	"github.com/nazarli-shabnam/subscription-tracker/internal/testutil"
)

var subscriptionColumnNames = []string{
	"id", "owner_id", "name", "description", "price", "currency", "frequency", "category",
	"payment_method", "status", "start_date", "renewal_date", "cancellation_date", "created_at", "updated_at",
}

func newTestSubscription(ownerID uuid.UUID, renewal time.Time) *domain.Subscription {
	now := time.Now().UTC().Truncate(time.Microsecond)
	renewal = renewal.UTC().Truncate(time.Microsecond)
	return &domain.Subscription{
		ID:            uuid.Must(uuid.NewV7()),
		OwnerID:       ownerID,
		Name:          "Netflix",
		Description:   "family plan",
		Price:         decimal.RequireFromString("15.99"),
		Currency:      "USD",
		Frequency:     domain.FrequencyMonthly,
		Category:      "entertainment",
		PaymentMethod: "card",
		Status:        domain.StatusActive,
		StartDate:     renewal.AddDate(0, 0, -30),
		RenewalDate:   renewal,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestPostgreSQLSubscriptionRepository_GetByID(t *testing.T) {
	t.Run("ScansRow", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close() //nolint:errcheck

		repo := NewPostgreSQLSubscriptionRepository(db)
		id := uuid.Must(uuid.NewV7())
		ownerID := uuid.Must(uuid.NewV7())
		now := time.Now().UTC()
		cancelled := now.Add(-time.Hour)

		mock.ExpectQuery("SELECT (.+) FROM subscriptions WHERE id = \\$1").
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(subscriptionColumnNames).AddRow(
				id.String(), ownerID.String(), "Spotify", "", []byte("9.99"), "EUR", "monthly", "music",
				"card", "cancelled", now.AddDate(0, 0, -30), now, cancelled, now, now,
			))

		s, err := repo.GetByID(context.Background(), id)

		require.NoError(t, err)
		assert.Equal(t, id, s.ID)
		assert.Equal(t, ownerID, s.OwnerID)
		assert.True(t, decimal.RequireFromString("9.99").Equal(s.Price))
		assert.Equal(t, domain.FrequencyMonthly, s.Frequency)
		assert.Equal(t, domain.StatusCancelled, s.Status)
		require.NotNil(t, s.CancellationDate)
		assert.Equal(t, cancelled, *s.CancellationDate)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NotFound", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close() //nolint:errcheck

		repo := NewPostgreSQLSubscriptionRepository(db)
		id := uuid.Must(uuid.NewV7())

		mock.ExpectQuery("SELECT (.+) FROM subscriptions").
			WithArgs(id).
			WillReturnError(sql.ErrNoRows)

		_, err = repo.GetByID(context.Background(), id)

		assert.ErrorIs(t, err, domain.ErrSubscriptionNotFound)
	})
}

func TestPostgreSQLSubscriptionRepository_UpdateAndDelete_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck

	repo := NewPostgreSQLSubscriptionRepository(db)
	s := newTestSubscription(uuid.Must(uuid.NewV7()), time.Now().AddDate(0, 0, 10))

	mock.ExpectExec("UPDATE subscriptions SET").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM subscriptions").WithArgs(s.ID).WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Update(context.Background(), s), domain.ErrSubscriptionNotFound)
	assert.ErrorIs(t, repo.Delete(context.Background(), s.ID), domain.ErrSubscriptionNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLSubscriptionRepository_Integration(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	ctx := context.Background()
	repo := NewPostgreSQLSubscriptionRepository(db)
	ownerID := testutil.CreateTestUser(t, db, "postgres", "owner@example.com")
	now := time.Now().UTC()

	t.Run("CreateGetUpdateDelete", func(t *testing.T) {
		s := newTestSubscription(ownerID, now.AddDate(0, 0, 10))
		require.NoError(t, repo.Create(ctx, s))

		found, err := repo.GetByID(ctx, s.ID)
		require.NoError(t, err)
		assert.Equal(t, s.Name, found.Name)
		assert.True(t, s.Price.Equal(found.Price))
		assert.True(t, s.RenewalDate.Equal(found.RenewalDate))
		assert.Nil(t, found.CancellationDate)

		found.Cancel(now)
		found.UpdatedAt = now
		require.NoError(t, repo.Update(ctx, found))

		updated, err := repo.GetByID(ctx, s.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusCancelled, updated.Status)
		assert.NotNil(t, updated.CancellationDate)

		require.NoError(t, repo.Delete(ctx, s.ID))
		_, err = repo.GetByID(ctx, s.ID)
		assert.ErrorIs(t, err, domain.ErrSubscriptionNotFound)
	})

	t.Run("ListAndUpcoming", func(t *testing.T) {
		soon := newTestSubscription(ownerID, now.AddDate(0, 0, 3))
		later := newTestSubscription(ownerID, now.AddDate(0, 0, 60))
		cancelled := newTestSubscription(ownerID, now.AddDate(0, 0, 5))
		cancelled.Cancel(now)
		for _, s := range []*domain.Subscription{soon, later, cancelled} {
			require.NoError(t, repo.Create(ctx, s))
		}

		all, err := repo.ListByOwner(ctx, ownerID, 0, 10)
		require.NoError(t, err)
		assert.Len(t, all, 3)

		page, err := repo.ListByOwner(ctx, ownerID, 1, 1)
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, cancelled.ID, page[0].ID)

		upcoming, err := repo.ListUpcomingRenewals(ctx, ownerID, now, now.AddDate(0, 0, 30))
		require.NoError(t, err)
		require.Len(t, upcoming, 1)
		assert.Equal(t, soon.ID, upcoming[0].ID)
	})
}
