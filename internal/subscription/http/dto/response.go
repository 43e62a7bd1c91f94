package dto

import (
	"time"

	"github.com/samber/lo"

	"github.com/nazarli-shabnam/subscription-tracker/internal/subscription/domain"
	"github.com/nazarli-shabnam/subscription-tracker/internal/subscription/usecase"
)

// SubscriptionResponse represents a subscription in API responses
type SubscriptionResponse struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Description      string     `json:"description"`
	Price            string     `json:"price"`
	Currency         string     `json:"currency"`
	Frequency        string     `json:"frequency"`
	Category         string     `json:"category"`
	PaymentMethod    string     `json:"payment_method"`
	Status           string     `json:"status"`
	StartDate        time.Time  `json:"start_date"`
	RenewalDate      time.Time  `json:"renewal_date"`
	CancellationDate *time.Time `json:"cancellation_date"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// ListSubscriptionsResponse wraps a page of subscriptions.
type ListSubscriptionsResponse struct {
	Data []SubscriptionResponse `json:"data"`
}

// UpcomingRenewalResponse is a subscription with the days left before renewal.
type UpcomingRenewalResponse struct {
	SubscriptionResponse
	DaysUntilRenewal int `json:"days_until_renewal"`
}

// ListUpcomingRenewalsResponse wraps upcoming renewals.
type ListUpcomingRenewalsResponse struct {
	Data []UpcomingRenewalResponse `json:"data"`
}

// MapSubscriptionToResponse converts a domain subscription to an API response
func MapSubscriptionToResponse(s *domain.Subscription) SubscriptionResponse {
	return SubscriptionResponse{
		ID:               s.ID.String(),
		Name:             s.Name,
		Description:      s.Description,
		Price:            s.Price.StringFixed(2),
		Currency:         s.Currency,
		Frequency:        string(s.Frequency),
		Category:         s.Category,
		PaymentMethod:    s.PaymentMethod,
		Status:           string(s.Status),
		StartDate:        s.StartDate,
		RenewalDate:      s.RenewalDate,
		CancellationDate: s.CancellationDate,
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
	}
}

// MapSubscriptionsToListResponse converts a list of subscriptions to an API response
func MapSubscriptionsToListResponse(subscriptions []*domain.Subscription) ListSubscriptionsResponse {
	return ListSubscriptionsResponse{
		Data: lo.Map(subscriptions, func(s *domain.Subscription, _ int) SubscriptionResponse {
			return MapSubscriptionToResponse(s)
		}),
	}
}

// MapUpcomingRenewalsToResponse converts upcoming renewals to an API response
func MapUpcomingRenewalsToResponse(renewals []usecase.UpcomingRenewal) ListUpcomingRenewalsResponse {
	return ListUpcomingRenewalsResponse{
		Data: lo.Map(renewals, func(r usecase.UpcomingRenewal, _ int) UpcomingRenewalResponse {
			return UpcomingRenewalResponse{
				SubscriptionResponse: MapSubscriptionToResponse(r.Subscription),
				DaysUntilRenewal:     r.DaysUntilRenewal,
			}
		}),
	}
}
