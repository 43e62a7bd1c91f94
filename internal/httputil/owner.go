package httputil

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/nazarli-shabnam/subscription-tracker/internal/errors"
)

// OwnerHeader carries the authenticated user's ID, set by the upstream auth gateway.
const OwnerHeader = "X-User-ID"

const ownerIDKey = "owner_id"

// SetOwnerID stores the caller's user ID in the Gin context.
func SetOwnerID(c *gin.Context, ownerID uuid.UUID) {
	c.Set(ownerIDKey, ownerID)
}

// GetOwnerID returns the caller's user ID stored by the owner middleware.
func GetOwnerID(c *gin.Context) (uuid.UUID, error) {
	value, ok := c.Get(ownerIDKey)
	if !ok {
		return uuid.Nil, apperrors.ErrUnauthorized
	}
	ownerID, ok := value.(uuid.UUID)
	if !ok || ownerID == uuid.Nil {
		return uuid.Nil, apperrors.ErrUnauthorized
	}
	return ownerID, nil
}

// ParseUUIDParam parses a UUID path parameter, reporting ErrInvalidInput when malformed.
func ParseUUIDParam(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, apperrors.Wrapf(apperrors.ErrInvalidInput, "invalid %s", name)
	}
	return id, nil
}
