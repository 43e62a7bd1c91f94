package httputil

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/nazarli-shabnam/subscription-tracker/internal/errors"
)

// Page bounds for list endpoints such as GET /v1/subscriptions.
const (
	DefaultPageLimit = 50
	MaxPageLimit     = 100
)

// Pagination errors, reported to the client as 400 Bad Request.
var (
	ErrInvalidOffset = apperrors.New("invalid offset parameter: must be a non-negative integer")
	ErrInvalidLimit  = apperrors.New("invalid limit parameter: must be between 1 and 100")
)

// ParsePagination reads the offset and limit query parameters. A missing offset
// starts at the first subscription and a missing limit returns DefaultPageLimit
// rows.
func ParsePagination(c *gin.Context) (offset, limit int, err error) {
	offset, err = queryInt(c, "offset", 0)
	if err != nil || offset < 0 {
		return 0, 0, ErrInvalidOffset
	}

	limit, err = queryInt(c, "limit", DefaultPageLimit)
	if err != nil || limit < 1 || limit > MaxPageLimit {
		return 0, 0, ErrInvalidLimit
	}
	return offset, limit, nil
}

func queryInt(c *gin.Context, key string, fallback int) (int, error) {
	raw, ok := c.GetQuery(key)
	if !ok {
		return fallback, nil
	}
	return strconv.Atoi(strings.TrimSpace(raw))
}
