package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	consumabledomain "github.com/quotahub/quotad/internal/consumable/domain"
	featuredomain "github.com/quotahub/quotad/internal/feature/domain"
	quotadomain "github.com/quotahub/quotad/internal/quota/domain"
	slotdomain "github.com/quotahub/quotad/internal/slot/domain"
	"gorm.io/gorm"
)

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrInvalidRequest = errors.New("invalid_request")
	ErrNotFound       = errors.New("not_found")
	ErrInternal       = errors.New("internal_error")
)

// ErrorHandlingMiddleware maps domain errors pushed through gin's error
// list onto HTTP statuses and a machine-readable payload. Quota outcomes
// get distinct kinds so callers can tell "over quota" from "service down".
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest, payload("invalid_request", "invalid request")

	case errors.Is(err, featuredomain.ErrInvalidDefinition):
		return http.StatusBadRequest, payload("invalid_definition", "invalid feature definition")
	case errors.Is(err, featuredomain.ErrImmutableField):
		return http.StatusBadRequest, payload("immutable_field", "featureKey, quotaType and resetPeriod cannot be changed")
	case errors.Is(err, featuredomain.ErrDuplicateKey):
		return http.StatusConflict, payload("duplicate_key", "feature key already registered")
	case errors.Is(err, featuredomain.ErrNotFound):
		return http.StatusNotFound, payload("feature_not_found", "feature not found")

	case errors.Is(err, consumabledomain.ErrQuotaTypeMismatch),
		errors.Is(err, slotdomain.ErrQuotaTypeMismatch):
		return http.StatusBadRequest, payload("quota_type_mismatch", "operation does not match the feature's quota type")
	case errors.Is(err, consumabledomain.ErrQuotaExceeded),
		errors.Is(err, slotdomain.ErrQuotaExceeded):
		return http.StatusTooManyRequests, payload("quota_exceeded", "quota exceeded")
	case errors.Is(err, consumabledomain.ErrInvalidAmount):
		return http.StatusBadRequest, payload("invalid_amount", "amount must be positive")
	case errors.Is(err, consumabledomain.ErrInvalidUser),
		errors.Is(err, slotdomain.ErrInvalidUser):
		return http.StatusBadRequest, payload("invalid_user", "userId is required")

	case errors.Is(err, slotdomain.ErrSlotAlreadyAllocated):
		return http.StatusConflict, payload("slot_already_allocated", "slot is already allocated")
	case errors.Is(err, slotdomain.ErrSlotNotFound):
		return http.StatusNotFound, payload("slot_not_found", "slot is not allocated")
	case errors.Is(err, slotdomain.ErrInvalidSlotID):
		return http.StatusBadRequest, payload("invalid_slot_id", "slotId is required")

	case errors.Is(err, quotadomain.ErrUnsupportedOperation):
		return http.StatusBadRequest, payload("unsupported_operation", "slot-based features use allocate-slot and deallocate-slot")

	case errors.Is(err, ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, payload("not_found", "not found")

	default:
		return http.StatusInternalServerError, payload("internal_error", "internal server error")
	}
}

func payload(kind, message string) errorPayload {
	return errorPayload{Type: kind, Message: message}
}
