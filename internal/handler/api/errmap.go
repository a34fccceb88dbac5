package api

import (
	"errors"
	"net/http"

	"commerce-core/internal/engine"
	"commerce-core/internal/handler/httperr"
	"commerce-core/internal/queue"
	"commerce-core/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

// abortDomainError translates command and queue sentinels into HTTP statuses.
// Contention that exhausted its retries maps to 503 so clients back off.
func abortDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, commands.ErrAccountNotFound),
		errors.Is(err, commands.ErrProductNotFound),
		errors.Is(err, commands.ErrCouponNotFound),
		errors.Is(err, commands.ErrGrantNotFound),
		errors.Is(err, commands.ErrOrderNotFound),
		errors.Is(err, queue.ErrCouponNotFound),
		errors.Is(err, queue.ErrEntryNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Not found", nil)

	case errors.Is(err, commands.ErrInvalidAmount),
		errors.Is(err, commands.ErrInvalidQuantity),
		errors.Is(err, commands.ErrCouponMinimumNotMet),
		errors.Is(err, commands.ErrQueueOnly),
		errors.Is(err, queue.ErrNotQueueCoupon):
		httperr.AbortWithError(c, http.StatusBadRequest, err, err.Error(), nil)

	case errors.Is(err, commands.ErrInsufficientBalance),
		errors.Is(err, commands.ErrInsufficientStock),
		errors.Is(err, commands.ErrCouponExhausted),
		errors.Is(err, commands.ErrCouponNotInWindow),
		errors.Is(err, commands.ErrAlreadyGranted),
		errors.Is(err, commands.ErrGrantNotUsable),
		errors.Is(err, commands.ErrOrderNotCancellable):
		httperr.AbortWithError(c, http.StatusConflict, err, err.Error(), nil)

	case errors.Is(err, engine.ErrBusy), errors.Is(err, engine.ErrConflict):
		httperr.AbortWithError(c, http.StatusServiceUnavailable, err, "Resource busy, retry later", nil)

	default:
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal error", nil)
	}
}
