package helpers

import (
	"errors"
	"fmt"
	"net/http"

	"philabid/internal/biddingerrors"
	"philabid/utils"

	"github.com/gin-gonic/gin"
)

// HandleBindError sends a standardized JSON error for binding failures
func HandleBindError(c *gin.Context, handlerName string, err error) {
	wrappedErr := fmt.Errorf("invalid request payload: %w", err)
	utils.JSONError(c, http.StatusBadRequest, wrappedErr, "invalid request payload")
	utils.Warn(handlerName+": binding error", map[string]any{"error": err.Error()})
}

// MapErrorToHTTP maps domain/service errors to HTTP status code and message
func MapErrorToHTTP(err error) (int, string) {
	switch {
	case errors.Is(err, biddingerrors.ErrNoBids):
		return http.StatusNotFound, "no bids found for lot"
	case errors.Is(err, biddingerrors.ErrNotFound):
		return http.StatusNotFound, "resource not found"
	case errors.Is(err, biddingerrors.ErrInvalidBid):
		return http.StatusBadRequest, "invalid bid details"
	case errors.Is(err, biddingerrors.ErrInvalidAuction):
		return http.StatusBadRequest, "invalid auction details"
	case errors.Is(err, biddingerrors.ErrInvalidLot):
		return http.StatusBadRequest, "invalid lot details"
	case errors.Is(err, biddingerrors.ErrInvalidAmount):
		return http.StatusBadRequest, "invalid amount"
	case errors.Is(err, biddingerrors.ErrUnknownCurrency):
		return http.StatusBadRequest, "unknown currency"
	case errors.Is(err, biddingerrors.ErrCurrencyMismatch):
		return http.StatusUnprocessableEntity, "bid currency does not match lot currency"
	case errors.Is(err, biddingerrors.ErrBidTooLow):
		return http.StatusConflict, "bid amount too low"
	case errors.Is(err, biddingerrors.ErrLotNotOpen):
		return http.StatusConflict, "lot is not open for bidding"
	case errors.Is(err, biddingerrors.ErrInvalidTransition):
		return http.StatusConflict, "lot state does not allow this operation"
	case errors.Is(err, biddingerrors.ErrOutsideWindow):
		return http.StatusConflict, "outside auction window"
	case errors.Is(err, biddingerrors.ErrNoWinningBid):
		return http.StatusConflict, "lot has no winning bid"
	case errors.Is(err, biddingerrors.ErrConflict):
		return http.StatusConflict, "concurrent update, retry"
	case errors.Is(err, biddingerrors.ErrConstraintViolation):
		return http.StatusUnprocessableEntity, "integrity constraint violated"
	case errors.Is(err, biddingerrors.ErrStorageUnavailable):
		return http.StatusServiceUnavailable, "storage unavailable, retry"
	case errors.Is(err, biddingerrors.ErrSchemaNotReady):
		return http.StatusServiceUnavailable, "service starting"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// HandleServiceError writes the mapped error response and logs it at a level
// matching its kind: rejections are info, client errors warn, faults error.
func HandleServiceError(c *gin.Context, handlerName string, err error, fields map[string]any) {
	status, message := MapErrorToHTTP(err)
	utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
	LogFailure(handlerName, status, err, fields)
}

// LogFailure logs a failed request at the level matching status
func LogFailure(handlerName string, status int, err error, fields map[string]any) {
	if fields == nil {
		fields = map[string]any{}
	}
	fields["handler"] = handlerName
	fields["status"] = status
	fields["error"] = err.Error()

	switch {
	case biddingerrors.IsRejection(err):
		utils.Info(handlerName+": bid rejected", fields)
	case status >= http.StatusInternalServerError:
		utils.Error(handlerName+": request failed", fields)
	default:
		utils.Warn(handlerName+": request failed", fields)
	}
}

// LogSuccess is a small helper to standardize logging of successful operations
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}
