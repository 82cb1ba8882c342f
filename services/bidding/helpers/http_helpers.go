package helpers

import (
	"errors"
	"fmt"
	"net/http"

	"auction-service/internal/biddingerrors"
	"auction-service/utils"

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
	case errors.Is(err, biddingerrors.ErrForbidden):
		return http.StatusForbidden, "admin privileges required"
	case errors.Is(err, biddingerrors.ErrNoDeleteTarget):
		return http.StatusBadRequest, "either bid_id or auction_id is required"
	case errors.Is(err, biddingerrors.ErrValidation):
		return http.StatusBadRequest, "validation failed"
	case errors.Is(err, biddingerrors.ErrInvalidAmount):
		return http.StatusBadRequest, "invalid bid amount"
	case errors.Is(err, biddingerrors.ErrAuctionNotActive):
		return http.StatusBadRequest, "auction not active"
	case errors.Is(err, biddingerrors.ErrBidTooLow):
		return http.StatusBadRequest, "bid amount too low"
	case errors.Is(err, biddingerrors.ErrAuctionNotFound):
		return http.StatusNotFound, "auction not found"
	case errors.Is(err, biddingerrors.ErrBidNotFound):
		return http.StatusNotFound, "bid not found"
	case errors.Is(err, biddingerrors.ErrNoBids):
		return http.StatusNotFound, "no bids found for auction"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// RespondError writes the mapped error. Rejections carry their reason and
// validation failures their field list; internal errors are not echoed.
func RespondError(c *gin.Context, handlerName string, err error, fields map[string]any) {
	status, message := MapErrorToHTTP(err)

	details := gin.H{}
	if rej, ok := biddingerrors.AsRejection(err); ok {
		details["reason"] = rej.Reason
	}
	var verr *biddingerrors.ValidationError
	if errors.As(err, &verr) {
		details["errors"] = verr.Fields
	}

	logFields := map[string]any{"handler": handlerName, "status": status, "error": err.Error()}
	for k, v := range fields {
		logFields[k] = v
	}

	if status >= http.StatusInternalServerError {
		utils.Error(handlerName+": request failed", logFields)
		utils.JSONError(c, status, errors.New(message), message)
		return
	}

	utils.Info(handlerName+": request refused", logFields)
	utils.JSONErrorWithDetails(c, status, fmt.Errorf("%s: %w", message, err), message, details)
}

// LogSuccess is a small helper to standardize logging of successful operations
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}
