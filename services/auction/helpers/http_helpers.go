package helpers

import (
	"errors"
	"fmt"
	"net/http"

	"auction-engine/internal/auctionerrors"
	"auction-engine/utils"

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
	case errors.Is(err, auctionerrors.ErrAuctionNotFound):
		return http.StatusNotFound, "auction not found"
	case errors.Is(err, auctionerrors.ErrAuctionEnded):
		return http.StatusGone, "auction has ended"
	case errors.Is(err, auctionerrors.ErrRateLimited):
		return http.StatusTooManyRequests, "rate limit exceeded"
	case errors.Is(err, auctionerrors.ErrSuspiciousActivity):
		return http.StatusForbidden, "bid rejected for suspicious activity"
	case errors.Is(err, auctionerrors.ErrInvalidBidAmount):
		return http.StatusBadRequest, "bid amount below required minimum"
	case errors.Is(err, auctionerrors.ErrInsufficientConnects), errors.Is(err, auctionerrors.ErrInsufficientBalance):
		return http.StatusPaymentRequired, "insufficient connects balance"
	case errors.Is(err, auctionerrors.ErrConflict):
		return http.StatusConflict, "concurrent bid conflict, retry"
	case errors.Is(err, auctionerrors.ErrTimeout):
		return http.StatusGatewayTimeout, "bid outcome unknown, re-query auction state"
	case errors.Is(err, auctionerrors.ErrInvalidBid), errors.Is(err, auctionerrors.ErrInvalidAmount):
		return http.StatusBadRequest, "invalid bid details"
	case errors.Is(err, auctionerrors.ErrNoBids):
		return http.StatusOK, "no bids found for auction"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// RejectionDetailFrom extracts the structured self-correction data from a
// rejection, if the error carries any.
func RejectionDetailFrom(err error) *RejectionDetail {
	var rej *auctionerrors.Rejection
	if !errors.As(err, &rej) {
		return nil
	}
	return &RejectionDetail{
		CurrentBid:   rej.CurrentBid,
		MinimumBid:   rej.MinimumBid,
		Balance:      rej.Balance,
		RetryAfterMS: rej.RetryAfter.Milliseconds(),
		Kind:         rej.Kind.Error(),
	}
}

// JSONRejection sends an error response, attaching rejection detail when the
// error carries it.
func JSONRejection(c *gin.Context, status int, err error, message string) {
	if detail := RejectionDetailFrom(err); detail != nil {
		c.JSON(status, gin.H{
			"status":    status,
			"message":   message,
			"error":     err.Error(),
			"rejection": detail,
		})
		return
	}
	utils.JSONError(c, status, err, message)
}

// LogSuccess is a small helper to standardize logging of successful operations
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}
