package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/spendboard/internal/model"
	"github.com/mcoot/spendboard/internal/services/auth"
	"github.com/mcoot/spendboard/internal/services/catalog"
	"github.com/mcoot/spendboard/internal/services/purchase"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest       = "INVALID_REQUEST"
	CodeInvalidPrice         = "INVALID_PRICE"
	CodeInvalidPeriod        = "INVALID_PERIOD"
	CodeUnauthorized         = "UNAUTHORIZED"
	CodeInvalidCredentials   = "INVALID_CREDENTIALS"
	CodeParticipantNotFound  = "PARTICIPANT_NOT_FOUND"
	CodePurchaseNotFound     = "PURCHASE_NOT_FOUND"
	CodePendingNotFound      = "PENDING_NOT_FOUND"
	CodeNotFound             = "NOT_FOUND"
	CodeMonthAlreadyClosed   = "MONTH_ALREADY_CLOSED"
	CodeDuplicateTrophy      = "DUPLICATE_TROPHY"
	CodeCatalogNotConfigured = "CATALOG_NOT_CONFIGURED"
	CodeAuthNotConfigured    = "AUTH_NOT_CONFIGURED"
	CodeInternalError        = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Status returns the HTTP status an error maps to
func Status(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	// Model errors
	case errors.Is(err, model.ErrParticipantNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeParticipantNotFound, "Participant not found"}}
	case errors.Is(err, model.ErrPurchaseNotFound):
		return &httpError{http.StatusNotFound, APIError{CodePurchaseNotFound, "Purchase not found"}}
	case errors.Is(err, model.ErrPendingNotFound):
		return &httpError{http.StatusNotFound, APIError{CodePendingNotFound, "Pending purchase not found"}}
	case errors.Is(err, model.ErrInvalidPrice):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidPrice, "Price must not be negative"}}
	case errors.Is(err, model.ErrInvalidPeriod):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidPeriod, "Month must be 1-12 and year positive"}}
	case errors.Is(err, model.ErrMonthAlreadyClosed):
		return &httpError{http.StatusConflict, APIError{CodeMonthAlreadyClosed, "Month has already been closed"}}
	case errors.Is(err, model.ErrDuplicateTrophy):
		return &httpError{http.StatusConflict, APIError{CodeDuplicateTrophy, "Trophy already recorded"}}
	case errors.Is(err, model.ErrCatalogNotConfigured):
		return &httpError{http.StatusServiceUnavailable, APIError{CodeCatalogNotConfigured, "Steam API key is not configured"}}

	// Validation errors
	case errors.Is(err, purchase.ErrGameNameRequired):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, "game_name is required"}}
	case errors.Is(err, catalog.ErrQueryRequired):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, "q is required"}}

	// Auth errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		return &httpError{http.StatusUnauthorized, APIError{CodeInvalidCredentials, "Invalid password"}}
	case errors.Is(err, auth.ErrInvalidSession):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Invalid or expired session"}}
	case errors.Is(err, auth.ErrNotConfigured):
		return &httpError{http.StatusServiceUnavailable, APIError{CodeAuthNotConfigured, "Admin password is not configured"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewNotFoundError creates a not found error for unknown routes
func NewNotFoundError() error {
	return &httpError{http.StatusNotFound, APIError{CodeNotFound, "Not found"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
