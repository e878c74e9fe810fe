package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/voyantiq/itinerary/internal/domain"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries a stable machine code and a human-readable message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func errorBody(code, message string) ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{Code: code, Message: message}}
}

// notFoundBody returns an ErrorResponse for a missing resource.
func notFoundBody(err error) ErrorResponse {
	switch {
	case errors.Is(err, domain.ErrActivityNotFound):
		return errorBody("not_found", "activity not found")
	case errors.Is(err, domain.ErrTripNotFound):
		return errorBody("not_found", "trip not found")
	}
	return errorBody("not_found", "not found")
}

// validationBody returns an ErrorResponse for a domain validation failure.
// The message is extracted from the wrapped domain.ErrValidation error.
func validationBody(err error) ErrorResponse {
	return errorBody("validation_error", unwrapMessage(err))
}

// requestBody returns an ErrorResponse for a request rejected before it
// reached the service layer (missing or malformed body, bad parameters).
func requestBody(message string) ErrorResponse {
	return errorBody("validation_error", message)
}

// unwrapMessage extracts the human-readable part from a wrapped sentinel error.
// e.g. "service.Itinerary.AddActivity: validation error: title is required" → "title is required"
func unwrapMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	const marker = "validation error: "
	if i := strings.LastIndex(msg, marker); i >= 0 && i+len(marker) < len(msg) {
		return msg[i+len(marker):]
	}
	return msg
}

// writeError maps a service error onto its HTTP status and writes the body.
// Unexpected errors are logged and reported as 500 without details.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, notFoundBody(err))
	case errors.Is(err, domain.ErrDateOutOfRange):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody("date_out_of_range", unwrapMessage(err)))
	case errors.Is(err, domain.ErrValidation):
		writeJSON(w, http.StatusUnprocessableEntity, validationBody(err))
	case errors.Is(err, domain.ErrInvalidTransition):
		writeJSON(w, http.StatusConflict, errorBody("invalid_transition", unwrapTransition(err)))
	case errors.Is(err, domain.ErrAllProvidersFailed):
		writeJSON(w, http.StatusBadGateway, errorBody("providers_unavailable", "every provider failed"))
	case errors.Is(err, domain.ErrMalformedDraft):
		writeJSON(w, http.StatusBadGateway, errorBody("bad_draft", "the drafting backend returned an unusable itinerary"))
	case errors.Is(err, domain.ErrDraftingDisabled):
		writeJSON(w, http.StatusServiceUnavailable, errorBody("drafting_disabled", domain.ErrDraftingDisabled.Error()))
	case errors.As(err, &tooLarge):
		writeJSON(w, http.StatusRequestEntityTooLarge, errorBody("request_too_large", "request body too large"))
	default:
		slog.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		writeJSON(w, http.StatusInternalServerError, errorBody("internal_error", "internal server error"))
	}
}

func unwrapTransition(err error) string {
	msg := err.Error()
	const marker = "invalid status transition: "
	if i := strings.LastIndex(msg, marker); i >= 0 {
		return msg[i+len(marker):]
	}
	return domain.ErrInvalidTransition.Error()
}
