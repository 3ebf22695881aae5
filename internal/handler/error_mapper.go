package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/tarnished-tactics/api/internal/middleware"
	"github.com/tarnished-tactics/api/internal/model"
	"github.com/tarnished-tactics/api/internal/service"
)

// MapServiceError converts a service error to an APIError.
// Caller mistakes become 400/404; a foreign owner is reported exactly like a
// missing document. Anything unrecognized is a 500 carrying the error text.
func MapServiceError(err error) *model.APIError {
	if err == nil {
		return nil
	}

	switch {
	// ===== Bad Request → 400 =====
	case errors.Is(err, service.ErrMissingUserID):
		return model.NewBadRequestError("Missing userId")
	case errors.Is(err, service.ErrMissingSearchQuery):
		return model.NewBadRequestError("Missing search query parameter 'q'")
	case errors.Is(err, service.ErrMissingBuildFields):
		return model.NewBadRequestError("Missing required fields: userId, name, or class")
	case errors.Is(err, service.ErrMissingGuideFields):
		return model.NewBadRequestError("Missing required fields: userId, title, content, or category")
	case errors.Is(err, service.ErrWriteFailed):
		return model.NewBadRequestError(err.Error())

	// ===== Not Found → 404 =====
	case errors.Is(err, service.ErrBuildNotFound):
		return model.NewNotFoundError("Build not found")
	case errors.Is(err, service.ErrBuildNotAccessible):
		return model.NewNotFoundError("Build not found or user not authorized")
	case errors.Is(err, service.ErrNoBuildsForUser):
		return model.NewNotFoundError("No builds found for this user")
	case errors.Is(err, service.ErrGuideNotFound):
		return model.NewNotFoundError("Guide not found")
	case errors.Is(err, service.ErrGuideNotAccessible):
		return model.NewNotFoundError("Guide not found or user not authorized")
	case errors.Is(err, service.ErrNoGuidesForUser):
		return model.NewNotFoundError("No guides found for this user")

	// ===== Guide generation =====
	case errors.Is(err, service.ErrDraftQuotaExceeded):
		return model.NewPaymentRequiredError("AI service quota exceeded. Please check your plan and billing details.")
	case errors.Is(err, service.ErrDraftRateLimited):
		return model.NewTooManyRequestsError("AI service rate limit reached. Please try again later.")
	case errors.Is(err, service.ErrDraftDisabled):
		return model.NewServiceUnavailableError("Guide generation is not configured")
	case errors.Is(err, service.ErrDraftInvalidFormat):
		return model.NewInternalError("AI returned an invalid response format")
	}

	return model.NewInternalError(err.Error())
}

// writeServiceError maps err, logs it when it is the server's fault and
// writes the response.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := MapServiceError(err)
	if isSystemError(apiErr.Status) {
		slog.ErrorContext(r.Context(), "request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", apiErr.Status),
			slog.String("request_id", middleware.GetRequestID(r.Context())),
			slog.String("error", err.Error()),
		)
	}
	WriteError(w, apiErr)
}

func isSystemError(status int) bool {
	return status >= http.StatusInternalServerError ||
		status == http.StatusPaymentRequired ||
		status == http.StatusTooManyRequests
}
