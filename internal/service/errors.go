package service

import "errors"

// Centralized service layer errors.
// All errors returned by service methods are defined here for consistency
// and to make error handling in handlers predictable.

// ===== Request Errors =====
var (
	ErrMissingUserID      = errors.New("missing userId")
	ErrMissingSearchQuery = errors.New("missing search query parameter 'q'")
)

// ===== Build Errors =====
var (
	ErrBuildNotFound      = errors.New("build not found")
	ErrBuildNotAccessible = errors.New("build not found or user not authorized")
	ErrNoBuildsForUser    = errors.New("no builds found for this user")
	ErrMissingBuildFields = errors.New("missing required fields: userId, name, or class")
)

// ===== Guide Errors =====
var (
	ErrGuideNotFound      = errors.New("guide not found")
	ErrGuideNotAccessible = errors.New("guide not found or user not authorized")
	ErrNoGuidesForUser    = errors.New("no guides found for this user")
	ErrMissingGuideFields = errors.New("missing required fields: userId, title, content, or category")
)

// ===== Store Errors =====
var (
	// ErrWriteFailed wraps a store error reported by a create, update or delete
	ErrWriteFailed = errors.New("write failed")
)

// ===== Guide Draft Errors =====
var (
	ErrDraftDisabled      = errors.New("guide generation is not configured")
	ErrDraftQuotaExceeded = errors.New("guide generation quota exceeded")
	ErrDraftRateLimited   = errors.New("guide generation rate limited")
	ErrDraftInvalidFormat = errors.New("invalid response format")
	ErrDraftProvider      = errors.New("guide generation failed")
)
