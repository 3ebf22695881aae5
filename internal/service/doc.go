// Package service implements the business logic layer for builds, guides
// and guide drafts.
//
// Services validate requests, apply creation defaults and translate
// repository results into domain errors. Handlers never talk to
// repositories directly.
//
// # Repository Interfaces
//
// Services define their own repository interfaces so tests can substitute
// func-field mocks or the in-memory store from internal/testing/memstore.
//
// # Error Handling
//
// Every error a handler needs to tell apart is a sentinel in errors.go.
// Store failures on writes are wrapped with ErrWriteFailed; generation
// failures are wrapped with the ErrDraft* errors:
//
//	if errors.Is(err, service.ErrDraftRateLimited) {
//	    // 429
//	}
//
// # Guide Drafts
//
// GuideDraftService renders a prompt from a build, asks the configured
// llm.Completer for a JSON guide, and returns the parsed draft tagged
// "AI Generated". It never stores anything.
package service
