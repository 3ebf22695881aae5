// Package llm wraps the generative-text providers used to draft guides.
//
// Every provider implements Completer. Provider failures that callers need
// to tell apart are reported with the sentinel errors below; check them with
// errors.Is.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrQuotaExceeded indicates the account behind the API key is out of credit.
	ErrQuotaExceeded = errors.New("llm quota exceeded")

	// ErrRateLimited indicates the provider throttled the request.
	ErrRateLimited = errors.New("llm rate limited")

	// ErrNotConfigured indicates no API key was provided.
	ErrNotConfigured = errors.New("llm not configured")

	// ErrEmptyCompletion indicates the provider answered without any text.
	ErrEmptyCompletion = errors.New("llm returned no completion")
)

// Supported providers
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Completer produces a completion for a system instruction and a user prompt
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Config holds provider configuration
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	BaseURL     string // empty uses the provider default
	Timeout     time.Duration
	MaxTokens   int
	Temperature float64
}

// New creates the Completer for cfg.Provider. It returns ErrNotConfigured
// when no API key is set.
func New(ctx context.Context, cfg Config) (Completer, error) {
	if cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}

	switch cfg.Provider {
	case ProviderOpenAI, "":
		return NewOpenAIClient(cfg), nil
	case ProviderGemini:
		return NewGeminiClient(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

// withTimeout applies d when ctx carries no deadline
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}
