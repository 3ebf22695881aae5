package main

import (
	"net/http"

	"github.com/tarnished-tactics/api/internal/config"
	"github.com/tarnished-tactics/api/internal/database"
	"github.com/tarnished-tactics/api/internal/handler"
	"github.com/tarnished-tactics/api/internal/llm"
	"github.com/tarnished-tactics/api/internal/middleware"
	"github.com/tarnished-tactics/api/internal/repository"
	"github.com/tarnished-tactics/api/internal/service"
)

// app wires repositories, services and handlers into one http.Handler
type app struct {
	handler     http.Handler
	rateLimiter *middleware.RateLimiter
}

func newApp(cfg *config.Config, db database.Database, completer llm.Completer) *app {
	// Initialize repositories
	buildRepo := repository.NewBuildRepository(db)
	guideRepo := repository.NewGuideRepository(db)

	// Initialize services
	buildService := service.NewBuildService(service.BuildServiceConfig{
		Repo: buildRepo,
	})
	guideService := service.NewGuideService(service.GuideServiceConfig{
		Repo: guideRepo,
	})
	draftService := service.NewGuideDraftService(service.GuideDraftServiceConfig{
		Builds:    buildRepo,
		Completer: completer,
	})

	// Initialize handlers
	buildHandler := handler.NewBuildHandler(handler.BuildHandlerConfig{
		Builds: buildService,
		Drafts: draftService,
	})
	guideHandler := handler.NewGuideHandler(guideService)
	rootHandler := handler.NewRootHandler(db, handler.APIPrefix)

	mux := http.NewServeMux()
	handler.RegisterRootRoutes(mux, rootHandler)
	handler.RegisterBuildRoutes(mux, handler.APIPrefix, buildHandler)
	handler.RegisterGuideRoutes(mux, handler.APIPrefix, guideHandler)

	chain, limiter := newMiddleware(cfg)
	return &app{
		handler:     middleware.Chain(mux, chain...),
		rateLimiter: limiter,
	}
}

// newMiddleware returns the global middleware, outermost first. Recovery
// sits inside RequestID and Logger so a panicking request is still logged
// with its id. The limiter is nil when rate limiting is disabled.
func newMiddleware(cfg *config.Config) ([]middleware.Middleware, *middleware.RateLimiter) {
	chain := []middleware.Middleware{
		middleware.RequestID,
		middleware.Logger,
		middleware.Recovery,
		middleware.CORS(cfg.Server.AllowedOrigins),
	}

	var limiter *middleware.RateLimiter
	if rl := cfg.Server.RateLimit; rl.Enabled {
		limiter = middleware.NewRateLimiter(middleware.RateLimitConfig{
			Rate:       rl.Rate,
			Window:     rl.Window,
			Burst:      rl.Burst,
			TrustProxy: rl.TrustProxy,
		})
		chain = append(chain, middleware.RateLimit(limiter))
	}
	chain = append(chain, middleware.Compress)
	return chain, limiter
}

// Handler returns the root handler
func (a *app) Handler() http.Handler {
	return a.handler
}

// Close stops background goroutines
func (a *app) Close() {
	if a.rateLimiter != nil {
		a.rateLimiter.Stop()
	}
}
