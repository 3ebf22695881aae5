package handler

import (
	"context"
	"net/http"

	"github.com/tarnished-tactics/api/internal/model"
)

// BuildService is the build business logic the handler depends on
type BuildService interface {
	List(ctx context.Context, filters model.BuildFilters, page, perPage int) *model.BuildPage
	ListByUser(ctx context.Context, userID string) ([]*model.Build, error)
	Get(ctx context.Context, id string) (*model.Build, error)
	Create(ctx context.Context, req *model.CreateBuildRequest) (string, error)
	Update(ctx context.Context, id string, req *model.UpdateBuildRequest) error
	Delete(ctx context.Context, id, userID string) error
	Presets(ctx context.Context) []*model.Build
	Search(ctx context.Context, term string) ([]*model.Build, error)
}

// GuideDrafter drafts guides from builds
type GuideDrafter interface {
	Generate(ctx context.Context, buildID, userID string) (*model.GuideDraft, error)
}

// BuildListResponse is the body of GET /builds
type BuildListResponse struct {
	Builds         []*model.Build     `json:"builds"`
	Page           int                `json:"page"`
	Filters        model.BuildFilters `json:"filters"`
	EntriesPerPage int                `json:"entries_per_page"`
	TotalResults   int                `json:"total_results"`
}

// BuildHandler handles build endpoints
type BuildHandler struct {
	builds BuildService
	drafts GuideDrafter
}

// BuildHandlerConfig holds dependencies for the build handler
type BuildHandlerConfig struct {
	Builds BuildService
	Drafts GuideDrafter
}

// NewBuildHandler creates a new build handler
func NewBuildHandler(cfg BuildHandlerConfig) *BuildHandler {
	return &BuildHandler{
		builds: cfg.Builds,
		drafts: cfg.Drafts,
	}
}

// List handles GET /builds
func (h *BuildHandler) List(w http.ResponseWriter, r *http.Request) {
	page, perPage := pagination(r, "buildsPerPage")

	q := r.URL.Query()
	var filters model.BuildFilters
	filters.Class = q.Get("class")
	if level, ok := queryInt(q.Get("level")); ok {
		filters.MaxLevel = &level
	}
	if q.Has("isPublic") {
		public := q.Get("isPublic") == "true"
		filters.IsPublic = &public
	}

	result := h.builds.List(r.Context(), filters, page, perPage)
	WriteJSON(w, http.StatusOK, BuildListResponse{
		Builds:         result.Builds,
		Page:           page,
		Filters:        filters,
		EntriesPerPage: perPage,
		TotalResults:   result.TotalResults,
	})
}

// ListByUser handles GET /builds/user/{userId}
func (h *BuildHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	builds, err := h.builds.ListByUser(r.Context(), r.PathValue("userId"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, builds)
}

// Get handles GET /builds/{id}
func (h *BuildHandler) Get(w http.ResponseWriter, r *http.Request) {
	build, err := h.builds.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, build)
}

// Create handles POST /builds. Success is a 200 carrying the new id.
func (h *BuildHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateBuildRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("Invalid JSON body"))
		return
	}

	id, err := h.builds.Create(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, id)
}

// Update handles PUT /builds/{id}
func (h *BuildHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateBuildRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("Invalid JSON body"))
		return
	}

	if err := h.builds.Update(r.Context(), r.PathValue("id"), &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, "")
}

// Delete handles DELETE /builds/{id}; the owner id travels in the body
func (h *BuildHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var req model.OwnerRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("Invalid JSON body"))
		return
	}

	if err := h.builds.Delete(r.Context(), r.PathValue("id"), req.UserID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, "")
}

// Presets handles GET /builds/preset
func (h *BuildHandler) Presets(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.builds.Presets(r.Context()))
}

// Search handles GET /builds/search?q=
func (h *BuildHandler) Search(w http.ResponseWriter, r *http.Request) {
	builds, err := h.builds.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, builds)
}

// GenerateGuide handles POST /builds/{buildId}/generate-guide. The draft is
// returned, not stored.
func (h *BuildHandler) GenerateGuide(w http.ResponseWriter, r *http.Request) {
	var req model.OwnerRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("Invalid JSON body"))
		return
	}

	draft, err := h.drafts.Generate(r.Context(), r.PathValue("buildId"), req.UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, draft)
}
