package handler

import (
	"context"
	"net/http"

	"github.com/tarnished-tactics/api/internal/model"
)

// GuideService is the guide business logic the handler depends on
type GuideService interface {
	List(ctx context.Context, filters model.GuideFilters, page, perPage int) *model.GuidePage
	ListByUser(ctx context.Context, userID string) ([]*model.Guide, error)
	Get(ctx context.Context, id string) (*model.Guide, error)
	Create(ctx context.Context, req *model.CreateGuideRequest) (string, error)
	Update(ctx context.Context, id string, req *model.UpdateGuideRequest) error
	Delete(ctx context.Context, id, userID string) error
	ByCategory(ctx context.Context, category string) []*model.Guide
	ByBuild(ctx context.Context, buildID string) []*model.Guide
	Search(ctx context.Context, term string) ([]*model.Guide, error)
}

// GuideListResponse is the body of GET /guides
type GuideListResponse struct {
	Guides         []*model.Guide     `json:"guides"`
	Page           int                `json:"page"`
	Filters        model.GuideFilters `json:"filters"`
	EntriesPerPage int                `json:"entries_per_page"`
	TotalResults   int                `json:"total_results"`
}

// GuideHandler handles guide endpoints
type GuideHandler struct {
	guides GuideService
}

// NewGuideHandler creates a new guide handler
func NewGuideHandler(guides GuideService) *GuideHandler {
	return &GuideHandler{guides: guides}
}

// List handles GET /guides
func (h *GuideHandler) List(w http.ResponseWriter, r *http.Request) {
	page, perPage := pagination(r, "guidesPerPage")

	q := r.URL.Query()
	filters := model.GuideFilters{
		Category:   q.Get("category"),
		Difficulty: q.Get("difficulty"),
		Tags:       queryList(q.Get("tags")),
	}

	result := h.guides.List(r.Context(), filters, page, perPage)
	WriteJSON(w, http.StatusOK, GuideListResponse{
		Guides:         result.Guides,
		Page:           page,
		Filters:        filters,
		EntriesPerPage: perPage,
		TotalResults:   result.TotalResults,
	})
}

// ListByUser handles GET /guides/user/{userId}
func (h *GuideHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	guides, err := h.guides.ListByUser(r.Context(), r.PathValue("userId"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, guides)
}

// Get handles GET /guides/{id}
func (h *GuideHandler) Get(w http.ResponseWriter, r *http.Request) {
	guide, err := h.guides.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, guide)
}

// Create handles POST /guides
func (h *GuideHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateGuideRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("Invalid JSON body"))
		return
	}

	id, err := h.guides.Create(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, id)
}

// Update handles PUT /guides/{id}
func (h *GuideHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateGuideRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("Invalid JSON body"))
		return
	}

	if err := h.guides.Update(r.Context(), r.PathValue("id"), &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, "")
}

// Delete handles DELETE /guides/{id}
func (h *GuideHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var req model.OwnerRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("Invalid JSON body"))
		return
	}

	if err := h.guides.Delete(r.Context(), r.PathValue("id"), req.UserID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, "")
}

// ByCategory handles GET /guides/category/{category}
func (h *GuideHandler) ByCategory(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.guides.ByCategory(r.Context(), r.PathValue("category")))
}

// ByBuild handles GET /guides/build/{buildId}
func (h *GuideHandler) ByBuild(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.guides.ByBuild(r.Context(), r.PathValue("buildId")))
}

// Search handles GET /guides/search?q=
func (h *GuideHandler) Search(w http.ResponseWriter, r *http.Request) {
	guides, err := h.guides.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, guides)
}
