package service

import (
	"context"
	"fmt"

	"github.com/tarnished-tactics/api/internal/model"
)

// GuideRepository defines the interface for guide storage
type GuideRepository interface {
	GetAll(ctx context.Context, filters model.GuideFilters, page, perPage int) *model.GuidePage
	GetByUserID(ctx context.Context, userID string) []*model.Guide
	GetByID(ctx context.Context, id string) (*model.Guide, error)
	Create(ctx context.Context, userID string, guide *model.Guide) (string, error)
	Update(ctx context.Context, id, userID string, patch model.GuidePatch) (int, error)
	Delete(ctx context.Context, id, userID string) (int, error)
	GetByCategory(ctx context.Context, category string) []*model.Guide
	GetByBuildID(ctx context.Context, buildID string) []*model.Guide
	Search(ctx context.Context, term string) []*model.Guide
}

// GuideService handles guide business logic
type GuideService struct {
	repo GuideRepository
}

// GuideServiceConfig holds configuration for the guide service
type GuideServiceConfig struct {
	Repo GuideRepository
}

// NewGuideService creates a new guide service
func NewGuideService(cfg GuideServiceConfig) *GuideService {
	return &GuideService{
		repo: cfg.Repo,
	}
}

// List returns one page of public guides
func (s *GuideService) List(ctx context.Context, filters model.GuideFilters, page, perPage int) *model.GuidePage {
	return s.repo.GetAll(ctx, filters, page, perPage)
}

// ListByUser returns every guide of an author, public or not
func (s *GuideService) ListByUser(ctx context.Context, userID string) ([]*model.Guide, error) {
	guides := s.repo.GetByUserID(ctx, userID)
	if len(guides) == 0 {
		return nil, ErrNoGuidesForUser
	}
	return guides, nil
}

// Get returns a single guide
func (s *GuideService) Get(ctx context.Context, id string) (*model.Guide, error) {
	guide, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if guide == nil {
		return nil, ErrGuideNotFound
	}
	return guide, nil
}

// Create validates the request, applies defaults and stores the guide
func (s *GuideService) Create(ctx context.Context, req *model.CreateGuideRequest) (string, error) {
	if req.UserID == "" || req.Title == "" || req.Content == "" || req.Category == "" {
		return "", ErrMissingGuideFields
	}

	guide := &model.Guide{
		Title:            req.Title,
		Description:      req.Description,
		Content:          req.Content,
		Category:         req.Category,
		Difficulty:       req.Difficulty,
		AssociatedBuilds: orEmpty(req.AssociatedBuilds),
		RecommendedLevel: req.RecommendedLevel,
		Tags:             orEmpty(req.Tags),
		Images:           orEmpty(req.Images),
		IsPublic:         req.IsPublic,
	}

	id, err := s.repo.Create(ctx, req.UserID, guide)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	return id, nil
}

// Update applies a partial update written by req.UserID
func (s *GuideService) Update(ctx context.Context, id string, req *model.UpdateGuideRequest) error {
	if req.UserID == "" {
		return ErrMissingUserID
	}

	matched, err := s.repo.Update(ctx, id, req.UserID, req.GuidePatch)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	if matched == 0 {
		return ErrGuideNotAccessible
	}
	return nil
}

// Delete removes a guide written by userID
func (s *GuideService) Delete(ctx context.Context, id, userID string) error {
	if userID == "" {
		return ErrMissingUserID
	}

	deleted, err := s.repo.Delete(ctx, id, userID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	if deleted == 0 {
		return ErrGuideNotAccessible
	}
	return nil
}

// ByCategory returns public guides of a category
func (s *GuideService) ByCategory(ctx context.Context, category string) []*model.Guide {
	return s.repo.GetByCategory(ctx, category)
}

// ByBuild returns public guides referencing a build
func (s *GuideService) ByBuild(ctx context.Context, buildID string) []*model.Guide {
	return s.repo.GetByBuildID(ctx, buildID)
}

// Search finds public guides by title, description, content or tag
func (s *GuideService) Search(ctx context.Context, term string) ([]*model.Guide, error) {
	if term == "" {
		return nil, ErrMissingSearchQuery
	}
	return s.repo.Search(ctx, term), nil
}
