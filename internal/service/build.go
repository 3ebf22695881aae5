package service

import (
	"context"
	"fmt"

	"github.com/tarnished-tactics/api/internal/model"
)

// BuildRepository defines the interface for build storage
type BuildRepository interface {
	GetAll(ctx context.Context, filters model.BuildFilters, page, perPage int) *model.BuildPage
	GetByUserID(ctx context.Context, userID string) []*model.Build
	GetByID(ctx context.Context, id string) (*model.Build, error)
	Create(ctx context.Context, userID string, build *model.Build) (string, error)
	Update(ctx context.Context, id, userID string, patch model.BuildPatch) (int, error)
	Delete(ctx context.Context, id, userID string) (int, error)
	GetPresets(ctx context.Context) []*model.Build
	Search(ctx context.Context, term string) []*model.Build
}

// BuildService handles build business logic
type BuildService struct {
	repo BuildRepository
}

// BuildServiceConfig holds configuration for the build service
type BuildServiceConfig struct {
	Repo BuildRepository
}

// NewBuildService creates a new build service
func NewBuildService(cfg BuildServiceConfig) *BuildService {
	return &BuildService{
		repo: cfg.Repo,
	}
}

// List returns one page of builds. Never fails; store problems show up as
// an empty page.
func (s *BuildService) List(ctx context.Context, filters model.BuildFilters, page, perPage int) *model.BuildPage {
	return s.repo.GetAll(ctx, filters, page, perPage)
}

// ListByUser returns every build of a user
func (s *BuildService) ListByUser(ctx context.Context, userID string) ([]*model.Build, error) {
	builds := s.repo.GetByUserID(ctx, userID)
	if len(builds) == 0 {
		return nil, ErrNoBuildsForUser
	}
	return builds, nil
}

// Get returns a single build
func (s *BuildService) Get(ctx context.Context, id string) (*model.Build, error) {
	build, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if build == nil {
		return nil, ErrBuildNotFound
	}
	return build, nil
}

// Create validates the request, applies defaults and stores the build
func (s *BuildService) Create(ctx context.Context, req *model.CreateBuildRequest) (string, error) {
	if req.UserID == "" || req.Name == "" || req.Class == "" {
		return "", ErrMissingBuildFields
	}

	build := &model.Build{
		Name:        req.Name,
		Description: req.Description,
		Class:       req.Class,
		Level:       req.Level,
		Stats:       req.Stats.Resolve(),
		Equipment:   req.Equipment.Resolve(),
		Spells:      orEmpty(req.Spells),
		IsPublic:    req.IsPublic,
		IsPreset:    req.IsPreset,
		Tags:        orEmpty(req.Tags),
	}

	id, err := s.repo.Create(ctx, req.UserID, build)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	return id, nil
}

// Update applies a partial update owned by req.UserID
func (s *BuildService) Update(ctx context.Context, id string, req *model.UpdateBuildRequest) error {
	if req.UserID == "" {
		return ErrMissingUserID
	}

	matched, err := s.repo.Update(ctx, id, req.UserID, req.BuildPatch)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	if matched == 0 {
		return ErrBuildNotAccessible
	}
	return nil
}

// Delete removes a build owned by userID
func (s *BuildService) Delete(ctx context.Context, id, userID string) error {
	if userID == "" {
		return ErrMissingUserID
	}

	deleted, err := s.repo.Delete(ctx, id, userID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	if deleted == 0 {
		return ErrBuildNotAccessible
	}
	return nil
}

// Presets returns the template builds
func (s *BuildService) Presets(ctx context.Context) []*model.Build {
	return s.repo.GetPresets(ctx)
}

// Search finds public builds by name, description or tag
func (s *BuildService) Search(ctx context.Context, term string) ([]*model.Build, error) {
	if term == "" {
		return nil, ErrMissingSearchQuery
	}
	return s.repo.Search(ctx, term), nil
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
