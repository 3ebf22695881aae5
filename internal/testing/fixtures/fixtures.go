// Package fixtures provides test data factories.
//
// Factory creates variations of the seed records (service.StarterBuild and
// service.BasicCombatGuide) through the services so defaults and validation
// apply exactly as they do for API requests.
//
// Usage:
//
//	f := fixtures.New(tdb.DB)
//	build := f.CreateBuild(t, fixtures.Owner("u1"))
//	guide := f.CreateGuide(t, fixtures.GuideOwner("u1"), fixtures.ForBuild(build.ID))
package fixtures

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/tarnished-tactics/api/internal/database"
	"github.com/tarnished-tactics/api/internal/model"
	"github.com/tarnished-tactics/api/internal/repository"
	"github.com/tarnished-tactics/api/internal/service"
)

// randomID generates a random hex ID
func randomID() string {
	b := make([]byte, 6)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// Factory creates test entities in the database
type Factory struct {
	builds *service.BuildService
	guides *service.GuideService
}

// New creates a new fixture factory
func New(db database.Database) *Factory {
	return &Factory{
		builds: service.NewBuildService(service.BuildServiceConfig{Repo: repository.NewBuildRepository(db)}),
		guides: service.NewGuideService(service.GuideServiceConfig{Repo: repository.NewGuideRepository(db)}),
	}
}

func testCtx(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// ============================================================================
// Build Fixtures
// ============================================================================

// BuildOpt customizes a build request
type BuildOpt func(*model.CreateBuildRequest)

// Owner sets the build owner
func Owner(userID string) BuildOpt {
	return func(r *model.CreateBuildRequest) { r.UserID = userID }
}

// Private makes the build private and not a preset
func Private() BuildOpt {
	return func(r *model.CreateBuildRequest) {
		r.IsPublic = false
		r.IsPreset = false
	}
}

// Named sets name and class
func Named(name, class string) BuildOpt {
	return func(r *model.CreateBuildRequest) {
		r.Name = name
		r.Class = class
	}
}

// CreateBuild stores a variation of StarterBuild with a unique name
func (f *Factory) CreateBuild(t *testing.T, opts ...BuildOpt) *model.Build {
	t.Helper()

	req := service.StarterBuild()
	req.Name = fmt.Sprintf("build_%s", randomID())
	req.IsPreset = false
	for _, opt := range opts {
		opt(req)
	}

	ctx := testCtx(t)
	id, err := f.builds.Create(ctx, req)
	if err != nil {
		t.Fatalf("fixtures: failed to create build: %v", err)
	}
	build, err := f.builds.Get(ctx, id)
	if err != nil {
		t.Fatalf("fixtures: failed to read back build %s: %v", id, err)
	}
	return build
}

// ============================================================================
// Guide Fixtures
// ============================================================================

// GuideOpt customizes a guide request
type GuideOpt func(*model.CreateGuideRequest)

// GuideOwner sets the guide author
func GuideOwner(userID string) GuideOpt {
	return func(r *model.CreateGuideRequest) { r.UserID = userID }
}

// ForBuild links the guide to a build
func ForBuild(buildID string) GuideOpt {
	return func(r *model.CreateGuideRequest) {
		r.AssociatedBuilds = append(r.AssociatedBuilds, buildID)
	}
}

// Draft makes the guide private
func Draft() GuideOpt {
	return func(r *model.CreateGuideRequest) { r.IsPublic = false }
}

// InCategory sets the guide category
func InCategory(category string) GuideOpt {
	return func(r *model.CreateGuideRequest) { r.Category = category }
}

// CreateGuide stores a variation of BasicCombatGuide with a unique title
func (f *Factory) CreateGuide(t *testing.T, opts ...GuideOpt) *model.Guide {
	t.Helper()

	req := service.BasicCombatGuide()
	req.Title = fmt.Sprintf("guide_%s", randomID())
	for _, opt := range opts {
		opt(req)
	}

	ctx := testCtx(t)
	id, err := f.guides.Create(ctx, req)
	if err != nil {
		t.Fatalf("fixtures: failed to create guide: %v", err)
	}
	guide, err := f.guides.Get(ctx, id)
	if err != nil {
		t.Fatalf("fixtures: failed to read back guide %s: %v", id, err)
	}
	return guide
}
