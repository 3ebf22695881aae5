package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarnished-tactics/api/internal/model"
)

// ============================================================================
// Mock Repositories
// ============================================================================

type mockBuildRepo struct {
	getAllFunc      func(ctx context.Context, filters model.BuildFilters, page, perPage int) *model.BuildPage
	getByUserIDFunc func(ctx context.Context, userID string) []*model.Build
	getByIDFunc     func(ctx context.Context, id string) (*model.Build, error)
	createFunc      func(ctx context.Context, userID string, build *model.Build) (string, error)
	updateFunc      func(ctx context.Context, id, userID string, patch model.BuildPatch) (int, error)
	deleteFunc      func(ctx context.Context, id, userID string) (int, error)
	getPresetsFunc  func(ctx context.Context) []*model.Build
	searchFunc      func(ctx context.Context, term string) []*model.Build
}

func (m *mockBuildRepo) GetAll(ctx context.Context, filters model.BuildFilters, page, perPage int) *model.BuildPage {
	if m.getAllFunc != nil {
		return m.getAllFunc(ctx, filters, page, perPage)
	}
	return &model.BuildPage{Builds: []*model.Build{}}
}

func (m *mockBuildRepo) GetByUserID(ctx context.Context, userID string) []*model.Build {
	if m.getByUserIDFunc != nil {
		return m.getByUserIDFunc(ctx, userID)
	}
	return []*model.Build{}
}

func (m *mockBuildRepo) GetByID(ctx context.Context, id string) (*model.Build, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockBuildRepo) Create(ctx context.Context, userID string, build *model.Build) (string, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, userID, build)
	}
	return "build:new", nil
}

func (m *mockBuildRepo) Update(ctx context.Context, id, userID string, patch model.BuildPatch) (int, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, userID, patch)
	}
	return 0, nil
}

func (m *mockBuildRepo) Delete(ctx context.Context, id, userID string) (int, error) {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id, userID)
	}
	return 0, nil
}

func (m *mockBuildRepo) GetPresets(ctx context.Context) []*model.Build {
	if m.getPresetsFunc != nil {
		return m.getPresetsFunc(ctx)
	}
	return []*model.Build{}
}

func (m *mockBuildRepo) Search(ctx context.Context, term string) []*model.Build {
	if m.searchFunc != nil {
		return m.searchFunc(ctx, term)
	}
	return []*model.Build{}
}

func intPtr(v int) *int { return &v }

// ============================================================================
// Tests
// ============================================================================

func TestBuildService_Create_Defaults(t *testing.T) {
	var stored *model.Build
	var owner string
	repo := &mockBuildRepo{
		createFunc: func(ctx context.Context, userID string, build *model.Build) (string, error) {
			stored, owner = build, userID
			return "build:x1", nil
		},
	}
	svc := NewBuildService(BuildServiceConfig{Repo: repo})

	id, err := svc.Create(context.Background(), &model.CreateBuildRequest{
		UserID: "u1",
		Name:   "Test",
		Class:  "Wretch",
	})
	require.NoError(t, err)
	assert.Equal(t, "build:x1", id)
	assert.Equal(t, "u1", owner)

	require.NotNil(t, stored)
	assert.Equal(t, model.Stats{
		Vigor: 10, Mind: 10, Endurance: 10, Strength: 10,
		Dexterity: 10, Intelligence: 10, Faith: 10, Arcane: 10,
	}, stored.Stats)
	assert.Equal(t, []string{}, stored.Equipment.RightHand)
	assert.Equal(t, []string{}, stored.Equipment.LeftHand)
	assert.Equal(t, []string{}, stored.Equipment.Talismans)
	assert.Nil(t, stored.Equipment.Armor.Helmet)
	assert.Equal(t, []string{}, stored.Spells)
	assert.Equal(t, []string{}, stored.Tags)
	assert.False(t, stored.IsPreset)
	assert.False(t, stored.IsPublic)
}

func TestBuildService_Create_PartialStats(t *testing.T) {
	var stored *model.Build
	repo := &mockBuildRepo{
		createFunc: func(ctx context.Context, userID string, build *model.Build) (string, error) {
			stored = build
			return "build:x2", nil
		},
	}
	svc := NewBuildService(BuildServiceConfig{Repo: repo})

	_, err := svc.Create(context.Background(), &model.CreateBuildRequest{
		UserID: "u1",
		Name:   "Str",
		Class:  "Vagabond",
		Stats:  &model.StatsPatch{Strength: intPtr(50), Vigor: intPtr(40)},
	})
	require.NoError(t, err)

	assert.Equal(t, 50, stored.Stats.Strength)
	assert.Equal(t, 40, stored.Stats.Vigor)
	assert.Equal(t, 10, stored.Stats.Mind)
	assert.Equal(t, 10, stored.Stats.Arcane)
}

func TestBuildService_Create_Validation(t *testing.T) {
	called := false
	repo := &mockBuildRepo{
		createFunc: func(ctx context.Context, userID string, build *model.Build) (string, error) {
			called = true
			return "", nil
		},
	}
	svc := NewBuildService(BuildServiceConfig{Repo: repo})

	for _, req := range []*model.CreateBuildRequest{
		{Name: "n", Class: "c"},
		{UserID: "u", Class: "c"},
		{UserID: "u", Name: "n"},
	} {
		_, err := svc.Create(context.Background(), req)
		assert.ErrorIs(t, err, ErrMissingBuildFields)
	}
	assert.False(t, called)
}

func TestBuildService_Create_StoreError(t *testing.T) {
	repo := &mockBuildRepo{
		createFunc: func(ctx context.Context, userID string, build *model.Build) (string, error) {
			return "", errors.New("disk full")
		},
	}
	svc := NewBuildService(BuildServiceConfig{Repo: repo})

	_, err := svc.Create(context.Background(), &model.CreateBuildRequest{UserID: "u", Name: "n", Class: "c"})
	assert.ErrorIs(t, err, ErrWriteFailed)
	assert.Contains(t, err.Error(), "disk full")
}

func TestBuildService_Get(t *testing.T) {
	repo := &mockBuildRepo{
		getByIDFunc: func(ctx context.Context, id string) (*model.Build, error) {
			if id == "build:a" {
				return &model.Build{ID: id}, nil
			}
			return nil, nil
		},
	}
	svc := NewBuildService(BuildServiceConfig{Repo: repo})

	b, err := svc.Get(context.Background(), "build:a")
	require.NoError(t, err)
	assert.Equal(t, "build:a", b.ID)

	_, err = svc.Get(context.Background(), "build:b")
	assert.ErrorIs(t, err, ErrBuildNotFound)
}

func TestBuildService_ListByUser(t *testing.T) {
	repo := &mockBuildRepo{
		getByUserIDFunc: func(ctx context.Context, userID string) []*model.Build {
			if userID == "u1" {
				return []*model.Build{{ID: "build:a"}}
			}
			return []*model.Build{}
		},
	}
	svc := NewBuildService(BuildServiceConfig{Repo: repo})

	builds, err := svc.ListByUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, builds, 1)

	_, err = svc.ListByUser(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNoBuildsForUser)
}

func TestBuildService_UpdateAndDelete(t *testing.T) {
	repo := &mockBuildRepo{
		updateFunc: func(ctx context.Context, id, userID string, patch model.BuildPatch) (int, error) {
			if id == "build:a" && userID == "u1" {
				return 1, nil
			}
			return 0, nil
		},
		deleteFunc: func(ctx context.Context, id, userID string) (int, error) {
			if id == "build:a" && userID == "u1" {
				return 1, nil
			}
			return 0, nil
		},
	}
	svc := NewBuildService(BuildServiceConfig{Repo: repo})
	ctx := context.Background()
	patch := model.BuildPatch{Name: strPtr("x")}

	assert.NoError(t, svc.Update(ctx, "build:a", &model.UpdateBuildRequest{UserID: "u1", BuildPatch: patch}))
	assert.ErrorIs(t, svc.Update(ctx, "build:a", &model.UpdateBuildRequest{BuildPatch: patch}), ErrMissingUserID)

	// a foreign owner and a missing build are the same error
	errForeign := svc.Update(ctx, "build:a", &model.UpdateBuildRequest{UserID: "u2", BuildPatch: patch})
	errMissing := svc.Update(ctx, "build:zzz", &model.UpdateBuildRequest{UserID: "u1", BuildPatch: patch})
	assert.ErrorIs(t, errForeign, ErrBuildNotAccessible)
	assert.Equal(t, errForeign, errMissing)

	assert.NoError(t, svc.Delete(ctx, "build:a", "u1"))
	assert.ErrorIs(t, svc.Delete(ctx, "build:a", ""), ErrMissingUserID)
	assert.Equal(t, svc.Delete(ctx, "build:a", "u2"), svc.Delete(ctx, "build:zzz", "u1"))
}

func TestBuildService_Search(t *testing.T) {
	var got string
	repo := &mockBuildRepo{
		searchFunc: func(ctx context.Context, term string) []*model.Build {
			got = term
			return []*model.Build{}
		},
	}
	svc := NewBuildService(BuildServiceConfig{Repo: repo})

	_, err := svc.Search(context.Background(), "")
	assert.ErrorIs(t, err, ErrMissingSearchQuery)
	assert.Empty(t, got)

	builds, err := svc.Search(context.Background(), "katana")
	require.NoError(t, err)
	assert.Equal(t, "katana", got)
	assert.NotNil(t, builds)
}
