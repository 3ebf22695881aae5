package service

import (
	"context"
	"fmt"
	"time"

	"github.com/tarnished-tactics/api/internal/model"
)

// SeedUserID owns the seeded records
const SeedUserID = "admin_001"

// SeederService installs the default records through the build and guide
// services, so the usual validation and defaults apply.
type SeederService struct {
	builds *BuildService
	guides *GuideService
}

// SeederServiceConfig holds configuration for the seeder service
type SeederServiceConfig struct {
	Builds *BuildService
	Guides *GuideService
}

// NewSeederService creates a new seeder service
func NewSeederService(cfg SeederServiceConfig) *SeederService {
	return &SeederService{
		builds: cfg.Builds,
		guides: cfg.Guides,
	}
}

// SeedResult contains the results of a seeding operation
type SeedResult struct {
	Created  int      `json:"created"`
	IDs      []string `json:"ids"`
	Duration int64    `json:"duration_ms"`
}

// StarterBuild is the preset build offered to new players
func StarterBuild() *model.CreateBuildRequest {
	ten := model.DefaultStatValue
	return &model.CreateBuildRequest{
		UserID:      SeedUserID,
		Name:        "Starter Build",
		Description: "A basic starting build for new players. Balanced stats with placeholder equipment to get you started in the Lands Between.",
		Class:       "Wretch",
		Level:       1,
		Stats: &model.StatsPatch{
			Vigor: &ten, Mind: &ten, Endurance: &ten, Strength: &ten,
			Dexterity: &ten, Intelligence: &ten, Faith: &ten, Arcane: &ten,
		},
		Equipment: &model.EquipmentPatch{
			RightHand: &[]string{"Club"},
			LeftHand:  &[]string{},
			Armor: &model.ArmorPatch{
				Helmet:    strPtr("Commoner's Headband"),
				Chest:     strPtr("Commoner's Garb"),
				Gauntlets: strPtr("Commoner's Bracers"),
				Legs:      strPtr("Commoner's Trousers"),
			},
			Talismans: &[]string{},
		},
		Spells:   []string{},
		IsPublic: true,
		IsPreset: true,
		Tags:     []string{"beginner", "starter", "balanced"},
	}
}

// BasicCombatGuide is the introductory guide installed with the seed data
func BasicCombatGuide() *model.CreateGuideRequest {
	return &model.CreateGuideRequest{
		UserID:           SeedUserID,
		Title:            "Basic Combat Guide",
		Description:      "The fundamental strategy that will get you through most of Elden Ring",
		Content:          "Dodge and hit.",
		Category:         "Combat Guide",
		Difficulty:       "Beginner",
		AssociatedBuilds: []string{},
		RecommendedLevel: 1,
		Tags:             []string{"combat", "basics", "beginner"},
		Images:           []string{},
		IsPublic:         true,
	}
}

// SeedBuild installs the starter preset build
func (s *SeederService) SeedBuild(ctx context.Context) (*SeedResult, error) {
	start := time.Now()
	id, err := s.builds.Create(ctx, StarterBuild())
	if err != nil {
		return nil, fmt.Errorf("adding default build: %w", err)
	}
	return &SeedResult{Created: 1, IDs: []string{id}, Duration: time.Since(start).Milliseconds()}, nil
}

// SeedGuide installs the basic combat guide
func (s *SeederService) SeedGuide(ctx context.Context) (*SeedResult, error) {
	start := time.Now()
	id, err := s.guides.Create(ctx, BasicCombatGuide())
	if err != nil {
		return nil, fmt.Errorf("adding default guide: %w", err)
	}
	return &SeedResult{Created: 1, IDs: []string{id}, Duration: time.Since(start).Milliseconds()}, nil
}

// SeedAll installs the build, then the guide. A failure stops the run; the
// result holds what was created before it.
func (s *SeederService) SeedAll(ctx context.Context) (*SeedResult, error) {
	start := time.Now()
	result := &SeedResult{IDs: []string{}}

	for _, seed := range []func(context.Context) (*SeedResult, error){s.SeedBuild, s.SeedGuide} {
		r, err := seed(ctx)
		if err != nil {
			result.Duration = time.Since(start).Milliseconds()
			return result, err
		}
		result.Created += r.Created
		result.IDs = append(result.IDs, r.IDs...)
	}

	result.Duration = time.Since(start).Milliseconds()
	return result, nil
}

func strPtr(s string) *string { return &s }
