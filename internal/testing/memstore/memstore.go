// Package memstore provides in-memory build and guide stores with the same
// observable behavior as the SurrealDB repositories. Handler and service
// tests use it to run whole request flows without a database.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/tarnished-tactics/api/internal/model"
)

// Clock returns the current time; tests may replace it
type Clock func() time.Time

// BuildStore is an in-memory build repository
type BuildStore struct {
	mu     sync.Mutex
	seq    int
	order  []string
	builds map[string]*model.Build
	Now    Clock
}

// NewBuildStore creates an empty build store
func NewBuildStore() *BuildStore {
	return &BuildStore{builds: make(map[string]*model.Build), Now: time.Now}
}

func key(table, id string) string {
	if strings.HasPrefix(id, table+":") {
		return id
	}
	return table + ":" + id
}

func copyBuild(b *model.Build) *model.Build {
	c := *b
	c.Spells = append([]string{}, b.Spells...)
	c.Tags = append([]string{}, b.Tags...)
	c.Equipment.RightHand = append([]string{}, b.Equipment.RightHand...)
	c.Equipment.LeftHand = append([]string{}, b.Equipment.LeftHand...)
	c.Equipment.Talismans = append([]string{}, b.Equipment.Talismans...)
	return &c
}

func (s *BuildStore) each(fn func(*model.Build) bool) []*model.Build {
	out := []*model.Build{}
	for _, id := range s.order {
		b := s.builds[id]
		if fn(b) {
			out = append(out, copyBuild(b))
		}
	}
	return out
}

func (s *BuildStore) GetAll(ctx context.Context, filters model.BuildFilters, page, perPage int) *model.BuildPage {
	s.mu.Lock()
	defer s.mu.Unlock()

	matches := s.each(func(b *model.Build) bool {
		if filters.Class != "" && b.Class != filters.Class {
			return false
		}
		if filters.MaxLevel != nil && b.Level > *filters.MaxLevel {
			return false
		}
		if filters.IsPublic != nil && b.IsPublic != *filters.IsPublic {
			return false
		}
		return true
	})
	return &model.BuildPage{Builds: paginate(matches, page, perPage), TotalResults: len(matches)}
}

func (s *BuildStore) GetByUserID(ctx context.Context, userID string) []*model.Build {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.each(func(b *model.Build) bool { return b.UserID == userID })
}

func (s *BuildStore) GetByID(ctx context.Context, id string) (*model.Build, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.builds[key("build", id)]
	if !ok {
		return nil, nil
	}
	return copyBuild(b), nil
}

func (s *BuildStore) Create(ctx context.Context, userID string, build *model.Build) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	id := fmt.Sprintf("build:m%d", s.seq)
	stored := copyBuild(build)
	stored.ID = id
	stored.UserID = userID
	stored.CreatedAt = s.Now()
	stored.UpdatedAt = stored.CreatedAt
	s.builds[id] = stored
	s.order = append(s.order, id)
	return id, nil
}

func (s *BuildStore) Update(ctx context.Context, id, userID string, patch model.BuildPatch) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.builds[key("build", id)]
	if !ok || b.UserID != userID {
		return 0, nil
	}
	applyBuildPatch(b, patch)
	b.UpdatedAt = s.Now()
	return 1, nil
}

func (s *BuildStore) Delete(ctx context.Context, id, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key("build", id)
	b, ok := s.builds[k]
	if !ok || b.UserID != userID {
		return 0, nil
	}
	delete(s.builds, k)
	s.order = remove(s.order, k)
	return 1, nil
}

func (s *BuildStore) GetPresets(ctx context.Context) []*model.Build {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.each(func(b *model.Build) bool { return b.IsPreset })
}

func (s *BuildStore) Search(ctx context.Context, term string) []*model.Build {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.each(func(b *model.Build) bool {
		return b.IsPublic && containsFold(term, append([]string{b.Name, b.Description}, b.Tags...)...)
	})
}

func applyBuildPatch(b *model.Build, p model.BuildPatch) {
	setString(&b.Name, p.Name)
	setString(&b.Description, p.Description)
	setString(&b.Class, p.Class)
	setInt(&b.Level, p.Level)
	if st := p.Stats; st != nil {
		setInt(&b.Stats.Vigor, st.Vigor)
		setInt(&b.Stats.Mind, st.Mind)
		setInt(&b.Stats.Endurance, st.Endurance)
		setInt(&b.Stats.Strength, st.Strength)
		setInt(&b.Stats.Dexterity, st.Dexterity)
		setInt(&b.Stats.Intelligence, st.Intelligence)
		setInt(&b.Stats.Faith, st.Faith)
		setInt(&b.Stats.Arcane, st.Arcane)
	}
	if eq := p.Equipment; eq != nil {
		setList(&b.Equipment.RightHand, eq.RightHand)
		setList(&b.Equipment.LeftHand, eq.LeftHand)
		setList(&b.Equipment.Talismans, eq.Talismans)
		if a := eq.Armor; a != nil {
			setSlot(&b.Equipment.Armor.Helmet, a.Helmet)
			setSlot(&b.Equipment.Armor.Chest, a.Chest)
			setSlot(&b.Equipment.Armor.Gauntlets, a.Gauntlets)
			setSlot(&b.Equipment.Armor.Legs, a.Legs)
		}
	}
	setList(&b.Spells, p.Spells)
	if p.IsPublic != nil {
		b.IsPublic = *p.IsPublic
	}
	setList(&b.Tags, p.Tags)
}

// GuideStore is an in-memory guide repository
type GuideStore struct {
	mu     sync.Mutex
	seq    int
	guides map[string]*model.Guide
	seqOf  map[string]int
	Now    Clock
}

// NewGuideStore creates an empty guide store
func NewGuideStore() *GuideStore {
	return &GuideStore{
		guides: make(map[string]*model.Guide),
		seqOf:  make(map[string]int),
		Now:    time.Now,
	}
}

func copyGuide(g *model.Guide) *model.Guide {
	c := *g
	c.AssociatedBuilds = append([]string{}, g.AssociatedBuilds...)
	c.Tags = append([]string{}, g.Tags...)
	c.Images = append([]string{}, g.Images...)
	return &c
}

// newest returns matching guides, newest first
func (s *GuideStore) newest(fn func(*model.Guide) bool) []*model.Guide {
	out := []*model.Guide{}
	for _, g := range s.guides {
		if fn(g) {
			out = append(out, copyGuide(g))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return s.seqOf[out[i].ID] > s.seqOf[out[j].ID]
	})
	return out
}

func (s *GuideStore) GetAll(ctx context.Context, filters model.GuideFilters, page, perPage int) *model.GuidePage {
	s.mu.Lock()
	defer s.mu.Unlock()

	matches := s.newest(func(g *model.Guide) bool {
		if !g.IsPublic {
			return false
		}
		if filters.Category != "" && g.Category != filters.Category {
			return false
		}
		if filters.Difficulty != "" && g.Difficulty != filters.Difficulty {
			return false
		}
		if len(filters.Tags) > 0 && !containsAny(g.Tags, filters.Tags) {
			return false
		}
		return true
	})
	return &model.GuidePage{Guides: paginate(matches, page, perPage), TotalResults: len(matches)}
}

func (s *GuideStore) GetByUserID(ctx context.Context, userID string) []*model.Guide {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.newest(func(g *model.Guide) bool { return g.AuthorID == userID })
}

func (s *GuideStore) GetByID(ctx context.Context, id string) (*model.Guide, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.guides[key("guide", id)]
	if !ok {
		return nil, nil
	}
	return copyGuide(g), nil
}

func (s *GuideStore) Create(ctx context.Context, userID string, guide *model.Guide) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	id := fmt.Sprintf("guide:m%d", s.seq)
	stored := copyGuide(guide)
	stored.ID = id
	stored.AuthorID = userID
	stored.CreatedAt = s.Now()
	stored.UpdatedAt = stored.CreatedAt
	s.guides[id] = stored
	s.seqOf[id] = s.seq
	return id, nil
}

func (s *GuideStore) Update(ctx context.Context, id, userID string, p model.GuidePatch) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.guides[key("guide", id)]
	if !ok || g.AuthorID != userID {
		return 0, nil
	}
	setString(&g.Title, p.Title)
	setString(&g.Description, p.Description)
	setString(&g.Content, p.Content)
	setString(&g.Category, p.Category)
	setString(&g.Difficulty, p.Difficulty)
	setList(&g.AssociatedBuilds, p.AssociatedBuilds)
	setInt(&g.RecommendedLevel, p.RecommendedLevel)
	setList(&g.Tags, p.Tags)
	setList(&g.Images, p.Images)
	if p.IsPublic != nil {
		g.IsPublic = *p.IsPublic
	}
	g.UpdatedAt = s.Now()
	return 1, nil
}

func (s *GuideStore) Delete(ctx context.Context, id, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key("guide", id)
	g, ok := s.guides[k]
	if !ok || g.AuthorID != userID {
		return 0, nil
	}
	delete(s.guides, k)
	delete(s.seqOf, k)
	return 1, nil
}

func (s *GuideStore) GetByCategory(ctx context.Context, category string) []*model.Guide {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.newest(func(g *model.Guide) bool { return g.IsPublic && g.Category == category })
}

func (s *GuideStore) GetByBuildID(ctx context.Context, buildID string) []*model.Guide {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := []string{buildID, key("build", buildID)}
	return s.newest(func(g *model.Guide) bool { return g.IsPublic && containsAny(g.AssociatedBuilds, ids) })
}

func (s *GuideStore) Search(ctx context.Context, term string) []*model.Guide {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.newest(func(g *model.Guide) bool {
		return g.IsPublic && containsFold(term, append([]string{g.Title, g.Description, g.Content}, g.Tags...)...)
	})
}

func paginate[T any](items []T, page, perPage int) []T {
	start := page * perPage
	if start >= len(items) || start < 0 {
		return []T{}
	}
	end := start + perPage
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func containsFold(term string, fields ...string) bool {
	term = strings.ToLower(term)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

func containsAny(have, want []string) bool {
	for _, h := range have {
		for _, w := range want {
			if h == w {
				return true
			}
		}
	}
	return false
}

func remove(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setList(dst *[]string, v *[]string) {
	if v == nil {
		return
	}
	if *v == nil {
		*dst = []string{}
		return
	}
	*dst = append([]string{}, (*v)...)
}

func setSlot(dst **string, v *string) {
	if v == nil {
		return
	}
	if *v == "" {
		*dst = nil
		return
	}
	s := *v
	*dst = &s
}
