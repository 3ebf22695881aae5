package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarnished-tactics/api/internal/llm"
	"github.com/tarnished-tactics/api/internal/model"
)

type mockCompleter struct {
	completeFunc func(ctx context.Context, system, user string) (string, error)
	calls        int
}

func (m *mockCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	m.calls++
	return m.completeFunc(ctx, system, user)
}

func sampleBuild() *model.Build {
	helm := "White Mask"
	return &model.Build{
		ID:          "build:abc",
		UserID:      "owner",
		Name:        "Bloodhound Samurai",
		Description: "Bleed katana build",
		Class:       "Samurai",
		Level:       60,
		Stats: model.Stats{
			Vigor: 40, Mind: 12, Endurance: 20, Strength: 14,
			Dexterity: 40, Intelligence: 9, Faith: 8, Arcane: 8,
		},
		Equipment: model.Equipment{
			RightHand: []string{"Uchigatana", "Bloodhound's Fang"},
			LeftHand:  []string{},
			Armor:     model.Armor{Helmet: &helm},
			Talismans: []string{"Lord of Blood's Exultation"},
		},
		Spells: []string{},
	}
}

func draftService(build *model.Build, c llm.Completer) *GuideDraftService {
	repo := &mockBuildRepo{
		getByIDFunc: func(ctx context.Context, id string) (*model.Build, error) {
			if build != nil && (id == build.ID || "build:"+id == build.ID) {
				return build, nil
			}
			return nil, nil
		},
	}
	return NewGuideDraftService(GuideDraftServiceConfig{Builds: repo, Completer: c})
}

func TestRenderPrompt(t *testing.T) {
	prompt, err := RenderPrompt(sampleBuild())
	require.NoError(t, err)

	for _, want := range []string{
		"Build name: Bloodhound Samurai",
		"Class: Samurai",
		"Level: 60",
		"Description: Bleed katana build",
		"- Vigor: 40",
		"- Dexterity: 40",
		"- Arcane: 8",
		"- Right hand: Uchigatana, Bloodhound's Fang",
		"- Left hand: none",
		"- Helmet: White Mask",
		"- Chest: none",
		"- Talismans: Lord of Blood's Exultation",
		"Spells: none",
	} {
		assert.Contains(t, prompt, want)
	}

	again, err := RenderPrompt(sampleBuild())
	require.NoError(t, err)
	if diff := cmp.Diff(prompt, again); diff != "" {
		t.Errorf("prompt not deterministic (-first +second):\n%s", diff)
	}
}

func TestParseDraft(t *testing.T) {
	want := &model.GuideDraft{
		Title:            "Bleed Everything",
		Description:      "Short.",
		Content:          "## Play\nHit {them} hard.",
		Category:         "Build Guide",
		Difficulty:       "Intermediate",
		RecommendedLevel: 60,
		Tags:             []string{"bleed"},
		IsPublic:         true,
	}
	object := `{"title":"Bleed Everything","description":"Short.","content":"## Play\nHit {them} hard.","category":"Build Guide","difficulty":"Intermediate","recommendedLevel":60,"tags":["bleed"],"isPublic":true}`

	tests := []struct {
		name string
		raw  string
	}{
		{"bare", object},
		{"fenced json", "```json\n" + object + "\n```"},
		{"fenced plain", "```\n" + object + "\n```"},
		{"prose around", "Sure! Here is your guide:\n" + object + "\nEnjoy, Tarnished."},
		{"string numbers", strings.Replace(strings.Replace(object, `60`, `"60"`, 1), `true}`, `"true"}`, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDraft(tt.raw)
			require.NoError(t, err)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("ParseDraft mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseDraft_Invalid(t *testing.T) {
	for _, raw := range []string{
		"",
		"I cannot help with that.",
		"} backwards {",
		`{"title": "broken", "content": }`,
		`{"title": "", "content": "no title"}`,
		`{"title": "no content"}`,
		`{"title": "t", "content": "c", "recommendedLevel": "high"}`,
	} {
		_, err := ParseDraft(raw)
		assert.ErrorIs(t, err, ErrDraftInvalidFormat, raw)
	}
}

func TestGuideDraftService_Generate(t *testing.T) {
	c := &mockCompleter{completeFunc: func(ctx context.Context, system, user string) (string, error) {
		assert.Contains(t, system, "single JSON object")
		assert.Contains(t, user, "Bloodhound Samurai")
		return `{"title":"T","description":"D","content":"C","category":"Build Guide","difficulty":"Beginner","recommendedLevel":40,"tags":["bleed","AI Generated","katana"],"isPublic":false}`, nil
	}}
	svc := draftService(sampleBuild(), c)

	draft, err := svc.Generate(context.Background(), "abc", "caller")
	require.NoError(t, err)

	assert.Equal(t, []string{"build:abc"}, draft.AssociatedBuilds)
	assert.Equal(t, "caller", draft.AuthorID)
	assert.Equal(t, []string{model.AIGeneratedTag, "bleed", "katana"}, draft.Tags)
	assert.Equal(t, 40, draft.RecommendedLevel)
	assert.Equal(t, 1, c.calls)
}

func TestGuideDraftService_Generate_NoTags(t *testing.T) {
	c := &mockCompleter{completeFunc: func(ctx context.Context, system, user string) (string, error) {
		return `{"title":"T","content":"C"}`, nil
	}}
	draft, err := draftService(sampleBuild(), c).Generate(context.Background(), "build:abc", "u")
	require.NoError(t, err)
	assert.Equal(t, []string{model.AIGeneratedTag}, draft.Tags)
}

func TestGuideDraftService_Generate_Errors(t *testing.T) {
	ctx := context.Background()
	ok := &mockCompleter{completeFunc: func(ctx context.Context, system, user string) (string, error) {
		return `{"title":"T","content":"C"}`, nil
	}}

	t.Run("missing user", func(t *testing.T) {
		_, err := draftService(sampleBuild(), ok).Generate(ctx, "build:abc", "")
		assert.ErrorIs(t, err, ErrMissingUserID)
	})

	t.Run("unknown build", func(t *testing.T) {
		_, err := draftService(sampleBuild(), ok).Generate(ctx, "build:nope", "u")
		assert.ErrorIs(t, err, ErrBuildNotFound)
	})

	t.Run("unknown build without provider", func(t *testing.T) {
		_, err := draftService(nil, nil).Generate(ctx, "build:nope", "u")
		assert.ErrorIs(t, err, ErrBuildNotFound)
	})

	t.Run("disabled", func(t *testing.T) {
		_, err := draftService(sampleBuild(), nil).Generate(ctx, "build:abc", "u")
		assert.ErrorIs(t, err, ErrDraftDisabled)
	})

	providerErrors := []struct {
		name string
		err  error
		want error
	}{
		{"quota", fmt.Errorf("%w: out of credit", llm.ErrQuotaExceeded), ErrDraftQuotaExceeded},
		{"rate", fmt.Errorf("%w: slow down", llm.ErrRateLimited), ErrDraftRateLimited},
		{"other", errors.New("connection reset"), ErrDraftProvider},
	}
	for _, tt := range providerErrors {
		t.Run(tt.name, func(t *testing.T) {
			c := &mockCompleter{completeFunc: func(ctx context.Context, system, user string) (string, error) {
				return "", tt.err
			}}
			_, err := draftService(sampleBuild(), c).Generate(ctx, "build:abc", "u")
			assert.ErrorIs(t, err, tt.want)
		})
	}

	t.Run("unparseable completion is not retried", func(t *testing.T) {
		c := &mockCompleter{completeFunc: func(ctx context.Context, system, user string) (string, error) {
			return "no json here", nil
		}}
		_, err := draftService(sampleBuild(), c).Generate(ctx, "build:abc", "u")
		assert.ErrorIs(t, err, ErrDraftInvalidFormat)
		assert.Equal(t, 1, c.calls)
	})
}
