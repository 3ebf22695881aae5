package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"text/template"

	"github.com/tarnished-tactics/api/internal/llm"
	"github.com/tarnished-tactics/api/internal/model"
)

// BuildReader loads a single build
type BuildReader interface {
	GetByID(ctx context.Context, id string) (*model.Build, error)
}

// GuideDraftService turns a build into a machine-written guide draft.
// Drafts are returned to the caller and never stored.
type GuideDraftService struct {
	builds    BuildReader
	completer llm.Completer
}

// GuideDraftServiceConfig holds configuration for the draft service.
// A nil Completer disables generation.
type GuideDraftServiceConfig struct {
	Builds    BuildReader
	Completer llm.Completer
}

// NewGuideDraftService creates a new draft service
func NewGuideDraftService(cfg GuideDraftServiceConfig) *GuideDraftService {
	return &GuideDraftService{
		builds:    cfg.Builds,
		completer: cfg.Completer,
	}
}

const draftSystemPrompt = `You are an experienced Elden Ring player who writes strategy guides for other players.
Respond with a single JSON object and nothing else. The object has exactly these fields:
  "title": string
  "description": string, one or two sentences
  "content": string, the full guide in Markdown
  "category": one of "Build Guide", "Boss Guide", "Area Guide", "General"
  "difficulty": one of "Beginner", "Intermediate", "Advanced"
  "recommendedLevel": integer
  "tags": array of short strings
  "isPublic": boolean`

var draftPrompt = template.Must(template.New("draft").Funcs(template.FuncMap{
	"list": listOrNone,
	"slot": slotOrNone,
	"text": func(s string) string {
		if strings.TrimSpace(s) == "" {
			return "none"
		}
		return s
	},
}).Parse(`Write a strategy guide for the following character build.

Build name: {{.Name}}
Class: {{.Class}}
Level: {{.Level}}
Description: {{text .Description}}

Stats:
- Vigor: {{.Stats.Vigor}}
- Mind: {{.Stats.Mind}}
- Endurance: {{.Stats.Endurance}}
- Strength: {{.Stats.Strength}}
- Dexterity: {{.Stats.Dexterity}}
- Intelligence: {{.Stats.Intelligence}}
- Faith: {{.Stats.Faith}}
- Arcane: {{.Stats.Arcane}}

Equipment:
- Right hand: {{list .Equipment.RightHand}}
- Left hand: {{list .Equipment.LeftHand}}
- Helmet: {{slot .Equipment.Armor.Helmet}}
- Chest: {{slot .Equipment.Armor.Chest}}
- Gauntlets: {{slot .Equipment.Armor.Gauntlets}}
- Legs: {{slot .Equipment.Armor.Legs}}
- Talismans: {{list .Equipment.Talismans}}

Spells: {{list .Spells}}

Explain how to play this build, its strengths and weaknesses, which stats to raise first while leveling, and which bosses or areas it handles well.
`))

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}

func slotOrNone(item *string) string {
	if item == nil || *item == "" {
		return "none"
	}
	return *item
}

// RenderPrompt renders the user prompt for a build. The output depends on
// the build only.
func RenderPrompt(build *model.Build) (string, error) {
	var buf bytes.Buffer
	if err := draftPrompt.Execute(&buf, build); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Generate drafts a guide for buildID on behalf of userID
func (s *GuideDraftService) Generate(ctx context.Context, buildID, userID string) (*model.GuideDraft, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}

	build, err := s.builds.GetByID(ctx, buildID)
	if err != nil {
		return nil, err
	}
	if build == nil {
		return nil, ErrBuildNotFound
	}

	if s.completer == nil {
		return nil, ErrDraftDisabled
	}

	prompt, err := RenderPrompt(build)
	if err != nil {
		return nil, fmt.Errorf("rendering prompt: %w", err)
	}

	raw, err := s.completer.Complete(ctx, draftSystemPrompt, prompt)
	if err != nil {
		switch {
		case errors.Is(err, llm.ErrQuotaExceeded):
			return nil, fmt.Errorf("%w: %v", ErrDraftQuotaExceeded, err)
		case errors.Is(err, llm.ErrRateLimited):
			return nil, fmt.Errorf("%w: %v", ErrDraftRateLimited, err)
		default:
			return nil, fmt.Errorf("%w: %v", ErrDraftProvider, err)
		}
	}

	draft, err := ParseDraft(raw)
	if err != nil {
		return nil, err
	}

	draft.AssociatedBuilds = []string{build.ID}
	draft.AuthorID = userID
	draft.Tags = withLeadingTag(model.AIGeneratedTag, draft.Tags)
	return draft, nil
}

var (
	fenceOpen  = regexp.MustCompile("^```[A-Za-z]*\\s*")
	fenceClose = regexp.MustCompile("\\s*```$")
)

// draftPayload is the object the model is asked to produce
type draftPayload struct {
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Content          string    `json:"content"`
	Category         string    `json:"category"`
	Difficulty       string    `json:"difficulty"`
	RecommendedLevel looseInt  `json:"recommendedLevel"`
	Tags             []string  `json:"tags"`
	IsPublic         looseBool `json:"isPublic"`
}

// ParseDraft extracts the guide object from a completion. Code fences and
// prose around the outermost braces are discarded. Title and content must
// be present.
func ParseDraft(raw string) (*model.GuideDraft, error) {
	text := strings.TrimSpace(raw)
	text = fenceOpen.ReplaceAllString(text, "")
	text = fenceClose.ReplaceAllString(text, "")

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return nil, fmt.Errorf("%w: no JSON object in completion", ErrDraftInvalidFormat)
	}

	var payload draftPayload
	if err := json.Unmarshal([]byte(text[start:end+1]), &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDraftInvalidFormat, err)
	}
	if strings.TrimSpace(payload.Title) == "" || strings.TrimSpace(payload.Content) == "" {
		return nil, fmt.Errorf("%w: title and content are required", ErrDraftInvalidFormat)
	}

	return &model.GuideDraft{
		Title:            payload.Title,
		Description:      payload.Description,
		Content:          payload.Content,
		Category:         payload.Category,
		Difficulty:       payload.Difficulty,
		RecommendedLevel: int(payload.RecommendedLevel),
		Tags:             orEmpty(payload.Tags),
		IsPublic:         bool(payload.IsPublic),
	}, nil
}

// withLeadingTag puts tag first and drops any other copy of it
func withLeadingTag(tag string, tags []string) []string {
	out := make([]string, 0, len(tags)+1)
	out = append(out, tag)
	for _, t := range tags {
		if t != tag {
			out = append(out, t)
		}
	}
	return out
}

// looseInt accepts a JSON number or a numeric string
type looseInt int

func (n *looseInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("recommendedLevel: %w", err)
	}
	*n = looseInt(f)
	return nil
}

// looseBool accepts a JSON boolean or "true"/"false"
type looseBool bool

func (b *looseBool) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*b = false
		return nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return fmt.Errorf("isPublic: %w", err)
	}
	*b = looseBool(v)
	return nil
}
