package model

import "time"

// AIGeneratedTag marks guides drafted by the language model
const AIGeneratedTag = "AI Generated"

// Guide is a strategy write-up, optionally linked to builds
type Guide struct {
	ID               string    `json:"_id"`
	AuthorID         string    `json:"authorId"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Content          string    `json:"content"`
	Category         string    `json:"category"`   // e.g. Boss Guide, Build Guide, Area Guide
	Difficulty       string    `json:"difficulty"` // Beginner, Intermediate, Advanced
	AssociatedBuilds []string  `json:"associatedBuilds"`
	RecommendedLevel int       `json:"recommendedLevel"`
	Tags             []string  `json:"tags"`
	Images           []string  `json:"images"`
	IsPublic         bool      `json:"isPublic"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// GuideFilters are the recognized list filters for guides
type GuideFilters struct {
	Category   string   `json:"category,omitempty"`
	Difficulty string   `json:"difficulty,omitempty"`
	Tags       []string `json:"tags,omitempty"`
}

// GuidePage is one page of a filtered guide listing
type GuidePage struct {
	Guides       []*Guide
	TotalResults int
}

// CreateGuideRequest is the body of POST /guides
type CreateGuideRequest struct {
	UserID           string   `json:"userId"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Content          string   `json:"content"`
	Category         string   `json:"category"`
	Difficulty       string   `json:"difficulty"`
	AssociatedBuilds []string `json:"associatedBuilds,omitempty"`
	RecommendedLevel int      `json:"recommendedLevel"`
	Tags             []string `json:"tags,omitempty"`
	Images           []string `json:"images,omitempty"`
	IsPublic         bool     `json:"isPublic"`
}

// GuidePatch is a partial update of a guide. Nil fields are not touched.
type GuidePatch struct {
	Title            *string   `json:"title,omitempty"`
	Description      *string   `json:"description,omitempty"`
	Content          *string   `json:"content,omitempty"`
	Category         *string   `json:"category,omitempty"`
	Difficulty       *string   `json:"difficulty,omitempty"`
	AssociatedBuilds *[]string `json:"associatedBuilds,omitempty"`
	RecommendedLevel *int      `json:"recommendedLevel,omitempty"`
	Tags             *[]string `json:"tags,omitempty"`
	Images           *[]string `json:"images,omitempty"`
	IsPublic         *bool     `json:"isPublic,omitempty"`
}

// UpdateGuideRequest is the body of PUT /guides/{id}
type UpdateGuideRequest struct {
	UserID string `json:"userId"`
	GuidePatch
}

// GuideDraft is a machine-written guide returned to the caller for review.
// It is shaped like CreateGuideRequest so it can be submitted as-is.
type GuideDraft struct {
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Content          string   `json:"content"`
	Category         string   `json:"category"`
	Difficulty       string   `json:"difficulty"`
	RecommendedLevel int      `json:"recommendedLevel"`
	Tags             []string `json:"tags"`
	IsPublic         bool     `json:"isPublic"`
	AssociatedBuilds []string `json:"associatedBuilds"`
	AuthorID         string   `json:"authorId"`
}
