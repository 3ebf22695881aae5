package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tarnished-tactics/api/internal/database"
	"github.com/tarnished-tactics/api/internal/model"
)

const guideTable = "guide"

// guideDocument is the stored shape of a guide
type guideDocument struct {
	ID               string    `surreal:"id"`
	AuthorID         string    `surreal:"author_id"`
	Title            string    `surreal:"title"`
	Description      string    `surreal:"description"`
	Content          string    `surreal:"content"`
	Category         string    `surreal:"category"`
	Difficulty       string    `surreal:"difficulty"`
	AssociatedBuilds []string  `surreal:"associated_builds"`
	RecommendedLevel int       `surreal:"recommended_level"`
	Tags             []string  `surreal:"tags"`
	Images           []string  `surreal:"images"`
	IsPublic         bool      `surreal:"is_public"`
	CreatedAt        time.Time `surreal:"created_at"`
	UpdatedAt        time.Time `surreal:"updated_at"`
}

func (d *guideDocument) toModel() *model.Guide {
	return &model.Guide{
		ID:               d.ID,
		AuthorID:         d.AuthorID,
		Title:            d.Title,
		Description:      d.Description,
		Content:          d.Content,
		Category:         d.Category,
		Difficulty:       d.Difficulty,
		AssociatedBuilds: emptyIfNil(d.AssociatedBuilds),
		RecommendedLevel: d.RecommendedLevel,
		Tags:             emptyIfNil(d.Tags),
		Images:           emptyIfNil(d.Images),
		IsPublic:         d.IsPublic,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
}

// GuideRepository handles guide data access. Every multi-result read
// except GetByUserID only sees public guides, newest first.
type GuideRepository struct {
	db database.Database
}

// NewGuideRepository creates a new guide repository
func NewGuideRepository(db database.Database) *GuideRepository {
	return &GuideRepository{db: db}
}

// GetAll returns one page of public guides matching filters and the total
// number of matches. Store failures are logged and yield an empty page.
func (r *GuideRepository) GetAll(ctx context.Context, filters model.GuideFilters, page, perPage int) *model.GuidePage {
	where := newWhere()
	where.addCond("is_public = true")
	if filters.Category != "" {
		where.add("category = $category", "category", filters.Category)
	}
	if filters.Difficulty != "" {
		where.add("difficulty = $difficulty", "difficulty", filters.Difficulty)
	}
	if len(filters.Tags) > 0 {
		where.add("tags CONTAINSANY $tags", "tags", filters.Tags)
	}

	listQuery := fmt.Sprintf(
		"SELECT * FROM guide %s ORDER BY created_at DESC LIMIT $limit START $start", where)
	countQuery := fmt.Sprintf("SELECT count() AS count FROM guide %s GROUP ALL", where)
	listVars := where.withVars(map[string]interface{}{
		"limit": perPage,
		"start": page * perPage,
	})
	countVars := where.withVars(nil)

	var (
		guides []*model.Guide
		total  int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		guides, err = r.list(gctx, listQuery, listVars)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = countFromResult(r.db.QueryOne(gctx, countQuery, countVars))
		return err
	})
	if err := g.Wait(); err != nil {
		logStoreError("guides.list", err)
		return &model.GuidePage{Guides: []*model.Guide{}}
	}

	return &model.GuidePage{Guides: guides, TotalResults: total}
}

// GetByUserID returns every guide written by a user, public or not
func (r *GuideRepository) GetByUserID(ctx context.Context, userID string) []*model.Guide {
	guides, err := r.list(ctx,
		`SELECT * FROM guide WHERE author_id = $author_id ORDER BY created_at DESC`,
		map[string]interface{}{"author_id": userID},
	)
	if err != nil {
		logStoreError("guides.by_user", err)
		return []*model.Guide{}
	}
	return guides
}

// GetByID returns the guide or nil when it does not exist or the id is
// malformed.
func (r *GuideRepository) GetByID(ctx context.Context, id string) (*model.Guide, error) {
	recordID, ok := normalizeID(guideTable, id)
	if !ok {
		return nil, nil
	}

	result, err := r.db.QueryOne(ctx, `SELECT * FROM type::record($id)`, map[string]interface{}{
		"id": recordID,
	})
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var doc guideDocument
	if err := decodeRecord(result, &doc); err != nil {
		return nil, err
	}
	return doc.toModel(), nil
}

// Create stores a complete guide written by userID and returns its id
func (r *GuideRepository) Create(ctx context.Context, userID string, guide *model.Guide) (string, error) {
	query := `
		LET $now = time::now();
		CREATE guide CONTENT {
			author_id: $author_id,
			title: $title,
			description: $description,
			content: $content,
			category: $category,
			difficulty: $difficulty,
			associated_builds: $associated_builds,
			recommended_level: $recommended_level,
			tags: $tags,
			images: $images,
			is_public: $is_public,
			created_at: $now,
			updated_at: $now
		};
	`
	vars := map[string]interface{}{
		"author_id":         userID,
		"title":             guide.Title,
		"description":       guide.Description,
		"content":           guide.Content,
		"category":          guide.Category,
		"difficulty":        guide.Difficulty,
		"associated_builds": emptyIfNil(guide.AssociatedBuilds),
		"recommended_level": guide.RecommendedLevel,
		"tags":              emptyIfNil(guide.Tags),
		"images":            emptyIfNil(guide.Images),
		"is_public":         guide.IsPublic,
	}

	results, err := r.db.Query(ctx, query, vars)
	if err != nil {
		logStoreError("guides.create", err)
		return "", err
	}
	created, err := lastRecord(results)
	if err != nil {
		return "", err
	}

	var doc guideDocument
	if err := decodeRecord(created, &doc); err != nil {
		return "", err
	}
	return doc.ID, nil
}

// Update merges the fields present in patch into the guide matched by id
// and author. Returns the number of guides matched.
func (r *GuideRepository) Update(ctx context.Context, id, userID string, patch model.GuidePatch) (int, error) {
	recordID, ok := normalizeID(guideTable, id)
	if !ok {
		return 0, nil
	}

	set := newSet()
	addString(set, "title", patch.Title)
	addString(set, "description", patch.Description)
	addString(set, "content", patch.Content)
	addString(set, "category", patch.Category)
	addString(set, "difficulty", patch.Difficulty)
	addList(set, "associated_builds", patch.AssociatedBuilds)
	addInt(set, "recommended_level", patch.RecommendedLevel)
	addList(set, "tags", patch.Tags)
	addList(set, "images", patch.Images)
	if patch.IsPublic != nil {
		set.add("is_public", *patch.IsPublic)
	}

	query := fmt.Sprintf(
		"UPDATE guide SET %s WHERE id = type::record($id) AND author_id = $author_id RETURN AFTER",
		set,
	)
	vars := set.vars
	vars["id"] = recordID
	vars["author_id"] = userID

	results, err := r.db.Query(ctx, query, vars)
	if err != nil {
		logStoreError("guides.update", err)
		return 0, err
	}
	return affected(results), nil
}

// Delete removes the guide matched by id and author and returns the number
// of guides deleted.
func (r *GuideRepository) Delete(ctx context.Context, id, userID string) (int, error) {
	recordID, ok := normalizeID(guideTable, id)
	if !ok {
		return 0, nil
	}

	results, err := r.db.Query(ctx,
		`DELETE guide WHERE id = type::record($id) AND author_id = $author_id RETURN BEFORE`,
		map[string]interface{}{
			"id":        recordID,
			"author_id": userID,
		},
	)
	if err != nil {
		logStoreError("guides.delete", err)
		return 0, err
	}
	return affected(results), nil
}

// GetByCategory returns public guides of one category
func (r *GuideRepository) GetByCategory(ctx context.Context, category string) []*model.Guide {
	guides, err := r.list(ctx,
		`SELECT * FROM guide WHERE is_public = true AND category = $category ORDER BY created_at DESC`,
		map[string]interface{}{"category": category},
	)
	if err != nil {
		logStoreError("guides.by_category", err)
		return []*model.Guide{}
	}
	return guides
}

// GetByBuildID returns public guides that reference a build. Both the
// full and the bare form of the build id are matched.
func (r *GuideRepository) GetByBuildID(ctx context.Context, buildID string) []*model.Guide {
	ids := []string{buildID}
	if full, ok := normalizeID(buildTable, buildID); ok && full != buildID {
		ids = append(ids, full)
	}

	guides, err := r.list(ctx,
		`SELECT * FROM guide WHERE is_public = true AND associated_builds CONTAINSANY $build_ids ORDER BY created_at DESC`,
		map[string]interface{}{"build_ids": ids},
	)
	if err != nil {
		logStoreError("guides.by_build", err)
		return []*model.Guide{}
	}
	return guides
}

// Search returns public guides whose title, description, content or any
// tag contains term, ignoring case.
func (r *GuideRepository) Search(ctx context.Context, term string) []*model.Guide {
	query := `
		SELECT * FROM guide
		WHERE is_public = true
		AND (
			string::contains(string::lowercase(title), $term)
			OR string::contains(string::lowercase(description ?? ''), $term)
			OR string::contains(string::lowercase(content ?? ''), $term)
			OR string::contains(string::lowercase(array::join(tags ?? [], $sep)), $term)
		)
		ORDER BY created_at DESC
	`
	guides, err := r.list(ctx, query, map[string]interface{}{
		"term": strings.ToLower(term),
		"sep":  tagSeparator,
	})
	if err != nil {
		logStoreError("guides.search", err)
		return []*model.Guide{}
	}
	return guides
}

func (r *GuideRepository) list(ctx context.Context, query string, vars map[string]interface{}) ([]*model.Guide, error) {
	results, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}

	guides := []*model.Guide{}
	if len(results) == 0 {
		return guides, nil
	}
	for _, raw := range database.Records(results[0]) {
		var doc guideDocument
		if err := decodeRecord(raw, &doc); err != nil {
			return nil, err
		}
		guides = append(guides, doc.toModel())
	}
	return guides, nil
}

func addString(set *setClause, field string, v *string) {
	if v != nil {
		set.add(field, *v)
	}
}
