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

const buildTable = "build"

// buildDocument is the stored shape of a build
type buildDocument struct {
	ID          string            `surreal:"id"`
	UserID      string            `surreal:"user_id"`
	Name        string            `surreal:"name"`
	Description string            `surreal:"description"`
	Class       string            `surreal:"class"`
	Level       int               `surreal:"level"`
	Stats       model.Stats       `surreal:"stats"`
	Equipment   equipmentDocument `surreal:"equipment"`
	Spells      []string          `surreal:"spells"`
	IsPublic    bool              `surreal:"is_public"`
	IsPreset    bool              `surreal:"is_preset"`
	Tags        []string          `surreal:"tags"`
	CreatedAt   time.Time         `surreal:"created_at"`
	UpdatedAt   time.Time         `surreal:"updated_at"`
}

type equipmentDocument struct {
	RightHand []string    `surreal:"right_hand"`
	LeftHand  []string    `surreal:"left_hand"`
	Armor     model.Armor `surreal:"armor"`
	Talismans []string    `surreal:"talismans"`
}

func (d *buildDocument) toModel() *model.Build {
	return &model.Build{
		ID:          d.ID,
		UserID:      d.UserID,
		Name:        d.Name,
		Description: d.Description,
		Class:       d.Class,
		Level:       d.Level,
		Stats:       d.Stats,
		Equipment: model.Equipment{
			RightHand: emptyIfNil(d.Equipment.RightHand),
			LeftHand:  emptyIfNil(d.Equipment.LeftHand),
			Armor:     d.Equipment.Armor,
			Talismans: emptyIfNil(d.Equipment.Talismans),
		},
		Spells:    emptyIfNil(d.Spells),
		IsPublic:  d.IsPublic,
		IsPreset:  d.IsPreset,
		Tags:      emptyIfNil(d.Tags),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func statsContent(s model.Stats) map[string]interface{} {
	return map[string]interface{}{
		"vigor":        s.Vigor,
		"mind":         s.Mind,
		"endurance":    s.Endurance,
		"strength":     s.Strength,
		"dexterity":    s.Dexterity,
		"intelligence": s.Intelligence,
		"faith":        s.Faith,
		"arcane":       s.Arcane,
	}
}

func armorContent(a model.Armor) map[string]interface{} {
	return map[string]interface{}{
		"helmet":    ptrToNull(a.Helmet),
		"chest":     ptrToNull(a.Chest),
		"gauntlets": ptrToNull(a.Gauntlets),
		"legs":      ptrToNull(a.Legs),
	}
}

func ptrToNull(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

// BuildRepository handles build data access
type BuildRepository struct {
	db database.Database
}

// NewBuildRepository creates a new build repository
func NewBuildRepository(db database.Database) *BuildRepository {
	return &BuildRepository{db: db}
}

// GetAll returns one page of builds matching filters and the total number
// of matches. Store failures are logged and yield an empty page.
func (r *BuildRepository) GetAll(ctx context.Context, filters model.BuildFilters, page, perPage int) *model.BuildPage {
	where := newWhere()
	if filters.Class != "" {
		where.add("class = $class", "class", filters.Class)
	}
	if filters.MaxLevel != nil {
		where.add("level <= $level", "level", *filters.MaxLevel)
	}
	if filters.IsPublic != nil {
		where.add("is_public = $is_public", "is_public", *filters.IsPublic)
	}

	listQuery := fmt.Sprintf("SELECT * FROM build %s LIMIT $limit START $start", where)
	countQuery := fmt.Sprintf("SELECT count() AS count FROM build %s GROUP ALL", where)
	listVars := where.withVars(map[string]interface{}{
		"limit": perPage,
		"start": page * perPage,
	})
	countVars := where.withVars(nil)

	var (
		builds []*model.Build
		total  int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		builds, err = r.list(gctx, listQuery, listVars)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = countFromResult(r.db.QueryOne(gctx, countQuery, countVars))
		return err
	})
	if err := g.Wait(); err != nil {
		logStoreError("builds.list", err)
		return &model.BuildPage{Builds: []*model.Build{}}
	}

	return &model.BuildPage{Builds: builds, TotalResults: total}
}

// GetByUserID returns every build of a user, public or not
func (r *BuildRepository) GetByUserID(ctx context.Context, userID string) []*model.Build {
	builds, err := r.list(ctx, `SELECT * FROM build WHERE user_id = $user_id`, map[string]interface{}{
		"user_id": userID,
	})
	if err != nil {
		logStoreError("builds.by_user", err)
		return []*model.Build{}
	}
	return builds
}

// GetByID returns the build or nil when it does not exist or the id is
// malformed.
func (r *BuildRepository) GetByID(ctx context.Context, id string) (*model.Build, error) {
	recordID, ok := normalizeID(buildTable, id)
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

	var doc buildDocument
	if err := decodeRecord(result, &doc); err != nil {
		return nil, err
	}
	return doc.toModel(), nil
}

// Create stores a complete build owned by userID and returns its id.
// Timestamps are set by the store.
func (r *BuildRepository) Create(ctx context.Context, userID string, build *model.Build) (string, error) {
	query := `
		LET $now = time::now();
		CREATE build CONTENT {
			user_id: $user_id,
			name: $name,
			description: $description,
			class: $class,
			level: $level,
			stats: $stats,
			equipment: {
				right_hand: $right_hand,
				left_hand: $left_hand,
				armor: $armor,
				talismans: $talismans
			},
			spells: $spells,
			is_public: $is_public,
			is_preset: $is_preset,
			tags: $tags,
			created_at: $now,
			updated_at: $now
		};
	`
	vars := map[string]interface{}{
		"user_id":     userID,
		"name":        build.Name,
		"description": build.Description,
		"class":       build.Class,
		"level":       build.Level,
		"stats":       statsContent(build.Stats),
		"right_hand":  emptyIfNil(build.Equipment.RightHand),
		"left_hand":   emptyIfNil(build.Equipment.LeftHand),
		"armor":       armorContent(build.Equipment.Armor),
		"talismans":   emptyIfNil(build.Equipment.Talismans),
		"spells":      emptyIfNil(build.Spells),
		"is_public":   build.IsPublic,
		"is_preset":   build.IsPreset,
		"tags":        emptyIfNil(build.Tags),
	}

	results, err := r.db.Query(ctx, query, vars)
	if err != nil {
		logStoreError("builds.create", err)
		return "", err
	}
	created, err := lastRecord(results)
	if err != nil {
		return "", err
	}

	var doc buildDocument
	if err := decodeRecord(created, &doc); err != nil {
		return "", err
	}
	return doc.ID, nil
}

// Update merges the fields present in patch into the build matched by id
// and owner. Returns the number of builds matched; 0 covers both a missing
// build and a foreign owner.
func (r *BuildRepository) Update(ctx context.Context, id, userID string, patch model.BuildPatch) (int, error) {
	recordID, ok := normalizeID(buildTable, id)
	if !ok {
		return 0, nil
	}

	set := newSet()
	if patch.Name != nil {
		set.add("name", *patch.Name)
	}
	if patch.Description != nil {
		set.add("description", *patch.Description)
	}
	if patch.Class != nil {
		set.add("class", *patch.Class)
	}
	if patch.Level != nil {
		set.add("level", *patch.Level)
	}
	if s := patch.Stats; s != nil {
		addInt(set, "stats.vigor", s.Vigor)
		addInt(set, "stats.mind", s.Mind)
		addInt(set, "stats.endurance", s.Endurance)
		addInt(set, "stats.strength", s.Strength)
		addInt(set, "stats.dexterity", s.Dexterity)
		addInt(set, "stats.intelligence", s.Intelligence)
		addInt(set, "stats.faith", s.Faith)
		addInt(set, "stats.arcane", s.Arcane)
	}
	if eq := patch.Equipment; eq != nil {
		addList(set, "equipment.right_hand", eq.RightHand)
		addList(set, "equipment.left_hand", eq.LeftHand)
		addList(set, "equipment.talismans", eq.Talismans)
		if a := eq.Armor; a != nil {
			addSlot(set, "equipment.armor.helmet", a.Helmet)
			addSlot(set, "equipment.armor.chest", a.Chest)
			addSlot(set, "equipment.armor.gauntlets", a.Gauntlets)
			addSlot(set, "equipment.armor.legs", a.Legs)
		}
	}
	addList(set, "spells", patch.Spells)
	if patch.IsPublic != nil {
		set.add("is_public", *patch.IsPublic)
	}
	addList(set, "tags", patch.Tags)

	query := fmt.Sprintf(
		"UPDATE build SET %s WHERE id = type::record($id) AND user_id = $user_id RETURN AFTER",
		set,
	)
	vars := set.vars
	vars["id"] = recordID
	vars["user_id"] = userID

	results, err := r.db.Query(ctx, query, vars)
	if err != nil {
		logStoreError("builds.update", err)
		return 0, err
	}
	return affected(results), nil
}

// Delete removes the build matched by id and owner and returns the number
// of builds deleted.
func (r *BuildRepository) Delete(ctx context.Context, id, userID string) (int, error) {
	recordID, ok := normalizeID(buildTable, id)
	if !ok {
		return 0, nil
	}

	results, err := r.db.Query(ctx,
		`DELETE build WHERE id = type::record($id) AND user_id = $user_id RETURN BEFORE`,
		map[string]interface{}{
			"id":      recordID,
			"user_id": userID,
		},
	)
	if err != nil {
		logStoreError("builds.delete", err)
		return 0, err
	}
	return affected(results), nil
}

// GetPresets returns the system-provided template builds. Store failures
// yield an empty list.
func (r *BuildRepository) GetPresets(ctx context.Context) []*model.Build {
	builds, err := r.list(ctx, `SELECT * FROM build WHERE is_preset = true`, nil)
	if err != nil {
		logStoreError("builds.presets", err)
		return []*model.Build{}
	}
	return builds
}

// Search returns public builds whose name, description or any tag contains
// term, ignoring case. Store failures yield an empty list.
func (r *BuildRepository) Search(ctx context.Context, term string) []*model.Build {
	query := `
		SELECT * FROM build
		WHERE is_public = true
		AND (
			string::contains(string::lowercase(name), $term)
			OR string::contains(string::lowercase(description ?? ''), $term)
			OR string::contains(string::lowercase(array::join(tags ?? [], $sep)), $term)
		)
	`
	builds, err := r.list(ctx, query, map[string]interface{}{
		"term": strings.ToLower(term),
		"sep":  tagSeparator,
	})
	if err != nil {
		logStoreError("builds.search", err)
		return []*model.Build{}
	}
	return builds
}

func (r *BuildRepository) list(ctx context.Context, query string, vars map[string]interface{}) ([]*model.Build, error) {
	results, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}

	builds := []*model.Build{}
	if len(results) == 0 {
		return builds, nil
	}
	for _, raw := range database.Records(results[0]) {
		var doc buildDocument
		if err := decodeRecord(raw, &doc); err != nil {
			return nil, err
		}
		builds = append(builds, doc.toModel())
	}
	return builds, nil
}

// tagSeparator joins tags for substring search; it cannot occur in typed
// text, so a match never spans two tags.
const tagSeparator = "\u001f"

func addInt(set *setClause, field string, v *int) {
	if v != nil {
		set.add(field, *v)
	}
}

func addList(set *setClause, field string, v *[]string) {
	if v != nil {
		set.add(field, emptyIfNil(*v))
	}
}

func addSlot(set *setClause, field string, v *string) {
	if v == nil {
		return
	}
	if *v == "" {
		set.add(field, nil)
		return
	}
	set.add(field, *v)
}
