package repository

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/tarnished-tactics/api/internal/database"
	"github.com/tarnished-tactics/api/internal/model"
	"github.com/tarnished-tactics/api/internal/testing/fakedb"
)

func buildRecord(key, name string) map[string]interface{} {
	return map[string]interface{}{
		"id":          models.RecordID{Table: "build", ID: key},
		"user_id":     "u1",
		"name":        name,
		"description": "desc",
		"class":       "Samurai",
		"level":       uint64(40),
		"stats": map[string]interface{}{
			"vigor": uint64(30), "mind": uint64(10), "endurance": uint64(20), "strength": uint64(12),
			"dexterity": uint64(40), "intelligence": uint64(9), "faith": uint64(8), "arcane": uint64(8),
		},
		"equipment": map[string]interface{}{
			"right_hand": []interface{}{"Uchigatana"},
			"left_hand":  []interface{}{},
			"armor": map[string]interface{}{
				"helmet": "Land of Reeds Helm",
				"chest":  nil,
			},
			"talismans": nil,
		},
		"spells":     nil,
		"is_public":  true,
		"is_preset":  false,
		"tags":       []interface{}{"katana", "bleed"},
		"created_at": models.CustomDateTime{Time: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)},
		"updated_at": models.CustomDateTime{Time: time.Date(2024, 3, 2, 12, 0, 0, 0, time.UTC)},
	}
}

func TestBuildRepository_GetByID(t *testing.T) {
	db := fakedb.New(func(q string, vars map[string]interface{}) ([]interface{}, error) {
		if vars["id"] == "build:abc" {
			return fakedb.Rows(buildRecord("abc", "Bleed Samurai")), nil
		}
		return fakedb.Rows(), nil
	})
	repo := NewBuildRepository(db)
	ctx := context.Background()

	t.Run("full id", func(t *testing.T) {
		b, err := repo.GetByID(ctx, "build:abc")
		require.NoError(t, err)
		require.NotNil(t, b)

		assert.Equal(t, "build:abc", b.ID)
		assert.Equal(t, "Bleed Samurai", b.Name)
		assert.Equal(t, 40, b.Level)
		assert.Equal(t, 30, b.Stats.Vigor)
		assert.Equal(t, 40, b.Stats.Dexterity)
		assert.Equal(t, []string{"Uchigatana"}, b.Equipment.RightHand)
		assert.Equal(t, []string{}, b.Equipment.LeftHand)
		assert.Equal(t, []string{}, b.Equipment.Talismans)
		assert.Equal(t, []string{}, b.Spells)
		require.NotNil(t, b.Equipment.Armor.Helmet)
		assert.Equal(t, "Land of Reeds Helm", *b.Equipment.Armor.Helmet)
		assert.Nil(t, b.Equipment.Armor.Chest)
		assert.Equal(t, []string{"katana", "bleed"}, b.Tags)
		assert.Equal(t, 2024, b.CreatedAt.Year())
		assert.True(t, b.UpdatedAt.After(b.CreatedAt))
	})

	t.Run("bare id", func(t *testing.T) {
		b, err := repo.GetByID(ctx, "abc")
		require.NoError(t, err)
		require.NotNil(t, b)
		assert.Equal(t, "build:abc", b.ID)
	})

	t.Run("missing", func(t *testing.T) {
		b, err := repo.GetByID(ctx, "build:nope")
		require.NoError(t, err)
		assert.Nil(t, b)
	})

	t.Run("malformed ids are not found without a query", func(t *testing.T) {
		before := len(db.Calls())
		for _, id := range []string{"", "guide:abc", "build:", "abc; DELETE build", "a:b:c"} {
			b, err := repo.GetByID(ctx, id)
			require.NoError(t, err, id)
			assert.Nil(t, b, id)
		}
		assert.Len(t, db.Calls(), before)
	})
}

func TestBuildRepository_GetAll(t *testing.T) {
	db := fakedb.New(func(q string, vars map[string]interface{}) ([]interface{}, error) {
		if strings.Contains(q, "count()") {
			return fakedb.Rows(map[string]interface{}{"count": uint64(5)}), nil
		}
		return fakedb.Rows(buildRecord("a", "A"), buildRecord("b", "B")), nil
	})
	repo := NewBuildRepository(db)

	level := 50
	public := true
	page := repo.GetAll(context.Background(), model.BuildFilters{
		Class:    "Samurai",
		MaxLevel: &level,
		IsPublic: &public,
	}, 1, 2)

	require.Len(t, page.Builds, 2)
	assert.Equal(t, 5, page.TotalResults)

	list, ok := db.LastCall("LIMIT")
	require.True(t, ok)
	assert.Contains(t, list.Query, "class = $class")
	assert.Contains(t, list.Query, "level <= $level")
	assert.Contains(t, list.Query, "is_public = $is_public")
	assert.Equal(t, 2, list.Vars["limit"])
	assert.Equal(t, 2, list.Vars["start"])
	assert.Equal(t, "Samurai", list.Vars["class"])
	assert.Equal(t, 50, list.Vars["level"])

	count, ok := db.LastCall("count()")
	require.True(t, ok)
	assert.Contains(t, count.Query, "class = $class")
	assert.NotContains(t, count.Vars, "limit")
}

func TestBuildRepository_GetAll_NoFilters(t *testing.T) {
	db := fakedb.New(nil)
	repo := NewBuildRepository(db)

	page := repo.GetAll(context.Background(), model.BuildFilters{}, 0, 20)
	assert.Empty(t, page.Builds)
	assert.NotNil(t, page.Builds)
	assert.Equal(t, 0, page.TotalResults)

	list, ok := db.LastCall("LIMIT")
	require.True(t, ok)
	assert.NotContains(t, list.Query, "WHERE")
}

func TestBuildRepository_DegradesToEmpty(t *testing.T) {
	db := fakedb.New(func(q string, vars map[string]interface{}) ([]interface{}, error) {
		return nil, database.ErrConnection
	})
	repo := NewBuildRepository(db)
	ctx := context.Background()

	page := repo.GetAll(ctx, model.BuildFilters{}, 0, 20)
	assert.Equal(t, 0, page.TotalResults)
	assert.Equal(t, []*model.Build{}, page.Builds)

	assert.Equal(t, []*model.Build{}, repo.GetByUserID(ctx, "u1"))

	assert.Equal(t, []*model.Build{}, repo.GetPresets(ctx))
	assert.Equal(t, []*model.Build{}, repo.Search(ctx, "katana"))
}

func TestBuildRepository_Create(t *testing.T) {
	db := fakedb.New(func(q string, vars map[string]interface{}) ([]interface{}, error) {
		return fakedb.Rows(map[string]interface{}{
			"id":      models.RecordID{Table: "build", ID: "new1"},
			"user_id": vars["user_id"],
		}), nil
	})
	repo := NewBuildRepository(db)

	helm := "Iron Helmet"
	id, err := repo.Create(context.Background(), "u1", &model.Build{
		Name:  "Test",
		Class: "Wretch",
		Stats: (*model.StatsPatch)(nil).Resolve(),
		Equipment: model.Equipment{
			Armor: model.Armor{Helmet: &helm},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "build:new1", id)

	call, ok := db.LastCall("CREATE build")
	require.True(t, ok)
	assert.Contains(t, call.Query, "LET $now = time::now();")
	assert.Contains(t, call.Query, "created_at: $now")
	assert.Contains(t, call.Query, "updated_at: $now")
	assert.Equal(t, "u1", call.Vars["user_id"])
	assert.Equal(t, []string{}, call.Vars["spells"])
	assert.Equal(t, []string{}, call.Vars["right_hand"])
	stats := call.Vars["stats"].(map[string]interface{})
	assert.Len(t, stats, 8)
	for name, v := range stats {
		assert.Equal(t, model.DefaultStatValue, v, name)
	}
	armor := call.Vars["armor"].(map[string]interface{})
	assert.Equal(t, "Iron Helmet", armor["helmet"])
	assert.Nil(t, armor["legs"])
}

func TestBuildRepository_Update(t *testing.T) {
	db := fakedb.New(func(q string, vars map[string]interface{}) ([]interface{}, error) {
		if vars["user_id"] == "u1" {
			return fakedb.Rows(buildRecord("abc", "Renamed")), nil
		}
		return fakedb.Rows(), nil
	})
	repo := NewBuildRepository(db)
	ctx := context.Background()

	name := "Renamed"
	vigor := 40
	rightHand := []string{"Nagakiba"}
	empty := ""
	n, err := repo.Update(ctx, "abc", "u1", model.BuildPatch{
		Name:  &name,
		Stats: &model.StatsPatch{Vigor: &vigor},
		Equipment: &model.EquipmentPatch{
			RightHand: &rightHand,
			Armor:     &model.ArmorPatch{Helmet: &empty},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	call, ok := db.LastCall("UPDATE build")
	require.True(t, ok)
	assert.Contains(t, call.Query, "name = $set_name")
	assert.Contains(t, call.Query, "stats.vigor = $set_stats_vigor")
	assert.NotContains(t, call.Query, "stats.mind")
	assert.Contains(t, call.Query, "equipment.right_hand = $set_equipment_right_hand")
	assert.Contains(t, call.Query, "equipment.armor.helmet = $set_equipment_armor_helmet")
	assert.NotContains(t, call.Query, "equipment.armor.chest")
	assert.NotContains(t, call.Query, "description")
	assert.NotContains(t, call.Query, "is_preset")
	assert.Contains(t, call.Query, "updated_at = time::now()")
	assert.Contains(t, call.Query, "user_id = $user_id")
	assert.Equal(t, "build:abc", call.Vars["id"])
	assert.Nil(t, call.Vars["set_equipment_armor_helmet"])

	t.Run("empty patch still refreshes timestamp", func(t *testing.T) {
		n, err := repo.Update(ctx, "abc", "u1", model.BuildPatch{})
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		call, _ := db.LastCall("UPDATE build")
		assert.Contains(t, call.Query, "SET updated_at = time::now() WHERE")
	})

	t.Run("foreign owner matches nothing", func(t *testing.T) {
		n, err := repo.Update(ctx, "abc", "u2", model.BuildPatch{Name: &name})
		require.NoError(t, err)
		assert.Equal(t, 0, n)
	})

	t.Run("malformed id matches nothing", func(t *testing.T) {
		n, err := repo.Update(ctx, "guide:abc", "u1", model.BuildPatch{Name: &name})
		require.NoError(t, err)
		assert.Equal(t, 0, n)
	})
}

func TestBuildRepository_Delete(t *testing.T) {
	db := fakedb.New(func(q string, vars map[string]interface{}) ([]interface{}, error) {
		if vars["id"] == "build:abc" && vars["user_id"] == "u1" {
			return fakedb.Rows(buildRecord("abc", "A")), nil
		}
		return fakedb.Rows(), nil
	})
	repo := NewBuildRepository(db)
	ctx := context.Background()

	n, err := repo.Delete(ctx, "build:abc", "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = repo.Delete(ctx, "build:abc", "u2")
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	call, _ := db.LastCall("DELETE build")
	assert.Contains(t, call.Query, "RETURN BEFORE")
}

func TestBuildRepository_Search(t *testing.T) {
	db := fakedb.New(func(q string, vars map[string]interface{}) ([]interface{}, error) {
		return fakedb.Rows(buildRecord("a", "Katana Bleed")), nil
	})
	repo := NewBuildRepository(db)

	builds := repo.Search(context.Background(), "KaTaNa")
	require.Len(t, builds, 1)

	call, _ := db.LastCall("SELECT * FROM build")
	assert.Equal(t, "katana", call.Vars["term"])
	assert.Contains(t, call.Query, "is_public = true")
	assert.Contains(t, call.Query, "string::lowercase(name)")
	assert.Contains(t, call.Query, "array::join(tags")
}

func TestBuildRepository_GetPresets(t *testing.T) {
	db := fakedb.New(nil)
	repo := NewBuildRepository(db)

	builds := repo.GetPresets(context.Background())
	assert.NotNil(t, builds)
	assert.Empty(t, builds)

	call, ok := db.LastCall("is_preset = true")
	require.True(t, ok)
	assert.NotContains(t, call.Query, "LIMIT")
}
