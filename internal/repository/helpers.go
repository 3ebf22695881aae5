package repository

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/tarnished-tactics/api/internal/database"
)

// recordKeyPattern matches the key part of a SurrealDB record id as
// generated by CREATE (and any reasonable hand-picked key).
var recordKeyPattern = regexp.MustCompile(`^[A-Za-z0-9_]{1,64}$`)

// normalizeID turns a caller-supplied id into "table:key". It accepts both
// the full form and the bare key. ok is false for anything malformed or
// pointing at another table, which callers treat as "not found".
func normalizeID(table, id string) (string, bool) {
	key := id
	if tb, k, found := strings.Cut(id, ":"); found {
		if tb != table {
			return "", false
		}
		key = k
	}
	if !recordKeyPattern.MatchString(key) {
		return "", false
	}
	return table + ":" + key, true
}

// whereClause accumulates AND-ed conditions and their variables
type whereClause struct {
	conds []string
	vars  map[string]interface{}
}

func newWhere() *whereClause {
	return &whereClause{vars: make(map[string]interface{})}
}

func (w *whereClause) add(cond, name string, value interface{}) {
	w.conds = append(w.conds, cond)
	w.vars[name] = value
}

func (w *whereClause) addCond(cond string) {
	w.conds = append(w.conds, cond)
}

func (w *whereClause) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(w.conds, " AND ")
}

// withVars copies the clause variables and adds extra ones
func (w *whereClause) withVars(extra map[string]interface{}) map[string]interface{} {
	vars := make(map[string]interface{}, len(w.vars)+len(extra))
	for k, v := range w.vars {
		vars[k] = v
	}
	for k, v := range extra {
		vars[k] = v
	}
	return vars
}

// setClause accumulates "field = $var" assignments for a partial update.
// Dotted fields (stats.vigor) only touch the nested key.
type setClause struct {
	parts []string
	vars  map[string]interface{}
}

func newSet() *setClause {
	return &setClause{vars: make(map[string]interface{})}
}

func (s *setClause) add(field string, value interface{}) {
	name := "set_" + strings.ReplaceAll(field, ".", "_")
	s.parts = append(s.parts, fmt.Sprintf("%s = $%s", field, name))
	s.vars[name] = value
}

func (s *setClause) String() string {
	return strings.Join(append(s.parts, "updated_at = time::now()"), ", ")
}

// countFromResult reads the count of a "SELECT count() AS count ... GROUP ALL"
// query. GROUP ALL over zero rows yields no record at all.
func countFromResult(result interface{}, err error) (int, error) {
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	data, ok := result.(map[string]interface{})
	if !ok {
		return 0, nil
	}
	return toInt(data["count"]), nil
}

// affected counts the records returned by the first statement
func affected(results []interface{}) int {
	if len(results) == 0 {
		return 0
	}
	return len(database.Records(results[0]))
}

// lastRecord returns the first record of the last statement
func lastRecord(results []interface{}) (interface{}, error) {
	if len(results) == 0 {
		return nil, database.ErrNotFound
	}
	records := database.Records(results[len(results)-1])
	if len(records) == 0 {
		return nil, database.ErrNotFound
	}
	return records[0], nil
}

// toInt converts the numeric types the SurrealDB client decodes into int
func toInt(v interface{}) int {
	switch c := v.(type) {
	case float64:
		return int(c)
	case float32:
		return int(c)
	case int:
		return c
	case int64:
		return int(c)
	case uint64:
		return int(c)
	case uint32:
		return int(c)
	}
	return 0
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func logStoreError(op string, err error) {
	slog.Error("store operation failed",
		slog.String("op", op),
		slog.String("error", err.Error()),
	)
}
