package handler

import (
	"net/http"
	"strconv"
	"strings"
)

const (
	defaultPage    = 0
	defaultPerPage = 20
)

// pagination reads page and the per-page parameter. Values that do not
// parse, and out of range ones, fall back to the defaults.
func pagination(r *http.Request, perPageParam string) (page, perPage int) {
	q := r.URL.Query()

	page = defaultPage
	if v, ok := queryInt(q.Get("page")); ok && v >= 0 {
		page = v
	}
	perPage = defaultPerPage
	if v, ok := queryInt(q.Get(perPageParam)); ok && v > 0 {
		perPage = v
	}
	return page, perPage
}

func queryInt(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return v, true
}

// queryList splits a comma separated parameter, dropping blanks
func queryList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
