// Package fakedb provides an in-memory database.Database for unit tests.
//
// Every call is recorded; results come from Handler, which receives the
// query text and variables and returns one result per statement, shaped the
// way the SurrealDB client decodes them.
//
//	db := fakedb.New(func(q string, vars map[string]interface{}) ([]interface{}, error) {
//	    return []interface{}{[]interface{}{map[string]interface{}{"id": "build:a"}}}, nil
//	})
package fakedb

import (
	"context"
	"strings"
	"sync"

	"github.com/tarnished-tactics/api/internal/database"
)

// Handler answers a query
type Handler func(query string, vars map[string]interface{}) ([]interface{}, error)

// Call is one recorded query
type Call struct {
	Query string
	Vars  map[string]interface{}
}

// DB is a scripted database.Database
type DB struct {
	mu      sync.Mutex
	handler Handler
	calls   []Call

	PingErr error
}

var _ database.Database = (*DB)(nil)

// New creates a fake answering with h. A nil h answers every statement
// with an empty result set.
func New(h Handler) *DB {
	return &DB{handler: h}
}

// Rows wraps records as the result of a single statement
func Rows(records ...map[string]interface{}) []interface{} {
	rows := make([]interface{}, 0, len(records))
	for _, r := range records {
		rows = append(rows, r)
	}
	return []interface{}{rows}
}

func (d *DB) Connect(ctx context.Context) error { return nil }

func (d *DB) Close() error { return nil }

func (d *DB) Ping(ctx context.Context) error { return d.PingErr }

func (d *DB) Query(ctx context.Context, query string, vars map[string]interface{}) ([]interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	d.calls = append(d.calls, Call{Query: query, Vars: vars})
	h := d.handler
	d.mu.Unlock()

	if h == nil {
		return []interface{}{[]interface{}{}}, nil
	}
	return h(query, vars)
}

func (d *DB) QueryOne(ctx context.Context, query string, vars map[string]interface{}) (interface{}, error) {
	results, err := d.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, database.ErrNotFound
	}
	records := database.Records(results[0])
	if len(records) == 0 {
		return nil, database.ErrNotFound
	}
	return records[0], nil
}

func (d *DB) Execute(ctx context.Context, query string, vars map[string]interface{}) error {
	_, err := d.Query(ctx, query, vars)
	return err
}

// Calls returns a copy of the recorded calls
func (d *DB) Calls() []Call {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Call(nil), d.calls...)
}

// LastCall returns the most recent call whose query contains substr
func (d *DB) LastCall(substr string) (Call, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := len(d.calls) - 1; i >= 0; i-- {
		if strings.Contains(d.calls[i].Query, substr) {
			return d.calls[i], true
		}
	}
	return Call{}, false
}
