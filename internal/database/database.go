// Package database provides the document store abstraction for the
// Tarnished Tactics API.
//
// The Database interface abstracts SurrealDB operations so repositories can
// be exercised against an in-memory fake.
//
// # Interface Design
//
// The Database interface provides three query methods:
//   - Query: Returns one result per statement in the query
//   - QueryOne: Returns the first record of the first statement
//   - Execute: No return value (for mutations whose output is unused)
//
// There is no transaction support. No operation of this service spans
// more than one write.
//
// # Error Handling
//
// Standard errors are defined for common failure cases:
//   - ErrNotFound: Record does not exist
//   - ErrConnection: Database connection issues
//   - ErrQuery: Query execution failures
//
// Use errors.Is() to check error types:
//
//	if errors.Is(err, database.ErrNotFound) {
//	    // Handle missing record
//	}
package database

import (
	"context"
	"errors"
	"time"
)

// Standard errors for database operations.
// Use errors.Is() to check these error types in calling code.
var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrConnection indicates a failure to connect to or communicate with the database.
	ErrConnection = errors.New("database connection error")

	// ErrQuery indicates a query execution failure (syntax error, invalid reference, etc.).
	ErrQuery = errors.New("query error")
)

// Database defines the interface for database operations
type Database interface {
	// Connection management
	Connect(ctx context.Context) error
	Close() error
	Ping(ctx context.Context) error

	// Query executes a query and returns the result of every statement, in order
	Query(ctx context.Context, query string, vars map[string]interface{}) ([]interface{}, error)

	// QueryOne executes a query and returns the first record of the first statement
	QueryOne(ctx context.Context, query string, vars map[string]interface{}) (interface{}, error)

	// Execute runs a query without returning results (for mutations)
	Execute(ctx context.Context, query string, vars map[string]interface{}) error
}

// Config holds database configuration
type Config struct {
	// URL is the full endpoint (ws://, wss://, http://, https://). When empty
	// it is built from Host and Port.
	URL       string
	Host      string
	Port      string
	User      string
	Password  string
	Namespace string
	Database  string

	// QueryTimeout bounds every query whose context carries no deadline.
	// Zero disables the bound.
	QueryTimeout time.Duration
}

// Records flattens a statement result into its records. SELECT, CREATE,
// UPDATE and DELETE ... RETURN all yield an array; anything else yields nil.
func Records(statement interface{}) []interface{} {
	if arr, ok := statement.([]interface{}); ok {
		return arr
	}
	if statement == nil {
		return nil
	}
	return []interface{}{statement}
}
