// Package model defines domain entities and data structures for the
// Tarnished Tactics API.
//
// The model package contains the Build and Guide documents, their request
// and partial-update shapes, and the API error type. Models are used across
// all layers of the application.
//
// # Domain Entities
//
//   - Build: a saved character configuration (stats, equipment, spells)
//   - Guide: a strategy write-up, optionally referencing builds
//   - GuideDraft: a machine-written guide that has not been stored
//
// # JSON Serialization
//
// Documents are serialized with camelCase keys and the identifier under
// "_id", matching what existing clients of the API read:
//
//	{"_id": "build:k2x9...", "userId": "u1", "name": "Bleed Samurai", ...}
//
// # Partial Updates
//
// BuildPatch and GuidePatch use pointer fields so that a field the caller
// did not send is distinguishable from a field set to its zero value.
//
// # Error Types
//
// Every error answer has the shape {"error": "message"}:
//
//	type APIError struct {
//	    Status  int    `json:"-"`
//	    Message string `json:"error"`
//	}
package model
