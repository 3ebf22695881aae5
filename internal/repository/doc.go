// Package repository implements the data access layer for builds and guides.
//
// Each repository translates filter and pagination parameters into
// SurrealQL and maps the returned records onto model structs.
//
// # Query Patterns
//
//   - Parameterized queries with $variable syntax
//   - type::record() for id lookups; ids are accepted as "build:key" or bare "key"
//   - time::now() for timestamps, never caller supplied; CREATE binds it once
//     so created_at and updated_at start out equal
//   - UPDATE/DELETE are scoped by id AND owner and RETURN the touched records,
//     so a count of 0 means "missing or not yours"
//
// # Failure Policy
//
// Multi-result reads (paged listings, by-owner, presets, category, build
// and search listings) log store failures and return empty results. Single
// record reads and every write return the error.
//
// # Example Usage
//
//	repo := NewBuildRepository(db)
//	build, err := repo.GetByID(ctx, "build:abc123")
//	if err != nil {
//	    return err
//	}
//	if build == nil {
//	    // not found
//	}
package repository
