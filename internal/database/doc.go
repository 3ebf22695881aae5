// # Connection Management
//
// Connect to SurrealDB:
//
//	db := database.NewSurrealDB(database.Config{
//	    URL:          "ws://localhost:8000",
//	    Namespace:    "tarnished",
//	    Database:     "tactics",
//	    User:         "root",
//	    Password:     "secret",
//	    QueryTimeout: 10 * time.Second,
//	})
//	if err := db.Connect(ctx); err != nil { ... }
//	defer db.Close()
//
// # Result Shape
//
// Query returns one element per statement. For SELECT, CREATE, UPDATE and
// DELETE ... RETURN the element is an array of records, each a
// map[string]interface{} as decoded by the SurrealDB client. Use Records to
// flatten a statement result.
//
// # Schema
//
// Migrate applies the embedded .surql files from the migrations package.
package database
