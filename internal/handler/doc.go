// Package handler provides the HTTP endpoints of the Tarnished Tactics API.
//
// Builds and guides are mounted under APIPrefix; the service descriptor and
// health check live at the root.
//
// # Handler Pattern
//
//   - Constructor function (NewXxxHandler) receives the services it needs
//   - Methods handle specific HTTP endpoints and read path values with r.PathValue
//   - Service errors go through MapServiceError
//
// # Response Format
//
// Reads answer with the bare resource or list. Writes answer with
// {"status":"success"} plus the new id on create. Every failure answers
// with {"error": "..."}.
//
// # Identity
//
// There is no authentication. Write endpoints take the caller's userId from
// the request body and the stores scope updates and deletes to it.
//
// # Example Usage
//
//	mux := http.NewServeMux()
//	handler.RegisterBuildRoutes(mux, handler.APIPrefix, handler.NewBuildHandler(handler.BuildHandlerConfig{
//	    Builds: buildService,
//	    Drafts: draftService,
//	}))
package handler
