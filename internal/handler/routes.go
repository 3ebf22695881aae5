package handler

import "net/http"

// APIPrefix is where both resource families are mounted
const APIPrefix = "/api/v1"

// RegisterBuildRoutes mounts the build endpoints under prefix. The
// generate-guide route has its own pattern so it never reaches Get.
func RegisterBuildRoutes(mux *http.ServeMux, prefix string, h *BuildHandler) {
	mux.HandleFunc("GET "+prefix+"/builds", h.List)
	mux.HandleFunc("POST "+prefix+"/builds", h.Create)
	mux.HandleFunc("GET "+prefix+"/builds/preset", h.Presets)
	mux.HandleFunc("GET "+prefix+"/builds/search", h.Search)
	mux.HandleFunc("GET "+prefix+"/builds/user/{userId}", h.ListByUser)
	mux.HandleFunc("POST "+prefix+"/builds/{buildId}/generate-guide", h.GenerateGuide)
	mux.HandleFunc("GET "+prefix+"/builds/{id}", h.Get)
	mux.HandleFunc("PUT "+prefix+"/builds/{id}", h.Update)
	mux.HandleFunc("DELETE "+prefix+"/builds/{id}", h.Delete)
}

// RegisterGuideRoutes mounts the guide endpoints under prefix
func RegisterGuideRoutes(mux *http.ServeMux, prefix string, h *GuideHandler) {
	mux.HandleFunc("GET "+prefix+"/guides", h.List)
	mux.HandleFunc("POST "+prefix+"/guides", h.Create)
	mux.HandleFunc("GET "+prefix+"/guides/search", h.Search)
	mux.HandleFunc("GET "+prefix+"/guides/category/{category}", h.ByCategory)
	mux.HandleFunc("GET "+prefix+"/guides/build/{buildId}", h.ByBuild)
	mux.HandleFunc("GET "+prefix+"/guides/user/{userId}", h.ListByUser)
	mux.HandleFunc("GET "+prefix+"/guides/{id}", h.Get)
	mux.HandleFunc("PUT "+prefix+"/guides/{id}", h.Update)
	mux.HandleFunc("DELETE "+prefix+"/guides/{id}", h.Delete)
}

// RegisterRootRoutes mounts the descriptor and the health check
func RegisterRootRoutes(mux *http.ServeMux, h *RootHandler) {
	mux.HandleFunc("GET /{$}", h.Descriptor)
	mux.HandleFunc("GET /health", h.Health)
}
