package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tarnished-tactics/api/internal/model"
	"github.com/tarnished-tactics/api/internal/service"
)

// ============================================================================
// Mock BuildService
// ============================================================================

type mockBuildService struct {
	listFunc       func(ctx context.Context, filters model.BuildFilters, page, perPage int) *model.BuildPage
	listByUserFunc func(ctx context.Context, userID string) ([]*model.Build, error)
	getFunc        func(ctx context.Context, id string) (*model.Build, error)
	createFunc     func(ctx context.Context, req *model.CreateBuildRequest) (string, error)
	updateFunc     func(ctx context.Context, id string, req *model.UpdateBuildRequest) error
	deleteFunc     func(ctx context.Context, id, userID string) error
	presetsFunc    func(ctx context.Context) []*model.Build
	searchFunc     func(ctx context.Context, term string) ([]*model.Build, error)
}

func (m *mockBuildService) List(ctx context.Context, filters model.BuildFilters, page, perPage int) *model.BuildPage {
	if m.listFunc != nil {
		return m.listFunc(ctx, filters, page, perPage)
	}
	return &model.BuildPage{Builds: []*model.Build{}}
}

func (m *mockBuildService) ListByUser(ctx context.Context, userID string) ([]*model.Build, error) {
	if m.listByUserFunc != nil {
		return m.listByUserFunc(ctx, userID)
	}
	return nil, service.ErrNoBuildsForUser
}

func (m *mockBuildService) Get(ctx context.Context, id string) (*model.Build, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, id)
	}
	return nil, service.ErrBuildNotFound
}

func (m *mockBuildService) Create(ctx context.Context, req *model.CreateBuildRequest) (string, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, req)
	}
	return "build:new", nil
}

func (m *mockBuildService) Update(ctx context.Context, id string, req *model.UpdateBuildRequest) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, req)
	}
	return nil
}

func (m *mockBuildService) Delete(ctx context.Context, id, userID string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id, userID)
	}
	return nil
}

func (m *mockBuildService) Presets(ctx context.Context) []*model.Build {
	if m.presetsFunc != nil {
		return m.presetsFunc(ctx)
	}
	return []*model.Build{}
}

func (m *mockBuildService) Search(ctx context.Context, term string) ([]*model.Build, error) {
	if m.searchFunc != nil {
		return m.searchFunc(ctx, term)
	}
	return []*model.Build{}, nil
}

type mockDrafter struct {
	generateFunc func(ctx context.Context, buildID, userID string) (*model.GuideDraft, error)
}

func (m *mockDrafter) Generate(ctx context.Context, buildID, userID string) (*model.GuideDraft, error) {
	return m.generateFunc(ctx, buildID, userID)
}

func newBuildMux(svc BuildService, drafts GuideDrafter) *http.ServeMux {
	mux := http.NewServeMux()
	RegisterBuildRoutes(mux, APIPrefix, NewBuildHandler(BuildHandlerConfig{Builds: svc, Drafts: drafts}))
	return mux
}

func doRequest(h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			_ = json.NewEncoder(&buf).Encode(body)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body["error"]
}

// ============================================================================
// Tests
// ============================================================================

func TestBuildHandler_List_ParsesQuery(t *testing.T) {
	var gotFilters model.BuildFilters
	var gotPage, gotPerPage int
	svc := &mockBuildService{
		listFunc: func(ctx context.Context, filters model.BuildFilters, page, perPage int) *model.BuildPage {
			gotFilters, gotPage, gotPerPage = filters, page, perPage
			return &model.BuildPage{Builds: []*model.Build{{ID: "build:a"}}, TotalResults: 7}
		},
	}
	mux := newBuildMux(svc, nil)

	rec := doRequest(mux, http.MethodGet, "/api/v1/builds?page=2&buildsPerPage=5&class=Samurai&level=60&isPublic=true", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotPage != 2 || gotPerPage != 5 {
		t.Errorf("page/perPage = %d/%d, want 2/5", gotPage, gotPerPage)
	}
	if gotFilters.Class != "Samurai" {
		t.Errorf("class = %q", gotFilters.Class)
	}
	if gotFilters.MaxLevel == nil || *gotFilters.MaxLevel != 60 {
		t.Errorf("level filter = %v", gotFilters.MaxLevel)
	}
	if gotFilters.IsPublic == nil || !*gotFilters.IsPublic {
		t.Errorf("isPublic filter = %v", gotFilters.IsPublic)
	}

	var body BuildListResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.TotalResults != 7 || body.EntriesPerPage != 5 || body.Page != 2 || len(body.Builds) != 1 {
		t.Errorf("unexpected body %+v", body)
	}
}

func TestBuildHandler_List_Defaults(t *testing.T) {
	var gotFilters model.BuildFilters
	var gotPage, gotPerPage int
	svc := &mockBuildService{
		listFunc: func(ctx context.Context, filters model.BuildFilters, page, perPage int) *model.BuildPage {
			gotFilters, gotPage, gotPerPage = filters, page, perPage
			return &model.BuildPage{Builds: []*model.Build{}}
		},
	}
	mux := newBuildMux(svc, nil)

	rec := doRequest(mux, http.MethodGet, "/api/v1/builds?page=abc&buildsPerPage=-3&level=high&isPublic=yes", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotPage != 0 || gotPerPage != 20 {
		t.Errorf("page/perPage = %d/%d, want 0/20", gotPage, gotPerPage)
	}
	if gotFilters.MaxLevel != nil {
		t.Errorf("unparseable level should not filter")
	}
	if gotFilters.IsPublic == nil || *gotFilters.IsPublic {
		t.Errorf("isPublic=yes should filter on false, got %v", gotFilters.IsPublic)
	}
}

func TestBuildHandler_Create(t *testing.T) {
	tests := []struct {
		name       string
		body       interface{}
		createErr  error
		wantStatus int
		wantError  string
	}{
		{
			name:       "success",
			body:       map[string]string{"userId": "u1", "name": "Test", "class": "Wretch"},
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing fields",
			body:       map[string]string{"userId": "u1"},
			createErr:  service.ErrMissingBuildFields,
			wantStatus: http.StatusBadRequest,
			wantError:  "Missing required fields: userId, name, or class",
		},
		{
			name:       "invalid json",
			body:       "{not json",
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid JSON body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockBuildService{
				createFunc: func(ctx context.Context, req *model.CreateBuildRequest) (string, error) {
					if tt.createErr != nil {
						return "", tt.createErr
					}
					return "build:x", nil
				},
			}
			rec := doRequest(newBuildMux(svc, nil), http.MethodPost, "/api/v1/builds", tt.body)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantError != "" {
				if got := errorBody(t, rec); got != tt.wantError {
					t.Errorf("error = %q, want %q", got, tt.wantError)
				}
				return
			}
			var ok StatusResponse
			_ = json.NewDecoder(rec.Body).Decode(&ok)
			if ok.Status != "success" || ok.ID != "build:x" {
				t.Errorf("unexpected body %+v", ok)
			}
		})
	}
}

func TestBuildHandler_Routing(t *testing.T) {
	var hit string
	svc := &mockBuildService{
		presetsFunc: func(ctx context.Context) []*model.Build {
			hit = "presets"
			return []*model.Build{}
		},
		searchFunc: func(ctx context.Context, term string) ([]*model.Build, error) {
			hit = "search:" + term
			return []*model.Build{}, nil
		},
		listByUserFunc: func(ctx context.Context, userID string) ([]*model.Build, error) {
			hit = "user:" + userID
			return []*model.Build{{ID: "build:a"}}, nil
		},
		getFunc: func(ctx context.Context, id string) (*model.Build, error) {
			hit = "get:" + id
			return &model.Build{ID: id}, nil
		},
		updateFunc: func(ctx context.Context, id string, req *model.UpdateBuildRequest) error {
			hit = "update:" + id + ":" + req.UserID
			return nil
		},
		deleteFunc: func(ctx context.Context, id, userID string) error {
			hit = "delete:" + id + ":" + userID
			return nil
		},
	}
	drafts := &mockDrafter{generateFunc: func(ctx context.Context, buildID, userID string) (*model.GuideDraft, error) {
		hit = "generate:" + buildID + ":" + userID
		return &model.GuideDraft{Title: "t"}, nil
	}}
	mux := newBuildMux(svc, drafts)

	tests := []struct {
		method, path string
		body         interface{}
		want         string
	}{
		{http.MethodGet, "/api/v1/builds/preset", nil, "presets"},
		{http.MethodGet, "/api/v1/builds/search?q=katana", nil, "search:katana"},
		{http.MethodGet, "/api/v1/builds/user/u9", nil, "user:u9"},
		{http.MethodGet, "/api/v1/builds/build:abc", nil, "get:build:abc"},
		{http.MethodPut, "/api/v1/builds/abc", map[string]string{"userId": "u1"}, "update:abc:u1"},
		{http.MethodDelete, "/api/v1/builds/abc", map[string]string{"userId": "u1"}, "delete:abc:u1"},
		{http.MethodPost, "/api/v1/builds/abc/generate-guide", map[string]string{"userId": "u1"}, "generate:abc:u1"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			hit = ""
			rec := doRequest(mux, tt.method, tt.path, tt.body)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
			}
			if hit != tt.want {
				t.Errorf("hit = %q, want %q", hit, tt.want)
			}
		})
	}
}

func TestBuildHandler_GenerateGuide_Errors(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
	}{
		{service.ErrBuildNotFound, http.StatusNotFound},
		{service.ErrMissingUserID, http.StatusBadRequest},
		{service.ErrDraftQuotaExceeded, http.StatusPaymentRequired},
		{service.ErrDraftRateLimited, http.StatusTooManyRequests},
		{service.ErrDraftInvalidFormat, http.StatusInternalServerError},
		{service.ErrDraftProvider, http.StatusInternalServerError},
		{service.ErrDraftDisabled, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			drafts := &mockDrafter{generateFunc: func(ctx context.Context, buildID, userID string) (*model.GuideDraft, error) {
				return nil, tt.err
			}}
			rec := doRequest(newBuildMux(&mockBuildService{}, drafts), http.MethodPost,
				"/api/v1/builds/abc/generate-guide", map[string]string{"userId": "u1"})
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestBuildHandler_Delete_EmptyBody(t *testing.T) {
	svc := &mockBuildService{
		deleteFunc: func(ctx context.Context, id, userID string) error {
			if userID == "" {
				return service.ErrMissingUserID
			}
			return nil
		},
	}
	rec := doRequest(newBuildMux(svc, nil), http.MethodDelete, "/api/v1/builds/abc", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if got := errorBody(t, rec); got != "Missing userId" {
		t.Errorf("error = %q", got)
	}
}
