package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"

	"github.com/enhancemyseo/enhancemyseo/internal/model"
	"github.com/enhancemyseo/enhancemyseo/internal/testutil"
)

const contractBaseURL = "http://localhost:8080"

var pathParam = regexp.MustCompile(`\{[^}]+\}`)

// loadAPIDoc loads and validates the OpenAPI document.
func loadAPIDoc(t *testing.T) (*openapi3.T, routers.Router) {
	t.Helper()

	root, err := testutil.ProjectRoot()
	if err != nil {
		t.Fatalf("resolve project root: %v", err)
	}

	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromFile(filepath.Join(root, "docs", "api", "openapi.yaml"))
	if err != nil {
		t.Fatalf("failed to load OpenAPI document: %v", err)
	}
	if err := doc.Validate(context.Background()); err != nil {
		t.Fatalf("OpenAPI document validation failed: %v", err)
	}

	router, err := gorillamux.NewRouter(doc)
	if err != nil {
		t.Fatalf("failed to create router from document: %v", err)
	}
	return doc, router
}

func TestContract_DocumentValid(t *testing.T) {
	doc, _ := loadAPIDoc(t)
	if doc.Info.Title != "EnhanceMySEO API" {
		t.Errorf("unexpected title %q", doc.Info.Title)
	}
}

// Every documented operation must be mounted: unauthenticated requests reach
// the auth guard (401) rather than the 404/405 fallbacks.
func TestContract_DocumentedRoutesMounted(t *testing.T) {
	doc, _ := loadAPIDoc(t)
	router := newTestRouter()

	public := map[string]bool{
		"/":                     true,
		"/healthz":              true,
		"/readyz":               true,
		"/api/v1/auth/register": true,
		"/api/v1/auth/login":    true,
	}

	for path, item := range doc.Paths.Map() {
		for method := range item.Operations() {
			target := pathParam.ReplaceAllString(path, "x")
			t.Run(method+" "+path, func(t *testing.T) {
				rec := httptest.NewRecorder()
				router.ServeHTTP(rec, httptest.NewRequest(method, target, nil))

				if public[path] {
					if rec.Code == http.StatusNotFound || rec.Code == http.StatusMethodNotAllowed {
						t.Errorf("public route answered %d", rec.Code)
					}
					return
				}
				if rec.Code != http.StatusUnauthorized {
					t.Errorf("expected status 401, got %d", rec.Code)
				}
			})
		}
	}
}

// Every mounted route must be documented.
func TestContract_MountedRoutesDocumented(t *testing.T) {
	doc, _ := loadAPIDoc(t)

	for _, route := range protectedRoutes {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			found := false
			for path, item := range doc.Paths.Map() {
				quoted := regexp.QuoteMeta(pathParam.ReplaceAllString(path, "PARAM"))
				pattern := "^" + strings.ReplaceAll(quoted, "PARAM", `[^/]+`) + "$"
				if !regexp.MustCompile(pattern).MatchString(route.path) {
					continue
				}
				if item.GetOperation(route.method) != nil {
					found = true
				}
			}
			if !found {
				t.Errorf("route not documented")
			}
		})
	}
}

func TestContract_ResponsesMatchDocument(t *testing.T) {
	_, docRouter := loadAPIDoc(t)
	router := newTestRouter()

	admin := bearer(t, model.RoleAdmin, model.TierAdmin)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		auth       string
		wantStatus int
	}{
		{"root", http.MethodGet, "/", "", "", http.StatusOK},
		{"liveness", http.MethodGet, "/healthz", "", "", http.StatusOK},
		{"readiness", http.MethodGet, "/readyz", "", "", http.StatusOK},
		{"unauthorized error envelope", http.MethodGet, "/api/v1/brands", "", "", http.StatusUnauthorized},
		{"validation error envelope", http.MethodPost, "/api/v1/auth/register", `{"email":"nope","password":"short"}`, "", http.StatusBadRequest},
		{"over-long email rejected before the service", http.MethodPost, "/api/v1/auth/register", `{"email":"` + strings.Repeat("a", 300) + `@example.com","password":"correct-horse"}`, "", http.StatusBadRequest},
		{"credentials error envelope", http.MethodPost, "/api/v1/auth/login", `{"email":"user@example.com","password":"wrong-password"}`, "", http.StatusUnauthorized},
		{"forbidden error envelope", http.MethodGet, "/api/v1/admin/users/u1", "", bearer(t, model.RoleUser, model.TierFree), http.StatusForbidden},
		{"admin stats", http.MethodGet, "/api/v1/admin/stats", "", admin, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body io.Reader
			if tt.body != "" {
				body = strings.NewReader(tt.body)
			}
			req := httptest.NewRequest(tt.method, contractBaseURL+tt.path, body)
			if tt.body != "" {
				req.Header.Set("Content-Type", "application/json")
			}
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}

			route, pathParams, err := docRouter.FindRoute(req)
			if err != nil {
				t.Fatalf("could not find route in document: %v", err)
			}

			input := &openapi3filter.ResponseValidationInput{
				RequestValidationInput: &openapi3filter.RequestValidationInput{
					Request:    req,
					PathParams: pathParams,
					Route:      route,
				},
				Status:  rec.Code,
				Header:  rec.Header(),
				Body:    io.NopCloser(strings.NewReader(rec.Body.String())),
				Options: &openapi3filter.Options{IncludeResponseStatus: true},
			}
			if err := openapi3filter.ValidateResponse(context.Background(), input); err != nil {
				t.Errorf("response does not match document: %v", err)
			}
		})
	}
}
