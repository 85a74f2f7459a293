package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/enhancemyseo/enhancemyseo/internal/handler/dto"
	"github.com/enhancemyseo/enhancemyseo/internal/model"
	"github.com/enhancemyseo/enhancemyseo/internal/service"
)

type stubProducts struct {
	brandID string
	items   []service.ProductInput
}

func (s *stubProducts) Optimize(ctx context.Context, ac *model.AuthContext, input service.ProductInput) (*model.GeneratedProduct, error) {
	return &model.GeneratedProduct{ID: "p-1", UserID: ac.UserID, SourceTitle: input.Title, Title: input.Title + " | Shop"}, nil
}

func (s *stubProducts) BulkOptimize(ctx context.Context, ac *model.AuthContext, brandID string, items []service.ProductInput) ([]service.BulkItemResult, error) {
	if !ac.IsAdmin() {
		return nil, service.ErrAdminOnly
	}
	s.brandID, s.items = brandID, items
	results := make([]service.BulkItemResult, len(items))
	for i, item := range items {
		results[i].Index = i
		if item.Title == "" {
			results[i].Error = service.ErrTitleRequired.Error()
			continue
		}
		results[i].Product = &model.GeneratedProduct{Title: item.Title}
	}
	return results, nil
}

func (s *stubProducts) List(ctx context.Context, userID, cursor string, limit int) ([]*model.GeneratedProduct, string, error) {
	if cursor == "bad" {
		return nil, "", service.ErrInvalidCursor
	}
	return nil, "", nil
}

func (s *stubProducts) Delete(ctx context.Context, userID, id string) error {
	if id != "p-1" {
		return service.ErrProductNotFound
	}
	return nil
}

func TestProductHandler_BulkOptimize(t *testing.T) {
	stub := &stubProducts{}
	h := NewProductHandler(stub, discardLogger())

	body := `{"brand_id":"brand-1","items":[{"title":"Grinder"},{"title":""},{"title":"Kettle","keywords":["gooseneck"]}]}`
	rec := httptest.NewRecorder()
	h.BulkOptimize(rec, newRequest(http.MethodPost, "/api/v1/admin/products/bulk-optimize", body, adminAuth()))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.BulkProductResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Succeeded != 2 || resp.Failed != 1 {
		t.Errorf("succeeded=%d failed=%d, want 2 and 1", resp.Succeeded, resp.Failed)
	}
	if resp.Results[1].Error != "title is required" || resp.Results[1].Product != nil {
		t.Errorf("unexpected failed item %+v", resp.Results[1])
	}
	if stub.brandID != "brand-1" || stub.items[2].BrandID != "brand-1" {
		t.Errorf("brand not propagated: %q / %+v", stub.brandID, stub.items[2])
	}
}

func TestProductHandler_BulkOptimize_Errors(t *testing.T) {
	tests := []struct {
		name       string
		ac         *model.AuthContext
		body       string
		wantStatus int
	}{
		{"non-admin", userAuth(model.TierAgency), `{"items":[{"title":"Grinder"}]}`, http.StatusForbidden},
		{"unauthenticated", nil, `{"items":[{"title":"Grinder"}]}`, http.StatusUnauthorized},
		{"title too long", adminAuth(), `{"items":[{"title":"` + strings.Repeat("x", 300) + `"}]}`, http.StatusBadRequest},
		{"malformed", adminAuth(), `{"items":`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewProductHandler(&stubProducts{}, discardLogger())

			rec := httptest.NewRecorder()
			h.BulkOptimize(rec, newRequest(http.MethodPost, "/", tt.body, tt.ac))

			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
		})
	}
}

func TestProductHandler_Optimize(t *testing.T) {
	h := NewProductHandler(&stubProducts{}, discardLogger())

	rec := httptest.NewRecorder()
	h.Optimize(rec, newRequest(http.MethodPost, "/", `{"title":"Grinder","description":"Burr grinder"}`, userAuth(model.TierFree)))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rec.Code)
	}
	var p model.GeneratedProduct
	if err := json.NewDecoder(rec.Body).Decode(&p); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if p.Title != "Grinder | Shop" || p.UserID != "user-1" {
		t.Errorf("unexpected product %+v", p)
	}
}

func TestProductHandler_ListAndDelete(t *testing.T) {
	h := NewProductHandler(&stubProducts{}, discardLogger())
	ac := userAuth(model.TierFree)

	rec := httptest.NewRecorder()
	h.List(rec, newRequest(http.MethodGet, "/api/v1/products", "", ac))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"data":[]`) {
		t.Errorf("empty list should encode as [], got %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h.List(rec, newRequest(http.MethodGet, "/api/v1/products?cursor=bad", "", ac))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad cursor: expected status 400, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.Delete(rec, newRequest(http.MethodDelete, "/", "", ac, "id", "p-1"))
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected status 204, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.Delete(rec, newRequest(http.MethodDelete, "/", "", ac, "id", "p-2"))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rec.Code)
	}
}
