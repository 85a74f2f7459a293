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

type stubArticles struct {
	lastInput  service.ArticleInput
	lastCursor string
	lastLimit  int
	article    *model.Article
}

func newStubArticles() *stubArticles {
	return &stubArticles{article: &model.Article{ID: "a-1", UserID: "user-1", Title: "Espresso Guide", Content: "<h1>Espresso Guide</h1>"}}
}

func (s *stubArticles) Generate(ctx context.Context, ac *model.AuthContext, input service.ArticleInput) (*model.Article, error) {
	s.lastInput = input
	if input.BrandID == "" {
		return nil, service.ErrBrandRequired
	}
	return s.article, nil
}

func (s *stubArticles) List(ctx context.Context, userID, cursor string, limit int) ([]*model.Article, string, error) {
	s.lastCursor, s.lastLimit = cursor, limit
	return []*model.Article{s.article}, "next-page", nil
}

func (s *stubArticles) Get(ctx context.Context, userID, id string) (*model.Article, error) {
	if id != s.article.ID || userID != s.article.UserID {
		return nil, service.ErrArticleNotFound
	}
	return s.article, nil
}

func (s *stubArticles) Update(ctx context.Context, userID, id string, update service.ArticleUpdate) (*model.Article, error) {
	a, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if update.Title != nil {
		a.Title = *update.Title
	}
	return a, nil
}

func (s *stubArticles) Delete(ctx context.Context, userID, id string) error {
	_, err := s.Get(ctx, userID, id)
	return err
}

func (s *stubArticles) Publish(ctx context.Context, userID, id string) (*model.Article, error) {
	a, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	a.Published = true
	a.PublishURL = "https://acme.myshopify.com/blogs/news/" + service.Slugify(a.Title)
	return a, nil
}

func TestArticleHandler_Generate(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantStatus  int
		wantMessage string
	}{
		{"created", `{"keyword":"espresso","brand_id":"brand-1","research":false}`, http.StatusCreated, ""},
		{"no brand", `{"keyword":"espresso"}`, http.StatusBadRequest, "Please configure your brand profile first"},
		{"unsafe website", `{"keyword":"espresso","brand_id":"brand-1","website_url":"data:text/html,hi"}`, http.StatusBadRequest, ""},
		{"keyword too long", `{"keyword":"` + strings.Repeat("k", 201) + `","brand_id":"brand-1"}`, http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := newStubArticles()
			h := NewArticleHandler(stub, discardLogger())

			rec := httptest.NewRecorder()
			h.Generate(rec, newRequest(http.MethodPost, "/api/v1/articles/generate", tt.body, userAuth(model.TierFree)))

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
			if tt.wantMessage != "" {
				if got := decodeError(t, rec); got.Message != tt.wantMessage {
					t.Errorf("expected message %q, got %q", tt.wantMessage, got.Message)
				}
			}
			if tt.wantStatus == http.StatusCreated {
				if stub.lastInput.Research == nil || *stub.lastInput.Research {
					t.Errorf("research flag not forwarded: %v", stub.lastInput.Research)
				}
			}
		})
	}
}

func TestArticleHandler_List(t *testing.T) {
	stub := newStubArticles()
	h := NewArticleHandler(stub, discardLogger())

	rec := httptest.NewRecorder()
	h.List(rec, newRequest(http.MethodGet, "/api/v1/articles?cursor=abc&limit=5", "", userAuth(model.TierFree)))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if stub.lastCursor != "abc" || stub.lastLimit != 5 {
		t.Errorf("cursor=%q limit=%d", stub.lastCursor, stub.lastLimit)
	}

	var resp dto.ArticleListResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Data) != 1 || !resp.Pagination.HasMore || resp.Pagination.NextCursor != "next-page" {
		t.Errorf("unexpected list response %+v", resp)
	}
}

func TestArticleHandler_Lifecycle(t *testing.T) {
	stub := newStubArticles()
	h := NewArticleHandler(stub, discardLogger())
	ac := userAuth(model.TierFree)

	rec := httptest.NewRecorder()
	h.Update(rec, newRequest(http.MethodPatch, "/", `{"title":"Espresso at Home"}`, ac, "id", "a-1"))
	if rec.Code != http.StatusOK {
		t.Fatalf("update: expected status 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.Publish(rec, newRequest(http.MethodPost, "/", "", ac, "id", "a-1"))
	if rec.Code != http.StatusOK {
		t.Fatalf("publish: expected status 200, got %d", rec.Code)
	}
	var published model.Article
	if err := json.NewDecoder(rec.Body).Decode(&published); err != nil {
		t.Fatalf("failed to decode article: %v", err)
	}
	if !published.Published || published.PublishURL != "https://acme.myshopify.com/blogs/news/espresso-at-home" {
		t.Errorf("unexpected published article %+v", published)
	}

	rec = httptest.NewRecorder()
	h.Delete(rec, newRequest(http.MethodDelete, "/", "", ac, "id", "a-1"))
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete: expected status 204, got %d", rec.Code)
	}
}

func TestArticleHandler_ForeignArticle(t *testing.T) {
	h := NewArticleHandler(newStubArticles(), discardLogger())
	other := &model.AuthContext{UserID: "user-2", Role: model.RoleUser, Tier: model.TierFree}

	for name, serve := range map[string]http.HandlerFunc{
		"get":     h.Get,
		"update":  h.Update,
		"delete":  h.Delete,
		"publish": h.Publish,
	} {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			serve(rec, newRequest(http.MethodPost, "/", `{}`, other, "id", "a-1"))
			if rec.Code != http.StatusNotFound {
				t.Errorf("expected status 404, got %d", rec.Code)
			}
		})
	}
}
