package service

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/enhancemyseo/enhancemyseo/internal/history"
	"github.com/enhancemyseo/enhancemyseo/internal/model"
	"github.com/enhancemyseo/enhancemyseo/internal/repository"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memStore is an in-memory stand-in for the PostgreSQL repository.
type memStore struct {
	mu        sync.Mutex
	users     map[string]*model.User
	brands    map[string]*model.BrandProfile
	articles  map[string]*model.Article
	products  map[string]*model.GeneratedProduct
	usage     map[string]*model.Usage
	loginErrs int
	logins    int
}

func newMemStore() *memStore {
	return &memStore{
		users:    make(map[string]*model.User),
		brands:   make(map[string]*model.BrandProfile),
		articles: make(map[string]*model.Article),
		products: make(map[string]*model.GeneratedProduct),
		usage:    make(map[string]*model.Usage),
	}
}

func (m *memStore) CreateUser(_ context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return repository.ErrEmailExists
		}
	}
	m.users[u.ID] = u
	return nil
}

func (m *memStore) GetUserByID(_ context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, repository.ErrUserNotFound
}

func (m *memStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *memStore) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logins++
	if m.loginErrs > 0 {
		m.loginErrs--
		return context.DeadlineExceeded
	}
	u, ok := m.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.LastLoginAt = &at
	return nil
}

func (m *memStore) UpdateUserTier(_ context.Context, id, tier string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	u.Tier = tier
	return u, nil
}

func (m *memStore) CreateBrandProfile(_ context.Context, b *model.BrandProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *b
	m.brands[b.ID] = &cp
	return nil
}

func (m *memStore) GetBrandProfile(_ context.Context, userID, id string) (*model.BrandProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.brands[id]
	if !ok || b.UserID != userID {
		return nil, repository.ErrBrandNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *memStore) ListBrandProfiles(_ context.Context, userID string) ([]*model.BrandProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.BrandProfile
	for _, b := range m.brands {
		if b.UserID == userID {
			cp := *b
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *memStore) UpdateBrandProfile(_ context.Context, b *model.BrandProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.brands[b.ID]
	if !ok || existing.UserID != b.UserID {
		return repository.ErrBrandNotFound
	}
	cp := *b
	m.brands[b.ID] = &cp
	return nil
}

func (m *memStore) DeleteBrandProfile(_ context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.brands[id]
	if !ok || b.UserID != userID {
		return repository.ErrBrandNotFound
	}
	delete(m.brands, id)
	return nil
}

func (m *memStore) CreateArticle(_ context.Context, a *model.Article) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *a
	m.articles[a.ID] = &cp
	return nil
}

func (m *memStore) GetArticle(_ context.Context, userID, id string) (*model.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.articles[id]
	if !ok || a.UserID != userID {
		return nil, repository.ErrArticleNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memStore) ListArticles(_ context.Context, userID, cursor string, limit int) ([]*model.Article, string, error) {
	if cursor == "bad" {
		return nil, "", repository.ErrInvalidCursor
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Article
	for _, a := range m.articles {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, "", nil
}

func (m *memStore) UpdateArticleContent(_ context.Context, a *model.Article) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.articles[a.ID]
	if !ok || existing.UserID != a.UserID {
		return repository.ErrArticleNotFound
	}
	existing.Title, existing.Content, existing.UpdatedAt = a.Title, a.Content, a.UpdatedAt
	return nil
}

func (m *memStore) MarkArticlePublished(_ context.Context, userID, id, publishURL string, at time.Time) (*model.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.articles[id]
	if !ok || a.UserID != userID {
		return nil, repository.ErrArticleNotFound
	}
	a.Published, a.PublishURL, a.PublishedAt = true, publishURL, &at
	cp := *a
	return &cp, nil
}

func (m *memStore) DeleteArticle(_ context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.articles[id]
	if !ok || a.UserID != userID {
		return repository.ErrArticleNotFound
	}
	delete(m.articles, id)
	return nil
}

func (m *memStore) CreateProduct(_ context.Context, p *model.GeneratedProduct) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[p.ID] = p
	return nil
}

func (m *memStore) ListProducts(_ context.Context, userID, cursor string, limit int) ([]*model.GeneratedProduct, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.GeneratedProduct
	for _, p := range m.products {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, "", nil
}

func (m *memStore) DeleteProduct(_ context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok || p.UserID != userID {
		return repository.ErrProductNotFound
	}
	delete(m.products, id)
	return nil
}

func usageKey(userID, month string) string { return userID + "/" + month }

func (m *memStore) GetUsage(_ context.Context, userID, month string) (*model.Usage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.usage[usageKey(userID, month)]; ok {
		cp := *u
		return &cp, nil
	}
	return &model.Usage{UserID: userID, Month: month}, nil
}

func (m *memStore) IncrementUsage(_ context.Context, userID, month string, kind model.UsageKind, limit int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.usage[usageKey(userID, month)]
	if !ok {
		u = &model.Usage{UserID: userID, Month: month}
		m.usage[usageKey(userID, month)] = u
	}
	counter := map[model.UsageKind]*int{
		model.UsageArticles: &u.Articles,
		model.UsageKeywords: &u.Keywords,
		model.UsageProducts: &u.Products,
	}[kind]
	if limit > 0 && *counter >= limit {
		return 0, repository.ErrLimitReached
	}
	*counter++
	return *counter, nil
}

func (m *memStore) ResetUsage(_ context.Context, userID, month string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for k, u := range m.usage {
		if u.Month == month && (userID == "" || u.UserID == userID) {
			delete(m.usage, k)
			n++
		}
	}
	return n, nil
}

// scriptedLLM returns a fixed response and records prompts.
type scriptedLLM struct {
	mu       sync.Mutex
	response string
	err      error
	prompts  []string
	systems  []string
}

func (s *scriptedLLM) Complete(ctx context.Context, prompt string) (string, error) {
	return s.CompleteWithSystem(ctx, "", prompt)
}

func (s *scriptedLLM) CompleteWithSystem(_ context.Context, system, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, prompt)
	s.systems = append(s.systems, system)
	return s.response, s.err
}

func (s *scriptedLLM) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.prompts)
}

// capturePublisher records history events synchronously.
type capturePublisher struct {
	mu     sync.Mutex
	events []history.EventPayload
}

func (c *capturePublisher) PublishAsync(ev history.EventPayload) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
}

func (c *capturePublisher) kinds() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.events))
	for _, ev := range c.events {
		out = append(out, ev.Kind)
	}
	return out
}

func userCtx(tier string) *model.AuthContext {
	return &model.AuthContext{UserID: "user-1", Email: "owner@example.com", Role: model.RoleUser, Tier: tier}
}

func adminCtx() *model.AuthContext {
	return &model.AuthContext{UserID: "admin-1", Email: "root@example.com", Role: model.RoleAdmin, Tier: model.TierAdmin}
}
