package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/enhancemyseo/enhancemyseo/internal/llm"
	"github.com/enhancemyseo/enhancemyseo/internal/model"
)

const productJSON = `{"title": "Burr Coffee Grinder", "description": "<p>Even grounds.</p>", "meta_title": "Burr Grinder", "meta_description": "Grind fresh.", "keywords": ["burr grinder", " "]}`

func TestOptimizeProduct(t *testing.T) {
	store := newMemStore()
	completer := &scriptedLLM{response: "```json\n" + productJSON + "\n```"}
	pub := &capturePublisher{}
	svc := NewProductService(store, completer, store, newTestUsage(store), pub, nil, testLogger())

	p, err := svc.Optimize(context.Background(), userCtx(model.TierKickstart), ProductInput{Title: " grinder ", Description: "grinds coffee"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Title != "Burr Coffee Grinder" || p.SourceTitle != "grinder" {
		t.Fatalf("unexpected product: %+v", p)
	}
	if len(p.Keywords) != 1 {
		t.Fatalf("expected blank keywords dropped, got %v", p.Keywords)
	}
	if _, ok := store.products[p.ID]; !ok {
		t.Fatal("expected product persisted")
	}
	if kinds := pub.kinds(); len(kinds) != 1 || kinds[0] != string(model.HistoryProduct) {
		t.Fatalf("expected one product history event, got %v", kinds)
	}
}

func TestOptimizeProductErrors(t *testing.T) {
	tests := []struct {
		name     string
		input    ProductInput
		response string
		wantErr  error
	}{
		{name: "missing title", input: ProductInput{Title: " "}, response: productJSON, wantErr: ErrTitleRequired},
		{name: "not json", input: ProductInput{Title: "grinder"}, response: "Here is a better title: Grinder", wantErr: llm.ErrInvalidResponse},
		{name: "empty title", input: ProductInput{Title: "grinder"}, response: `{"title": ""}`, wantErr: llm.ErrInvalidResponse},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			store := newMemStore()
			svc := NewProductService(store, &scriptedLLM{response: test.response}, store, newTestUsage(store), nil, nil, testLogger())
			_, err := svc.Optimize(context.Background(), userCtx(model.TierKickstart), test.input)
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("expected %v, got %v", test.wantErr, err)
			}
			if len(store.products) != 0 {
				t.Fatal("expected nothing persisted")
			}
		})
	}
}

func TestBulkOptimizeAdminOnly(t *testing.T) {
	store := newMemStore()
	completer := &scriptedLLM{response: productJSON}
	svc := NewProductService(store, completer, store, newTestUsage(store), nil, nil, testLogger())

	_, err := svc.BulkOptimize(context.Background(), userCtx(model.TierAgency), "", []ProductInput{{Title: "a"}})
	if !errors.Is(err, ErrAdminOnly) {
		t.Fatalf("expected %v, got %v", ErrAdminOnly, err)
	}
	if completer.calls() != 0 {
		t.Fatal("expected LLM not called")
	}
}

func TestBulkOptimizeSize(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		wantErr error
	}{
		{name: "empty", size: 0, wantErr: ErrInvalidBulkSize},
		{name: "one", size: 1, wantErr: nil},
		{name: "max", size: maxBulkItems, wantErr: nil},
		{name: "too many", size: maxBulkItems + 1, wantErr: ErrInvalidBulkSize},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			store := newMemStore()
			svc := NewProductService(store, &scriptedLLM{response: productJSON}, store, newTestUsage(store), nil, nil, testLogger())
			items := make([]ProductInput, test.size)
			for i := range items {
				items[i].Title = "item"
			}
			results, err := svc.BulkOptimize(context.Background(), adminCtx(), "", items)
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("expected %v, got %v", test.wantErr, err)
			}
			if err == nil && len(results) != test.size {
				t.Fatalf("expected %d results, got %d", test.size, len(results))
			}
		})
	}
}

// keyedLLM answers product prompts by title so bulk items can fail
// independently.
type keyedLLM struct {
	scriptedLLM
}

func (k *keyedLLM) Complete(ctx context.Context, prompt string) (string, error) {
	k.CompleteWithSystem(ctx, "", prompt)
	switch {
	case strings.Contains(prompt, "Product title: broken"):
		return "no json here", nil
	case strings.Contains(prompt, "Product title: offline"):
		return "", llm.ErrUpstream
	default:
		return productJSON, nil
	}
}

func TestBulkOptimizePerItemErrors(t *testing.T) {
	store := newMemStore()
	brand := &model.BrandProfile{ID: "brand-1", UserID: "admin-1", Name: "Acme", Keywords: []string{"espresso"}}
	if err := store.CreateBrandProfile(context.Background(), brand); err != nil {
		t.Fatalf("seed brand: %v", err)
	}
	completer := &keyedLLM{}
	svc := NewProductService(store, completer, store, newTestUsage(store), nil, nil, testLogger())

	items := []ProductInput{
		{Title: "grinder"},
		{Title: ""},
		{Title: "broken"},
		{Title: "offline"},
		{Title: "kettle", Keywords: []string{"pour over"}},
	}
	results, err := svc.BulkOptimize(context.Background(), adminCtx(), "brand-1", items)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"", ErrTitleRequired.Error(), llm.ErrInvalidResponse.Error(), "content generation unavailable", ""}
	for i, r := range results {
		if r.Index != i {
			t.Fatalf("result %d: expected index %d, got %d", i, i, r.Index)
		}
		if r.Error != want[i] {
			t.Fatalf("result %d: expected error %q, got %q", i, want[i], r.Error)
		}
		if (r.Product != nil) == (r.Error != "") {
			t.Fatalf("result %d: expected exactly one of product and error", i)
		}
	}
	if results[0].Product.BrandProfileID != "brand-1" {
		t.Fatalf("expected brand attached, got %q", results[0].Product.BrandProfileID)
	}

	completer.mu.Lock()
	defer completer.mu.Unlock()
	var sawBrandKeywords, sawOwnKeywords bool
	for _, p := range completer.prompts {
		if strings.Contains(p, "Product title: grinder") && strings.Contains(p, "Target keywords: espresso") {
			sawBrandKeywords = true
		}
		if strings.Contains(p, "Product title: kettle") && strings.Contains(p, "Target keywords: pour over") {
			sawOwnKeywords = true
		}
	}
	if !sawBrandKeywords || !sawOwnKeywords {
		t.Fatalf("expected brand keywords inherited only when item has none (brand=%v own=%v)", sawBrandKeywords, sawOwnKeywords)
	}
}
