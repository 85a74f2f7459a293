package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/enhancemyseo/enhancemyseo/internal/auth"
	"github.com/enhancemyseo/enhancemyseo/internal/model"
	"github.com/enhancemyseo/enhancemyseo/internal/repository"
)

// BrandStore persists brand profiles.
type BrandStore interface {
	BrandLookup
	CreateBrandProfile(ctx context.Context, b *model.BrandProfile) error
	ListBrandProfiles(ctx context.Context, userID string) ([]*model.BrandProfile, error)
	UpdateBrandProfile(ctx context.Context, b *model.BrandProfile) error
	DeleteBrandProfile(ctx context.Context, userID, id string) error
}

// BrandInput defines input for creating a brand profile.
type BrandInput struct {
	Name           string
	WebsiteURL     string
	BusinessType   string
	Tone           string
	Guidelines     string
	TargetAudience string
	Keywords       []string
	ShopDomain     string
	ShopifyToken   string
}

// BrandPatch defines a partial update. Nil fields are left unchanged; an
// empty ShopifyToken clears the stored token.
type BrandPatch struct {
	Name           *string
	WebsiteURL     *string
	BusinessType   *string
	Tone           *string
	Guidelines     *string
	TargetAudience *string
	Keywords       *[]string
	ShopDomain     *string
	ShopifyToken   *string
}

// BrandService manages brand profiles.
type BrandService struct {
	store  BrandStore
	sealer *auth.Sealer
	logger *slog.Logger
	now    func() time.Time
}

// NewBrandService creates a new BrandService.
func NewBrandService(store BrandStore, sealer *auth.Sealer, logger *slog.Logger) *BrandService {
	return &BrandService{
		store:  store,
		sealer: sealer,
		logger: logger.With("component", "brand"),
		now:    nowUTC,
	}
}

// Create validates and stores a new brand profile.
func (s *BrandService) Create(ctx context.Context, userID string, input BrandInput) (*model.BrandProfile, error) {
	now := s.now()
	b := &model.BrandProfile{
		ID:             ulid.Make().String(),
		UserID:         userID,
		Name:           strings.TrimSpace(input.Name),
		WebsiteURL:     strings.TrimSpace(input.WebsiteURL),
		BusinessType:   strings.TrimSpace(input.BusinessType),
		Tone:           strings.TrimSpace(input.Tone),
		Guidelines:     strings.TrimSpace(input.Guidelines),
		TargetAudience: strings.TrimSpace(input.TargetAudience),
		Keywords:       cleanList(input.Keywords),
		ShopDomain:     normalizeShopDomain(input.ShopDomain),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := validateBrand(b); err != nil {
		return nil, err
	}

	sealed, err := s.sealer.Seal(strings.TrimSpace(input.ShopifyToken))
	if err != nil {
		return nil, fmt.Errorf("seal shopify token: %w", err)
	}
	b.ShopifyToken = sealed

	if err := s.store.CreateBrandProfile(ctx, b); err != nil {
		return nil, fmt.Errorf("create brand profile: %w", err)
	}
	return b, nil
}

// Get returns a brand profile owned by userID.
func (s *BrandService) Get(ctx context.Context, userID, id string) (*model.BrandProfile, error) {
	b, err := s.store.GetBrandProfile(ctx, userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrBrandNotFound) {
			return nil, ErrBrandNotFound
		}
		return nil, fmt.Errorf("get brand profile: %w", err)
	}
	return b, nil
}

// List returns a user's brand profiles, newest first.
func (s *BrandService) List(ctx context.Context, userID string) ([]*model.BrandProfile, error) {
	brands, err := s.store.ListBrandProfiles(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list brand profiles: %w", err)
	}
	return brands, nil
}

// Update applies a partial update.
func (s *BrandService) Update(ctx context.Context, userID, id string, patch BrandPatch) (*model.BrandProfile, error) {
	b, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	setTrimmed(&b.Name, patch.Name)
	setTrimmed(&b.WebsiteURL, patch.WebsiteURL)
	setTrimmed(&b.BusinessType, patch.BusinessType)
	setTrimmed(&b.Tone, patch.Tone)
	setTrimmed(&b.Guidelines, patch.Guidelines)
	setTrimmed(&b.TargetAudience, patch.TargetAudience)
	if patch.Keywords != nil {
		b.Keywords = cleanList(*patch.Keywords)
	}
	if patch.ShopDomain != nil {
		b.ShopDomain = normalizeShopDomain(*patch.ShopDomain)
	}
	if err := validateBrand(b); err != nil {
		return nil, err
	}

	if patch.ShopifyToken != nil {
		sealed, err := s.sealer.Seal(strings.TrimSpace(*patch.ShopifyToken))
		if err != nil {
			return nil, fmt.Errorf("seal shopify token: %w", err)
		}
		b.ShopifyToken = sealed
	}

	b.UpdatedAt = s.now()
	if err := s.store.UpdateBrandProfile(ctx, b); err != nil {
		if errors.Is(err, repository.ErrBrandNotFound) {
			return nil, ErrBrandNotFound
		}
		return nil, fmt.Errorf("update brand profile: %w", err)
	}
	return b, nil
}

// Delete removes a brand profile.
func (s *BrandService) Delete(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteBrandProfile(ctx, userID, id); err != nil {
		if errors.Is(err, repository.ErrBrandNotFound) {
			return ErrBrandNotFound
		}
		return fmt.Errorf("delete brand profile: %w", err)
	}
	return nil
}

func validateBrand(b *model.BrandProfile) error {
	if b.Name == "" {
		return ErrNameRequired
	}
	if b.WebsiteURL != "" && !isHTTPURL(b.WebsiteURL) {
		return ErrInvalidWebsiteURL
	}
	return nil
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// normalizeShopDomain reduces "https://Shop.example.com/" to "shop.example.com".
func normalizeShopDomain(domain string) string {
	d := strings.ToLower(strings.TrimSpace(domain))
	d = strings.TrimPrefix(d, "https://")
	d = strings.TrimPrefix(d, "http://")
	return strings.TrimRight(d, "/")
}

func setTrimmed(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}
