package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"

	"github.com/enhancemyseo/enhancemyseo/internal/model"
)

// ErrBrandNotFound is returned when a brand profile does not exist for the owner.
var ErrBrandNotFound = errors.New("brand profile not found")

const brandColumns = `id, user_id, name, website_url, business_type, tone, guidelines,
	target_audience, keywords, shop_domain, shopify_token, created_at, updated_at`

// CreateBrandProfile inserts a new brand profile.
func (r *Repository) CreateBrandProfile(ctx context.Context, b *model.BrandProfile) error {
	query := `
		INSERT INTO brand_profiles (` + brandColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.pool.Exec(ctx, query,
		b.ID,
		b.UserID,
		b.Name,
		b.WebsiteURL,
		b.BusinessType,
		b.Tone,
		b.Guidelines,
		b.TargetAudience,
		pq.Array(nonNil(b.Keywords)),
		b.ShopDomain,
		b.ShopifyToken,
		b.CreatedAt,
		b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create brand profile: %w", err)
	}
	return nil
}

// GetBrandProfile retrieves a brand profile owned by userID.
func (r *Repository) GetBrandProfile(ctx context.Context, userID, id string) (*model.BrandProfile, error) {
	query := `SELECT ` + brandColumns + ` FROM brand_profiles WHERE id = $1 AND user_id = $2`

	b, err := scanBrand(r.pool.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBrandNotFound
		}
		return nil, fmt.Errorf("failed to get brand profile: %w", err)
	}
	return b, nil
}

// ListBrandProfiles returns a user's brand profiles, newest first.
func (r *Repository) ListBrandProfiles(ctx context.Context, userID string) ([]*model.BrandProfile, error) {
	query := `
		SELECT ` + brandColumns + `
		FROM brand_profiles
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list brand profiles: %w", err)
	}
	defer rows.Close()

	brands := make([]*model.BrandProfile, 0)
	for rows.Next() {
		b, err := scanBrand(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan brand profile: %w", err)
		}
		brands = append(brands, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating brand profiles: %w", err)
	}

	return brands, nil
}

// UpdateBrandProfile writes all mutable fields of a brand profile.
func (r *Repository) UpdateBrandProfile(ctx context.Context, b *model.BrandProfile) error {
	query := `
		UPDATE brand_profiles
		SET name = $3, website_url = $4, business_type = $5, tone = $6, guidelines = $7,
		    target_audience = $8, keywords = $9, shop_domain = $10, shopify_token = $11,
		    updated_at = $12
		WHERE id = $1 AND user_id = $2
	`

	result, err := r.pool.Exec(ctx, query,
		b.ID,
		b.UserID,
		b.Name,
		b.WebsiteURL,
		b.BusinessType,
		b.Tone,
		b.Guidelines,
		b.TargetAudience,
		pq.Array(nonNil(b.Keywords)),
		b.ShopDomain,
		b.ShopifyToken,
		b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update brand profile: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrBrandNotFound
	}
	return nil
}

// DeleteBrandProfile removes a brand profile owned by userID.
func (r *Repository) DeleteBrandProfile(ctx context.Context, userID, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM brand_profiles WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete brand profile: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrBrandNotFound
	}
	return nil
}

func scanBrand(row pgx.Row) (*model.BrandProfile, error) {
	var b model.BrandProfile
	var keywords []string
	err := row.Scan(
		&b.ID,
		&b.UserID,
		&b.Name,
		&b.WebsiteURL,
		&b.BusinessType,
		&b.Tone,
		&b.Guidelines,
		&b.TargetAudience,
		pq.Array(&keywords),
		&b.ShopDomain,
		&b.ShopifyToken,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	b.Keywords = nonNil(keywords)
	return &b, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
