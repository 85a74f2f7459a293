package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"

	"github.com/enhancemyseo/enhancemyseo/internal/model"
)

// ErrProductNotFound is returned when a generated product does not exist for the owner.
var ErrProductNotFound = errors.New("product not found")

const productColumns = `id, user_id, COALESCE(brand_profile_id, ''), source_title, source_description,
	title, description, meta_title, meta_description, keywords, created_at`

// CreateProduct inserts optimized product copy.
func (r *Repository) CreateProduct(ctx context.Context, p *model.GeneratedProduct) error {
	query := `
		INSERT INTO generated_products (
			id, user_id, brand_profile_id, source_title, source_description,
			title, description, meta_title, meta_description, keywords, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.pool.Exec(ctx, query,
		p.ID,
		p.UserID,
		nullableString(p.BrandProfileID),
		p.SourceTitle,
		p.SourceDescription,
		p.Title,
		p.Description,
		p.MetaTitle,
		p.MetaDescription,
		pq.Array(nonNil(p.Keywords)),
		p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// ListProducts returns a page of a user's generated products, newest first.
func (r *Repository) ListProducts(ctx context.Context, userID, cursor string, limit int) ([]*model.GeneratedProduct, string, error) {
	var cursorData *PaginationCursor
	if cursor != "" {
		var err error
		cursorData, err = decodeCursor(cursor)
		if err != nil {
			return nil, "", ErrInvalidCursor
		}
	}

	query := `SELECT ` + productColumns + ` FROM generated_products WHERE user_id = $1`
	args := []any{userID}
	argIndex := 2

	if cursorData != nil {
		query += fmt.Sprintf(" AND (created_at, id) < ($%d, $%d)", argIndex, argIndex+1)
		args = append(args, cursorData.CreatedAt, cursorData.ID)
		argIndex += 2
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d", argIndex)
	args = append(args, limit+1)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := make([]*model.GeneratedProduct, 0, limit)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, "", fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, "", fmt.Errorf("error iterating products: %w", err)
	}

	var nextCursor string
	if len(products) > limit {
		products = products[:limit]
		last := products[len(products)-1]
		nextCursor = encodeCursor(&PaginationCursor{ID: last.ID, CreatedAt: last.CreatedAt})
	}

	return products, nextCursor, nil
}

// DeleteProduct removes a generated product owned by userID.
func (r *Repository) DeleteProduct(ctx context.Context, userID, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM generated_products WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

func scanProduct(row pgx.Row) (*model.GeneratedProduct, error) {
	var p model.GeneratedProduct
	var keywords []string
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.BrandProfileID,
		&p.SourceTitle,
		&p.SourceDescription,
		&p.Title,
		&p.Description,
		&p.MetaTitle,
		&p.MetaDescription,
		pq.Array(&keywords),
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Keywords = nonNil(keywords)
	return &p, nil
}
