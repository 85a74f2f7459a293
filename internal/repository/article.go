package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"

	"github.com/enhancemyseo/enhancemyseo/internal/model"
)

// ErrArticleNotFound is returned when an article does not exist for the owner.
var ErrArticleNotFound = errors.New("article not found")

const articleColumns = `id, user_id, brand_profile_id, keyword, title, content, research,
	internal_links, published, publish_url, published_at, created_at, updated_at`

// CreateArticle inserts a generated article.
func (r *Repository) CreateArticle(ctx context.Context, a *model.Article) error {
	query := `
		INSERT INTO articles (` + articleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.pool.Exec(ctx, query,
		a.ID,
		a.UserID,
		a.BrandProfileID,
		a.Keyword,
		a.Title,
		a.Content,
		a.Research,
		pq.Array(nonNil(a.InternalLinks)),
		a.Published,
		a.PublishURL,
		a.PublishedAt,
		a.CreatedAt,
		a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create article: %w", err)
	}
	return nil
}

// GetArticle retrieves an article owned by userID.
func (r *Repository) GetArticle(ctx context.Context, userID, id string) (*model.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles WHERE id = $1 AND user_id = $2`

	a, err := scanArticle(r.pool.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrArticleNotFound
		}
		return nil, fmt.Errorf("failed to get article: %w", err)
	}
	return a, nil
}

// ListArticles retrieves a page of a user's articles, newest first.
// Returns the next cursor, empty when there are no more results.
func (r *Repository) ListArticles(ctx context.Context, userID, cursor string, limit int) ([]*model.Article, string, error) {
	var cursorData *PaginationCursor
	if cursor != "" {
		var err error
		cursorData, err = decodeCursor(cursor)
		if err != nil {
			return nil, "", ErrInvalidCursor
		}
	}

	query := `SELECT ` + articleColumns + ` FROM articles WHERE user_id = $1`
	args := []any{userID}
	argIndex := 2

	if cursorData != nil {
		query += fmt.Sprintf(" AND (created_at, id) < ($%d, $%d)", argIndex, argIndex+1)
		args = append(args, cursorData.CreatedAt, cursorData.ID)
		argIndex += 2
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d", argIndex)
	args = append(args, limit+1) // Fetch one extra to determine hasMore

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list articles: %w", err)
	}
	defer rows.Close()

	articles := make([]*model.Article, 0, limit)
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, "", fmt.Errorf("failed to scan article: %w", err)
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, "", fmt.Errorf("error iterating articles: %w", err)
	}

	var nextCursor string
	if len(articles) > limit {
		articles = articles[:limit]
		last := articles[len(articles)-1]
		nextCursor = encodeCursor(&PaginationCursor{ID: last.ID, CreatedAt: last.CreatedAt})
	}

	return articles, nextCursor, nil
}

// UpdateArticleContent replaces an article's title and content.
func (r *Repository) UpdateArticleContent(ctx context.Context, a *model.Article) error {
	query := `
		UPDATE articles
		SET title = $3, content = $4, updated_at = $5
		WHERE id = $1 AND user_id = $2
	`

	result, err := r.pool.Exec(ctx, query, a.ID, a.UserID, a.Title, a.Content, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update article: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrArticleNotFound
	}
	return nil
}

// MarkArticlePublished flags an article as published at publishURL.
func (r *Repository) MarkArticlePublished(ctx context.Context, userID, id, publishURL string, at time.Time) (*model.Article, error) {
	query := `
		UPDATE articles
		SET published = TRUE, publish_url = $3, published_at = $4, updated_at = $4
		WHERE id = $1 AND user_id = $2
		RETURNING ` + articleColumns

	a, err := scanArticle(r.pool.QueryRow(ctx, query, id, userID, publishURL, at))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrArticleNotFound
		}
		return nil, fmt.Errorf("failed to publish article: %w", err)
	}
	return a, nil
}

// DeleteArticle removes an article owned by userID.
func (r *Repository) DeleteArticle(ctx context.Context, userID, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM articles WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete article: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrArticleNotFound
	}
	return nil
}

func scanArticle(row pgx.Row) (*model.Article, error) {
	var a model.Article
	var links []string
	err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.BrandProfileID,
		&a.Keyword,
		&a.Title,
		&a.Content,
		&a.Research,
		pq.Array(&links),
		&a.Published,
		&a.PublishURL,
		&a.PublishedAt,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.InternalLinks = nonNil(links)
	return &a, nil
}
