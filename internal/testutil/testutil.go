package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"

	"github.com/enhancemyseo/enhancemyseo/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 730730

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// ResetSchema drops and recreates every table by applying all down
// migrations (newest first) followed by all up migrations.
func ResetSchema(ctx context.Context, pool *pgxpool.Pool) error {
	downs, err := migrationFiles(".down.sql")
	if err != nil {
		return err
	}
	for i := len(downs) - 1; i >= 0; i-- {
		if err := applyFile(ctx, pool, downs[i]); err != nil {
			return err
		}
	}

	ups, err := migrationFiles(".up.sql")
	if err != nil {
		return err
	}
	for _, path := range ups {
		if err := applyFile(ctx, pool, path); err != nil {
			return err
		}
	}

	return nil
}

func migrationFiles(suffix string) ([]string, error) {
	root, err := ProjectRoot()
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(filepath.Join(root, "migrations"))
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), suffix) {
			files = append(files, filepath.Join(root, "migrations", entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

func applyFile(ctx context.Context, pool *pgxpool.Pool, path string) error {
	sql, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read migration %s: %w", filepath.Base(path), err)
	}
	if _, err := pool.Exec(ctx, string(sql)); err != nil {
		return fmt.Errorf("apply migration %s: %w", filepath.Base(path), err)
	}
	return nil
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ProjectRoot returns the project root directory.
func ProjectRoot() (string, error) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("failed to resolve testutil path")
	}
	root := filepath.Clean(filepath.Join(filepath.Dir(filename), "..", ".."))
	return root, nil
}

// ============================================================================
// Test Data Factories
// ============================================================================

// NewTestUser creates a free-tier test user with a unique email.
func NewTestUser(t testing.TB) *model.User {
	t.Helper()
	id := ulid.Make().String()
	return &model.User{
		ID:           id,
		Email:        strings.ToLower(id) + "@example.com",
		PasswordHash: "$argon2id$v=19$m=65536,t=3,p=4$c2FsdA$aGFzaA",
		Role:         model.RoleUser,
		Tier:         model.TierFree,
		CreatedAt:    time.Now().UTC().Truncate(time.Microsecond),
	}
}

// NewTestBrandProfile creates a brand profile owned by userID.
func NewTestBrandProfile(t testing.TB, userID string) *model.BrandProfile {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &model.BrandProfile{
		ID:             ulid.Make().String(),
		UserID:         userID,
		Name:           "Acme Outdoor",
		WebsiteURL:     "https://acme.example.com",
		BusinessType:   "ecommerce",
		Tone:           "friendly",
		Guidelines:     "Avoid jargon.",
		TargetAudience: "weekend hikers",
		Keywords:       []string{"hiking boots", "trail gear"},
		ShopDomain:     "acme.myshopify.com",
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// NewTestArticle creates an unpublished article owned by userID.
func NewTestArticle(t testing.TB, userID, brandID string) *model.Article {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &model.Article{
		ID:             ulid.Make().String(),
		UserID:         userID,
		BrandProfileID: brandID,
		Keyword:        "waterproof hiking boots",
		Title:          "Best Waterproof Hiking Boots",
		Content:        "<h1>Best Waterproof Hiking Boots</h1><p>...</p>",
		InternalLinks:  []string{"https://acme.example.com/products/boot"},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// UniqueID generates a unique ID for tests.
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}
