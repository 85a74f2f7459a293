package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/enhancemyseo/enhancemyseo/internal/auth"
	"github.com/enhancemyseo/enhancemyseo/internal/model"
	"github.com/enhancemyseo/enhancemyseo/internal/repository"
)

type output struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Tier      string    `json:"tier"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func main() {
	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		jwtSecret   = flag.String("jwt-secret", os.Getenv("JWT_SECRET"), "Secret used to sign session tokens")
		email       = flag.String("email", "admin@enhancemyseo.local", "Admin email")
		password    = flag.String("password", os.Getenv("ADMIN_PASSWORD"), "Admin password (used only when the account is created)")
		ttl         = flag.Duration("ttl", 24*time.Hour, "Session token lifetime")
		format      = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}
	if len(*jwtSecret) < 16 {
		fmt.Fprintln(os.Stderr, "JWT_SECRET must be at least 16 characters")
		os.Exit(1)
	}
	if len(*password) < auth.MinPasswordLength {
		fmt.Fprintf(os.Stderr, "password must be at least %d characters\n", auth.MinPasswordLength)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, *databaseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect database:", err)
		os.Exit(1)
	}
	defer repo.Close()

	user, err := ensureAdmin(ctx, repo, strings.ToLower(strings.TrimSpace(*email)), *password)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	token, expiresAt, err := auth.NewTokenIssuer(*jwtSecret, *ttl).Issue(user)
	if err != nil {
		fmt.Fprintln(os.Stderr, "issue token:", err)
		os.Exit(1)
	}

	out := output{
		UserID:    user.ID,
		Email:     user.Email,
		Role:      user.Role,
		Tier:      user.Tier,
		Token:     token,
		ExpiresAt: expiresAt,
	}

	switch strings.ToLower(*format) {
	case "plain":
		fmt.Println(out.Token)
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	default:
		fmt.Fprintln(os.Stderr, "invalid format; use plain or json")
		os.Exit(1)
	}
}

// ensureAdmin creates the account if missing and promotes it to admin.
func ensureAdmin(ctx context.Context, repo *repository.Repository, email, password string) (*model.User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := repo.GetOrCreateUser(ctx, &model.User{
		ID:           ulid.Make().String(),
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
		Tier:         model.TierAdmin,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	if user.Role == model.RoleAdmin && user.Tier == model.TierAdmin {
		return user, nil
	}
	user, err = repo.PromoteToAdmin(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("promote user: %w", err)
	}
	return user, nil
}
