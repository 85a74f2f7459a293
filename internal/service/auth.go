package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"slices"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/enhancemyseo/enhancemyseo/internal/auth"
	"github.com/enhancemyseo/enhancemyseo/internal/model"
	"github.com/enhancemyseo/enhancemyseo/internal/repository"
	"github.com/enhancemyseo/enhancemyseo/internal/retry"
)

// UserStore persists user accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	UpdateUserTier(ctx context.Context, id, tier string) (*model.User, error)
}

// TokenRevoker records logged-out token IDs.
type TokenRevoker interface {
	RevokeToken(ctx context.Context, tokenID string, expiresAt time.Time) error
}

// AuthResult is returned by register and login.
type AuthResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      *model.User `json:"user"`
}

// Profile is the authenticated user's account view.
type Profile struct {
	User  *model.User   `json:"user"`
	Usage *UsageSummary `json:"usage"`
}

// AuthService handles accounts and sessions.
type AuthService struct {
	users       UserStore
	issuer      *auth.TokenIssuer
	revoker     TokenRevoker
	usage       *UsageService
	adminEmails []string
	retryPolicy retry.Policy
	logger      *slog.Logger
	now         func() time.Time
}

// NewAuthService creates a new AuthService. Users registering with one of
// adminEmails receive the admin role and tier.
func NewAuthService(users UserStore, issuer *auth.TokenIssuer, revoker TokenRevoker, usage *UsageService, adminEmails []string, logger *slog.Logger) *AuthService {
	return &AuthService{
		users:       users,
		issuer:      issuer,
		revoker:     revoker,
		usage:       usage,
		adminEmails: adminEmails,
		retryPolicy: retry.DefaultPolicy(),
		logger:      logger.With("component", "auth"),
		now:         nowUTC,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an account and issues a token.
func (s *AuthService) Register(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrEmailRequired
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return nil, ErrInvalidEmail
	}
	if len(password) < auth.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		ID:           ulid.Make().String(),
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleUser,
		Tier:         model.TierFree,
		CreatedAt:    s.now(),
	}
	if slices.Contains(s.adminEmails, email) {
		user.Role = model.RoleAdmin
		user.Tier = model.TierAdmin
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user registered", "user_id", user.ID, "role", user.Role)
	return s.issue(user)
}

// Login verifies credentials and issues a token. The last-login write is
// retried with backoff; its failure does not fail the login.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrEmailRequired
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	ok, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return nil, ErrInvalidCredentials
	}

	at := s.now()
	err = retry.Do(ctx, s.retryPolicy, func(ctx context.Context) error {
		return s.users.UpdateLastLogin(ctx, user.ID, at)
	})
	if err != nil {
		s.logger.Warn("failed to record last login", "user_id", user.ID, "error", err)
	} else {
		user.LastLoginAt = &at
	}

	return s.issue(user)
}

func (s *AuthService) issue(user *model.User) (*AuthResult, error) {
	token, expiresAt, err := s.issuer.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &AuthResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// Me returns the account with its current month usage.
func (s *AuthService) Me(ctx context.Context, userID string) (*Profile, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary, err := s.usage.Summary(ctx, user.ID, user.Tier)
	if err != nil {
		return nil, err
	}
	return &Profile{User: user, Usage: summary}, nil
}

// Logout revokes the token until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, ac *model.AuthContext) error {
	if ac == nil || ac.TokenID == "" {
		return nil
	}
	if err := s.revoker.RevokeToken(ctx, ac.TokenID, ac.ExpiresAt); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// GetUser loads a user by ID.
func (s *AuthService) GetUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}

// SetTier changes a user's subscription tier.
func (s *AuthService) SetTier(ctx context.Context, userID, tier string) (*model.User, error) {
	if !model.IsValidTier(tier) {
		return nil, ErrInvalidTier
	}

	user, err := s.users.UpdateUserTier(ctx, userID, tier)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("update tier: %w", err)
	}

	s.logger.Info("user tier changed", "user_id", userID, "tier", tier)
	return user, nil
}
