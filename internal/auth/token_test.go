package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/enhancemyseo/enhancemyseo/internal/model"
)

func testUser() *model.User {
	return &model.User{
		ID:    "01HV0000000000000000000000",
		Email: "writer@example.com",
		Role:  model.RoleUser,
		Tier:  model.TierKickstart,
	}
}

func TestTokenIssuer_RoundTrip(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer("test-secret-at-least-16-chars", time.Hour)

	token, expiresAt, err := issuer.Issue(testUser())
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if time.Until(expiresAt) <= 59*time.Minute {
		t.Errorf("unexpected expiry: %v", expiresAt)
	}

	ac, err := issuer.Parse(token)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if ac.UserID != "01HV0000000000000000000000" || ac.Email != "writer@example.com" {
		t.Errorf("unexpected auth context: %+v", ac)
	}
	if ac.Tier != model.TierKickstart || ac.Role != model.RoleUser {
		t.Errorf("unexpected role/tier: %s/%s", ac.Role, ac.Tier)
	}
	if ac.TokenID == "" {
		t.Error("expected token ID")
	}
}

func TestTokenIssuer_UniqueTokenIDs(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer("test-secret-at-least-16-chars", time.Hour)
	t1, _, _ := issuer.Issue(testUser())
	t2, _, _ := issuer.Issue(testUser())

	a1, _ := issuer.Parse(t1)
	a2, _ := issuer.Parse(t2)
	if a1 == nil || a2 == nil || a1.TokenID == a2.TokenID {
		t.Error("each issued token should carry a distinct ID")
	}
}

func TestTokenIssuer_Expired(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer("test-secret-at-least-16-chars", time.Hour)
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, _, err := issuer.Issue(testUser())
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	issuer.now = time.Now
	if _, err := issuer.Parse(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenIssuer_WrongSecret(t *testing.T) {
	t.Parallel()

	token, _, _ := NewTokenIssuer("first-secret-0123456789", time.Hour).Issue(testUser())

	other := NewTokenIssuer("second-secret-0123456789", time.Hour)
	if _, err := other.Parse(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenIssuer_RejectsMalformed(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer("test-secret-at-least-16-chars", time.Hour)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not.a.jwt"},
		{"tampered", func() string {
			tok, _, _ := issuer.Issue(testUser())
			return tok[:len(tok)-4] + "AAAA"
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := issuer.Parse(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Parse(%q) error = %v, want ErrInvalidToken", tt.name, err)
			}
		})
	}
}

func TestTokenIssuer_RejectsNoneAlgorithm(t *testing.T) {
	t.Parallel()

	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		ID:        "x",
		Subject:   "user",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("build token: %v", err)
	}

	issuer := NewTokenIssuer("test-secret-at-least-16-chars", time.Hour)
	if _, err := issuer.Parse(unsigned); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected alg=none to be rejected, got %v", err)
	}
	if !strings.HasSuffix(unsigned, ".") {
		t.Errorf("expected unsigned token, got %s", unsigned)
	}
}
