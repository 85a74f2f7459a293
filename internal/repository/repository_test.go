package repository

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestCursor_RoundTrip(t *testing.T) {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	encoded := encodeCursor(&PaginationCursor{ID: "01HX", CreatedAt: created})

	decoded, err := decodeCursor(encoded)
	if err != nil {
		t.Fatalf("decode cursor: %v", err)
	}
	if decoded.ID != "01HX" || !decoded.CreatedAt.Equal(created) {
		t.Errorf("unexpected cursor: %+v", decoded)
	}
}

func TestDecodeCursor_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		cursor string
	}{
		{"not base64", "%%%"},
		{"not json", "bm90LWpzb24="},
		{"empty object", "e30="},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := decodeCursor(tt.cursor); err == nil {
				t.Errorf("expected error for %q", tt.cursor)
			}
		})
	}
}

func TestIsUniqueViolation(t *testing.T) {
	unique := &pgconn.PgError{Code: "23505"}
	if !isUniqueViolation(fmt.Errorf("wrapped: %w", unique)) {
		t.Error("expected wrapped 23505 to be a unique violation")
	}
	if isUniqueViolation(&pgconn.PgError{Code: "23503"}) {
		t.Error("foreign key violation is not a unique violation")
	}
	if isUniqueViolation(errors.New("unique")) {
		t.Error("plain errors are not unique violations")
	}
	if isUniqueViolation(nil) {
		t.Error("nil is not a unique violation")
	}
}

func TestNonNil(t *testing.T) {
	if got := nonNil(nil); got == nil || len(got) != 0 {
		t.Errorf("nonNil(nil) = %#v", got)
	}
	if got := nonNil([]string{"a"}); len(got) != 1 {
		t.Errorf("nonNil kept %v", got)
	}
}
