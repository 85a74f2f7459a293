package middleware

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"
	"unicode/utf8"
)

// Input limits applied to request fields before they reach services.
const (
	MaxEmailLength    = 254
	MaxPasswordLength = 128
	MaxURLLength      = 2048
	MaxNameLength     = 200
	MaxKeywordLength  = 200
	MaxTextLength     = 5000
	MaxContentLength  = 200_000
	MaxListItems      = 50
)

// Validation errors.
var (
	ErrFieldTooLong   = errors.New("field exceeds maximum length")
	ErrTooManyItems   = errors.New("too many items")
	ErrInvalidUTF8    = errors.New("field is not valid UTF-8")
	ErrUnsafeURL      = errors.New("URL uses an unsafe scheme")
	ErrNotJSONRequest = errors.New("content type must be application/json")
)

// FieldError names the request field that failed validation.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// ValidateLength checks that value is UTF-8 and at most max runes.
func ValidateLength(field, value string, max int) error {
	if !utf8.ValidString(value) {
		return &FieldError{Field: field, Err: ErrInvalidUTF8}
	}
	if utf8.RuneCountInString(value) > max {
		return &FieldError{Field: field, Err: ErrFieldTooLong}
	}
	return nil
}

// ValidateList bounds the number and length of list entries.
func ValidateList(field string, values []string, maxItems, maxLen int) error {
	if len(values) > maxItems {
		return &FieldError{Field: field, Err: ErrTooManyItems}
	}
	for _, v := range values {
		if err := ValidateLength(field, v, maxLen); err != nil {
			return err
		}
	}
	return nil
}

// ValidateURL bounds a user-supplied URL and rejects script-bearing
// schemes hidden by encoding tricks. Scheme and host checks belong to the
// service that dials the URL.
func ValidateURL(field, value string) error {
	if err := ValidateLength(field, value, MaxURLLength); err != nil {
		return err
	}
	lower := strings.ToLower(value)
	for _, scheme := range []string{"javascript:", "data:", "vbscript:", "file:"} {
		if strings.Contains(lower, scheme) {
			return &FieldError{Field: field, Err: ErrUnsafeURL}
		}
	}
	return nil
}

// RequireJSON rejects request bodies that are not declared as JSON.
func RequireJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
		default:
			next.ServeHTTP(w, r)
			return
		}
		if r.ContentLength == 0 {
			next.ServeHTTP(w, r)
			return
		}

		mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err != nil || mediaType != "application/json" {
			writeError(w, http.StatusUnsupportedMediaType, "UNSUPPORTED_MEDIA_TYPE", "Content-Type must be application/json")
			return
		}
		next.ServeHTTP(w, r)
	})
}
