package history

import (
	"errors"
	"unicode/utf8"

	"github.com/enhancemyseo/enhancemyseo/internal/model"
)

// ValidateEventPayload validates event payload fields.
func ValidateEventPayload(payload EventPayload) error {
	if payload.UserID == "" {
		return errors.New("user_id is required")
	}
	if !model.HistoryKind(payload.Kind).IsValid() {
		return errors.New("kind is not a known history kind")
	}
	if payload.Summary == "" {
		return errors.New("summary is required")
	}
	if utf8.RuneCountInString(payload.Summary) > maxSummaryLength {
		return errors.New("summary too long")
	}
	if payload.CreatedAt <= 0 {
		return errors.New("created_at must be set")
	}
	return nil
}
