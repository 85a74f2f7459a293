package history

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/enhancemyseo/enhancemyseo/internal/model"
)

func TestNewEvent(t *testing.T) {
	t.Parallel()

	before := time.Now().UnixMilli()
	ev := NewEvent("user-1", model.HistoryArticle, "art-1", strings.Repeat("é", 400))

	if ev.UserID != "user-1" || ev.Kind != "article" || ev.RefID != "art-1" {
		t.Errorf("unexpected event %+v", ev)
	}
	if n := len([]rune(ev.Summary)); n != maxSummaryLength {
		t.Errorf("summary runes = %d, want %d", n, maxSummaryLength)
	}
	if ev.CreatedAt < before {
		t.Errorf("CreatedAt = %d, want >= %d", ev.CreatedAt, before)
	}
}

func TestValidateEventPayload(t *testing.T) {
	t.Parallel()

	valid := EventPayload{UserID: "u", Kind: "keywords", Summary: "20 keywords for coffee", CreatedAt: 1}

	tests := []struct {
		name    string
		mutate  func(p *EventPayload)
		wantErr bool
	}{
		{name: "valid", mutate: func(p *EventPayload) {}},
		{name: "missing user", mutate: func(p *EventPayload) { p.UserID = "" }, wantErr: true},
		{name: "unknown kind", mutate: func(p *EventPayload) { p.Kind = "click" }, wantErr: true},
		{name: "empty summary", mutate: func(p *EventPayload) { p.Summary = "" }, wantErr: true},
		{name: "summary too long", mutate: func(p *EventPayload) { p.Summary = strings.Repeat("a", maxSummaryLength+1) }, wantErr: true},
		{name: "missing time", mutate: func(p *EventPayload) { p.CreatedAt = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)
			if err := ValidateEventPayload(p); (err != nil) != tt.wantErr {
				t.Errorf("ValidateEventPayload() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDecodeMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		values     map[string]interface{}
		wantReason string
	}{
		{
			name:   "valid",
			values: map[string]interface{}{"payload": `{"uid":"u1","k":"product","ref":"p1","s":"Optimized Mug","t":1700000000000}`},
		},
		{name: "missing payload", values: map[string]interface{}{"other": "x"}, wantReason: "invalid_format"},
		{name: "bad json", values: map[string]interface{}{"payload": `{not json`}, wantReason: "unmarshal_error"},
		{name: "invalid kind", values: map[string]interface{}{"payload": `{"uid":"u1","k":"nope","s":"x","t":1}`}, wantReason: "validation_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item, reason, err := decodeMessage(redis.XMessage{ID: "1700000000000-0", Values: tt.values})
			if reason != tt.wantReason {
				t.Fatalf("reason = %q, want %q (err %v)", reason, tt.wantReason, err)
			}
			if tt.wantReason != "" {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if item.EventID != "1700000000000-0" || item.Kind != model.HistoryProduct || item.RefID != "p1" {
				t.Errorf("unexpected item %+v", item)
			}
			if item.ID == "" || !item.CreatedAt.Equal(time.UnixMilli(1700000000000)) {
				t.Errorf("ID/CreatedAt not set: %+v", item)
			}
		})
	}
}

func TestIsConsumerGroupExistsError(t *testing.T) {
	t.Parallel()

	if !isConsumerGroupExistsError(errors.New("BUSYGROUP Consumer Group name already exists")) {
		t.Error("BUSYGROUP not recognised")
	}
	if isConsumerGroupExistsError(nil) {
		t.Error("nil treated as BUSYGROUP")
	}
}
