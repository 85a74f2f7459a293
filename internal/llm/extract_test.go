package llm

import (
	"errors"
	"reflect"
	"testing"
)

func TestExtractJSONArray(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    []string
		wantErr bool
	}{
		{
			name: "bare array",
			text: `["hiking boots","trail shoes"]`,
			want: []string{"hiking boots", "trail shoes"},
		},
		{
			name: "prose and fences around array",
			text: "Here are your keywords:\n```json\n[\"a\", \"b\"]\n```\nEnjoy!",
			want: []string{"a", "b"},
		},
		{
			name: "brackets inside strings",
			text: `["best [2024] boots", "x]"] trailing [ignored]`,
			want: []string{"best [2024] boots", "x]"},
		},
		{
			name: "empty array",
			text: `[]`,
			want: []string{},
		},
		{name: "no array", text: "Sorry, I cannot help with that.", wantErr: true},
		{name: "unterminated", text: `["a", "b"`, wantErr: true},
		{name: "not strings", text: `[1, 2, 3]`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSONArray(tt.text)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidResponse) {
					t.Fatalf("expected ErrInvalidResponse, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractJSONArray() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestExtractJSONObject(t *testing.T) {
	var out struct {
		Title    string   `json:"title"`
		Keywords []string `json:"keywords"`
	}

	text := "Sure!\n{\"title\": \"Trail {Pro} Boot\", \"keywords\": [\"boot\"]}\nThanks"
	if err := ExtractJSONObject(text, &out); err != nil {
		t.Fatalf("ExtractJSONObject failed: %v", err)
	}
	if out.Title != "Trail {Pro} Boot" || len(out.Keywords) != 1 {
		t.Errorf("unexpected result: %+v", out)
	}

	if err := ExtractJSONObject("no object here", &out); !errors.Is(err, ErrInvalidResponse) {
		t.Errorf("expected ErrInvalidResponse, got %v", err)
	}
}

func TestErrInvalidResponse_Message(t *testing.T) {
	if ErrInvalidResponse.Error() != "Invalid response format" {
		t.Errorf("unexpected message: %q", ErrInvalidResponse.Error())
	}
}
