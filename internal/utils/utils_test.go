package utils

import (
	"testing"

	"google.golang.org/genai"
)

func TestExtractJSON(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"plain object", `{"intent":"sleep"}`, `{"intent":"sleep"}`},
		{"wrapped object", "분석 결과: {\"intent\":\"sleep\"} 입니다", `{"intent":"sleep"}`},
		{"array", `[{"intent":"sleep"},{"intent":"workout"}]`, `[{"intent":"sleep"},{"intent":"workout"}]`},
		{"object holding array", `{"intents":[{"intent":"sleep"}]}`, `{"intents":[{"intent":"sleep"}]}`},
		{"fenced", "```json\n{\"intent\":\"chat\"}\n```", `{"intent":"chat"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ExtractJSON(tc.raw)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got != tc.want {
				t.Fatalf("unexpected json: %s", got)
			}
		})
	}
}

func TestExtractJSONNone(t *testing.T) {
	if _, err := ExtractJSON("안녕하세요! 무엇을 도와드릴까요?"); err != ErrNoJSON {
		t.Fatalf("expected ErrNoJSON, got %v", err)
	}
	if _, err := ExtractJSON("} nope {"); err != ErrNoJSON {
		t.Fatalf("expected ErrNoJSON for reversed braces, got %v", err)
	}
}

func TestExtractContentText(t *testing.T) {
	content := &genai.Content{Parts: []*genai.Part{{Text: "7시간 "}, nil, {Text: "잤어"}}}
	if got := ExtractContentText(content); got != "7시간 잤어" {
		t.Fatalf("unexpected text: %q", got)
	}
	if got := ExtractContentText(nil); got != "" {
		t.Fatalf("expected empty text for nil content, got %q", got)
	}
}

func TestTruncateRunes(t *testing.T) {
	if got := TruncateRunes("가나다라", 2); got != "가나..." {
		t.Fatalf("unexpected truncation: %q", got)
	}
	if got := TruncateRunes("가나", 2); got != "가나" {
		t.Fatalf("expected untouched text, got %q", got)
	}
}
