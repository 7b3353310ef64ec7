package ui

import (
	"errors"
	"strings"
	"testing"
)

func TestReplyKeepsText(t *testing.T) {
	msg := "✓ 수면 기록 완료: 7시간\n  +15 XP\n\n🎉 레벨업! 1 → 2"
	got := Reply(msg, true)
	for _, want := range []string{"✓ 수면 기록 완료: 7시간", "+15 XP", "레벨업! 1 → 2"} {
		if !strings.Contains(got, want) {
			t.Fatalf("styled reply lost %q: %q", want, got)
		}
	}
	if strings.Count(got, "\n") != strings.Count(msg, "\n") {
		t.Fatalf("line count changed: %q", got)
	}
}

func TestHeadingAndError(t *testing.T) {
	if got := Heading(" 🤖 ", "lifebot"); !strings.Contains(got, "🤖 lifebot") {
		t.Fatalf("unexpected heading %q", got)
	}
	if got := Error(errors.New("boom")); !strings.Contains(got, "boom") {
		t.Fatalf("unexpected error line %q", got)
	}
}
