package parser

import (
	"context"
	"errors"
	"iter"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"google.golang.org/adk/model"
	"google.golang.org/genai"

	"github.com/easeaico/lifebot/internal/intent"
	"github.com/easeaico/lifebot/internal/types"
)

type fakeLLM struct {
	content *genai.Content
	err     error
	last    *model.LLMRequest
}

func (f *fakeLLM) Name() string { return "fake" }

func (f *fakeLLM) GenerateContent(_ context.Context, req *model.LLMRequest, _ bool) iter.Seq2[*model.LLMResponse, error] {
	f.last = req
	return func(yield func(*model.LLMResponse, error) bool) {
		if f.err != nil {
			yield(nil, f.err)
			return
		}
		yield(&model.LLMResponse{Content: f.content, TurnComplete: true}, nil)
	}
}

func fixedClock() time.Time {
	return time.Date(2026, 3, 10, 9, 30, 0, 0, time.Local)
}

func textReply(text string) *genai.Content {
	return genai.NewContentFromText(text, genai.RoleModel)
}

func TestParseFunctionCall(t *testing.T) {
	llm := &fakeLLM{content: &genai.Content{Parts: []*genai.Part{{
		FunctionCall: &genai.FunctionCall{
			Name: ToolName,
			Args: map[string]any{
				"intents": []any{
					map[string]any{"intent": "sleep", "entities": map[string]any{"sleep_hours": 7.0}, "confidence": 0.95},
					map[string]any{"intent": "Workout", "entities": map[string]any{"workout_minutes": 30.0}, "confidence": 0.9},
				},
			},
		},
	}}}}
	p := New(llm, time.Second, fixedClock)

	got := p.Parse(context.Background(), "7시간 자고 30분 운동했어", nil, nil)
	if got.Kind != Parsed {
		t.Fatalf("expected parsed result, got %s (%v)", got.Kind, got.Err)
	}
	want := []intent.Raw{
		{Intent: "sleep", Entities: map[string]any{"sleep_hours": 7.0}, Confidence: 0.95},
		{Intent: "workout", Entities: map[string]any{"workout_minutes": 30.0}, Confidence: 0.9},
	}
	if diff := cmp.Diff(want, got.Intents); diff != "" {
		t.Fatalf("unexpected intents (-want +got):\n%s", diff)
	}

	cfg := llm.last.Config
	if cfg.SystemInstruction == nil || len(cfg.Tools) != 1 {
		t.Fatalf("expected system prompt and record_intents tool")
	}
	if cfg.Tools[0].FunctionDeclarations[0].Name != ToolName {
		t.Fatalf("unexpected tool: %s", cfg.Tools[0].FunctionDeclarations[0].Name)
	}
	if cfg.Temperature == nil || *cfg.Temperature != 0 {
		t.Fatalf("expected zero temperature")
	}
}

func TestParseTextJSONShapes(t *testing.T) {
	cases := []struct {
		name  string
		reply string
		count int
	}{
		{"envelope", `{"intents":[{"intent":"progress","entities":{},"confidence":0.9}]}`, 1},
		{"single object", "```json\n{\"intent\":\"sleep\",\"entities\":{\"sleep_hours\":\"7.5\"},\"confidence\":0.8}\n```", 1},
		{"array", `[{"intent":"sleep","entities":{"sleep_hours":6},"confidence":0.9},{"intent":"summary","confidence":0.9}]`, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := New(&fakeLLM{content: textReply(tc.reply)}, 0, fixedClock)
			got := p.Parse(context.Background(), "입력", nil, nil)
			if got.Kind != Parsed {
				t.Fatalf("expected parsed result, got %s", got.Kind)
			}
			if len(got.Intents) != tc.count {
				t.Fatalf("expected %d intents, got %d", tc.count, len(got.Intents))
			}
			for _, raw := range got.Intents {
				if raw.Entities == nil {
					t.Fatalf("expected non-nil entities for %s", raw.Intent)
				}
			}
		})
	}
}

func TestParseProseFallsBack(t *testing.T) {
	p := New(&fakeLLM{content: textReply("안녕하세요! 오늘 기분은 어떠세요?")}, 0, fixedClock)
	got := p.Parse(context.Background(), "안녕", nil, nil)
	if got.Kind != Fallback {
		t.Fatalf("expected fallback, got %s", got.Kind)
	}
	if got.Reply != "안녕하세요! 오늘 기분은 어떠세요?" {
		t.Fatalf("unexpected reply: %q", got.Reply)
	}
}

func TestParseCallErrorFails(t *testing.T) {
	p := New(&fakeLLM{err: errors.New("timeout")}, 0, fixedClock)
	got := p.Parse(context.Background(), "7시간 잤어", nil, nil)
	if got.Kind != Failure || got.Err == nil {
		t.Fatalf("expected failure, got %s", got.Kind)
	}
}

func TestParseEmptyResponseFails(t *testing.T) {
	p := New(&fakeLLM{content: &genai.Content{}}, 0, fixedClock)
	got := p.Parse(context.Background(), "7시간 잤어", nil, nil)
	if got.Kind != Failure || !errors.Is(got.Err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %s %v", got.Kind, got.Err)
	}
}

func TestParseReplaysHistory(t *testing.T) {
	llm := &fakeLLM{content: textReply(`{"intent":"chat","entities":{},"confidence":1}`)}
	p := New(llm, 0, fixedClock)
	history := []types.ConversationTurn{
		{Role: types.RoleUser, Content: "어제 6시간 잤어"},
		{Role: types.RoleAssistant, Content: "✓ 수면 기록 완료: 6시간"},
	}
	p.Parse(context.Background(), "오늘은?", history, nil)

	if len(llm.last.Contents) != 3 {
		t.Fatalf("expected two history turns plus input, got %d", len(llm.last.Contents))
	}
	if llm.last.Contents[1].Role != string(genai.RoleModel) {
		t.Fatalf("expected assistant turn mapped to model role, got %s", llm.last.Contents[1].Role)
	}
}
