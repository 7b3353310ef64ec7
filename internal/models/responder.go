package models

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/adk/model"
	"google.golang.org/genai"

	"github.com/easeaico/lifebot/internal/prompt"
	"github.com/easeaico/lifebot/internal/utils"
)

// ChatFallback is returned when free conversation is unavailable.
const ChatFallback = "명령 입력 요청. 예: 7시간 잤어, 30분 운동했어"

// Responder turns handler output into natural replies. A nil LLM disables it.
type Responder struct {
	llm      model.LLM
	timeout  time.Duration
	userName string
}

func NewResponder(llm model.LLM, timeout time.Duration, userName string) *Responder {
	return &Responder{llm: llm, timeout: timeout, userName: userName}
}

// Rephrase rewrites result for the user's input. Any failure returns result
// unchanged.
func (r *Responder) Rephrase(ctx context.Context, input, result string) string {
	if r == nil || r.llm == nil {
		return result
	}
	system, err := prompt.Rephrase(r.userName, input, result)
	if err != nil {
		slog.Error("failed to build rephrase prompt", "error", err.Error())
		return result
	}
	text, err := r.complete(ctx, system, input, 0.7)
	if err != nil {
		slog.Warn("failed to rephrase result", "error", err.Error())
		return result
	}
	return text
}

// Chat answers free conversation. Without a model it returns ChatFallback.
func (r *Responder) Chat(ctx context.Context, text string) (string, error) {
	if r == nil || r.llm == nil {
		return ChatFallback, nil
	}
	reply, err := r.complete(ctx, prompt.Chat(), text, 0.7)
	if err != nil {
		return ChatFallback, err
	}
	return reply, nil
}

func (r *Responder) complete(ctx context.Context, system, input string, temperature float32) (string, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	req := &model.LLMRequest{
		Contents: []*genai.Content{genai.NewContentFromText(input, genai.RoleUser)},
		Config: &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(system, "system"),
			Temperature:       genai.Ptr(temperature),
		},
	}
	content, err := GenerateOnce(ctx, r.llm, req)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(utils.ExtractContentText(content))
	if text == "" {
		return "", ErrNoContent
	}
	return text, nil
}
