package models

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"log/slog"
	"runtime"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"google.golang.org/adk/model"
	"google.golang.org/genai"
)

// compatModel adapts an OpenAI-compatible chat completions API to model.LLM.
type compatModel struct {
	client    *openai.Client
	name      string
	apiModel  string
	userAgent string
}

func newCompatModel(name, apiModel, apiKey, baseURL, agent string) (*compatModel, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if apiModel == "" {
		return nil, fmt.Errorf("model name cannot be empty")
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := openai.NewClient(opts...)

	return &compatModel{
		client:    &client,
		name:      name,
		apiModel:  apiModel,
		userAgent: fmt.Sprintf("lifebot %s go/%s", agent, strings.TrimPrefix(runtime.Version(), "go")),
	}, nil
}

func (m *compatModel) Name() string {
	return m.name
}

// GenerateContent issues one chat completion. Streaming is not used by any
// caller, so stream requests receive the full response as a single event.
func (m *compatModel) GenerateContent(ctx context.Context, req *model.LLMRequest, stream bool) iter.Seq2[*model.LLMResponse, error] {
	return func(yield func(*model.LLMResponse, error) bool) {
		resp, err := m.generate(ctx, req)
		if err == nil && stream {
			resp.TurnComplete = true
		}
		yield(resp, err)
	}
}

func (m *compatModel) generate(ctx context.Context, req *model.LLMRequest) (*model.LLMResponse, error) {
	ensureUserTurn(req)
	params := buildOpenAIParams(req, m.apiModel)

	resp, err := m.client.Chat.Completions.New(ctx, *params, option.WithHeader("User-Agent", m.userAgent))
	if err != nil {
		slog.Error("failed to call llm API", "model", m.name, "error", err.Error())
		return nil, fmt.Errorf("failed to call %s: %w", m.name, err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return &model.LLMResponse{}, nil
	}

	message := resp.Choices[0].Message
	content := &genai.Content{Role: string(genai.RoleModel)}
	if message.Content != "" {
		content.Parts = append(content.Parts, &genai.Part{Text: message.Content})
	}
	for _, call := range message.ToolCalls {
		if call.Type != "function" || call.Function.Name == "" {
			continue
		}
		content.Parts = append(content.Parts, &genai.Part{
			FunctionCall: &genai.FunctionCall{
				ID:   call.ID,
				Name: call.Function.Name,
				Args: parseFunctionArgs(call.Function.Arguments),
			},
		})
	}
	return &model.LLMResponse{Content: content, TurnComplete: true}, nil
}

// ensureUserTurn appends a user message when the conversation does not end
// with one; chat completion APIs reject a trailing assistant turn.
func ensureUserTurn(req *model.LLMRequest) {
	if len(req.Contents) == 0 {
		req.Contents = append(req.Contents, genai.NewContentFromText("Handle the request as specified in the system instruction.", genai.RoleUser))
		return
	}
	if last := req.Contents[len(req.Contents)-1]; last != nil && last.Role != string(genai.RoleUser) {
		req.Contents = append(req.Contents, genai.NewContentFromText("Continue as instructed.", genai.RoleUser))
	}
}

func parseFunctionArgs(raw string) map[string]any {
	args := make(map[string]any)
	if strings.TrimSpace(raw) == "" {
		return args
	}
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		slog.Error("failed to parse function arguments", "error", err.Error(), "json", raw)
		return make(map[string]any)
	}
	return args
}
