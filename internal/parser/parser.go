// Package parser turns free-form user input into raw intents with an LLM.
package parser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"google.golang.org/adk/model"
	"google.golang.org/genai"

	"github.com/easeaico/lifebot/internal/intent"
	"github.com/easeaico/lifebot/internal/models"
	"github.com/easeaico/lifebot/internal/prompt"
	"github.com/easeaico/lifebot/internal/types"
	"github.com/easeaico/lifebot/internal/utils"
)

// ToolName is the function the model calls to report intents.
const ToolName = "record_intents"

// ErrEmptyResponse is returned when the model produced nothing usable.
var ErrEmptyResponse = errors.New("empty parser response")

// Kind tells which branch of Result is populated.
type Kind int

const (
	// Parsed carries one or more raw intents.
	Parsed Kind = iota
	// Fallback means the model answered in prose; Reply holds its text.
	Fallback
	// Failure means the call failed; Err holds the cause.
	Failure
)

func (k Kind) String() string {
	switch k {
	case Parsed:
		return "parsed"
	case Fallback:
		return "fallback"
	default:
		return "failure"
	}
}

// Result is the outcome of one Parse call.
type Result struct {
	Kind    Kind
	Intents []intent.Raw
	Reply   string
	Err     error
}

// Parser extracts intents through a model.LLM.
type Parser struct {
	llm     model.LLM
	timeout time.Duration
	clock   types.Clock
}

func New(llm model.LLM, timeout time.Duration, clock types.Clock) *Parser {
	if clock == nil {
		clock = types.SystemClock
	}
	return &Parser{llm: llm, timeout: timeout, clock: clock}
}

// Parse asks the model for the intents in text. history is replayed oldest
// first and memories are appended to the system prompt.
func (p *Parser) Parse(ctx context.Context, text string, history []types.ConversationTurn, memories []types.RetrievedMemory) Result {
	if p == nil || p.llm == nil {
		return Result{Kind: Failure, Err: fmt.Errorf("parser not configured")}
	}
	if strings.TrimSpace(text) == "" {
		return Result{Kind: Failure, Err: ErrEmptyResponse}
	}

	system, err := prompt.Parser(p.clock(), memories)
	if err != nil {
		return Result{Kind: Failure, Err: err}
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	req := &model.LLMRequest{
		Contents: buildContents(history, text),
		Config: &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(system, "system"),
			Temperature:       genai.Ptr[float32](0),
			Tools:             []*genai.Tool{{FunctionDeclarations: []*genai.FunctionDeclaration{recordIntentsDeclaration()}}},
		},
	}

	content, err := models.GenerateOnce(ctx, p.llm, req)
	if err != nil {
		if errors.Is(err, models.ErrNoContent) {
			err = ErrEmptyResponse
		}
		slog.Error("failed to parse input", "error", err.Error())
		return Result{Kind: Failure, Err: err}
	}
	return interpret(content)
}

func buildContents(history []types.ConversationTurn, text string) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history)+1)
	for _, turn := range history {
		if strings.TrimSpace(turn.Content) == "" {
			continue
		}
		var role genai.Role = genai.RoleUser
		if turn.Role == types.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(turn.Content, role))
	}
	return append(contents, genai.NewContentFromText(text, genai.RoleUser))
}

// interpret prefers a record_intents call and falls back to JSON in text.
func interpret(content *genai.Content) Result {
	for _, part := range content.Parts {
		if part == nil || part.FunctionCall == nil || part.FunctionCall.Name != ToolName {
			continue
		}
		raw, err := json.Marshal(part.FunctionCall.Args)
		if err != nil {
			return Result{Kind: Failure, Err: fmt.Errorf("failed to encode function args: %w", err)}
		}
		intents, err := decodePayload(raw)
		if err != nil {
			return Result{Kind: Failure, Err: err}
		}
		if len(intents) == 0 {
			return Result{Kind: Failure, Err: ErrEmptyResponse}
		}
		return Result{Kind: Parsed, Intents: intents}
	}

	text := strings.TrimSpace(utils.ExtractContentText(content))
	if text == "" {
		return Result{Kind: Failure, Err: ErrEmptyResponse}
	}
	payload, err := utils.ExtractJSON(text)
	if err != nil {
		return Result{Kind: Fallback, Reply: text}
	}
	intents, err := decodePayload([]byte(payload))
	if err != nil || len(intents) == 0 {
		slog.Debug("parser reply is not an intent payload", "reply", text)
		return Result{Kind: Fallback, Reply: text}
	}
	return Result{Kind: Parsed, Intents: intents}
}

// decodePayload accepts {"intents": [...]}, a bare array, or a single intent object.
func decodePayload(data []byte) ([]intent.Raw, error) {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var list []intent.Raw
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, fmt.Errorf("failed to decode intents: %w", err)
		}
		return clean(list), nil
	}

	var envelope struct {
		Intents []intent.Raw `json:"intents"`
		intent.Raw
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode intents: %w", err)
	}
	if len(envelope.Intents) > 0 {
		return clean(envelope.Intents), nil
	}
	if envelope.Intent != "" {
		return clean([]intent.Raw{envelope.Raw}), nil
	}
	return nil, nil
}

func clean(list []intent.Raw) []intent.Raw {
	out := make([]intent.Raw, 0, len(list))
	for _, raw := range list {
		raw.Intent = strings.ToLower(strings.TrimSpace(raw.Intent))
		if raw.Intent == "" {
			continue
		}
		if raw.Entities == nil {
			raw.Entities = map[string]any{}
		}
		out = append(out, raw)
	}
	return out
}

func recordIntentsDeclaration() *genai.FunctionDeclaration {
	names := make([]any, 0, len(intent.Names))
	for _, name := range intent.Names {
		names = append(names, string(name))
	}
	item := &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"intent":     {Type: "string", Enum: names},
			"entities":   {Type: "object", Description: "intent entities; dates as YYYY-MM-DD in date"},
			"confidence": {Type: "number", Description: "0 to 1"},
		},
		Required: []string{"intent", "entities", "confidence"},
	}
	return &genai.FunctionDeclaration{
		Name:        ToolName,
		Description: "Record every intent found in the user's message, in order.",
		ParametersJsonSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"intents": {Type: "array", Items: item},
			},
			Required: []string{"intents"},
		},
	}
}
