package models

import (
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/openai/openai-go/v3"
	"google.golang.org/adk/model"
	"google.golang.org/genai"

	"github.com/easeaico/lifebot/internal/utils"
)

// buildOpenAIParams converts an ADK request into chat completion parameters.
func buildOpenAIParams(req *model.LLMRequest, defaultModel string) *openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{Model: defaultModel}
	if req.Model != "" && !strings.HasPrefix(req.Model, "openrouter/") {
		params.Model = req.Model
	}

	var messages []openai.ChatCompletionMessageParamUnion
	if req.Config != nil && req.Config.SystemInstruction != nil {
		if text := utils.ExtractContentText(req.Config.SystemInstruction); text != "" {
			messages = append(messages, openai.SystemMessage(text))
		}
	}
	messages = append(messages, convertContents(req.Contents)...)
	params.Messages = messages

	if req.Config == nil {
		return &params
	}
	if req.Config.Temperature != nil {
		params.Temperature = openai.Float(float64(*req.Config.Temperature))
	}
	if req.Config.TopP != nil {
		params.TopP = openai.Float(float64(*req.Config.TopP))
	}
	if req.Config.MaxOutputTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.Config.MaxOutputTokens))
	}
	if tools := convertTools(req.Config.Tools); len(tools) > 0 {
		params.Tools = tools
	}
	return &params
}

func convertTools(tools []*genai.Tool) []openai.ChatCompletionToolUnionParam {
	var out []openai.ChatCompletionToolUnionParam
	for _, t := range tools {
		if t == nil {
			continue
		}
		for _, fn := range t.FunctionDeclarations {
			if fn == nil {
				continue
			}
			def := openai.FunctionDefinitionParam{
				Name:       fn.Name,
				Parameters: functionParameters(fn),
			}
			if fn.Description != "" {
				def.Description = openai.String(fn.Description)
			}
			out = append(out, openai.ChatCompletionToolUnionParam{
				OfFunction: &openai.ChatCompletionFunctionToolParam{Function: def},
			})
		}
	}
	return out
}

// functionParameters renders the declaration's JSON schema as a plain map.
func functionParameters(fn *genai.FunctionDeclaration) openai.FunctionParameters {
	var raw []byte
	var err error
	switch schema := fn.ParametersJsonSchema.(type) {
	case nil:
		return openai.FunctionParameters{"type": "object", "properties": map[string]any{}}
	case *jsonschema.Schema:
		raw, err = json.Marshal(schema)
	case map[string]any:
		return openai.FunctionParameters(schema)
	default:
		raw, err = json.Marshal(schema)
	}
	if err != nil {
		slog.Error("failed to encode function schema", "function", fn.Name, "error", err.Error())
		return nil
	}
	params := openai.FunctionParameters{}
	if err := json.Unmarshal(raw, &params); err != nil {
		slog.Error("failed to decode function schema", "function", fn.Name, "error", err.Error())
		return nil
	}
	return params
}

func convertContents(contents []*genai.Content) []openai.ChatCompletionMessageParamUnion {
	var messages []openai.ChatCompletionMessageParamUnion
	for _, content := range contents {
		if content == nil {
			continue
		}

		var responded bool
		for _, part := range content.Parts {
			if part == nil || part.FunctionResponse == nil || part.FunctionResponse.ID == "" {
				continue
			}
			responded = true
			body, err := json.Marshal(part.FunctionResponse.Response)
			if err != nil {
				slog.Error("failed to marshal function response", "error", err.Error())
				continue
			}
			messages = append(messages, openai.ToolMessage(string(body), part.FunctionResponse.ID))
		}
		if responded {
			continue
		}

		text := utils.ExtractContentText(content)
		switch content.Role {
		case string(genai.RoleModel):
			messages = append(messages, openai.AssistantMessage(text))
		case "system":
			messages = append(messages, openai.SystemMessage(text))
		default:
			messages = append(messages, openai.UserMessage(text))
		}
	}
	return messages
}
