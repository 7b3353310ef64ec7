package models

import (
	"context"
	"errors"

	"google.golang.org/adk/model"
	"google.golang.org/genai"
)

// ErrNoContent is returned when the model answers without any content.
var ErrNoContent = errors.New("model returned no content")

// GenerateOnce runs a non-streaming request and returns the first complete
// response content.
func GenerateOnce(ctx context.Context, llm model.LLM, req *model.LLMRequest) (*genai.Content, error) {
	var resp *model.LLMResponse
	var err error
	llm.GenerateContent(ctx, req, false)(func(r *model.LLMResponse, e error) bool {
		resp, err = r, e
		return e == nil && r != nil && r.Partial
	})
	if err != nil {
		return nil, err
	}
	if resp == nil || resp.Content == nil || len(resp.Content.Parts) == 0 {
		if resp != nil && resp.ErrorMessage != "" {
			return nil, errors.New(resp.ErrorMessage)
		}
		return nil, ErrNoContent
	}
	return resp.Content, nil
}
