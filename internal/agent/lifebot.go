// Package agent builds the ADK agent served by "lifebot serve".
package agent

import (
	"fmt"

	"google.golang.org/adk/agent"
	"google.golang.org/adk/agent/llmagent"
	"google.golang.org/adk/model"

	"github.com/easeaico/lifebot/internal/callback"
	"github.com/easeaico/lifebot/internal/prompt"
)

// Name is the agent name shown by the launcher.
const Name = "lifebot"

// NewLifeAgent wraps the orchestrator in an llm agent. Every turn is answered
// by the before-agent callback, so llm only backs the launcher's model slot.
func NewLifeAgent(llm model.LLM, h callback.Handler) (agent.Agent, error) {
	if llm == nil || h == nil {
		return nil, fmt.Errorf("model and handler are required")
	}

	llmAgent, err := llmagent.New(llmagent.Config{
		Name:        Name,
		Description: "건강, 할일, 습관, 기록을 관리하는 개인 생활 비서",
		Model:       llm,
		Instruction: prompt.Chat(),
		BeforeAgentCallbacks: []agent.BeforeAgentCallback{
			callback.WrapBeforeCallback("orchestrator", callback.NewOrchestratorCallback(h)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create lifebot agent: %w", err)
	}
	return llmAgent, nil
}
