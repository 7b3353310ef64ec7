// Package callback adapts the orchestrator to ADK agent callbacks.
package callback

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"text/template"

	"google.golang.org/adk/agent"
	"google.golang.org/genai"

	"github.com/easeaico/lifebot/internal/orchestrator"
	"github.com/easeaico/lifebot/internal/utils"
)

const (
	tplUsage    = "usage"
	tplRejected = "rejected"
)

var defaultTemplatesText = `
{{define "usage"}}기록할 내용을 말씀해주세요. 예: 7시간 잤어, 30분 운동했어, 보고서 할일 추가{{end}}
{{define "rejected"}}{{.Message}}
(다시 입력해주세요){{end}}
`
var defaultTemplates = template.Must(template.New("callback").Parse(defaultTemplatesText))

// State keys written after each handled turn.
const (
	StateLastOutcome = "last_outcome"
	StateLastExp     = "last_exp_gained"
)

// Handler is the part of the orchestrator the callback needs.
type Handler interface {
	HandleSession(ctx context.Context, sessionID, text string) orchestrator.Response
}

// NewOrchestratorCallback answers every turn with the orchestrator's response,
// so the model behind the agent is never called.
func NewOrchestratorCallback(h Handler) agent.BeforeAgentCallback {
	return func(cbCtx agent.CallbackContext) (*genai.Content, error) {
		text := utils.ExtractContentText(cbCtx.UserContent())
		content, resp := respond(cbCtx, h, cbCtx.SessionID(), text)
		if resp == nil {
			return content, nil
		}

		state := cbCtx.State()
		if err := state.Set(StateLastOutcome, string(resp.Outcome)); err != nil {
			slog.Warn("failed to set session state", "key", StateLastOutcome, "error", err.Error())
		}
		if err := state.Set(StateLastExp, resp.ExpGained); err != nil {
			slog.Warn("failed to set session state", "key", StateLastExp, "error", err.Error())
		}
		return content, nil
	}
}

// respond runs one turn. Blank input gets the usage hint and a nil Response.
func respond(ctx context.Context, h Handler, sessionID, text string) (*genai.Content, *orchestrator.Response) {
	text = strings.TrimSpace(text)
	if text == "" {
		return renderResponse(tplUsage, nil), nil
	}

	resp := h.HandleSession(ctx, sessionID, text)
	if resp.Outcome == orchestrator.OutcomeParseFailure {
		return renderResponse(tplRejected, resp), &resp
	}
	return genai.NewContentFromText(resp.Message, genai.RoleModel), &resp
}

func renderResponse(tplName string, data any) *genai.Content {
	var buf bytes.Buffer
	if err := defaultTemplates.ExecuteTemplate(&buf, tplName, data); err != nil {
		slog.Error("failed to execute template", "template", tplName, "error", err.Error())
		return genai.NewContentFromText("요청을 처리하는 중 오류가 발생했습니다.", genai.RoleModel)
	}
	return genai.NewContentFromText(buf.String(), genai.RoleModel)
}
