package callback

import (
	"log/slog"

	"google.golang.org/adk/agent"
	"google.golang.org/genai"
)

// WrapBeforeCallback logs cb and turns a panic into an apology instead of
// dropping the turn.
func WrapBeforeCallback(name string, cb agent.BeforeAgentCallback) agent.BeforeAgentCallback {
	return func(ctx agent.CallbackContext) (content *genai.Content, err error) {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("before callback panic", "name", name, "error", r)
				content, err = genai.NewContentFromText("요청을 처리하는 중 오류가 발생했습니다.", genai.RoleModel), nil
			}
		}()

		slog.Debug("before callback start", "name", name)
		content, err = cb(ctx)
		if err != nil {
			slog.Error("before callback error", "name", name, "error", err.Error())
			return content, err
		}
		slog.Debug("before callback done", "name", name, "has_content", content != nil)
		return content, nil
	}
}
