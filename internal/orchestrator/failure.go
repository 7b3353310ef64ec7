package orchestrator

import (
	"errors"
	"log/slog"

	"github.com/easeaico/lifebot/internal/intent"
	"github.com/easeaico/lifebot/internal/storage"
	"github.com/easeaico/lifebot/internal/tracker"
)

// failure logs err and returns the user-facing result "{action} 실패: {reason}".
func failure(name intent.Name, action string, err error) Result {
	slog.Error("failed to handle intent", "intent", string(name), "error", err.Error())
	return Result{Intent: name, Message: action + " 실패: " + reason(err)}
}

func reason(err error) string {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return "기록을 찾을 수 없습니다."
	case errors.Is(err, storage.ErrAlreadyCompleted):
		return "이미 완료된 할일입니다."
	case errors.Is(err, storage.ErrDuplicate):
		return "이미 존재합니다."
	case errors.Is(err, tracker.ErrInvalidValue):
		return "값이 올바르지 않습니다."
	default:
		return "잠시 후 다시 시도해주세요."
	}
}
