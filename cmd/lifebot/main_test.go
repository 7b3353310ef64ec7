package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func setupEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", filepath.Join(t.TempDir(), "lifebot.db"))
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("LOG_FILE", "")
	t.Setenv("RULES_FILE", "")
}

func TestHabitCommands(t *testing.T) {
	setupEnv(t)

	out, err := runCLI(t, "habit", "add", "독서")
	require.NoError(t, err)
	assert.Contains(t, out, "습관 등록: [1] 독서")

	out, err = runCLI(t, "habit", "log", "독서", "--note", "30쪽")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ 습관 기록: 독서 (streak: 1일)")

	_, err = runCLI(t, "habit", "log", "독서", "--status", "maybe")
	require.Error(t, err)
}

func TestReportCommands(t *testing.T) {
	setupEnv(t)

	out, err := runCLI(t, "progress")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "📊 Level 1"), out)

	out, err = runCLI(t, "tasks")
	require.NoError(t, err)
	assert.Contains(t, out, "남은 할일이 없습니다.")

	_, err = runCLI(t, "summary", "not-a-date")
	require.Error(t, err)
}

func TestSayRequiresAPIKey(t *testing.T) {
	setupEnv(t)
	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "")

	_, err := runCLI(t, "say", "7시간 잤어")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key")
}
