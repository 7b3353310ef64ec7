package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"DATABASE_URL", "LLM_PROVIDER", "LLM_MODEL", "LLM_TIMEOUT", "REPHRASE", "HISTORY_LIMIT", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "lifebot.db", cfg.DatabaseURL)
	assert.Equal(t, ProviderOpenAI, cfg.LLMProvider)
	assert.Equal(t, "gpt-4o-mini", cfg.LLMModel)
	assert.Equal(t, 30*time.Second, cfg.LLMTimeout)
	assert.Equal(t, 5, cfg.HistoryLimit)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.False(t, cfg.Rephrase)
	assert.False(t, cfg.UsesPostgres())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/life")
	t.Setenv("LLM_PROVIDER", "Grok")
	t.Setenv("XAI_API_KEY", "xai-key")
	t.Setenv("LLM_TIMEOUT", "5s")
	t.Setenv("REPHRASE", "true")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("HISTORY_LIMIT", "not-a-number")
	t.Setenv("LLM_MODEL", "")
	t.Setenv("MEMORY_ENABLED", "")

	cfg := Load()
	assert.True(t, cfg.UsesPostgres())
	assert.Equal(t, ProviderGrok, cfg.LLMProvider)
	assert.Equal(t, "grok-4-fast", cfg.LLMModel)
	assert.Equal(t, "xai-key", cfg.APIKey())
	assert.Equal(t, 5*time.Second, cfg.LLMTimeout)
	assert.True(t, cfg.Rephrase)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, 5, cfg.HistoryLimit, "invalid ints fall back to default")
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "unknown provider", cfg: Config{LLMProvider: "acme"}, wantErr: "unknown LLM_PROVIDER"},
		{name: "missing key", cfg: Config{LLMProvider: ProviderOpenAI}, wantErr: "API key"},
		{name: "memory on sqlite", cfg: Config{LLMProvider: ProviderGemini, GoogleAPIKey: "k", MemoryEnabled: true, DatabaseURL: "x.db"}, wantErr: "postgres"},
		{name: "ok", cfg: Config{LLMProvider: ProviderOpenRouter, OpenRouterAPIKey: "k"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseRulesMergesOverDefaults(t *testing.T) {
	rules, err := ParseRules([]byte(`
exp_rules:
  task_complete_base: 40
  priority_multipliers:
    urgent: 3.0
health_targets:
  sleep_hours: 8
confidence_threshold: 0.5
`))
	require.NoError(t, err)
	assert.Equal(t, 40, rules.ExpRules.TaskCompleteBase)
	assert.Equal(t, 3.0, rules.ExpRules.PriorityMultipliers["urgent"])
	assert.Equal(t, 0.5, rules.ExpRules.PriorityMultipliers["low"])
	assert.Equal(t, 15, rules.ExpRules.SleepGoal)
	assert.Equal(t, 8.0, rules.HealthTargets.SleepHours)
	assert.Equal(t, 30, rules.HealthTargets.WorkoutMinutes)
	assert.Equal(t, 3, rules.Alerts.ConsecutiveDaysCheck)
	assert.Equal(t, 0.5, rules.ConfidenceThreshold)
}

func TestParseRulesRejectsBadThreshold(t *testing.T) {
	_, err := ParseRules([]byte("confidence_threshold: 1.5\n"))
	require.Error(t, err)
}

func TestLoadRulesEmptyPathUsesDefaults(t *testing.T) {
	rules, err := LoadRules("")
	require.NoError(t, err)
	assert.Equal(t, DefaultRules().ConfidenceThreshold, rules.ConfidenceThreshold)

	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("alerts:\n  sleep_warning: 5.5\n"), 0o644))
	rules, err = LoadRules(path)
	require.NoError(t, err)
	assert.Equal(t, 5.5, rules.Alerts.SleepWarningHours)

	_, err = LoadRules(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestSetupLoggerWithWritersFansOut(t *testing.T) {
	var stderr, file bytes.Buffer
	logger := SetupLoggerWithWriters(&stderr, &file, slog.LevelInfo)
	logger.Info("task added", "task_id", 3)
	logger.Debug("hidden")

	assert.Contains(t, stderr.String(), "task added")
	assert.Contains(t, file.String(), `"task_id":3`)
	assert.False(t, strings.Contains(file.String(), "hidden"))
}
