package orchestrator

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"github.com/easeaico/lifebot/internal/intent"
)

const (
	tplSummary  = "summary"
	tplProgress = "progress"
	tplTrends   = "trends"
)

const reportTemplatesText = `
{{define "summary"}}📊 {{.Date}} 요약

💤 수면: {{with .Health.SleepHours}}{{num .}}시간{{else}}기록 없음{{end}}
💪 운동: {{with .Health.WorkoutMinutes}}{{.}}분{{else}}기록 없음{{end}}
🍗 단백질: {{with .Health.ProteinGrams}}{{num .}}g{{else}}기록 없음{{end}}
⚖️ 체중: {{with .Health.WeightKg}}{{num .}}kg{{else}}기록 없음{{end}}
📝 할일: 완료 {{.TasksDone}}/{{.TaskTotal}}
{{- if .Habits}}

🔥 습관:
{{- range .Habits}}
  {{if eq .Status "success"}}✓{{else}}✗{{end}} {{.Name}} (streak: {{.Streak}}일)
{{- end}}
{{- end}}{{end}}
{{define "progress"}}📊 Level {{.Level}} ({{.CurrentExp}}/{{.NextLevelExp}} XP) | 🏆 업적 {{.UnlockedAchievements}}/{{.TotalAchievements}}
진행도: [{{bar .Percent}}] {{pct .Percent}}%{{end}}
{{define "trends"}}📈 {{.From}} ~ {{.To}}
💤 평균 수면: {{printf "%.1f" .AvgSleep}}시간
💪 총 운동: {{.TotalWorkout}}분
📝 할일: 완료 {{.CompletedTasks}}개 / 추가 {{.CreatedTasks}}개{{end}}
`

const barLength = 20

var reportTemplates = template.Must(template.New("report").Funcs(template.FuncMap{
	"num": func(v *float64) string { return num(*v) },
	"bar": progressBar,
	"pct": func(p float64) string { return strconv.FormatFloat(p, 'f', 1, 64) },
}).Parse(reportTemplatesText))

// progressBar fills one "=" per five percent.
func progressBar(percent float64) string {
	filled := int(percent / 5)
	if filled < 0 {
		filled = 0
	}
	if filled > barLength {
		filled = barLength
	}
	return strings.Repeat("=", filled) + strings.Repeat(" ", barLength-filled)
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := reportTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buf.String(), nil
}

// Summary reports the health, task and habit state of date (today when empty).
func (o *Orchestrator) Summary(ctx context.Context, date string) Result {
	summary, err := o.Tracker.DailySummary(ctx, date)
	if err != nil {
		return failure(intent.NameSummary, "조회", err)
	}
	message, err := render(tplSummary, summary)
	if err != nil {
		return failure(intent.NameSummary, "조회", err)
	}
	return Result{Intent: intent.NameSummary, Success: true, Message: message, Data: summary}
}

// Progress reports level, XP and achievement counts.
func (o *Orchestrator) Progress(ctx context.Context) Result {
	summary, err := o.XP.Summary(ctx)
	if err != nil {
		return failure(intent.NameProgress, "조회", err)
	}
	message, err := render(tplProgress, summary)
	if err != nil {
		return failure(intent.NameProgress, "조회", err)
	}
	return Result{Intent: intent.NameProgress, Success: true, Message: message, Data: summary}
}

// Trends reports the last seven days with coaching insights and pattern alerts.
func (o *Orchestrator) Trends(ctx context.Context) Result {
	stats, err := o.Tracker.WeeklyStats(ctx)
	if err != nil {
		return failure("trends", "조회", err)
	}
	message, err := render(tplTrends, stats)
	if err != nil {
		return failure("trends", "조회", err)
	}

	lines := []string{message}
	insights, err := o.Coach.AnalyzeTrends(ctx)
	if err != nil {
		return failure("trends", "조회", err)
	}
	patterns, err := o.Coach.PatternAlerts(ctx)
	if err != nil {
		return failure("trends", "조회", err)
	}
	if len(insights)+len(patterns) > 0 {
		lines = append(lines, "")
	}
	for _, a := range insights {
		lines = append(lines, a.Message)
	}
	for _, a := range patterns {
		lines = append(lines, a.Message)
	}
	return Result{Intent: "trends", Success: true, Message: strings.Join(lines, "\n"), Data: stats}
}

