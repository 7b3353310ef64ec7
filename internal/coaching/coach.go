// Package coaching turns recorded metrics into short feedback messages.
package coaching

import (
	"context"
	"fmt"
	"strconv"

	"github.com/easeaico/lifebot/internal/config"
	"github.com/easeaico/lifebot/internal/types"
)

// Severity tags an alert.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityTrend   Severity = "trend"
)

// Alert is one piece of feedback.
type Alert struct {
	Severity Severity `json:"severity"`
	Category string   `json:"category"`
	Message  string   `json:"message"`
}

// HealthReader reads date-ranged health rows.
type HealthReader interface {
	Range(ctx context.Context, from, to string) ([]types.DailyHealth, error)
}

// Coach evaluates alerts against the configured targets.
type Coach struct {
	targets config.HealthTargets
	alerts  config.Alerts
	health  HealthReader
	clock   types.Clock
}

// NewCoach returns a coach. health may be nil when only CheckAlert is used.
func NewCoach(targets config.HealthTargets, alerts config.Alerts, health HealthReader, clock types.Clock) *Coach {
	if clock == nil {
		clock = types.SystemClock
	}
	return &Coach{targets: targets, alerts: alerts, health: health, clock: clock}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// CheckAlert rates a single measurement. Unknown metrics return nil.
func (c *Coach) CheckAlert(metric string, value float64) *Alert {
	switch metric {
	case "sleep":
		return c.sleepAlert(value)
	case "workout":
		return c.workoutAlert(int(value))
	case "protein":
		return c.proteinAlert(value)
	default:
		return nil
	}
}

func (c *Coach) sleepAlert(hours float64) *Alert {
	target := c.targets.SleepHours
	diff := target - hours
	switch {
	case hours < c.alerts.SleepWarningHours:
		return &Alert{
			Severity: SeverityWarning,
			Category: "sleep",
			Message:  fmt.Sprintf("⚠️ 목표(%s시간)보다 %.1f시간 부족합니다. 충분한 수면이 중요해요!", formatNumber(target), diff),
		}
	case hours < target:
		return &Alert{
			Severity: SeverityInfo,
			Category: "sleep",
			Message:  fmt.Sprintf("💤 목표보다 %.1f시간 부족하네요.", diff),
		}
	default:
		return &Alert{Severity: SeveritySuccess, Category: "sleep", Message: "✓ 목표 달성! 좋은 수면이었습니다."}
	}
}

func (c *Coach) workoutAlert(minutes int) *Alert {
	target := c.targets.WorkoutMinutes
	switch {
	case minutes == 0:
		return &Alert{Severity: SeverityInfo, Category: "workout", Message: "💪 오늘 운동은 어떠세요? 가벼운 스트레칭도 좋아요!"}
	case minutes < target:
		return &Alert{
			Severity: SeverityInfo,
			Category: "workout",
			Message:  fmt.Sprintf("목표까지 %d분 남았어요. 조금만 더 화이팅!", target-minutes),
		}
	default:
		return &Alert{
			Severity: SeveritySuccess,
			Category: "workout",
			Message:  fmt.Sprintf("✓ 목표 달성! %d분 운동 훌륭합니다!", minutes),
		}
	}
}

func (c *Coach) proteinAlert(grams float64) *Alert {
	target := c.targets.ProteinGrams
	if grams < target {
		return &Alert{
			Severity: SeverityInfo,
			Category: "protein",
			Message:  fmt.Sprintf("🍗 목표까지 %.0fg 남았어요.", target-grams),
		}
	}
	return &Alert{Severity: SeveritySuccess, Category: "protein", Message: "✓ 단백질 목표 달성!"}
}

// CelebrateMilestone renders the unlock banner for an achievement.
func CelebrateMilestone(a types.Achievement) string {
	icon := a.Icon
	if icon == "" {
		icon = "🏆"
	}
	return fmt.Sprintf("\n%s 새 업적 달성!\n\"%s\"\n%s\n+%d XP 보상", icon, a.Name, a.Description, a.ExpReward)
}
