package coaching

import (
	"context"
	"fmt"

	"github.com/easeaico/lifebot/internal/types"
)

func (c *Coach) recent(ctx context.Context, days int) ([]types.DailyHealth, error) {
	if c.health == nil {
		return nil, fmt.Errorf("coach has no health reader")
	}
	dates := types.WindowDates(c.clock(), days)
	if len(dates) == 0 {
		return nil, nil
	}
	return c.health.Range(ctx, dates[0], dates[len(dates)-1])
}

// PatternAlerts looks for repeated short sleep and missing workouts over the
// configured number of days. Days with no row do not count toward either.
func (c *Coach) PatternAlerts(ctx context.Context) ([]Alert, error) {
	days := c.alerts.ConsecutiveDaysCheck
	if days <= 0 {
		days = 3
	}
	rows, err := c.recent(ctx, days)
	if err != nil {
		return nil, err
	}

	var shortSleep, noWorkout int
	for _, row := range rows {
		if row.SleepHours != nil && *row.SleepHours < c.alerts.SleepWarningHours {
			shortSleep++
		}
		if row.WorkoutMinutes == nil || *row.WorkoutMinutes == 0 {
			noWorkout++
		}
	}

	var alerts []Alert
	if shortSleep >= days {
		alerts = append(alerts, Alert{
			Severity: SeverityWarning,
			Category: "sleep_pattern",
			Message:  fmt.Sprintf("⚠️ %d일 연속 수면 부족입니다. 건강을 위해 충분한 휴식을 취하세요!", days),
		})
	}
	if noWorkout >= days {
		alerts = append(alerts, Alert{
			Severity: SeverityInfo,
			Category: "workout_pattern",
			Message:  fmt.Sprintf("💪 %d일째 운동 기록이 없네요. 오늘은 가벼운 산책 어떠세요?", days),
		})
	}
	return alerts, nil
}

// AnalyzeTrends summarizes the last seven days as trend insights.
func (c *Coach) AnalyzeTrends(ctx context.Context) ([]Alert, error) {
	rows, err := c.recent(ctx, 7)
	if err != nil {
		return nil, err
	}

	var sleepSum float64
	var sleepDays, workout int
	for _, row := range rows {
		if row.SleepHours != nil {
			sleepSum += *row.SleepHours
			sleepDays++
		}
		if row.WorkoutMinutes != nil {
			workout += *row.WorkoutMinutes
		}
	}

	var insights []Alert
	if sleepDays > 0 {
		avg := sleepSum / float64(sleepDays)
		verdict := "잘하고 계세요!"
		if avg < c.targets.SleepHours-1 {
			verdict = "목표보다 낮습니다."
		}
		insights = append(insights, Alert{
			Severity: SeverityTrend,
			Category: "sleep",
			Message:  fmt.Sprintf("📊 주간 평균 수면: %.1f시간. %s", avg, verdict),
		})
	}
	insights = append(insights, Alert{
		Severity: SeverityTrend,
		Category: "workout",
		Message:  fmt.Sprintf("💪 이번 주 총 운동: %d분", workout),
	})
	return insights, nil
}
