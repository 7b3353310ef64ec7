package tracker

import (
	"context"
	"fmt"

	"github.com/easeaico/lifebot/internal/types"
)

// DailySummary collects health, task and habit state for date.
func (s *Service) DailySummary(ctx context.Context, date string) (types.DailySummary, error) {
	date = s.dateOrToday(date)
	day, err := types.ParseDate(date, s.clock().Location())
	if err != nil {
		return types.DailySummary{}, fmt.Errorf("summary date %q: %w", date, ErrInvalidValue)
	}

	summary := types.DailySummary{Date: date, Health: types.DailyHealth{Date: date}}
	health, err := s.health.Get(ctx, date)
	if err != nil {
		return types.DailySummary{}, err
	}
	if health != nil {
		summary.Health = *health
	}

	done, err := s.tasks.CountCompletedBetween(ctx, day, day.AddDate(0, 0, 1))
	if err != nil {
		return types.DailySummary{}, err
	}
	pending, err := s.tasks.Pending(ctx)
	if err != nil {
		return types.DailySummary{}, err
	}
	summary.TasksDone = done
	summary.TaskTotal = done + len(pending)

	habits, err := s.habits.DayStatuses(ctx, date)
	if err != nil {
		return types.DailySummary{}, err
	}
	summary.Habits = habits
	return summary, nil
}

// WeeklyStats aggregates the last seven days ending today. Average sleep counts
// only days with a sleep value.
func (s *Service) WeeklyStats(ctx context.Context) (types.WeeklyStats, error) {
	dates := types.WindowDates(s.clock(), 7)
	stats := types.WeeklyStats{From: dates[0], To: dates[len(dates)-1]}

	rows, err := s.health.Range(ctx, stats.From, stats.To)
	if err != nil {
		return types.WeeklyStats{}, err
	}
	var sleepSum float64
	var sleepDays int
	for _, row := range rows {
		if row.SleepHours != nil {
			sleepSum += *row.SleepHours
			sleepDays++
		}
		if row.WorkoutMinutes != nil {
			stats.TotalWorkout += *row.WorkoutMinutes
		}
	}
	if sleepDays > 0 {
		stats.AvgSleep = sleepSum / float64(sleepDays)
	}

	start := types.StartOfDay(s.clock()).AddDate(0, 0, -6)
	end := types.StartOfDay(s.clock()).AddDate(0, 0, 1)
	if stats.CompletedTasks, err = s.tasks.CountCompletedBetween(ctx, start, end); err != nil {
		return types.WeeklyStats{}, err
	}
	if stats.CreatedTasks, err = s.tasks.CountCreatedBetween(ctx, start, end); err != nil {
		return types.WeeklyStats{}, err
	}
	return stats, nil
}
