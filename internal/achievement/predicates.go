package achievement

import (
	"context"
	"time"

	"github.com/easeaico/lifebot/internal/config"
	"github.com/easeaico/lifebot/internal/types"
)

// ActionContext carries facts about the action that triggered a check.
type ActionContext struct {
	WorkoutMinutes      int
	TasksCompletedToday int
}

// HealthReader reads date-ranged health rows.
type HealthReader interface {
	Range(ctx context.Context, from, to string) ([]types.DailyHealth, error)
}

// TaskCounter counts completed tasks.
type TaskCounter interface {
	CountCompleted(ctx context.Context, priority types.Priority) (int, error)
	CountCompletedBeforeDue(ctx context.Context) (int, error)
}

// StreakReader reads habit streaks.
type StreakReader interface {
	MaxCurrentStreak(ctx context.Context) (int, error)
}

// LevelReader reads the progression singleton.
type LevelReader interface {
	Get(ctx context.Context) (types.UserProgress, error)
}

// Env is the history a predicate may consult.
type Env struct {
	Health   HealthReader
	Tasks    TaskCounter
	Habits   StreakReader
	Progress LevelReader
	Targets  config.HealthTargets
	Today    time.Time
}

// Predicate decides whether an achievement's condition holds.
type Predicate func(ctx context.Context, env Env, params Params, action ActionContext) (bool, error)

// Registry maps condition_type to its predicate.
type Registry map[string]Predicate

// DefaultRegistry returns every built-in condition type.
func DefaultRegistry() Registry {
	return Registry{
		"any_record":             anyRecord,
		"sleep_streak":           sleepStreak,
		"sleep_no_bad_days":      sleepNoBadDays,
		"workout_streak":         workoutStreak,
		"workout_single_day":     workoutSingleDay,
		"workout_monthly_total":  workoutMonthlyTotal,
		"workout_weekend_streak": workoutWeekendStreak,
		"protein_streak":         proteinStreak,
		"task_complete":          taskComplete,
		"task_single_day":        taskSingleDay,
		"task_before_due":        taskBeforeDue,
		"task_priority":          taskPriority,
		"habit_streak":           habitStreak,
		"perfect_week":           perfectWeek,
		"level_reached":          levelReached,
	}
}

// window loads the rows for the last days calendar days ending today.
func window(ctx context.Context, env Env, days int) ([]types.DailyHealth, error) {
	dates := types.WindowDates(env.Today, days)
	if len(dates) == 0 {
		return nil, nil
	}
	return env.Health.Range(ctx, dates[0], dates[len(dates)-1])
}

func countRows(rows []types.DailyHealth, match func(types.DailyHealth) bool) int {
	n := 0
	for _, row := range rows {
		if match(row) {
			n++
		}
	}
	return n
}

func anyRecord(context.Context, Env, Params, ActionContext) (bool, error) {
	return true, nil
}

func sleepStreak(ctx context.Context, env Env, p Params, _ ActionContext) (bool, error) {
	days := p.Int("days", 7)
	minHours := p.Float("min_hours", 7)
	rows, err := window(ctx, env, days)
	if err != nil {
		return false, err
	}
	n := countRows(rows, func(r types.DailyHealth) bool {
		return r.SleepHours != nil && *r.SleepHours >= minHours
	})
	return n >= days, nil
}

func sleepNoBadDays(ctx context.Context, env Env, p Params, _ ActionContext) (bool, error) {
	days := p.Int("days", 7)
	minHours := p.Float("min_hours", 5)
	rows, err := window(ctx, env, days)
	if err != nil {
		return false, err
	}
	bad := countRows(rows, func(r types.DailyHealth) bool {
		return r.SleepHours == nil || *r.SleepHours < minHours
	})
	return bad == 0 && len(rows) >= days, nil
}

func workoutStreak(ctx context.Context, env Env, p Params, _ ActionContext) (bool, error) {
	days := p.Int("days", 30)
	rows, err := window(ctx, env, days)
	if err != nil {
		return false, err
	}
	n := countRows(rows, func(r types.DailyHealth) bool {
		return r.WorkoutMinutes != nil && *r.WorkoutMinutes > 0
	})
	return n >= days, nil
}

func workoutSingleDay(_ context.Context, _ Env, p Params, action ActionContext) (bool, error) {
	return action.WorkoutMinutes >= p.Int("minutes", 100), nil
}

func workoutMonthlyTotal(ctx context.Context, env Env, p Params, _ ActionContext) (bool, error) {
	minutes := p.Int("minutes", 1000)
	today := types.StartOfDay(env.Today)
	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
	rows, err := env.Health.Range(ctx, types.FormatDate(monthStart), types.FormatDate(today))
	if err != nil {
		return false, err
	}
	total := 0
	for _, r := range rows {
		if r.WorkoutMinutes != nil {
			total += *r.WorkoutMinutes
		}
	}
	return total >= minutes, nil
}

// workoutWeekendStreak checks that each of the last N Monday-based weeks,
// including the current one, has a workout on Saturday or Sunday.
func workoutWeekendStreak(ctx context.Context, env Env, p Params, _ ActionContext) (bool, error) {
	weeks := p.Int("weeks", 4)
	if weeks <= 0 {
		return false, nil
	}
	today := types.StartOfDay(env.Today)
	offset := (int(today.Weekday()) + 6) % 7
	monday := today.AddDate(0, 0, -offset)

	earliest := monday.AddDate(0, 0, -7*(weeks-1))
	latest := monday.AddDate(0, 0, 6)
	rows, err := env.Health.Range(ctx, types.FormatDate(earliest), types.FormatDate(latest))
	if err != nil {
		return false, err
	}
	worked := make(map[string]bool, len(rows))
	for _, r := range rows {
		if r.WorkoutMinutes != nil && *r.WorkoutMinutes > 0 {
			worked[r.Date] = true
		}
	}
	for w := 0; w < weeks; w++ {
		start := monday.AddDate(0, 0, -7*w)
		saturday := types.FormatDate(start.AddDate(0, 0, 5))
		sunday := types.FormatDate(start.AddDate(0, 0, 6))
		if !worked[saturday] && !worked[sunday] {
			return false, nil
		}
	}
	return true, nil
}

func proteinStreak(ctx context.Context, env Env, p Params, _ ActionContext) (bool, error) {
	days := p.Int("days", 30)
	minGrams := p.Float("min_grams", 100)
	rows, err := window(ctx, env, days)
	if err != nil {
		return false, err
	}
	n := countRows(rows, func(r types.DailyHealth) bool {
		return r.ProteinGrams != nil && *r.ProteinGrams >= minGrams
	})
	return n >= days, nil
}

func taskComplete(ctx context.Context, env Env, p Params, _ ActionContext) (bool, error) {
	n, err := env.Tasks.CountCompleted(ctx, "")
	if err != nil {
		return false, err
	}
	return n >= p.Int("count", 100), nil
}

func taskSingleDay(_ context.Context, _ Env, p Params, action ActionContext) (bool, error) {
	return action.TasksCompletedToday >= p.Int("count", 10), nil
}

func taskBeforeDue(ctx context.Context, env Env, p Params, _ ActionContext) (bool, error) {
	n, err := env.Tasks.CountCompletedBeforeDue(ctx)
	if err != nil {
		return false, err
	}
	return n >= p.Int("count", 30), nil
}

func taskPriority(ctx context.Context, env Env, p Params, _ ActionContext) (bool, error) {
	priority := types.Priority(p.String("priority", string(types.PriorityUrgent)))
	n, err := env.Tasks.CountCompleted(ctx, priority)
	if err != nil {
		return false, err
	}
	return n >= p.Int("count", 10), nil
}

func habitStreak(ctx context.Context, env Env, p Params, _ ActionContext) (bool, error) {
	highest, err := env.Habits.MaxCurrentStreak(ctx)
	if err != nil {
		return false, err
	}
	return highest >= p.Int("days", 7), nil
}

// perfectWeek requires every day of the window to meet all three targets.
// A missing field fails that day.
func perfectWeek(ctx context.Context, env Env, p Params, _ ActionContext) (bool, error) {
	days := p.Int("days", 7)
	rows, err := window(ctx, env, days)
	if err != nil {
		return false, err
	}
	n := countRows(rows, func(r types.DailyHealth) bool {
		return r.SleepHours != nil && *r.SleepHours >= env.Targets.SleepHours &&
			r.WorkoutMinutes != nil && *r.WorkoutMinutes >= env.Targets.WorkoutMinutes &&
			r.ProteinGrams != nil && *r.ProteinGrams >= env.Targets.ProteinGrams
	})
	return n >= days, nil
}

func levelReached(ctx context.Context, env Env, p Params, _ ActionContext) (bool, error) {
	progress, err := env.Progress.Get(ctx)
	if err != nil {
		return false, err
	}
	return progress.Level >= p.Int("level", 5), nil
}
