package tracker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/easeaico/lifebot/internal/types"
)

// NextStreak returns today's streak count given yesterday's log.
func NextStreak(prev *types.HabitLog, status types.HabitStatus) int {
	if status != types.HabitSuccess {
		return 0
	}
	if prev != nil && prev.Status == types.HabitSuccess {
		return prev.StreakCount + 1
	}
	return 1
}

// CreateHabit registers a habit by unique name.
func (s *Service) CreateHabit(ctx context.Context, name, goalType string, target *float64) (types.Habit, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return types.Habit{}, fmt.Errorf("habit name: %w", ErrInvalidValue)
	}
	return s.habits.Create(ctx, types.Habit{Name: name, GoalType: goalType, TargetValue: target})
}

// LogHabit records the outcome for (habit, date), replacing any earlier log for
// that day. Later consecutive logs are re-chained and the habit's cached streak
// follows its latest-dated log.
func (s *Service) LogHabit(ctx context.Context, name, date string, status types.HabitStatus, note string) (types.HabitLog, error) {
	if !status.Valid() {
		return types.HabitLog{}, fmt.Errorf("habit status %q: %w", status, ErrInvalidValue)
	}
	date = s.dateOrToday(date)
	day, err := types.ParseDate(date, s.clock().Location())
	if err != nil {
		return types.HabitLog{}, fmt.Errorf("habit date %q: %w", date, ErrInvalidValue)
	}

	var stored types.HabitLog
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		habit, err := s.habits.GetByName(ctx, strings.TrimSpace(name))
		if err != nil {
			return err
		}
		prev, err := s.habits.GetLog(ctx, habit.ID, types.FormatDate(day.AddDate(0, 0, -1)))
		if err != nil {
			return err
		}
		stored, err = s.habits.UpsertLog(ctx, types.HabitLog{
			HabitID:     habit.ID,
			Date:        date,
			Status:      status,
			StreakCount: NextStreak(prev, status),
			Note:        note,
		})
		if err != nil {
			return err
		}
		if err := s.rechain(ctx, stored, day); err != nil {
			return err
		}

		latest, err := s.habits.LatestLog(ctx, habit.ID)
		if err != nil {
			return err
		}
		current := 0
		if latest != nil {
			current = latest.StreakCount
		}
		return s.habits.SetCurrentStreak(ctx, habit.ID, current)
	})
	if err != nil {
		return types.HabitLog{}, err
	}
	return stored, nil
}

// rechain recomputes streak_count on the consecutive logs after from. It stops
// at the first gap or at the first log whose count is already right.
func (s *Service) rechain(ctx context.Context, from types.HabitLog, day time.Time) error {
	prev := from
	for next := day.AddDate(0, 0, 1); ; next = next.AddDate(0, 0, 1) {
		log, err := s.habits.GetLog(ctx, from.HabitID, types.FormatDate(next))
		if err != nil {
			return err
		}
		if log == nil {
			return nil
		}
		streak := NextStreak(&prev, log.Status)
		if streak == log.StreakCount {
			return nil
		}
		log.StreakCount = streak
		updated, err := s.habits.UpsertLog(ctx, *log)
		if err != nil {
			return err
		}
		prev = updated
	}
}

// GetStreak returns the streak of the named habit's latest-dated log.
func (s *Service) GetStreak(ctx context.Context, name string) (int, error) {
	habit, err := s.habits.GetByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return 0, err
	}
	return habit.CurrentStreak, nil
}
