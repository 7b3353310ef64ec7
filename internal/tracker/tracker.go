// Package tracker records health metrics, tasks and habits and derives the
// read models built on top of them.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/easeaico/lifebot/internal/types"
)

// HealthRepo stores date-keyed health rows and custom metrics.
type HealthRepo interface {
	Upsert(ctx context.Context, date string, patch types.HealthPatch) (types.DailyHealth, error)
	Get(ctx context.Context, date string) (*types.DailyHealth, error)
	Range(ctx context.Context, from, to string) ([]types.DailyHealth, error)
	AddCustomMetric(ctx context.Context, metric types.CustomMetric) (types.CustomMetric, error)
}

// TaskRepo stores to-do items.
type TaskRepo interface {
	Create(ctx context.Context, task types.NewTask) (types.Task, error)
	Get(ctx context.Context, id int) (types.Task, error)
	FindOpenByTitle(ctx context.Context, title string) (types.Task, error)
	Complete(ctx context.Context, id int, at time.Time) (types.Task, error)
	Pending(ctx context.Context) ([]types.Task, error)
	CountCompletedBetween(ctx context.Context, from, to time.Time) (int, error)
	CountCreatedBetween(ctx context.Context, from, to time.Time) (int, error)
}

// HabitRepo stores habits and their daily logs.
type HabitRepo interface {
	Create(ctx context.Context, habit types.Habit) (types.Habit, error)
	GetByName(ctx context.Context, name string) (types.Habit, error)
	GetLog(ctx context.Context, habitID int, date string) (*types.HabitLog, error)
	UpsertLog(ctx context.Context, log types.HabitLog) (types.HabitLog, error)
	LatestLog(ctx context.Context, habitID int) (*types.HabitLog, error)
	SetCurrentStreak(ctx context.Context, habitID, streak int) error
	DayStatuses(ctx context.Context, date string) ([]types.HabitDayStatus, error)
}

// Transactor runs fn atomically.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ErrInvalidValue is returned for negative or otherwise impossible measurements.
var ErrInvalidValue = errors.New("invalid value")

// Service is the metric, task and habit store used by the orchestrator.
type Service struct {
	health HealthRepo
	tasks  TaskRepo
	habits HabitRepo
	tx     Transactor
	clock  types.Clock
}

// NewService wires the tracker over its repositories. A nil clock uses the wall clock.
func NewService(health HealthRepo, tasks TaskRepo, habits HabitRepo, tx Transactor, clock types.Clock) *Service {
	if clock == nil {
		clock = types.SystemClock
	}
	return &Service{
		health: health,
		tasks:  tasks,
		habits: habits,
		tx:     tx,
		clock:  clock,
	}
}

// Today returns the current local date key.
func (s *Service) Today() string {
	return types.FormatDate(s.clock())
}

// Now returns the service clock reading.
func (s *Service) Now() time.Time {
	return s.clock()
}

func (s *Service) dateOrToday(date string) string {
	if strings.TrimSpace(date) == "" {
		return s.Today()
	}
	return date
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// LogSleep records hours slept on date.
func (s *Service) LogSleep(ctx context.Context, date string, hours float64) (types.DailyHealth, error) {
	if !finite(hours) || hours < 0 || hours > 24 {
		return types.DailyHealth{}, fmt.Errorf("sleep hours %.1f: %w", hours, ErrInvalidValue)
	}
	return s.health.Upsert(ctx, s.dateOrToday(date), types.HealthPatch{SleepHours: &hours})
}

// LogWorkout records workout minutes on date.
func (s *Service) LogWorkout(ctx context.Context, date string, minutes int) (types.DailyHealth, error) {
	if minutes < 0 {
		return types.DailyHealth{}, fmt.Errorf("workout minutes %d: %w", minutes, ErrInvalidValue)
	}
	return s.health.Upsert(ctx, s.dateOrToday(date), types.HealthPatch{WorkoutMinutes: &minutes})
}

// LogProtein records protein grams on date.
func (s *Service) LogProtein(ctx context.Context, date string, grams float64) (types.DailyHealth, error) {
	if !finite(grams) || grams < 0 {
		return types.DailyHealth{}, fmt.Errorf("protein grams %.1f: %w", grams, ErrInvalidValue)
	}
	return s.health.Upsert(ctx, s.dateOrToday(date), types.HealthPatch{ProteinGrams: &grams})
}

// LogWeight records body weight on date.
func (s *Service) LogWeight(ctx context.Context, date string, kg float64) (types.DailyHealth, error) {
	if !finite(kg) || kg <= 0 {
		return types.DailyHealth{}, fmt.Errorf("weight %.1f: %w", kg, ErrInvalidValue)
	}
	return s.health.Upsert(ctx, s.dateOrToday(date), types.HealthPatch{WeightKg: &kg})
}

// LogStudy appends a study-hours custom metric.
func (s *Service) LogStudy(ctx context.Context, date string, hours float64) (types.CustomMetric, error) {
	if !finite(hours) || hours < 0 {
		return types.CustomMetric{}, fmt.Errorf("study hours %.1f: %w", hours, ErrInvalidValue)
	}
	return s.health.AddCustomMetric(ctx, types.CustomMetric{
		Date:     s.dateOrToday(date),
		Metric:   "study",
		Value:    hours,
		Unit:     "hours",
		Category: "learning",
	})
}

// Health returns the record for date, or nil if nothing was logged.
func (s *Service) Health(ctx context.Context, date string) (*types.DailyHealth, error) {
	return s.health.Get(ctx, s.dateOrToday(date))
}

// RecentHealth returns rows for the last days calendar days ending today.
func (s *Service) RecentHealth(ctx context.Context, days int) ([]types.DailyHealth, error) {
	dates := types.WindowDates(s.clock(), days)
	if len(dates) == 0 {
		return nil, nil
	}
	return s.health.Range(ctx, dates[0], dates[len(dates)-1])
}
