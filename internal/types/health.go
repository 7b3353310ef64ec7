// Package types holds the domain records shared across packages.
package types

import "time"

// DateLayout is the calendar-date format used as a storage key.
const DateLayout = "2006-01-02"

// FormatDate renders t as a calendar date in its own location.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a YYYY-MM-DD string in loc.
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation(DateLayout, value, loc)
}

// DailyHealth is the per-date health record. Nil fields were never recorded.
type DailyHealth struct {
	ID             int      `json:"id"`
	Date           string   `json:"date"`
	SleepHours     *float64 `json:"sleep_h,omitempty"`
	WorkoutMinutes *int     `json:"workout_min,omitempty"`
	ProteinGrams   *float64 `json:"protein_g,omitempty"`
	WeightKg       *float64 `json:"weight_kg,omitempty"`
	Note           *string  `json:"note,omitempty"`
}

// HealthPatch carries the fields to merge into a date's record.
type HealthPatch struct {
	SleepHours     *float64
	WorkoutMinutes *int
	ProteinGrams   *float64
	WeightKg       *float64
	Note           *string
}

// Empty reports whether the patch sets nothing.
func (p HealthPatch) Empty() bool {
	return p.SleepHours == nil && p.WorkoutMinutes == nil && p.ProteinGrams == nil && p.WeightKg == nil && p.Note == nil
}

// CustomMetric is a free-form numeric measurement, e.g. study hours.
type CustomMetric struct {
	ID       int     `json:"id"`
	Date     string  `json:"date"`
	Metric   string  `json:"metric"`
	Value    float64 `json:"value"`
	Unit     string  `json:"unit"`
	Category string  `json:"category"`
}

// WeeklyStats aggregates the last seven days.
type WeeklyStats struct {
	From           string  `json:"from"`
	To             string  `json:"to"`
	AvgSleep       float64 `json:"avg_sleep"`
	TotalWorkout   int     `json:"total_workout"`
	CompletedTasks int     `json:"completed_tasks"`
	CreatedTasks   int     `json:"created_tasks"`
}

// DailySummary is the read model behind the summary intent.
type DailySummary struct {
	Date      string           `json:"date"`
	Health    DailyHealth      `json:"health"`
	TasksDone int              `json:"tasks_done"`
	TaskTotal int              `json:"task_total"`
	Habits    []HabitDayStatus `json:"habits"`
}
