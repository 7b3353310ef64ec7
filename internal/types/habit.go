package types

import "time"

// HabitStatus is the outcome of a habit on a given day.
type HabitStatus string

const (
	HabitSuccess HabitStatus = "success"
	HabitFail    HabitStatus = "fail"
	HabitSkip    HabitStatus = "skip"
)

// Valid reports whether s is a known status.
func (s HabitStatus) Valid() bool {
	switch s {
	case HabitSuccess, HabitFail, HabitSkip:
		return true
	}
	return false
}

// Habit is a recurring behaviour being tracked.
type Habit struct {
	ID            int       `json:"id"`
	Name          string    `json:"name"`
	GoalType      string    `json:"goal_type,omitempty"`
	TargetValue   *float64  `json:"target_value,omitempty"`
	CurrentStreak int       `json:"current_streak"`
	CreatedAt     time.Time `json:"created_at"`
}

// HabitLog is one (habit, date) outcome.
type HabitLog struct {
	ID          int         `json:"id"`
	HabitID     int         `json:"habit_id"`
	Date        string      `json:"date"`
	Status      HabitStatus `json:"status"`
	StreakCount int         `json:"streak_count"`
	Note        string      `json:"note,omitempty"`
}

// HabitDayStatus is a habit's log joined with its name.
type HabitDayStatus struct {
	Name   string      `json:"name"`
	Status HabitStatus `json:"status"`
	Streak int         `json:"streak"`
}
