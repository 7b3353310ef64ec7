// Package xp converts actions into experience points and tracks level progression.
package xp

import (
	"github.com/easeaico/lifebot/internal/config"
	"github.com/easeaico/lifebot/internal/types"
)

// Action names an XP-bearing event.
type Action string

const (
	ActionTaskComplete     Action = "task_complete"
	ActionSleepGoal        Action = "sleep_goal"
	ActionProteinGoal      Action = "protein_goal"
	ActionWorkout          Action = "workout"
	ActionHabitStreak      Action = "habit_streak"
	ActionStudy            Action = "study"
	ActionConsecutiveBonus Action = "consecutive_bonus"
	ActionAchievement      Action = "achievement"
)

// Value is the action payload: a quantity, or a priority for task completion.
type Value struct {
	Amount   float64
	Priority types.Priority
}

// Amount wraps a numeric payload.
func Amount(v float64) Value {
	return Value{Amount: v}
}

// ForPriority wraps a task priority.
func ForPriority(p types.Priority) Value {
	return Value{Priority: p}
}

// Calculate returns the XP for action. Unknown actions are worth 0.
func Calculate(rules config.ExpRules, action Action, value Value) int {
	switch action {
	case ActionTaskComplete:
		priority := value.Priority
		if priority == "" {
			priority = types.PriorityNormal
		}
		multiplier, ok := rules.PriorityMultipliers[string(priority)]
		if !ok {
			multiplier = 1.0
		}
		return int(float64(rules.TaskCompleteBase) * multiplier)
	case ActionSleepGoal:
		return rules.SleepGoal
	case ActionProteinGoal:
		return rules.ProteinGoal
	case ActionWorkout:
		return int(float64(rules.WorkoutPer30Min) * value.Amount / 30)
	case ActionHabitStreak:
		weeks := int(value.Amount) / 7
		return rules.HabitStreakBase + 5*weeks
	case ActionStudy:
		return int(float64(rules.StudyPerHour) * value.Amount)
	case ActionConsecutiveBonus:
		return rules.ConsecutiveBonus
	case ActionAchievement:
		return int(value.Amount)
	default:
		return 0
	}
}

// Known reports whether action has a rule.
func Known(action Action) bool {
	switch action {
	case ActionTaskComplete, ActionSleepGoal, ActionProteinGoal, ActionWorkout,
		ActionHabitStreak, ActionStudy, ActionConsecutiveBonus, ActionAchievement:
		return true
	}
	return false
}

// RequiredForNextLevel is the XP needed to go from level to level+1.
func RequiredForNextLevel(level int) int {
	if level < 1 {
		return 0
	}
	return 100 + (level-1)*50
}

// applyLevels adds gained to progress and promotes through every threshold crossed.
func applyLevels(progress types.UserProgress, gained int) types.UserProgress {
	if progress.Level < 1 {
		progress.Level = 1
	}
	progress.CurrentExp += gained
	progress.TotalExp += gained
	for required := RequiredForNextLevel(progress.Level); progress.CurrentExp >= required; required = RequiredForNextLevel(progress.Level) {
		progress.CurrentExp -= required
		progress.Level++
	}
	return progress
}
