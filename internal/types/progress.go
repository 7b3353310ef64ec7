package types

import "time"

// UserProgress is the single progression row.
type UserProgress struct {
	Level      int       `json:"level"`
	CurrentExp int       `json:"current_exp"`
	TotalExp   int       `json:"total_exp"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ExpLog is an append-only XP ledger entry.
type ExpLog struct {
	ID          int       `json:"id"`
	Date        string    `json:"date"`
	ActionType  string    `json:"action_type"`
	ExpGained   int       `json:"exp_gained"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// Achievement is a catalog entry. ConditionValue holds the predicate parameters.
type Achievement struct {
	ID             int            `json:"id" yaml:"-"`
	Name           string         `json:"name" yaml:"name"`
	Description    string         `json:"description" yaml:"description"`
	Category       string         `json:"category" yaml:"category"`
	ConditionType  string         `json:"condition_type" yaml:"condition_type"`
	ConditionValue map[string]any `json:"condition_value" yaml:"condition_value"`
	ExpReward      int            `json:"exp_reward" yaml:"exp_reward"`
	Icon           string         `json:"icon" yaml:"icon"`
}

// AchievementLog marks an achievement as unlocked.
type AchievementLog struct {
	ID            int       `json:"id"`
	AchievementID int       `json:"achievement_id"`
	AchievedAt    time.Time `json:"achieved_at"`
}
