package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ExpRules is the XP rule table.
type ExpRules struct {
	TaskCompleteBase    int                `yaml:"task_complete_base"`
	PriorityMultipliers map[string]float64 `yaml:"priority_multipliers"`
	SleepGoal           int                `yaml:"sleep_goal"`
	ProteinGoal         int                `yaml:"protein_goal"`
	WorkoutPer30Min     int                `yaml:"workout_per_30min"`
	HabitStreakBase     int                `yaml:"habit_streak_base"`
	StudyPerHour        int                `yaml:"study_per_hour"`
	ConsecutiveBonus    int                `yaml:"consecutive_bonus"`
}

// HealthTargets are the daily goals.
type HealthTargets struct {
	SleepHours     float64 `yaml:"sleep_hours"`
	WorkoutMinutes int     `yaml:"workout_minutes"`
	ProteinGrams   float64 `yaml:"protein_grams"`
}

// Alerts tunes the coaching thresholds.
type Alerts struct {
	SleepWarningHours    float64 `yaml:"sleep_warning"`
	ConsecutiveDaysCheck int     `yaml:"consecutive_days_check"`
}

// Rules groups every data-driven rule table.
type Rules struct {
	ExpRules            ExpRules      `yaml:"exp_rules"`
	HealthTargets       HealthTargets `yaml:"health_targets"`
	Alerts              Alerts        `yaml:"alerts"`
	ConfidenceThreshold float64       `yaml:"confidence_threshold"`
}

// DefaultRules returns the built-in rule set.
func DefaultRules() Rules {
	return Rules{
		ExpRules: ExpRules{
			TaskCompleteBase: 20,
			PriorityMultipliers: map[string]float64{
				"low":    0.5,
				"normal": 1.0,
				"high":   1.5,
				"urgent": 2.5,
			},
			SleepGoal:        15,
			ProteinGoal:      10,
			WorkoutPer30Min:  10,
			HabitStreakBase:  5,
			StudyPerHour:     30,
			ConsecutiveBonus: 100,
		},
		HealthTargets: HealthTargets{
			SleepHours:     7,
			WorkoutMinutes: 30,
			ProteinGrams:   100,
		},
		Alerts: Alerts{
			SleepWarningHours:    6,
			ConsecutiveDaysCheck: 3,
		},
		ConfidenceThreshold: 0.7,
	}
}

// LoadRules reads a YAML rules file over the defaults. An empty path returns the defaults.
func LoadRules(path string) (Rules, error) {
	rules := DefaultRules()
	if path == "" {
		return rules, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("failed to read rules file: %w", err)
	}
	return ParseRules(data)
}

// ParseRules decodes YAML over the defaults. Keys absent from data keep their default.
func ParseRules(data []byte) (Rules, error) {
	rules := DefaultRules()
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return Rules{}, fmt.Errorf("failed to parse rules: %w", err)
	}
	defaults := DefaultRules()
	if rules.ExpRules.PriorityMultipliers == nil {
		rules.ExpRules.PriorityMultipliers = map[string]float64{}
	}
	for name, mult := range defaults.ExpRules.PriorityMultipliers {
		if _, ok := rules.ExpRules.PriorityMultipliers[name]; !ok {
			rules.ExpRules.PriorityMultipliers[name] = mult
		}
	}
	if rules.Alerts.ConsecutiveDaysCheck <= 0 {
		rules.Alerts.ConsecutiveDaysCheck = defaults.Alerts.ConsecutiveDaysCheck
	}
	if rules.ConfidenceThreshold < 0 || rules.ConfidenceThreshold > 1 {
		return Rules{}, fmt.Errorf("confidence_threshold must be within [0,1], got %v", rules.ConfidenceThreshold)
	}
	return rules, nil
}
