package xp

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/easeaico/lifebot/internal/config"
	"github.com/easeaico/lifebot/internal/types"
)

// ProgressRepo persists the progression singleton and the XP ledger.
type ProgressRepo interface {
	GetOrCreate(ctx context.Context) (types.UserProgress, error)
	Get(ctx context.Context) (types.UserProgress, error)
	Save(ctx context.Context, progress types.UserProgress) error
	AppendExpLog(ctx context.Context, entry types.ExpLog) (types.ExpLog, error)
}

// AchievementCounter reports unlocked and total achievements.
type AchievementCounter interface {
	Counts(ctx context.Context) (unlocked, total int, err error)
}

// Transactor runs fn atomically.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Award is the outcome of one XP grant.
type Award struct {
	Success      bool `json:"success"`
	ExpGained    int  `json:"exp_gained"`
	LevelBefore  int  `json:"level_before"`
	NewLevel     int  `json:"new_level"`
	LeveledUp    bool `json:"leveled_up"`
	LevelsGained int  `json:"levels_gained"`
}

// ProgressSummary is the read model behind the progress intent.
type ProgressSummary struct {
	Level                int     `json:"level"`
	CurrentExp           int     `json:"current_exp"`
	TotalExp             int     `json:"total_exp"`
	NextLevelExp         int     `json:"next_level_exp"`
	Percent              float64 `json:"percent"`
	UnlockedAchievements int     `json:"unlocked_achievements"`
	TotalAchievements    int     `json:"total_achievements"`
}

// Service grants XP and reads progression.
type Service struct {
	rules        config.ExpRules
	progress     ProgressRepo
	achievements AchievementCounter
	tx           Transactor
	clock        types.Clock
}

// NewService returns an XP service. A nil clock uses the wall clock.
func NewService(rules config.ExpRules, progress ProgressRepo, achievements AchievementCounter, tx Transactor, clock types.Clock) *Service {
	if clock == nil {
		clock = types.SystemClock
	}
	return &Service{
		rules:        rules,
		progress:     progress,
		achievements: achievements,
		tx:           tx,
		clock:        clock,
	}
}

// Rules returns the XP rule table in use.
func (s *Service) Rules() config.ExpRules {
	return s.rules
}

// Award grants the XP for action and appends a ledger row in the same
// transaction. Unknown actions return an unsuccessful award and write nothing.
// Known actions worth 0 XP succeed without touching the store.
func (s *Service) Award(ctx context.Context, action Action, value Value, description string) (Award, error) {
	if !Known(action) {
		slog.Warn("unknown xp action", "action", string(action))
		return Award{}, nil
	}
	gained := Calculate(s.rules, action, value)
	if gained <= 0 {
		current, err := s.progress.Get(ctx)
		if err != nil {
			return Award{}, err
		}
		return Award{Success: true, LevelBefore: current.Level, NewLevel: current.Level}, nil
	}

	var award Award
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		before, err := s.progress.GetOrCreate(ctx)
		if err != nil {
			return err
		}
		after := applyLevels(before, gained)
		if err := s.progress.Save(ctx, after); err != nil {
			return err
		}
		if _, err := s.progress.AppendExpLog(ctx, types.ExpLog{
			Date:        types.FormatDate(s.clock()),
			ActionType:  string(action),
			ExpGained:   gained,
			Description: description,
		}); err != nil {
			return err
		}
		award = Award{
			Success:      true,
			ExpGained:    gained,
			LevelBefore:  before.Level,
			NewLevel:     after.Level,
			LeveledUp:    after.Level > before.Level,
			LevelsGained: after.Level - before.Level,
		}
		return nil
	})
	if err != nil {
		return Award{}, fmt.Errorf("failed to award %s xp: %w", action, err)
	}
	return award, nil
}

// Summary reads the current progression without writing.
func (s *Service) Summary(ctx context.Context) (ProgressSummary, error) {
	progress, err := s.progress.Get(ctx)
	if err != nil {
		return ProgressSummary{}, err
	}
	unlocked, total, err := s.achievements.Counts(ctx)
	if err != nil {
		return ProgressSummary{}, err
	}
	next := RequiredForNextLevel(progress.Level)
	var percent float64
	if next > 0 {
		percent = math.Round(float64(progress.CurrentExp)/float64(next)*1000) / 10
	}
	return ProgressSummary{
		Level:                progress.Level,
		CurrentExp:           progress.CurrentExp,
		TotalExp:             progress.TotalExp,
		NextLevelExp:         next,
		Percent:              percent,
		UnlockedAchievements: unlocked,
		TotalAchievements:    total,
	}, nil
}
