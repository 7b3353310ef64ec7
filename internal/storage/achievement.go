package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/easeaico/lifebot/internal/types"
)

// achievementModel maps to the achievements table.
type achievementModel struct {
	ID             int
	Name           string `gorm:"size:128;uniqueIndex;not null"`
	Description    string `gorm:"type:text"`
	Category       string `gorm:"size:32"`
	ConditionType  string `gorm:"size:64;not null"`
	ConditionValue datatypes.JSON
	ExpReward      int    `gorm:"default:0"`
	Icon           string `gorm:"size:16"`
}

func (achievementModel) TableName() string {
	return "achievements"
}

// achievementLogModel maps to the achievement_logs table.
type achievementLogModel struct {
	ID            int
	AchievementID int `gorm:"uniqueIndex;not null"`
	AchievedAt    time.Time
}

func (achievementLogModel) TableName() string {
	return "achievement_logs"
}

// AchievementRepo accesses the achievement catalog and unlock log.
type AchievementRepo struct {
	db *gorm.DB
}

// Seed inserts catalog entries by name, refreshing existing ones.
func (r *AchievementRepo) Seed(ctx context.Context, catalog []types.Achievement) error {
	if len(catalog) == 0 {
		return nil
	}
	records := make([]achievementModel, 0, len(catalog))
	for _, a := range catalog {
		raw, err := json.Marshal(a.ConditionValue)
		if err != nil {
			return fmt.Errorf("failed to encode condition for %q: %w", a.Name, err)
		}
		records = append(records, achievementModel{
			Name:           a.Name,
			Description:    a.Description,
			Category:       a.Category,
			ConditionType:  a.ConditionType,
			ConditionValue: datatypes.JSON(raw),
			ExpReward:      a.ExpReward,
			Icon:           a.Icon,
		})
	}
	if err := conn(ctx, r.db).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"description",
			"category",
			"condition_type",
			"condition_value",
			"exp_reward",
			"icon",
		}),
	}).Create(&records).Error; err != nil {
		return fmt.Errorf("failed to seed achievements: %w", translate(err))
	}
	return nil
}

// List returns the full catalog ordered by id.
func (r *AchievementRepo) List(ctx context.Context) ([]types.Achievement, error) {
	var records []achievementModel
	if err := conn(ctx, r.db).Order("id ASC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to query achievements: %w", err)
	}
	results := make([]types.Achievement, 0, len(records))
	for _, record := range records {
		a, err := achievementFromModel(record)
		if err != nil {
			return nil, err
		}
		results = append(results, a)
	}
	return results, nil
}

// UnlockedIDs returns the set of achievement ids with a log row.
func (r *AchievementRepo) UnlockedIDs(ctx context.Context) (map[int]bool, error) {
	var ids []int
	if err := conn(ctx, r.db).Model(&achievementLogModel{}).Pluck("achievement_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to query unlocked achievements: %w", err)
	}
	unlocked := make(map[int]bool, len(ids))
	for _, id := range ids {
		unlocked[id] = true
	}
	return unlocked, nil
}

// Unlock appends the log row. It reports false when the achievement was already unlocked.
func (r *AchievementRepo) Unlock(ctx context.Context, achievementID int, at time.Time) (bool, error) {
	record := achievementLogModel{AchievementID: achievementID, AchievedAt: at.UTC()}
	result := conn(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "achievement_id"}},
		DoNothing: true,
	}).Create(&record)
	if result.Error != nil {
		return false, fmt.Errorf("failed to unlock achievement %d: %w", achievementID, translate(result.Error))
	}
	return result.RowsAffected > 0, nil
}

// Counts returns unlocked and total catalog sizes.
func (r *AchievementRepo) Counts(ctx context.Context) (unlocked, total int, err error) {
	var u, t int64
	db := conn(ctx, r.db)
	if err := db.Model(&achievementLogModel{}).Count(&u).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to count unlocked achievements: %w", err)
	}
	if err := db.Model(&achievementModel{}).Count(&t).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to count achievements: %w", err)
	}
	return int(u), int(t), nil
}

func achievementFromModel(model achievementModel) (types.Achievement, error) {
	params := map[string]any{}
	if len(model.ConditionValue) > 0 {
		if err := json.Unmarshal(model.ConditionValue, &params); err != nil {
			return types.Achievement{}, fmt.Errorf("failed to decode condition for %q: %w", model.Name, err)
		}
	}
	return types.Achievement{
		ID:             model.ID,
		Name:           model.Name,
		Description:    model.Description,
		Category:       model.Category,
		ConditionType:  model.ConditionType,
		ConditionValue: params,
		ExpReward:      model.ExpReward,
		Icon:           model.Icon,
	}, nil
}
