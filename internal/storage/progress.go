package storage

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/easeaico/lifebot/internal/types"
)

// progressRowID is the fixed key of the singleton progress row.
const progressRowID = 1

// userProgressModel maps to the user_progress table.
type userProgressModel struct {
	ID         int `gorm:"primaryKey;autoIncrement:false"`
	Level      int `gorm:"not null;default:1"`
	CurrentExp int `gorm:"not null;default:0"`
	TotalExp   int `gorm:"not null;default:0"`
	UpdatedAt  time.Time
}

func (userProgressModel) TableName() string {
	return "user_progress"
}

// expLogModel maps to the exp_logs table.
type expLogModel struct {
	ID          int
	Date        string `gorm:"size:10;index;not null"`
	ActionType  string `gorm:"size:32;not null"`
	ExpGained   int    `gorm:"not null"`
	Description string `gorm:"type:text"`
	CreatedAt   time.Time
}

func (expLogModel) TableName() string {
	return "exp_logs"
}

// ProgressRepo accesses the progression singleton and the XP ledger.
type ProgressRepo struct {
	db *gorm.DB
}

// GetOrCreate returns the singleton, inserting it at level 1 if absent.
func (r *ProgressRepo) GetOrCreate(ctx context.Context) (types.UserProgress, error) {
	db := conn(ctx, r.db)
	seed := userProgressModel{ID: progressRowID, Level: 1}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
		return types.UserProgress{}, fmt.Errorf("failed to ensure user progress: %w", translate(err))
	}

	var record userProgressModel
	if err := db.Where("id = ?", progressRowID).Take(&record).Error; err != nil {
		return types.UserProgress{}, fmt.Errorf("failed to load user progress: %w", translate(err))
	}
	return progressFromModel(record), nil
}

// Get reads the singleton without creating it. A missing row reads as level 1.
func (r *ProgressRepo) Get(ctx context.Context) (types.UserProgress, error) {
	var records []userProgressModel
	if err := conn(ctx, r.db).Where("id = ?", progressRowID).Limit(1).Find(&records).Error; err != nil {
		return types.UserProgress{}, fmt.Errorf("failed to query user progress: %w", err)
	}
	if len(records) == 0 {
		return types.UserProgress{Level: 1}, nil
	}
	return progressFromModel(records[0]), nil
}

// Save writes level and XP counters to the singleton.
func (r *ProgressRepo) Save(ctx context.Context, progress types.UserProgress) error {
	if err := conn(ctx, r.db).
		Model(&userProgressModel{}).
		Where("id = ?", progressRowID).
		Updates(map[string]any{
			"level":       progress.Level,
			"current_exp": progress.CurrentExp,
			"total_exp":   progress.TotalExp,
			"updated_at":  time.Now().UTC(),
		}).Error; err != nil {
		return fmt.Errorf("failed to save user progress: %w", err)
	}
	return nil
}

// AppendExpLog inserts a ledger row.
func (r *ProgressRepo) AppendExpLog(ctx context.Context, entry types.ExpLog) (types.ExpLog, error) {
	record := expLogModel{
		Date:        entry.Date,
		ActionType:  entry.ActionType,
		ExpGained:   entry.ExpGained,
		Description: entry.Description,
	}
	if err := conn(ctx, r.db).Create(&record).Error; err != nil {
		return types.ExpLog{}, fmt.Errorf("failed to insert exp log: %w", translate(err))
	}
	entry.ID = record.ID
	entry.CreatedAt = record.CreatedAt
	return entry, nil
}

// ExpLogs lists the ledger, oldest first.
func (r *ProgressRepo) ExpLogs(ctx context.Context) ([]types.ExpLog, error) {
	var records []expLogModel
	if err := conn(ctx, r.db).Order("id ASC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to query exp logs: %w", err)
	}
	results := make([]types.ExpLog, 0, len(records))
	for _, record := range records {
		results = append(results, types.ExpLog{
			ID:          record.ID,
			Date:        record.Date,
			ActionType:  record.ActionType,
			ExpGained:   record.ExpGained,
			Description: record.Description,
			CreatedAt:   record.CreatedAt,
		})
	}
	return results, nil
}

func progressFromModel(model userProgressModel) types.UserProgress {
	return types.UserProgress{
		Level:      model.Level,
		CurrentExp: model.CurrentExp,
		TotalExp:   model.TotalExp,
		UpdatedAt:  model.UpdatedAt,
	}
}
