package storage

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/easeaico/lifebot/internal/types"
)

// habitModel maps to the habits table.
type habitModel struct {
	ID            int
	Name          string `gorm:"size:128;uniqueIndex;not null"`
	GoalType      string `gorm:"size:32"`
	TargetValue   *float64
	CurrentStreak int `gorm:"default:0"`
	CreatedAt     time.Time
}

func (habitModel) TableName() string {
	return "habits"
}

// habitLogModel maps to the habit_logs table.
type habitLogModel struct {
	ID          int
	HabitID     int    `gorm:"uniqueIndex:idx_habit_logs_habit_date;not null"`
	Date        string `gorm:"size:10;uniqueIndex:idx_habit_logs_habit_date;not null"`
	Status      string `gorm:"size:16;not null"`
	StreakCount int    `gorm:"default:0"`
	Note        string `gorm:"type:text"`
}

func (habitLogModel) TableName() string {
	return "habit_logs"
}

// HabitRepo accesses habits and their daily logs.
type HabitRepo struct {
	db *gorm.DB
}

// Create inserts a habit. Duplicate names return ErrDuplicate.
func (r *HabitRepo) Create(ctx context.Context, habit types.Habit) (types.Habit, error) {
	record := habitModel{
		Name:        habit.Name,
		GoalType:    habit.GoalType,
		TargetValue: habit.TargetValue,
	}
	if err := conn(ctx, r.db).Create(&record).Error; err != nil {
		return types.Habit{}, fmt.Errorf("failed to insert habit %q: %w", habit.Name, translate(err))
	}
	return habitFromModel(record), nil
}

// GetByName returns the habit called name.
func (r *HabitRepo) GetByName(ctx context.Context, name string) (types.Habit, error) {
	var record habitModel
	if err := conn(ctx, r.db).Where("name = ?", name).Take(&record).Error; err != nil {
		return types.Habit{}, fmt.Errorf("failed to get habit %q: %w", name, translate(err))
	}
	return habitFromModel(record), nil
}

// GetLog returns the log for (habitID, date), or nil.
func (r *HabitRepo) GetLog(ctx context.Context, habitID int, date string) (*types.HabitLog, error) {
	var records []habitLogModel
	if err := conn(ctx, r.db).
		Where("habit_id = ? AND date = ?", habitID, date).
		Limit(1).
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to query habit log: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	log := habitLogFromModel(records[0])
	return &log, nil
}

// UpsertLog writes the (habit, date) log, replacing an existing one.
func (r *HabitRepo) UpsertLog(ctx context.Context, log types.HabitLog) (types.HabitLog, error) {
	record := habitLogModel{
		HabitID:     log.HabitID,
		Date:        log.Date,
		Status:      string(log.Status),
		StreakCount: log.StreakCount,
		Note:        log.Note,
	}
	db := conn(ctx, r.db)
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "habit_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "streak_count", "note"}),
	}).Create(&record).Error; err != nil {
		return types.HabitLog{}, fmt.Errorf("failed to upsert habit log: %w", translate(err))
	}

	stored, err := r.GetLog(ctx, log.HabitID, log.Date)
	if err != nil {
		return types.HabitLog{}, err
	}
	if stored == nil {
		return types.HabitLog{}, fmt.Errorf("failed to reload habit log: %w", ErrNotFound)
	}
	return *stored, nil
}

// SetCurrentStreak caches the latest streak on the habit row.
func (r *HabitRepo) SetCurrentStreak(ctx context.Context, habitID, streak int) error {
	if err := conn(ctx, r.db).
		Model(&habitModel{}).
		Where("id = ?", habitID).
		Update("current_streak", streak).Error; err != nil {
		return fmt.Errorf("failed to update habit streak: %w", err)
	}
	return nil
}

// LatestLog returns the most recent log of habitID by date, or nil.
func (r *HabitRepo) LatestLog(ctx context.Context, habitID int) (*types.HabitLog, error) {
	var records []habitLogModel
	if err := conn(ctx, r.db).
		Where("habit_id = ?", habitID).
		Order("date DESC").
		Limit(1).
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to query latest habit log: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	log := habitLogFromModel(records[0])
	return &log, nil
}

// MaxCurrentStreak returns the highest cached streak across all habits.
func (r *HabitRepo) MaxCurrentStreak(ctx context.Context) (int, error) {
	var highest int64
	row := conn(ctx, r.db).
		Model(&habitModel{}).
		Select("COALESCE(MAX(current_streak), 0)").
		Row()
	if err := row.Scan(&highest); err != nil {
		return 0, fmt.Errorf("failed to query max habit streak: %w", err)
	}
	return int(highest), nil
}

// DayStatuses joins every habit log on date with its habit name.
func (r *HabitRepo) DayStatuses(ctx context.Context, date string) ([]types.HabitDayStatus, error) {
	var rows []struct {
		Name        string
		Status      string
		StreakCount int
	}
	if err := conn(ctx, r.db).
		Table("habit_logs").
		Select("habits.name AS name, habit_logs.status AS status, habit_logs.streak_count AS streak_count").
		Joins("JOIN habits ON habits.id = habit_logs.habit_id").
		Where("habit_logs.date = ?", date).
		Order("habits.name ASC").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query habit statuses: %w", err)
	}
	results := make([]types.HabitDayStatus, 0, len(rows))
	for _, row := range rows {
		results = append(results, types.HabitDayStatus{
			Name:   row.Name,
			Status: types.HabitStatus(row.Status),
			Streak: row.StreakCount,
		})
	}
	return results, nil
}

func habitFromModel(model habitModel) types.Habit {
	return types.Habit{
		ID:            model.ID,
		Name:          model.Name,
		GoalType:      model.GoalType,
		TargetValue:   model.TargetValue,
		CurrentStreak: model.CurrentStreak,
		CreatedAt:     model.CreatedAt,
	}
}

func habitLogFromModel(model habitLogModel) types.HabitLog {
	return types.HabitLog{
		ID:          model.ID,
		HabitID:     model.HabitID,
		Date:        model.Date,
		Status:      types.HabitStatus(model.Status),
		StreakCount: model.StreakCount,
		Note:        model.Note,
	}
}
