package storage

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/easeaico/lifebot/internal/types"
)

// dailyHealthModel maps to the daily_health table.
type dailyHealthModel struct {
	ID         int
	Date       string `gorm:"size:10;uniqueIndex;not null"`
	SleepH     *float64
	WorkoutMin *int
	ProteinG   *float64
	WeightKg   *float64
	Note       *string `gorm:"type:text"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (dailyHealthModel) TableName() string {
	return "daily_health"
}

// customMetricModel maps to the custom_metrics table.
type customMetricModel struct {
	ID        int
	Date      string `gorm:"size:10;index;not null"`
	Metric    string `gorm:"size:64;not null"`
	Value     float64
	Unit      string `gorm:"size:32"`
	Category  string `gorm:"size:64"`
	CreatedAt time.Time
}

func (customMetricModel) TableName() string {
	return "custom_metrics"
}

// HealthRepo accesses daily health records and custom metrics.
type HealthRepo struct {
	db *gorm.DB
}

// Upsert merges the non-nil patch fields into the record for date,
// creating the row on first write. Fields absent from the patch are kept.
func (r *HealthRepo) Upsert(ctx context.Context, date string, patch types.HealthPatch) (types.DailyHealth, error) {
	record := dailyHealthModel{
		Date:       date,
		SleepH:     patch.SleepHours,
		WorkoutMin: patch.WorkoutMinutes,
		ProteinG:   patch.ProteinGrams,
		WeightKg:   patch.WeightKg,
		Note:       patch.Note,
	}

	columns := make([]string, 0, 6)
	if patch.SleepHours != nil {
		columns = append(columns, "sleep_h")
	}
	if patch.WorkoutMinutes != nil {
		columns = append(columns, "workout_min")
	}
	if patch.ProteinGrams != nil {
		columns = append(columns, "protein_g")
	}
	if patch.WeightKg != nil {
		columns = append(columns, "weight_kg")
	}
	if patch.Note != nil {
		columns = append(columns, "note")
	}

	onConflict := clause.OnConflict{Columns: []clause.Column{{Name: "date"}}}
	if len(columns) == 0 {
		onConflict.DoNothing = true
	} else {
		onConflict.DoUpdates = clause.AssignmentColumns(append(columns, "updated_at"))
	}

	db := conn(ctx, r.db)
	if err := db.Clauses(onConflict).Create(&record).Error; err != nil {
		return types.DailyHealth{}, fmt.Errorf("failed to upsert daily health: %w", translate(err))
	}

	var stored dailyHealthModel
	if err := db.Where("date = ?", date).Take(&stored).Error; err != nil {
		return types.DailyHealth{}, fmt.Errorf("failed to reload daily health: %w", translate(err))
	}
	return healthFromModel(stored), nil
}

// Get returns the record for date, or nil when nothing was recorded.
func (r *HealthRepo) Get(ctx context.Context, date string) (*types.DailyHealth, error) {
	var records []dailyHealthModel
	if err := conn(ctx, r.db).Where("date = ?", date).Limit(1).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to query daily health: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	result := healthFromModel(records[0])
	return &result, nil
}

// Range returns records with from <= date <= to, oldest first.
func (r *HealthRepo) Range(ctx context.Context, from, to string) ([]types.DailyHealth, error) {
	var records []dailyHealthModel
	if err := conn(ctx, r.db).
		Where("date >= ? AND date <= ?", from, to).
		Order("date ASC").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to query daily health range: %w", err)
	}

	results := make([]types.DailyHealth, 0, len(records))
	for _, record := range records {
		results = append(results, healthFromModel(record))
	}
	return results, nil
}

// CountRows returns the number of stored dates. Used to check the one-row-per-date rule.
func (r *HealthRepo) CountRows(ctx context.Context, date string) (int64, error) {
	var count int64
	if err := conn(ctx, r.db).Model(&dailyHealthModel{}).Where("date = ?", date).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count daily health: %w", err)
	}
	return count, nil
}

// AddCustomMetric appends a custom metric row.
func (r *HealthRepo) AddCustomMetric(ctx context.Context, metric types.CustomMetric) (types.CustomMetric, error) {
	record := customMetricModel{
		Date:     metric.Date,
		Metric:   metric.Metric,
		Value:    metric.Value,
		Unit:     metric.Unit,
		Category: metric.Category,
	}
	if err := conn(ctx, r.db).Create(&record).Error; err != nil {
		return types.CustomMetric{}, fmt.Errorf("failed to insert custom metric: %w", translate(err))
	}
	metric.ID = record.ID
	return metric, nil
}

// CustomMetrics lists metric rows of the given name in a date range.
func (r *HealthRepo) CustomMetrics(ctx context.Context, metric, from, to string) ([]types.CustomMetric, error) {
	var records []customMetricModel
	if err := conn(ctx, r.db).
		Where("metric = ? AND date >= ? AND date <= ?", metric, from, to).
		Order("date ASC, id ASC").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to query custom metrics: %w", err)
	}
	results := make([]types.CustomMetric, 0, len(records))
	for _, record := range records {
		results = append(results, types.CustomMetric{
			ID:       record.ID,
			Date:     record.Date,
			Metric:   record.Metric,
			Value:    record.Value,
			Unit:     record.Unit,
			Category: record.Category,
		})
	}
	return results, nil
}

func healthFromModel(model dailyHealthModel) types.DailyHealth {
	return types.DailyHealth{
		ID:             model.ID,
		Date:           model.Date,
		SleepHours:     model.SleepH,
		WorkoutMinutes: model.WorkoutMin,
		ProteinGrams:   model.ProteinG,
		WeightKg:       model.WeightKg,
		Note:           model.Note,
	}
}
