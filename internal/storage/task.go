package storage

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/easeaico/lifebot/internal/types"
)

// taskModel maps to the tasks table.
type taskModel struct {
	ID          int
	Title       string `gorm:"size:255;not null"`
	Description string `gorm:"type:text"`
	Due         *time.Time
	Priority    string `gorm:"size:16;not null;default:normal"`
	Category    string `gorm:"size:64"`
	Status      string `gorm:"size:16;not null;default:pending;index"`
	CreatedAt   time.Time
	CompletedAt *time.Time
}

func (taskModel) TableName() string {
	return "tasks"
}

// priorityOrder sorts urgent first, then by due date with undated tasks last.
const priorityOrder = `CASE priority WHEN 'urgent' THEN 0 WHEN 'high' THEN 1 WHEN 'normal' THEN 2 ELSE 3 END, CASE WHEN due IS NULL THEN 1 ELSE 0 END, due ASC, created_at ASC`

// TaskRepo accesses to-do items.
type TaskRepo struct {
	db *gorm.DB
}

// Create inserts a pending task.
func (r *TaskRepo) Create(ctx context.Context, task types.NewTask) (types.Task, error) {
	if task.Title == "" {
		return types.Task{}, fmt.Errorf("task title cannot be empty")
	}
	priority := task.Priority
	if priority == "" {
		priority = types.PriorityNormal
	}
	record := taskModel{
		Title:    task.Title,
		Due:      utcPtr(task.Due),
		Priority: string(priority),
		Category: task.Category,
		Status:   string(types.TaskPending),
	}
	if err := conn(ctx, r.db).Create(&record).Error; err != nil {
		return types.Task{}, fmt.Errorf("failed to insert task: %w", translate(err))
	}
	return taskFromModel(record), nil
}

// Get returns a task by id.
func (r *TaskRepo) Get(ctx context.Context, id int) (types.Task, error) {
	var record taskModel
	if err := conn(ctx, r.db).Where("id = ?", id).Take(&record).Error; err != nil {
		return types.Task{}, fmt.Errorf("failed to get task %d: %w", id, translate(err))
	}
	return taskFromModel(record), nil
}

// FindOpenByTitle returns the oldest unfinished task whose title contains title.
func (r *TaskRepo) FindOpenByTitle(ctx context.Context, title string) (types.Task, error) {
	var record taskModel
	if err := conn(ctx, r.db).
		Where("status <> ? AND title LIKE ?", string(types.TaskDone), "%"+title+"%").
		Order("id ASC").
		Take(&record).Error; err != nil {
		return types.Task{}, fmt.Errorf("failed to find task %q: %w", title, translate(err))
	}
	return taskFromModel(record), nil
}

// Complete marks the task done and stamps completed_at. Completing a done task
// returns ErrAlreadyCompleted.
func (r *TaskRepo) Complete(ctx context.Context, id int, at time.Time) (types.Task, error) {
	at = at.UTC()
	db := conn(ctx, r.db)
	result := db.Model(&taskModel{}).
		Where("id = ? AND status <> ?", id, string(types.TaskDone)).
		Updates(map[string]any{
			"status":       string(types.TaskDone),
			"completed_at": at,
		})
	if result.Error != nil {
		return types.Task{}, fmt.Errorf("failed to complete task: %w", result.Error)
	}

	task, err := r.Get(ctx, id)
	if err != nil {
		return types.Task{}, err
	}
	if result.RowsAffected == 0 {
		return task, fmt.Errorf("failed to complete task %d: %w", id, ErrAlreadyCompleted)
	}
	return task, nil
}

// Pending lists unfinished tasks, most pressing first.
func (r *TaskRepo) Pending(ctx context.Context) ([]types.Task, error) {
	var records []taskModel
	if err := conn(ctx, r.db).
		Where("status <> ?", string(types.TaskDone)).
		Order(priorityOrder).
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to query pending tasks: %w", err)
	}
	results := make([]types.Task, 0, len(records))
	for _, record := range records {
		results = append(results, taskFromModel(record))
	}
	return results, nil
}

// CountCompleted counts done tasks, optionally filtered by priority.
func (r *TaskRepo) CountCompleted(ctx context.Context, priority types.Priority) (int, error) {
	query := conn(ctx, r.db).Model(&taskModel{}).Where("status = ?", string(types.TaskDone))
	if priority != "" {
		query = query.Where("priority = ?", string(priority))
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count completed tasks: %w", err)
	}
	return int(count), nil
}

// CountCompletedBeforeDue counts done tasks finished before their due time.
func (r *TaskRepo) CountCompletedBeforeDue(ctx context.Context) (int, error) {
	var count int64
	if err := conn(ctx, r.db).Model(&taskModel{}).
		Where("status = ? AND due IS NOT NULL AND completed_at < due", string(types.TaskDone)).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count tasks completed before due: %w", err)
	}
	return int(count), nil
}

// CountCompletedBetween counts tasks completed in [from, to).
func (r *TaskRepo) CountCompletedBetween(ctx context.Context, from, to time.Time) (int, error) {
	var count int64
	if err := conn(ctx, r.db).Model(&taskModel{}).
		Where("completed_at >= ? AND completed_at < ?", from.UTC(), to.UTC()).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count completed tasks: %w", err)
	}
	return int(count), nil
}

// CountCreatedBetween counts tasks created in [from, to).
func (r *TaskRepo) CountCreatedBetween(ctx context.Context, from, to time.Time) (int, error) {
	var count int64
	if err := conn(ctx, r.db).Model(&taskModel{}).
		Where("created_at >= ? AND created_at < ?", from.UTC(), to.UTC()).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count created tasks: %w", err)
	}
	return int(count), nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func taskFromModel(model taskModel) types.Task {
	return types.Task{
		ID:          model.ID,
		Title:       model.Title,
		Description: model.Description,
		Due:         model.Due,
		Priority:    types.Priority(model.Priority),
		Category:    model.Category,
		Status:      types.TaskStatus(model.Status),
		CreatedAt:   model.CreatedAt,
		CompletedAt: model.CompletedAt,
	}
}
