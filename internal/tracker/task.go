package tracker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/easeaico/lifebot/internal/types"
)

// AddTask creates a pending task. dueDate is YYYY-MM-DD and becomes the last
// second of that day; unknown priorities fall back to normal.
func (s *Service) AddTask(ctx context.Context, title, dueDate, priority string) (types.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return types.Task{}, fmt.Errorf("task title: %w", ErrInvalidValue)
	}
	task := types.NewTask{
		Title:    title,
		Priority: types.ParsePriority(strings.ToLower(strings.TrimSpace(priority))),
	}
	if dueDate = strings.TrimSpace(dueDate); dueDate != "" {
		day, err := types.ParseDate(dueDate, s.clock().Location())
		if err != nil {
			return types.Task{}, fmt.Errorf("due date %q: %w", dueDate, ErrInvalidValue)
		}
		due := day.Add(24*time.Hour - time.Second)
		task.Due = &due
	}
	return s.tasks.Create(ctx, task)
}

// CompleteTask marks the task with id done.
func (s *Service) CompleteTask(ctx context.Context, id int) (types.Task, error) {
	return s.tasks.Complete(ctx, id, s.clock())
}

// CompleteTaskByTitle completes the oldest open task whose title contains title.
func (s *Service) CompleteTaskByTitle(ctx context.Context, title string) (types.Task, error) {
	task, err := s.tasks.FindOpenByTitle(ctx, strings.TrimSpace(title))
	if err != nil {
		return types.Task{}, err
	}
	return s.CompleteTask(ctx, task.ID)
}

// PendingTasks lists unfinished tasks by priority, then due date, then age.
func (s *Service) PendingTasks(ctx context.Context) ([]types.Task, error) {
	return s.tasks.Pending(ctx)
}

// TasksCompletedToday counts tasks whose completed_at falls on today's date.
func (s *Service) TasksCompletedToday(ctx context.Context) (int, error) {
	start := types.StartOfDay(s.clock())
	return s.tasks.CountCompletedBetween(ctx, start, start.AddDate(0, 0, 1))
}
