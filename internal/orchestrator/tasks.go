package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/easeaico/lifebot/internal/achievement"
	"github.com/easeaico/lifebot/internal/intent"
	"github.com/easeaico/lifebot/internal/types"
	"github.com/easeaico/lifebot/internal/xp"
)

func (o *Orchestrator) handleTaskAdd(ctx context.Context, in intent.TaskAdd) Result {
	task, err := o.Tracker.AddTask(ctx, in.Title, in.DueDate, in.Priority)
	if err != nil {
		return failure(intent.NameTaskAdd, "추가", err)
	}
	return Result{
		Intent:  intent.NameTaskAdd,
		Success: true,
		Message: fmt.Sprintf("✓ 할일 추가: [%d] %s", task.ID, task.Title),
		Data:    task,
	}
}

func (o *Orchestrator) handleTaskComplete(ctx context.Context, in intent.TaskComplete) Result {
	var task types.Task
	var err error
	if in.ID > 0 {
		task, err = o.Tracker.CompleteTask(ctx, in.ID)
	} else {
		task, err = o.Tracker.CompleteTaskByTitle(ctx, in.Title)
	}
	if err != nil {
		return failure(intent.NameTaskComplete, "완료", err)
	}

	r := &reply{}
	r.add("✓ 할일 완료: " + task.Title)
	o.award(ctx, r, xp.ActionTaskComplete, xp.ForPriority(task.Priority), "할일 완료: "+task.Title)

	done, err := o.Tracker.TasksCompletedToday(ctx)
	if err != nil {
		slog.Error("failed to count completed tasks", "error", err.Error())
	}
	o.unlockAchievements(ctx, r, achievement.ActionContext{TasksCompletedToday: done})

	res := r.result(intent.NameTaskComplete)
	res.Data = task
	return res
}

// Tasks lists pending tasks in priority order.
func (o *Orchestrator) Tasks(ctx context.Context) Result {
	tasks, err := o.Tracker.PendingTasks(ctx)
	if err != nil {
		return failure("tasks", "조회", err)
	}
	if len(tasks) == 0 {
		return Result{Intent: "tasks", Success: true, Message: "남은 할일이 없습니다."}
	}

	lines := []string{fmt.Sprintf("📋 남은 할일 %d개", len(tasks))}
	for _, task := range tasks {
		line := fmt.Sprintf("  [%d] %s (%s", task.ID, task.Title, task.Priority)
		if task.Due != nil {
			line += ", 마감 " + types.FormatDate(task.Due.Local())
		}
		lines = append(lines, line+")")
	}
	return Result{Intent: "tasks", Success: true, Message: strings.Join(lines, "\n"), Data: tasks}
}

// LogHabit records a habit outcome and awards streak XP on success.
func (o *Orchestrator) LogHabit(ctx context.Context, name, date string, status types.HabitStatus, note string) Result {
	entry, err := o.Tracker.LogHabit(ctx, name, date, status, note)
	if err != nil {
		return failure("habit", "습관 기록", err)
	}

	r := &reply{}
	r.add(fmt.Sprintf("✓ 습관 기록: %s (streak: %d일)", strings.TrimSpace(name), entry.StreakCount))
	if status == types.HabitSuccess {
		o.award(ctx, r, xp.ActionHabitStreak, xp.Amount(float64(entry.StreakCount)), fmt.Sprintf("습관 %s %d일 연속", strings.TrimSpace(name), entry.StreakCount))
	}
	o.unlockAchievements(ctx, r, achievement.ActionContext{})

	res := r.result("habit")
	res.Data = entry
	return res
}
