package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/easeaico/lifebot/internal/achievement"
	"github.com/easeaico/lifebot/internal/coaching"
	"github.com/easeaico/lifebot/internal/intent"
	"github.com/easeaico/lifebot/internal/xp"
)

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// reply accumulates the lines of one handler message.
type reply struct {
	lines []string
	exp   int
}

func (r *reply) add(line string) {
	r.lines = append(r.lines, line)
}

func (r *reply) result(name intent.Name) Result {
	return Result{Intent: name, Success: true, Message: strings.Join(r.lines, "\n"), ExpGained: r.exp}
}

// award grants XP and appends "+N XP" and any level-up line. Errors are
// logged; the record itself already succeeded.
func (o *Orchestrator) award(ctx context.Context, r *reply, action xp.Action, value xp.Value, description string) {
	got, err := o.XP.Award(ctx, action, value, description)
	if err != nil {
		slog.Error("failed to award xp", "action", string(action), "error", err.Error())
		return
	}
	if !got.Success || got.ExpGained <= 0 {
		return
	}
	r.exp += got.ExpGained
	r.add(fmt.Sprintf("  +%d XP", got.ExpGained))
	if got.LeveledUp {
		r.add(fmt.Sprintf("\n🎉 레벨업! %d → %d", got.LevelBefore, got.NewLevel))
	}
}

func (o *Orchestrator) unlockAchievements(ctx context.Context, r *reply, action achievement.ActionContext) {
	if o.Achievements == nil {
		return
	}
	unlocked, err := o.Achievements.Check(ctx, action)
	if err != nil {
		slog.Error("failed to check achievements", "error", err.Error())
	}
	for _, a := range unlocked {
		r.add(coaching.CelebrateMilestone(a))
	}
}

// coach appends the alert for value and any multi-day pattern alerts.
func (o *Orchestrator) coach(ctx context.Context, r *reply, metric string, value float64) {
	if alert := o.Coach.CheckAlert(metric, value); alert != nil {
		r.add(alert.Message)
	}
	patterns, err := o.Coach.PatternAlerts(ctx)
	if err != nil {
		slog.Error("failed to check pattern alerts", "metric", metric, "error", err.Error())
		return
	}
	for _, alert := range patterns {
		r.add(alert.Message)
	}
}

func (o *Orchestrator) handleSleep(ctx context.Context, in intent.Sleep) Result {
	if _, err := o.Tracker.LogSleep(ctx, in.Date, in.Hours); err != nil {
		return failure(intent.NameSleep, "저장", err)
	}
	r := &reply{}
	r.add(fmt.Sprintf("✓ 수면 기록 완료: %s시간", num(in.Hours)))
	o.coach(ctx, r, "sleep", in.Hours)
	if in.Hours >= o.opts.Targets.SleepHours {
		o.award(ctx, r, xp.ActionSleepGoal, xp.Amount(in.Hours), fmt.Sprintf("수면 %s시간", num(in.Hours)))
	}
	o.unlockAchievements(ctx, r, achievement.ActionContext{})
	return r.result(intent.NameSleep)
}

func (o *Orchestrator) handleWorkout(ctx context.Context, in intent.Workout) Result {
	if _, err := o.Tracker.LogWorkout(ctx, in.Date, in.Minutes); err != nil {
		return failure(intent.NameWorkout, "저장", err)
	}
	r := &reply{}
	r.add(fmt.Sprintf("✓ 운동 기록 완료: %d분", in.Minutes))
	o.coach(ctx, r, "workout", float64(in.Minutes))
	o.award(ctx, r, xp.ActionWorkout, xp.Amount(float64(in.Minutes)), fmt.Sprintf("운동 %d분", in.Minutes))
	o.unlockAchievements(ctx, r, achievement.ActionContext{WorkoutMinutes: in.Minutes})
	return r.result(intent.NameWorkout)
}

func (o *Orchestrator) handleProtein(ctx context.Context, in intent.Protein) Result {
	if _, err := o.Tracker.LogProtein(ctx, in.Date, in.Grams); err != nil {
		return failure(intent.NameProtein, "저장", err)
	}
	r := &reply{}
	r.add(fmt.Sprintf("✓ 단백질 기록 완료: %sg", num(in.Grams)))
	o.coach(ctx, r, "protein", in.Grams)
	if in.Grams >= o.opts.Targets.ProteinGrams {
		o.award(ctx, r, xp.ActionProteinGoal, xp.Amount(in.Grams), fmt.Sprintf("단백질 %sg", num(in.Grams)))
	}
	o.unlockAchievements(ctx, r, achievement.ActionContext{})
	return r.result(intent.NameProtein)
}

func (o *Orchestrator) handleWeight(ctx context.Context, in intent.Weight) Result {
	if _, err := o.Tracker.LogWeight(ctx, in.Date, in.Kg); err != nil {
		return failure(intent.NameWeight, "저장", err)
	}
	r := &reply{}
	r.add(fmt.Sprintf("✓ 체중 기록 완료: %skg", num(in.Kg)))
	o.unlockAchievements(ctx, r, achievement.ActionContext{})
	return r.result(intent.NameWeight)
}

func (o *Orchestrator) handleStudy(ctx context.Context, in intent.Study) Result {
	if _, err := o.Tracker.LogStudy(ctx, in.Date, in.Hours); err != nil {
		return failure(intent.NameStudy, "저장", err)
	}
	r := &reply{}
	r.add(fmt.Sprintf("✓ 공부 기록 완료: %s시간", num(in.Hours)))
	o.award(ctx, r, xp.ActionStudy, xp.Amount(in.Hours), fmt.Sprintf("공부 %s시간", num(in.Hours)))
	o.unlockAchievements(ctx, r, achievement.ActionContext{})
	return r.result(intent.NameStudy)
}
