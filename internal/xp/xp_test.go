package xp

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/easeaico/lifebot/internal/config"
	"github.com/easeaico/lifebot/internal/storage"
	"github.com/easeaico/lifebot/internal/types"
)

func TestCalculate(t *testing.T) {
	rules := config.DefaultRules().ExpRules

	tests := []struct {
		name   string
		action Action
		value  Value
		want   int
	}{
		{"urgent task", ActionTaskComplete, ForPriority(types.PriorityUrgent), 50},
		{"high task", ActionTaskComplete, ForPriority(types.PriorityHigh), 30},
		{"normal task", ActionTaskComplete, ForPriority(types.PriorityNormal), 20},
		{"low task", ActionTaskComplete, ForPriority(types.PriorityLow), 10},
		{"unset priority", ActionTaskComplete, Value{}, 20},
		{"sleep goal", ActionSleepGoal, Value{}, 15},
		{"protein goal", ActionProteinGoal, Value{}, 10},
		{"workout 30", ActionWorkout, Amount(30), 10},
		{"workout 45", ActionWorkout, Amount(45), 15},
		{"workout 10", ActionWorkout, Amount(10), 3},
		{"habit 6 days", ActionHabitStreak, Amount(6), 5},
		{"habit 14 days", ActionHabitStreak, Amount(14), 15},
		{"study 1.5h", ActionStudy, Amount(1.5), 45},
		{"consecutive", ActionConsecutiveBonus, Value{}, 100},
		{"achievement", ActionAchievement, Amount(70), 70},
		{"unknown", Action("dance"), Amount(10), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Calculate(rules, tt.action, tt.value); got != tt.want {
				t.Fatalf("Calculate(%s) = %d, want %d", tt.action, got, tt.want)
			}
		})
	}
}

func TestRequiredForNextLevel(t *testing.T) {
	cases := map[int]int{0: 0, -3: 0, 1: 100, 2: 150, 3: 200, 10: 550}
	for level, want := range cases {
		if got := RequiredForNextLevel(level); got != want {
			t.Fatalf("RequiredForNextLevel(%d) = %d, want %d", level, got, want)
		}
	}
}

func TestApplyLevels(t *testing.T) {
	tests := []struct {
		name   string
		start  types.UserProgress
		gained int
		want   types.UserProgress
	}{
		{
			name:   "stays below threshold",
			start:  types.UserProgress{Level: 1, CurrentExp: 80, TotalExp: 80},
			gained: 19,
			want:   types.UserProgress{Level: 1, CurrentExp: 99, TotalExp: 99},
		},
		{
			name:   "single level up",
			start:  types.UserProgress{Level: 1, CurrentExp: 90, TotalExp: 90},
			gained: 20,
			want:   types.UserProgress{Level: 2, CurrentExp: 10, TotalExp: 110},
		},
		{
			name:   "exact threshold from fresh level",
			start:  types.UserProgress{Level: 1},
			gained: 100,
			want:   types.UserProgress{Level: 2, CurrentExp: 0, TotalExp: 100},
		},
		{
			name:   "crosses several levels",
			start:  types.UserProgress{Level: 1},
			gained: 460,
			want:   types.UserProgress{Level: 4, CurrentExp: 10, TotalExp: 460},
		},
		{
			name:   "zero level treated as one",
			start:  types.UserProgress{},
			gained: 100,
			want:   types.UserProgress{Level: 2, CurrentExp: 0, TotalExp: 100},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := applyLevels(tt.start, tt.gained)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("applyLevels mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

type fakeProgressRepo struct {
	progress types.UserProgress
	logs     []types.ExpLog
	saveErr  error
}

func (f *fakeProgressRepo) GetOrCreate(context.Context) (types.UserProgress, error) {
	if f.progress.Level == 0 {
		f.progress.Level = 1
	}
	return f.progress, nil
}

func (f *fakeProgressRepo) Get(context.Context) (types.UserProgress, error) {
	if f.progress.Level == 0 {
		return types.UserProgress{Level: 1}, nil
	}
	return f.progress, nil
}

func (f *fakeProgressRepo) Save(_ context.Context, progress types.UserProgress) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.progress = progress
	return nil
}

func (f *fakeProgressRepo) AppendExpLog(_ context.Context, entry types.ExpLog) (types.ExpLog, error) {
	entry.ID = len(f.logs) + 1
	f.logs = append(f.logs, entry)
	return entry, nil
}

type fakeCounter struct{ unlocked, total int }

func (f fakeCounter) Counts(context.Context) (int, int, error) { return f.unlocked, f.total, nil }

type passthroughTx struct{}

func (passthroughTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func fixedClock() time.Time {
	return time.Date(2026, 3, 10, 8, 0, 0, 0, time.Local)
}

func TestAwardUnknownActionWritesNothing(t *testing.T) {
	repo := &fakeProgressRepo{}
	svc := NewService(config.DefaultRules().ExpRules, repo, fakeCounter{}, passthroughTx{}, fixedClock)

	award, err := svc.Award(context.Background(), Action("dance"), Amount(3), "")
	if err != nil {
		t.Fatalf("Award returned error: %v", err)
	}
	if award.Success || award.ExpGained != 0 {
		t.Fatalf("expected unsuccessful zero award, got %+v", award)
	}
	if len(repo.logs) != 0 {
		t.Fatalf("expected no exp log rows, got %d", len(repo.logs))
	}
}

func TestAwardLevelUp(t *testing.T) {
	repo := &fakeProgressRepo{progress: types.UserProgress{Level: 1, CurrentExp: 90, TotalExp: 90}}
	svc := NewService(config.DefaultRules().ExpRules, repo, fakeCounter{}, passthroughTx{}, fixedClock)

	award, err := svc.Award(context.Background(), ActionTaskComplete, ForPriority(types.PriorityNormal), "보고서")
	if err != nil {
		t.Fatalf("Award returned error: %v", err)
	}
	want := Award{Success: true, ExpGained: 20, LevelBefore: 1, NewLevel: 2, LeveledUp: true, LevelsGained: 1}
	if diff := cmp.Diff(want, award); diff != "" {
		t.Fatalf("award mismatch (-want +got):\n%s", diff)
	}
	if repo.progress.CurrentExp != 10 || repo.progress.TotalExp != 110 {
		t.Fatalf("unexpected stored progress: %+v", repo.progress)
	}
	if len(repo.logs) != 1 || repo.logs[0].Date != "2026-03-10" || repo.logs[0].ActionType != "task_complete" {
		t.Fatalf("unexpected exp logs: %+v", repo.logs)
	}
}

func TestAwardPropagatesStoreErrors(t *testing.T) {
	repo := &fakeProgressRepo{saveErr: errors.New("disk full")}
	svc := NewService(config.DefaultRules().ExpRules, repo, fakeCounter{}, passthroughTx{}, fixedClock)

	if _, err := svc.Award(context.Background(), ActionSleepGoal, Value{}, ""); err == nil {
		t.Fatalf("expected error when save fails")
	}
}

func TestSummary(t *testing.T) {
	repo := &fakeProgressRepo{progress: types.UserProgress{Level: 2, CurrentExp: 50, TotalExp: 150}}
	svc := NewService(config.DefaultRules().ExpRules, repo, fakeCounter{unlocked: 2, total: 15}, passthroughTx{}, fixedClock)

	summary, err := svc.Summary(context.Background())
	if err != nil {
		t.Fatalf("Summary returned error: %v", err)
	}
	want := ProgressSummary{
		Level:                2,
		CurrentExp:           50,
		TotalExp:             150,
		NextLevelExp:         150,
		Percent:              33.3,
		UnlockedAchievements: 2,
		TotalAchievements:    15,
	}
	if diff := cmp.Diff(want, summary); diff != "" {
		t.Fatalf("summary mismatch (-want +got):\n%s", diff)
	}
}

func TestAwardLedgerMatchesTotal(t *testing.T) {
	ctx := context.Background()
	store, err := storage.Open(ctx, filepath.Join(t.TempDir(), "xp.db"), storage.Options{Silent: true})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	svc := NewService(config.DefaultRules().ExpRules, store.Progress, store.Achievements, store, fixedClock)

	awards := []struct {
		action Action
		value  Value
	}{
		{ActionSleepGoal, Value{}},
		{ActionWorkout, Amount(60)},
		{ActionTaskComplete, ForPriority(types.PriorityUrgent)},
		{ActionStudy, Amount(2)},
		{Action("unknown"), Amount(5)},
	}
	previous := 0
	for _, a := range awards {
		if _, err := svc.Award(ctx, a.action, a.value, ""); err != nil {
			t.Fatalf("award %s: %v", a.action, err)
		}
		progress, err := store.Progress.Get(ctx)
		if err != nil {
			t.Fatalf("get progress: %v", err)
		}
		if progress.TotalExp < previous {
			t.Fatalf("total exp decreased from %d to %d", previous, progress.TotalExp)
		}
		previous = progress.TotalExp
	}

	logs, err := store.Progress.ExpLogs(ctx)
	if err != nil {
		t.Fatalf("exp logs: %v", err)
	}
	sum := 0
	for _, l := range logs {
		sum += l.ExpGained
	}
	if len(logs) != 4 {
		t.Fatalf("expected 4 ledger rows, got %d", len(logs))
	}
	if sum != previous || sum != 15+20+50+60 {
		t.Fatalf("ledger sum %d, total %d", sum, previous)
	}

	summary, err := svc.Summary(ctx)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.Level != 2 || summary.CurrentExp != 45 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}
