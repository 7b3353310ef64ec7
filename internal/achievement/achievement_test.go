package achievement

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easeaico/lifebot/internal/config"
	"github.com/easeaico/lifebot/internal/storage"
	"github.com/easeaico/lifebot/internal/types"
	"github.com/easeaico/lifebot/internal/xp"
)

var testToday = time.Date(2026, 3, 10, 21, 0, 0, 0, time.Local)

func fixedClock() time.Time { return testToday }

type fixture struct {
	store     *storage.Store
	xp        *xp.Service
	evaluator *Evaluator
}

func newFixture(t *testing.T, catalog []types.Achievement) fixture {
	t.Helper()
	ctx := context.Background()
	store, err := storage.Open(ctx, filepath.Join(t.TempDir(), "achievement.db"), storage.Options{Silent: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(ctx))

	rules := config.DefaultRules()
	xpSvc := xp.NewService(rules.ExpRules, store.Progress, store.Achievements, store, fixedClock)
	evaluator := NewEvaluator(store.Achievements, xpSvc, store, Sources{
		Health:   store.Health,
		Tasks:    store.Tasks,
		Habits:   store.Habits,
		Progress: store.Progress,
	}, rules.HealthTargets, fixedClock)

	if catalog == nil {
		require.NoError(t, evaluator.SeedDefaults(ctx))
	} else {
		require.NoError(t, store.Achievements.Seed(ctx, catalog))
	}
	return fixture{store: store, xp: xpSvc, evaluator: evaluator}
}

func names(list []types.Achievement) []string {
	out := make([]string, 0, len(list))
	for _, a := range list {
		out = append(out, a.Name)
	}
	return out
}

func TestDefaultCatalog(t *testing.T) {
	catalog, err := DefaultCatalog()
	require.NoError(t, err)
	assert.Len(t, catalog, 15)

	registry := DefaultRegistry()
	for _, a := range catalog {
		_, ok := registry[a.ConditionType]
		assert.True(t, ok, "no predicate for %s", a.ConditionType)
	}
}

func TestParseCatalogRejectsDuplicates(t *testing.T) {
	_, err := ParseCatalog([]byte("- {name: a, condition_type: any_record}\n- {name: a, condition_type: any_record}\n"))
	assert.Error(t, err)
	_, err = ParseCatalog([]byte("- {name: b}\n"))
	assert.Error(t, err)
}

func TestCheckIsIdempotent(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	first, err := f.evaluator.Check(ctx, ActionContext{})
	require.NoError(t, err)
	assert.Equal(t, []string{"첫 걸음"}, names(first))

	second, err := f.evaluator.Check(ctx, ActionContext{})
	require.NoError(t, err)
	assert.Empty(t, second)

	progress, err := f.store.Progress.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, progress.TotalExp)

	unlocked, total, err := f.store.Achievements.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, unlocked)
	assert.Equal(t, 15, total)
}

func TestCheckSleepStreakAndActionContext(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	for _, date := range types.WindowDates(testToday, 7) {
		hours := 7.5
		_, err := f.store.Health.Upsert(ctx, date, types.HealthPatch{SleepHours: &hours})
		require.NoError(t, err)
	}

	achieved, err := f.evaluator.Check(ctx, ActionContext{WorkoutMinutes: 120, TasksCompletedToday: 3})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"첫 걸음", "꿀잠 일주일", "수면 지킴이", "철인"}, names(achieved))

	progress, err := f.store.Progress.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10+100+50+50, progress.TotalExp)
	assert.Equal(t, 2, progress.Level)
}

func TestCheckUnknownConditionStaysLocked(t *testing.T) {
	f := newFixture(t, []types.Achievement{
		{Name: "수수께끼", ConditionType: "mystery", ExpReward: 10},
		{Name: "레벨 2", ConditionType: "level_reached", ConditionValue: map[string]any{"level": 2}},
	})
	ctx := context.Background()

	achieved, err := f.evaluator.Check(ctx, ActionContext{})
	require.NoError(t, err)
	assert.Empty(t, achieved)

	_, err = f.xp.Award(ctx, xp.ActionConsecutiveBonus, xp.Value{}, "")
	require.NoError(t, err)

	achieved, err = f.evaluator.Check(ctx, ActionContext{})
	require.NoError(t, err)
	assert.Equal(t, []string{"레벨 2"}, names(achieved))
}

func TestRegisterCustomPredicate(t *testing.T) {
	f := newFixture(t, []types.Achievement{{Name: "맞춤", ConditionType: "custom"}})
	f.evaluator.Register("custom", func(context.Context, Env, Params, ActionContext) (bool, error) {
		return true, nil
	})

	achieved, err := f.evaluator.Check(context.Background(), ActionContext{})
	require.NoError(t, err)
	assert.Equal(t, []string{"맞춤"}, names(achieved))
}

type flakyAwarder struct {
	next  Awarder
	calls int
}

func (f *flakyAwarder) Award(ctx context.Context, action xp.Action, value xp.Value, description string) (xp.Award, error) {
	f.calls++
	if f.calls == 2 {
		return xp.Award{}, errors.New("ledger unavailable")
	}
	return f.next.Award(ctx, action, value, description)
}

func TestCheckCommitsUnlocksAsOneBatch(t *testing.T) {
	f := newFixture(t, []types.Achievement{
		{Name: "하나", ConditionType: "always", ExpReward: 10},
		{Name: "둘", ConditionType: "always", ExpReward: 20},
	})
	ctx := context.Background()

	awarder := &flakyAwarder{next: f.xp}
	evaluator := NewEvaluator(f.store.Achievements, awarder, f.store, Sources{}, config.DefaultRules().HealthTargets, fixedClock)
	evaluator.Register("always", func(context.Context, Env, Params, ActionContext) (bool, error) {
		return true, nil
	})

	achieved, err := evaluator.Check(ctx, ActionContext{})
	require.Error(t, err)
	assert.Empty(t, achieved)

	unlocked, _, err := f.store.Achievements.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, unlocked, "first unlock must roll back with the second")
	progress, err := f.store.Progress.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, progress.TotalExp)

	achieved, err = evaluator.Check(ctx, ActionContext{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"하나", "둘"}, names(achieved))
	progress, err = f.store.Progress.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 30, progress.TotalExp)
}

type fakeHealth struct {
	rows []types.DailyHealth
}

func (f fakeHealth) Range(_ context.Context, from, to string) ([]types.DailyHealth, error) {
	var out []types.DailyHealth
	for _, r := range f.rows {
		if r.Date >= from && r.Date <= to {
			out = append(out, r)
		}
	}
	return out, nil
}

func workoutOn(dates ...string) fakeHealth {
	var rows []types.DailyHealth
	for _, d := range dates {
		minutes := 30
		rows = append(rows, types.DailyHealth{Date: d, WorkoutMinutes: &minutes})
	}
	return fakeHealth{rows: rows}
}

func TestWorkoutWeekendStreak(t *testing.T) {
	sunday := time.Date(2026, 3, 15, 10, 0, 0, 0, time.Local)
	params := Params{"weeks": 2}

	ok, err := workoutWeekendStreak(context.Background(), Env{Health: workoutOn("2026-03-08", "2026-03-14"), Today: sunday}, params, ActionContext{})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = workoutWeekendStreak(context.Background(), Env{Health: workoutOn("2026-03-14", "2026-03-11"), Today: sunday}, params, ActionContext{})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPerfectWeekNeedsEveryField(t *testing.T) {
	targets := config.DefaultRules().HealthTargets
	var rows []types.DailyHealth
	for _, d := range types.WindowDates(testToday, 7) {
		sleep, workout, protein := 8.0, 40, 120.0
		rows = append(rows, types.DailyHealth{Date: d, SleepHours: &sleep, WorkoutMinutes: &workout, ProteinGrams: &protein})
	}
	env := Env{Health: fakeHealth{rows: rows}, Targets: targets, Today: testToday}

	ok, err := perfectWeek(context.Background(), env, Params{}, ActionContext{})
	require.NoError(t, err)
	assert.True(t, ok)

	rows[3].ProteinGrams = nil
	ok, err = perfectWeek(context.Background(), env, Params{}, ActionContext{})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestParams(t *testing.T) {
	p := Params{"a": 3, "b": 2.5, "c": "7", "d": "urgent"}
	assert.Equal(t, 3, p.Int("a", 0))
	assert.Equal(t, 2, p.Int("b", 0))
	assert.Equal(t, 7, p.Int("c", 0))
	assert.Equal(t, 9, p.Int("missing", 9))
	assert.Equal(t, 2.5, p.Float("b", 0))
	assert.Equal(t, "urgent", p.String("d", "low"))
	assert.Equal(t, "low", p.String("missing", "low"))
}
