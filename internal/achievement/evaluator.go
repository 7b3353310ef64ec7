// Package achievement evaluates the achievement catalog against stored history.
package achievement

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/easeaico/lifebot/internal/config"
	"github.com/easeaico/lifebot/internal/types"
	"github.com/easeaico/lifebot/internal/xp"
)

// CatalogRepo stores the catalog and the unlock log.
type CatalogRepo interface {
	Seed(ctx context.Context, catalog []types.Achievement) error
	List(ctx context.Context) ([]types.Achievement, error)
	UnlockedIDs(ctx context.Context) (map[int]bool, error)
	Unlock(ctx context.Context, achievementID int, at time.Time) (bool, error)
}

// Awarder grants XP.
type Awarder interface {
	Award(ctx context.Context, action xp.Action, value xp.Value, description string) (xp.Award, error)
}

// Transactor runs fn atomically.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Sources bundles the history readers predicates consult.
type Sources struct {
	Health   HealthReader
	Tasks    TaskCounter
	Habits   StreakReader
	Progress LevelReader
}

// Evaluator unlocks achievements whose predicates hold.
type Evaluator struct {
	catalog  CatalogRepo
	awarder  Awarder
	tx       Transactor
	sources  Sources
	targets  config.HealthTargets
	registry Registry
	clock    types.Clock
}

// NewEvaluator wires the evaluator with the default predicate registry.
func NewEvaluator(catalog CatalogRepo, awarder Awarder, tx Transactor, sources Sources, targets config.HealthTargets, clock types.Clock) *Evaluator {
	if clock == nil {
		clock = types.SystemClock
	}
	return &Evaluator{
		catalog:  catalog,
		awarder:  awarder,
		tx:       tx,
		sources:  sources,
		targets:  targets,
		registry: DefaultRegistry(),
		clock:    clock,
	}
}

// Register adds or replaces a predicate.
func (e *Evaluator) Register(conditionType string, p Predicate) {
	e.registry[conditionType] = p
}

// SeedDefaults upserts the embedded catalog.
func (e *Evaluator) SeedDefaults(ctx context.Context) error {
	catalog, err := DefaultCatalog()
	if err != nil {
		return err
	}
	return e.catalog.Seed(ctx, catalog)
}

// Check evaluates every locked achievement and returns the ones unlocked by
// this pass. Predicate errors are logged and the achievement stays locked.
// The unlocks and their XP rewards commit as one batch; if any of them fails
// nothing is unlocked.
func (e *Evaluator) Check(ctx context.Context, action ActionContext) ([]types.Achievement, error) {
	catalog, err := e.catalog.List(ctx)
	if err != nil {
		return nil, err
	}
	unlocked, err := e.catalog.UnlockedIDs(ctx)
	if err != nil {
		return nil, err
	}

	now := e.clock()
	env := Env{
		Health:   e.sources.Health,
		Tasks:    e.sources.Tasks,
		Habits:   e.sources.Habits,
		Progress: e.sources.Progress,
		Targets:  e.targets,
		Today:    now,
	}

	var candidates []types.Achievement
	for _, a := range catalog {
		if unlocked[a.ID] {
			continue
		}
		predicate, ok := e.registry[a.ConditionType]
		if !ok {
			slog.Warn("unknown achievement condition", "achievement", a.Name, "condition_type", a.ConditionType)
			continue
		}
		ok, err := predicate(ctx, env, Params(a.ConditionValue), action)
		if err != nil {
			slog.Error("failed to evaluate achievement", "achievement", a.Name, "error", err.Error())
			continue
		}
		if ok {
			candidates = append(candidates, a)
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	var achieved []types.Achievement
	err = e.tx.InTx(ctx, func(ctx context.Context) error {
		achieved = achieved[:0]
		for _, a := range candidates {
			created, err := e.unlock(ctx, a, now)
			if err != nil {
				return err
			}
			if created {
				achieved = append(achieved, a)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return achieved, nil
}

func (e *Evaluator) unlock(ctx context.Context, a types.Achievement, at time.Time) (bool, error) {
	created, err := e.catalog.Unlock(ctx, a.ID, at)
	if err != nil {
		return false, fmt.Errorf("failed to unlock achievement %q: %w", a.Name, err)
	}
	if !created || a.ExpReward <= 0 {
		return created, nil
	}
	if _, err := e.awarder.Award(ctx, xp.ActionAchievement, xp.Amount(float64(a.ExpReward)), "업적 달성: "+a.Name); err != nil {
		return false, fmt.Errorf("failed to award achievement %q: %w", a.Name, err)
	}
	return true, nil
}
