package main

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/adk/model"

	"github.com/easeaico/lifebot/internal/achievement"
	"github.com/easeaico/lifebot/internal/coaching"
	"github.com/easeaico/lifebot/internal/config"
	"github.com/easeaico/lifebot/internal/memory"
	"github.com/easeaico/lifebot/internal/models"
	"github.com/easeaico/lifebot/internal/orchestrator"
	"github.com/easeaico/lifebot/internal/parser"
	"github.com/easeaico/lifebot/internal/storage"
	"github.com/easeaico/lifebot/internal/tracker"
	"github.com/easeaico/lifebot/internal/types"
	"github.com/easeaico/lifebot/internal/xp"
)

// app carries what every subcommand shares.
type app struct {
	cfg      config.Config
	rules    config.Rules
	store    *storage.Store
	closeLog func() error

	tracker   *tracker.Service
	xp        *xp.Service
	evaluator *achievement.Evaluator
	coach     *coaching.Coach

	llm    model.LLM
	memory *memory.Service
}

func (a *app) open(ctx context.Context) error {
	a.cfg = config.Load()
	logger, closeLog := config.SetupLogger(a.cfg.LogFile, a.cfg.LogLevel)
	slog.SetDefault(logger)
	a.closeLog = closeLog

	rules, err := config.LoadRules(a.cfg.RulesFile)
	if err != nil {
		return err
	}
	a.rules = rules

	store, err := storage.Open(ctx, a.cfg.DatabaseURL, storage.Options{Silent: a.cfg.LogLevel > slog.LevelDebug})
	if err != nil {
		return err
	}
	a.store = store

	clock := types.Clock(types.SystemClock)
	a.tracker = tracker.NewService(store.Health, store.Tasks, store.Habits, store, clock)
	a.xp = xp.NewService(rules.ExpRules, store.Progress, store.Achievements, store, clock)
	a.evaluator = achievement.NewEvaluator(store.Achievements, a.xp, store, achievement.Sources{
		Health:   store.Health,
		Tasks:    store.Tasks,
		Habits:   store.Habits,
		Progress: store.Progress,
	}, rules.HealthTargets, clock)
	a.coach = coaching.NewCoach(rules.HealthTargets, rules.Alerts, store.Health, clock)

	// A local SQLite file is usable right away; postgres needs "lifebot migrate".
	if !store.Postgres() {
		if err := a.migrate(ctx); err != nil {
			return err
		}
	}

	slog.Debug("lifebot initialized", "database_postgres", store.Postgres(), "provider", a.cfg.LLMProvider, "model", a.cfg.LLMModel)
	return nil
}

func (a *app) migrate(ctx context.Context) error {
	if err := a.store.Migrate(ctx); err != nil {
		return err
	}
	return a.evaluator.SeedDefaults(ctx)
}

func (a *app) close() error {
	var err error
	if a.store != nil {
		err = a.store.Close()
	}
	if a.closeLog != nil {
		if closeErr := a.closeLog(); closeErr != nil && err == nil {
			err = closeErr
		}
	}
	return err
}

// connectLLM builds the model and conversation memory for commands that parse text.
func (a *app) connectLLM(ctx context.Context) error {
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	llm, err := models.New(ctx, a.cfg)
	if err != nil {
		return fmt.Errorf("failed to create LLM model: %w", err)
	}
	a.llm = llm

	var embedder memory.Embedder
	if a.cfg.MemoryEnabled {
		genaiEmbedder, err := memory.NewGenAIEmbedder(ctx, a.cfg.GoogleAPIKey, a.cfg.EmbeddingModel)
		if err != nil {
			return fmt.Errorf("failed to create embedder: %w", err)
		}
		embedder = genaiEmbedder
	}
	a.memory = memory.NewService(embedder, a.store.Conversations, memory.Options{
		HistoryLimit: a.cfg.HistoryLimit,
		TopK:         a.cfg.TopK,
		Threshold:    a.cfg.SimilarityThreshold,
	})
	return nil
}

// orchestrator builds the dispatcher. Without connectLLM it can only render reports.
func (a *app) orchestrator(sessionID string) *orchestrator.Orchestrator {
	deps := orchestrator.Deps{
		Tracker:      a.tracker,
		XP:           a.xp,
		Achievements: a.evaluator,
		Coach:        a.coach,
		People:       a.store.People,
		Journal:      a.store.Journal,
	}
	if a.llm != nil {
		deps.Parser = parser.New(a.llm, a.cfg.LLMTimeout, types.SystemClock)
		deps.Responder = models.NewResponder(a.llm, a.cfg.LLMTimeout, a.cfg.UserName)
		deps.Memory = a.memory
	}
	return orchestrator.New(deps, orchestrator.Options{
		ConfidenceThreshold: a.rules.ConfidenceThreshold,
		Targets:             a.rules.HealthTargets,
		Rephrase:            a.cfg.Rephrase,
		SessionID:           sessionID,
	})
}
