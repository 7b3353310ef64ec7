package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	adkagent "google.golang.org/adk/agent"
	"google.golang.org/adk/cmd/launcher"
	"google.golang.org/adk/cmd/launcher/full"
	"google.golang.org/adk/session"
	"google.golang.org/adk/session/database"
	"gorm.io/driver/postgres"

	"github.com/easeaico/lifebot/internal/agent"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:                "serve [launcher args]",
		Short:              "Run lifebot behind the ADK launcher (console, web, api)",
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.connectLLM(ctx); err != nil {
				return err
			}

			lifeAgent, err := agent.NewLifeAgent(a.llm, a.orchestrator(""))
			if err != nil {
				return err
			}

			sessionService, err := a.sessionService()
			if err != nil {
				return err
			}

			launcherConfig := &launcher.Config{
				SessionService: sessionService,
				MemoryService:  a.memory,
				AgentLoader:    adkagent.NewSingleLoader(lifeAgent),
			}

			l := full.NewLauncher()
			slog.Info("launcher starting", "agent", agent.Name)
			if err := l.Execute(ctx, launcherConfig, args); err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return nil
				}
				return fmt.Errorf("failed to run agent: %w\n\n%s", err, l.CommandLineSyntax())
			}
			return nil
		},
	}
}

// sessionService persists ADK sessions in postgres, in memory otherwise.
func (a *app) sessionService() (session.Service, error) {
	if !a.store.Postgres() {
		return session.InMemoryService(), nil
	}
	sessionService, err := database.NewSessionService(postgres.Open(a.cfg.DatabaseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to create session service: %w", err)
	}
	return sessionService, nil
}
