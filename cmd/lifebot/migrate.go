package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"google.golang.org/adk/session/database"
	"gorm.io/driver/postgres"

	"github.com/easeaico/lifebot/internal/ui"
)

func newMigrateCmd(a *app) *cobra.Command {
	var withADK bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create tables and seed the achievement catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if err := a.migrate(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(out, ui.Good.Render("  ✓ Application tables migrated"))

			if !withADK {
				return nil
			}
			if !a.store.Postgres() {
				return fmt.Errorf("--adk requires a postgres DATABASE_URL")
			}
			sessionService, err := database.NewSessionService(postgres.Open(a.cfg.DatabaseURL))
			if err != nil {
				return fmt.Errorf("failed to create session service: %w", err)
			}
			if err := database.AutoMigrate(sessionService); err != nil {
				return fmt.Errorf("failed to auto migrate: %w", err)
			}
			fmt.Fprintln(out, ui.Good.Render("  ✓ ADK session tables migrated"))
			return nil
		},
	}

	cmd.Flags().BoolVar(&withADK, "adk", false, "Also migrate ADK session tables (postgres only)")
	return cmd
}
