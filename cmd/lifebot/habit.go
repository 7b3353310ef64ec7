package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/easeaico/lifebot/internal/types"
	"github.com/easeaico/lifebot/internal/ui"
)

func newHabitCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "habit",
		Short: "Manage tracked habits",
	}
	cmd.AddCommand(newHabitAddCmd(a), newHabitLogCmd(a))
	return cmd
}

func newHabitAddCmd(a *app) *cobra.Command {
	var goalType string
	var target float64

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Register a habit",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("habit name is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var targetValue *float64
			if cmd.Flags().Changed("target") {
				targetValue = &target
			}
			habit, err := a.tracker.CreateHabit(cmd.Context(), args[0], goalType, targetValue)
			if err != nil {
				return fmt.Errorf("failed to create habit: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Good.Render(fmt.Sprintf("✓ 습관 등록: [%d] %s", habit.ID, habit.Name)))
			return nil
		},
	}

	cmd.Flags().StringVar(&goalType, "goal-type", "daily", "Goal type (daily|weekly)")
	cmd.Flags().Float64Var(&target, "target", 0, "Optional target value")
	return cmd
}

func newHabitLogCmd(a *app) *cobra.Command {
	var date string
	var status string
	var note string

	cmd := &cobra.Command{
		Use:   "log <name>",
		Short: "Record today's outcome for a habit",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("habit name is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			s := types.HabitStatus(status)
			if !s.Valid() {
				return fmt.Errorf("invalid status %q (success|fail|skip)", status)
			}
			return printResult(cmd, a.orchestrator("").LogHabit(cmd.Context(), args[0], date, s, note))
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Date YYYY-MM-DD (default: today)")
	cmd.Flags().StringVar(&status, "status", string(types.HabitSuccess), "Outcome (success|fail|skip)")
	cmd.Flags().StringVar(&note, "note", "", "Optional note")
	return cmd
}
