package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/easeaico/lifebot/internal/orchestrator"
	"github.com/easeaico/lifebot/internal/ui"
)

// errReported marks a failure whose message was already printed.
var errReported = errors.New("command failed")

func printResult(cmd *cobra.Command, res orchestrator.Result) error {
	fmt.Fprintln(cmd.OutOrStdout(), ui.Reply(res.Message, res.Success))
	if !res.Success {
		return errReported
	}
	return nil
}

func newSummaryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "summary [YYYY-MM-DD]",
		Short: "Show the daily summary (default: today)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date := ""
			if len(args) == 1 {
				date = args[0]
			}
			return printResult(cmd, a.orchestrator("").Summary(cmd.Context(), date))
		},
	}
}

func newProgressCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "progress",
		Short: "Show level, XP and achievements",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printResult(cmd, a.orchestrator("").Progress(cmd.Context()))
		},
	}
}

func newTasksCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tasks",
		Short: "List pending tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printResult(cmd, a.orchestrator("").Tasks(cmd.Context()))
		},
	}
}

func newTrendsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "trends",
		Short: "Show weekly stats and health trends",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printResult(cmd, a.orchestrator("").Trends(cmd.Context()))
		},
	}
}
