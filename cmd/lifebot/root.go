package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "lifebot",
		Short:         "Natural-language life tracker",
		Long:          "lifebot records sleep, workouts, tasks, habits and notes from plain sentences and turns them into XP, levels and achievements.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open(cmd.Context())
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.close()
		},
	}
	root.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	root.AddCommand(
		newChatCmd(a),
		newSayCmd(a),
		newSummaryCmd(a),
		newProgressCmd(a),
		newTasksCmd(a),
		newTrendsCmd(a),
		newHabitCmd(a),
		newMigrateCmd(a),
		newServeCmd(a),
	)
	return root
}
