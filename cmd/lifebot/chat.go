package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/easeaico/lifebot/internal/orchestrator"
	"github.com/easeaico/lifebot/internal/ui"
)

func newChatCmd(a *app) *cobra.Command {
	var sessionID string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.connectLLM(cmd.Context()); err != nil {
				return err
			}
			if sessionID == "" {
				sessionID = uuid.NewString()
			}
			orch := a.orchestrator(sessionID)
			return runREPL(cmd, orch, sessionID, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "Session ID to continue (default: new session)")
	return cmd
}

func runREPL(cmd *cobra.Command, orch *orchestrator.Orchestrator, sessionID string, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, ui.Heading(ui.IconBot, "lifebot"))
	fmt.Fprintln(out, ui.Muted.Render("예: 7시간 잤어, 30분 운동했어, 보고서 할일 추가 (종료: exit)"))

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, ui.Prompt.Render("> "))
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "exit", "quit", "종료":
			return nil
		}

		if err := cmd.Context().Err(); err != nil {
			return nil
		}
		resp := orch.HandleSession(cmd.Context(), sessionID, line)
		fmt.Fprintln(out, ui.Reply(resp.Message, resp.Success))
	}
}

func newSayCmd(a *app) *cobra.Command {
	var sessionID string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "say <text>",
		Short: "Handle a single sentence",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.connectLLM(cmd.Context()); err != nil {
				return err
			}
			resp := a.orchestrator(sessionID).Handle(cmd.Context(), strings.Join(args, " "))
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(resp)
			}
			fmt.Fprintln(out, ui.Reply(resp.Message, resp.Success))
			return nil
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "cli", "Session ID for conversation memory")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full response as JSON")
	return cmd
}
