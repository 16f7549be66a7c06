package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage execution sessions",
	}
	cmd.AddCommand(
		newSessionNewCmd(),
		newSessionStatusCmd(),
		newSessionCompleteCmd(),
		newSessionReadyCmd(),
	)
	return cmd
}

func newSessionNewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "new <template_id>",
		Short: "Open a session for a stored template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := client.Post("/api/v1/sessions/", map[string]any{
				"template_id": args[0],
			})
			if err != nil {
				return fmt.Errorf("create session: %w", err)
			}

			var data map[string]any
			if err := json.Unmarshal(resp.Data, &data); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}
			id, _ := data["id"].(string)
			fmt.Printf("Session created: %s\n", id)
			return nil
		},
	}
}

func newSessionStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <session_id>",
		Short: "Show a session's completed steps",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := client.Get("/api/v1/sessions/" + args[0])
			if err != nil {
				return fmt.Errorf("get session: %w", err)
			}

			var data struct {
				ID         string   `json:"id"`
				TemplateID string   `json:"template_id"`
				Completed  []string `json:"completed"`
				UpdatedAt  string   `json:"updated_at"`
			}
			if err := json.Unmarshal(resp.Data, &data); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}

			fmt.Printf("Session: %s\n", data.ID)
			fmt.Printf("  Template:  %s\n", data.TemplateID)
			if len(data.Completed) == 0 {
				fmt.Println("  Completed: (none)")
			} else {
				fmt.Printf("  Completed: %s\n", strings.Join(data.Completed, ", "))
			}
			fmt.Printf("  Updated:   %s\n", data.UpdatedAt)
			return nil
		},
	}
}

func newSessionCompleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "complete <session_id> <step_id>...",
		Short: "Mark steps complete and show what that unlocks",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := client.Post("/api/v1/sessions/"+args[0]+"/complete", map[string]any{
				"step_ids": args[1:],
			})
			if err != nil {
				return fmt.Errorf("complete steps: %w", err)
			}

			var data struct {
				Ready     []string `json:"ready"`
				Done      bool     `json:"done"`
				Remaining int      `json:"remaining"`
			}
			if err := json.Unmarshal(resp.Data, &data); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}

			if data.Done {
				fmt.Println("All steps complete.")
				return nil
			}
			fmt.Printf("%d step(s) remaining\n", data.Remaining)
			if len(data.Ready) > 0 {
				fmt.Printf("Ready: %s\n", strings.Join(data.Ready, ", "))
			}
			return nil
		},
	}
}

func newSessionReadyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ready <session_id>",
		Short: "Show which steps the session can start now",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := client.Get("/api/v1/sessions/" + args[0] + "/ready")
			if err != nil {
				return fmt.Errorf("get ready steps: %w", err)
			}

			var data struct {
				Ready []string `json:"ready"`
				Done  bool     `json:"done"`
			}
			if err := json.Unmarshal(resp.Data, &data); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}

			if data.Done {
				fmt.Println("All steps complete.")
				return nil
			}
			if len(data.Ready) == 0 {
				fmt.Println("No steps ready.")
				return nil
			}
			fmt.Printf("Ready: %s\n", strings.Join(data.Ready, ", "))
			return nil
		},
	}
}
