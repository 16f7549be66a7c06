package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List templates stored on the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := client.Get("/api/v1/templates/")
			if err != nil {
				return fmt.Errorf("list templates: %w", err)
			}

			var data []map[string]any
			if err := json.Unmarshal(resp.Data, &data); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}

			if len(data) == 0 {
				fmt.Println("No templates found.")
				return nil
			}

			fmt.Printf("%-42s  %-24s  %-6s  %s\n", "ID", "NAME", "STEPS", "CREATED")
			fmt.Printf("%-42s  %-24s  %-6s  %s\n", "----", "-----", "-----", "-------")
			for _, tpl := range data {
				id, _ := tpl["id"].(string)
				name, _ := tpl["name"].(string)
				steps, _ := tpl["steps"].([]any)
				createdAt, _ := tpl["created_at"].(string)
				fmt.Printf("%-42s  %-24s  %-6d  %s\n", id, name, len(steps), createdAt)
			}

			if resp.Pagination != nil && resp.Pagination.HasMore {
				fmt.Printf("\n(%d of %d shown)\n", len(data), resp.Pagination.Total)
			}

			return nil
		},
	}
}
