package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

func newPushCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "push <template.json>",
		Short: "Upload a workflow template to the server",
		Long:  "Upload a template document. The server validates it, computes the execution order, and stores it for session tracking.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read template: %w", err)
			}
			if name == "" {
				name = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			}

			resp, err := client.Post("/api/v1/templates/", map[string]any{
				"name":     name,
				"document": json.RawMessage(data),
			})
			if err != nil {
				return fmt.Errorf("push template: %w", err)
			}

			var tpl struct {
				ID    string   `json:"id"`
				Name  string   `json:"name"`
				Order []string `json:"order"`
			}
			if err := json.Unmarshal(resp.Data, &tpl); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}

			fmt.Printf("Template registered: %s (%s)\n", tpl.ID, tpl.Name)
			fmt.Printf("  Order: %s\n", strings.Join(tpl.Order, " -> "))
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Template name (defaults to the file name)")
	return cmd
}
