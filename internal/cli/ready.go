package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/me/tomoflow/internal/parser"
	"github.com/me/tomoflow/internal/scheduler"
	"github.com/me/tomoflow/internal/schema"
	"github.com/spf13/cobra"
)

func newReadyCmd() *cobra.Command {
	var completed []string

	cmd := &cobra.Command{
		Use:   "ready <template.json>",
		Short: "Show which steps can start, given a set of completed steps",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read template: %w", err)
			}

			g, err := parser.New(logger, schema.Builtin()).Load(data)
			if err != nil {
				return fmt.Errorf("build graph: %w", err)
			}

			done := scheduler.CompletedSet(g, completed)
			ready := scheduler.Ready(g, done)

			if scheduler.Done(g, done) {
				fmt.Println("All steps complete.")
				return nil
			}
			if len(ready) == 0 {
				fmt.Println("No steps ready.")
				return nil
			}
			for _, id := range ready {
				n := g.Node(id)
				fmt.Printf("%s (%s)", id, n.TypeName)
				if deps := g.Dependencies(id); len(deps) > 0 {
					fmt.Printf("  after %s", strings.Join(deps, ", "))
				}
				fmt.Println()
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&completed, "completed", "c", nil, "Step ids already completed (comma-separated or repeated)")
	return cmd
}
