package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/me/tomoflow/internal/parser"
	"github.com/me/tomoflow/internal/schema"
	"github.com/spf13/cobra"
)

func newOrderCmd() *cobra.Command {
	var showDeps bool

	cmd := &cobra.Command{
		Use:   "order <template.json>",
		Short: "Print the execution order of a template",
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

			for i, id := range g.Order {
				n := g.Node(id)
				fmt.Printf("%d. %s (%s)", i+1, id, n.TypeName)
				if n.Label != "" {
					fmt.Printf(" %q", n.Label)
				}
				if showDeps {
					if deps := g.Dependencies(id); len(deps) > 0 {
						fmt.Printf("  <- %s", strings.Join(deps, ", "))
					}
				}
				fmt.Println()
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showDeps, "deps", false, "Show each step's dependencies")
	return cmd
}
