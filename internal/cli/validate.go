package cli

import (
	"fmt"
	"os"

	"github.com/me/tomoflow/internal/parser"
	"github.com/me/tomoflow/internal/schema"
	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <template.json>",
		Short: "Validate a workflow template locally",
		Long:  "Parse a template document, check every step id and output reference, and report all problems found.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read template: %w", err)
			}

			p := parser.New(logger, schema.Builtin())
			nodes, err := p.Parse(data)
			if err != nil {
				return fmt.Errorf("parse template: %w", err)
			}

			if apiErr := parser.NewValidator(p, logger).Validate(nodes); apiErr != nil {
				fmt.Printf("%s: INVALID\n", args[0])
				for _, d := range apiErr.Details {
					fmt.Printf("  - %s: %s\n", d.Field, d.Message)
				}
				return fmt.Errorf("%d problem(s) found", len(apiErr.Details))
			}

			fmt.Printf("%s: valid (%d steps)\n", args[0], len(nodes))
			return nil
		},
	}
}
