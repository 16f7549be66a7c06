package cli

import (
	"fmt"
	"strings"

	"github.com/me/tomoflow/internal/menu"
	"github.com/spf13/cobra"
)

func newMenuCmd() *cobra.Command {
	var typesOnly bool

	cmd := &cobra.Command{
		Use:   "menu <protocols.conf>",
		Short: "Show the protocol menu tree of a plugin configuration file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := menu.ParseFile(args[0])
			if err != nil {
				return err
			}

			if typesOnly {
				for _, t := range m.StepTypes() {
					fmt.Println(t)
				}
				return nil
			}

			for _, sec := range m.Sections {
				fmt.Printf("[%s]\n", sec.Name)
				for _, tree := range sec.Trees {
					fmt.Printf("  %s\n", tree.Name)
					printEntries(tree.Entries, 2)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&typesOnly, "types", false, "Print only the step-type names")
	return cmd
}

func printEntries(es []menu.Entry, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, e := range es {
		switch e.Tag {
		case "protocol":
			fmt.Printf("%s- %s (%s)\n", indent, e.Text, e.Value)
		default:
			fmt.Printf("%s%s\n", indent, e.Text)
		}
		printEntries(e.Children, depth+1)
	}
}
