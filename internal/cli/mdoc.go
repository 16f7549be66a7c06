package cli

import (
	"fmt"

	"github.com/me/tomoflow/internal/mdoc"
	"github.com/spf13/cobra"
)

func newMdocCmd() *cobra.Command {
	var showTilts bool

	cmd := &cobra.Command{
		Use:   "mdoc <file.mdoc>",
		Short: "Summarize a SerialEM mdoc metadata file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := mdoc.ParseFile(args[0])
			if err != nil {
				return err
			}

			ts := f.TiltSeries("")
			acq := ts.Acquisition
			fmt.Printf("Tilt series:    %s (%s)\n", ts.TsID, ts.Path)
			fmt.Printf("Voltage:        %.0f kV\n", acq.Voltage)
			fmt.Printf("Pixel spacing:  %.3f A/px\n", acq.SamplingRate)
			fmt.Printf("Tilt axis:      %.2f deg\n", acq.TiltAxisAngle)
			fmt.Printf("Tilts:          %d (%.1f to %.1f deg, step %.1f)\n",
				len(ts.Images), acq.AngleMin, acq.AngleMax, acq.Step)
			fmt.Printf("Total dose:     %.2f e/A2\n", acq.AccumDose)

			if showTilts {
				fmt.Println()
				for _, im := range ts.Images {
					fmt.Printf("  %3d  angle=%7.2f  acq=%-3d  dose=%6.2f", im.Index, im.TiltAngle, im.AcqOrder, im.AccumDose)
					if im.Path != "" {
						fmt.Printf("  %s", im.Path)
					}
					fmt.Println()
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showTilts, "tilts", false, "List every tilt image")
	return cmd
}
