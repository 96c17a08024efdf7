package cmd

import (
	"github.com/spf13/cobra"
)

func newExportCmd(c *Command) *cobra.Command {
	var stream bool
	var comment string
	cmd := &cobra.Command{
		Use:   "export <identifier> [outpath]",
		Short: "export a layer's content, as a layertext file or a debug stream",
		Args:  cobra.RangeArgs(1, 2),
		RunE: mkRunE(c, func(c *Command, args []string) error {
			l, err := openLayer(args[0])
			if err != nil {
				return err
			}
			if stream || len(args) == 1 {
				return l.ExportToString(c.OutOrStdout())
			}
			return l.Export(args[1], comment, nil)
		}),
	}
	cmd.Flags().BoolVar(&stream, "stream", false, "write a debug dump to stdout instead of a file")
	cmd.Flags().StringVar(&comment, "comment", "", "comment to record in the exported file")
	return cmd
}
