package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"scenedesc.dev/sdf/data"
	"scenedesc.dev/sdf/path"
)

func newListCmd(c *Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list <identifier>",
		Short: "list every spec and its field names",
		Args:  cobra.ExactArgs(1),
		RunE:  mkRunE(c, runList),
	}
	return cmd
}

func runList(c *Command, args []string) error {
	l, err := openLayer(args[0])
	if err != nil {
		return err
	}
	w := c.OutOrStdout()
	l.Data().VisitSpecs(func(d data.AbstractData, p path.Path) bool {
		fields := d.List(p)
		names := make([]string, len(fields))
		for i, f := range fields {
			names[i] = f.String()
		}
		fmt.Fprintf(w, "%s [%s] %s\n", p.String(), d.GetSpecType(p), strings.Join(names, ", "))
		return true
	})
	return nil
}
