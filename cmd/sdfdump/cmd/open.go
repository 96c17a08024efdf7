package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"scenedesc.dev/sdf/data"
	"scenedesc.dev/sdf/encoding/layertext"
	"scenedesc.dev/sdf/layer"
	"scenedesc.dev/sdf/path"
	"scenedesc.dev/sdf/resolver"
)

func newOpenCmd(c *Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "open <identifier>",
		Short: "open a layer and print a summary",
		Args:  cobra.ExactArgs(1),
		RunE:  mkRunE(c, runOpen),
	}
	return cmd
}

func runOpen(c *Command, args []string) error {
	l, err := openLayer(args[0])
	if err != nil {
		return err
	}
	w := c.OutOrStdout()
	fmt.Fprintf(w, "identifier:   %s\n", l.Identifier())
	fmt.Fprintf(w, "resolved:     %s\n", l.ResolvedPath())
	fmt.Fprintf(w, "version:      %s\n", l.Version().AsString())
	fmt.Fprintf(w, "anonymous:    %v\n", l.IsAnonymous())
	fmt.Fprintf(w, "dirty:        %v\n", l.IsDirty())
	n := 0
	l.Data().VisitSpecs(func(_ data.AbstractData, _ path.Path) bool {
		n++
		return true
	})
	fmt.Fprintf(w, "specs:        %d\n", n)
	return nil
}

// openLayer opens identifier through the filesystem/package resolver and
// the layertext format, the only concrete FileFormat this tool ships.
func openLayer(identifier string) (*layer.Layer, error) {
	if l, ok := layer.Find(identifier); ok {
		return l, nil
	}
	return layer.FindOrOpen(identifier, resolver.FileResolver{}, layertext.Format{}, nil)
}
