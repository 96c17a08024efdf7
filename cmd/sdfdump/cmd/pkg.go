package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"scenedesc.dev/sdf/pkgzip"
)

func newPkgCmd(c *Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pkg",
		Short: "inspect and extract .usdz-style zip packages",
	}
	cmd.AddCommand(newPkgEntriesCmd(c), newPkgExtractCmd(c))
	return cmd
}

func newPkgEntriesCmd(c *Command) *cobra.Command {
	return &cobra.Command{
		Use:   "entries <package>",
		Short: "list a package's entries, offsets, and root layer",
		Args:  cobra.ExactArgs(1),
		RunE: mkRunE(c, func(c *Command, args []string) error {
			zf, err := pkgzip.OpenFile(args[0])
			if err != nil {
				return err
			}
			defer zf.Close()

			w := c.OutOrStdout()
			if root, ok := zf.RootLayerPath(); ok {
				fmt.Fprintf(w, "root layer: %s\n", root)
			}
			for _, e := range zf.Entries() {
				fmt.Fprintf(w, "%-40s offset=%-8d size=%-8d method=%d\n", e.Name, e.DataOffset, e.Size, e.Method)
			}
			return nil
		}),
	}
}

func newPkgExtractCmd(c *Command) *cobra.Command {
	return &cobra.Command{
		Use:   "extract <package> <entry> <outfile>",
		Short: "extract one entry of a package to a file",
		Args:  cobra.ExactArgs(3),
		RunE: mkRunE(c, func(c *Command, args []string) error {
			zf, err := pkgzip.OpenFile(args[0])
			if err != nil {
				return err
			}
			defer zf.Close()

			asset, err := zf.OpenEntry(args[1])
			if err != nil {
				return err
			}
			out, err := os.Create(args[2])
			if err != nil {
				return err
			}
			defer out.Close()

			_, err = io.Copy(out, asset)
			return err
		}),
	}
}
