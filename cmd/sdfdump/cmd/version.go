package cmd

import (
	"errors"
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

func newVersionCmd(c *Command) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print sdfdump version",
		RunE:  mkRunE(c, runVersion),
	}
}

func runVersion(c *Command, args []string) error {
	w := c.OutOrStdout()
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return errors.New("unknown error reading build info")
	}
	fmt.Fprintf(w, "sdfdump version %s\n", bi.Main.Version)
	fmt.Fprintf(w, "go version %s\n", runtime.Version())
	return nil
}
