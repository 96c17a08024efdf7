// Package cmd implements the sdfdump command-line tool: a thin cobra
// front-end over the layer/pkgzip/resolver/layertext packages for opening a layer,
// listing its specs, and extracting package entries, the same shape as
// cmd/cue's own Command/New/Main split.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Command wraps the active cobra.Command the way cmd/cue's Command does,
// so subcommands share a single output convention.
type Command struct {
	*cobra.Command
	root *cobra.Command
}

type runFunction func(cmd *Command, args []string) error

func mkRunE(c *Command, f runFunction) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		c.Command = cmd
		return f(c, args)
	}
}

// New builds the root sdfdump command.
func New(args []string) *Command {
	root := &cobra.Command{
		Use:           "sdfdump",
		Short:         "inspect and extract scene description layers and packages",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	c := &Command{Command: root, root: root}

	for _, sub := range []*cobra.Command{
		newOpenCmd(c),
		newListCmd(c),
		newExportCmd(c),
		newPkgCmd(c),
		newVersionCmd(c),
	} {
		root.AddCommand(sub)
	}

	root.SetArgs(args)
	return c
}

// Main runs sdfdump with os.Args and returns the process exit code.
func Main() int {
	c := New(os.Args[1:])
	if err := c.root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
