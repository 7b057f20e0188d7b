package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "skyimage",
		Short:         "Derive image templates and coordinate systems from visibility data",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newTemplateCmd(), newFramesCmd())
	return root
}
