package main

import (
	"fmt"
	"strings"

	"github.com/signalsfoundry/skyimage/model"
	"github.com/spf13/cobra"
)

func newFramesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "frames",
		Short: "List the supported polarisation frames",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, name := range model.PolarisationFrameNames() {
				frame, err := model.NewPolarisationFrame(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%-12s %s\n", name, strings.Join(frame.Names(), ","))
			}
			return nil
		},
	}
}
