package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/drake/winsize/config"
)

func newVersionCmd() *cobra.Command {
	var extended bool

	c := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  "Print version information. Use --extended for commit, build date and Go version.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n", config.AppName, versionInfo.Version)
			if extended {
				fmt.Fprintf(out, "Commit: %s\n", versionInfo.Commit)
				fmt.Fprintf(out, "Built: %s\n", versionInfo.BuildDate)
				fmt.Fprintf(out, "Go: %s\n", runtime.Version())
			}
			return nil
		},
	}
	c.Flags().BoolVarP(&extended, "extended", "e", false, "show extended version information")
	return c
}
