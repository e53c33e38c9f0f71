// Package cmd contains the agent CLI commands.
package cmd

import (
	"github.com/spf13/cobra"
)

// RootCmd represents the root command.
var RootCmd = &cobra.Command{
	Use:           "jobbergate-agent",
	Short:         "Submits jobs to slurm on behalf of the remote job API.",
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	RootCmd.AddCommand(newStartCommand())
	RootCmd.AddCommand(versionCmd)
}
