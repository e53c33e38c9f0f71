package cmd

import (
	"fmt"

	"github.com/omnivector/jobbergate-agent/version"
	"github.com/spf13/cobra"
)

// versionCmd represents the "version" command.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build and version details.",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.String())
	},
}
