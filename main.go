package main

import (
	"os"

	"github.com/omnivector/jobbergate-agent/cmd"
	"github.com/omnivector/jobbergate-agent/logger"
)

func main() {
	if err := cmd.RootCmd.Execute(); err != nil {
		logger.New("jobbergate-agent").Error("failed", err)
		os.Exit(1)
	}
}
