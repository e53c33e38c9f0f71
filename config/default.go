package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/omnivector/jobbergate-agent/logger"
)

// DefaultConfig returns configuration with simple defaults.
func DefaultConfig() Config {
	cwd, _ := os.Getwd()
	workDir := filepath.Join(cwd, "jobbergate-agent-work")

	return Config{
		API: API{
			Address:    "http://localhost:8000",
			PageSize:   100,
			Timeout:    Duration(time.Second * 30),
			MaxRetries: 3,
		},
		Slurm: Slurm{
			SbatchPath:          "sbatch",
			ScontrolPath:        "scontrol",
			CommandTimeout:      Duration(time.Second * 60),
			MaxParallelCommands: 3,
		},
		Agent: Agent{
			WorkDir:            workDir,
			SubmissionInterval: Duration(time.Second * 30),
			StatusInterval:     Duration(time.Second * 60),
			CacheTTL:           Duration(time.Minute * 15),
		},
		Logger: logger.DefaultConfig(),
	}
}
