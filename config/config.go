// Package config describes configuration for the agent.
package config

import (
	"fmt"

	"github.com/kballard/go-shellquote"
	"github.com/omnivector/jobbergate-agent/logger"
)

// Config describes configuration for the agent process.
type Config struct {
	API    API
	Slurm  Slurm
	Agent  Agent
	Logger logger.Config
}

// API describes configuration for the remote job API client.
type API struct {
	// Address of the remote job API, e.g. "https://api.example.org".
	Address string
	// Token is a static bearer token used to authenticate requests.
	Token string
	// TokenFile reads the bearer token from a file. Takes precedence
	// over Token when set.
	TokenFile string
	// PageSize of job listing requests.
	PageSize int
	// Timeout of a single HTTP request.
	Timeout Duration
	// MaxRetries bounds retries of a failed request.
	MaxRetries int
}

// Slurm describes configuration for the local scheduler commands.
type Slurm struct {
	// SbatchPath is the path of the job submission executable.
	SbatchPath string
	// ScontrolPath is the path of the job status query executable.
	ScontrolPath string
	// CommandTimeout bounds the execution of a single scheduler command.
	CommandTimeout Duration
	// MaxParallelCommands bounds the number of scheduler commands
	// running at once.
	MaxParallelCommands int
	// DefaultSbatchArguments is prepended to every submission's
	// argument list. Split with shell quoting rules, never by a shell.
	DefaultSbatchArguments string
}

// Agent describes configuration for the reconciliation loops.
type Agent struct {
	// WorkDir is the default execution directory for jobs which
	// don't specify one.
	WorkDir string
	// SubmissionInterval is the submission reconciler's polling rate.
	SubmissionInterval Duration
	// StatusInterval is the status reconciler's polling rate.
	StatusInterval Duration
	// CacheTTL bounds the lifetime of submission cache entries.
	CacheTTL Duration
	// MetricsAddress serves prometheus metrics when set,
	// e.g. "localhost:9100".
	MetricsAddress string
}

// SbatchArgs splits the configured default sbatch argument string into
// an argument vector.
func (s Slurm) SbatchArgs() ([]string, error) {
	if s.DefaultSbatchArguments == "" {
		return nil, nil
	}
	args, err := shellquote.Split(s.DefaultSbatchArguments)
	if err != nil {
		return nil, fmt.Errorf("invalid sbatch arguments %q: %v", s.DefaultSbatchArguments, err)
	}
	return args, nil
}
