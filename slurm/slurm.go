// Package slurm wraps the Slurm command line tools used to submit jobs
// and query their status.
package slurm

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/omnivector/jobbergate-agent/config"
	"github.com/omnivector/jobbergate-agent/logger"
)

// Client submits jobs to the local scheduler and queries their status.
type Client interface {
	// SubmitJob submits the script at scriptPath with the given argument
	// vector and working directory, returning the scheduler job id.
	SubmitJob(ctx context.Context, scriptPath string, args []string, workdir string) (string, error)
	// QueryStatus returns the current scheduler state of a job.
	QueryStatus(ctx context.Context, slurmJobID string) (StatusInfo, error)
}

// StatusInfo holds the parsed status of a single scheduler job.
type StatusInfo struct {
	// State is the raw scheduler state string, e.g. "RUNNING".
	State string
	// Reason is the scheduler's free-text reason field, empty when the
	// scheduler reports no reason ("None").
	Reason string
	// Fields holds all key=value pairs parsed from the query output.
	Fields map[string]string
}

// runner executes a command and returns its stdout and stderr.
// It is the seam used to fake subprocess execution in tests.
type runner func(ctx context.Context, name string, args []string, dir string) (stdout, stderr []byte, err error)

// CLI drives sbatch and scontrol. Each invocation is single-shot with a
// bounded timeout; retries belong to the calling reconciler's next cycle.
type CLI struct {
	sbatch   string
	scontrol string
	timeout  time.Duration
	run      runner
	sem      chan struct{}
	log      *logger.Logger
}

// NewCLI returns a Client backed by the local slurm executables.
func NewCLI(conf config.Slurm, log *logger.Logger) *CLI {
	par := conf.MaxParallelCommands
	if par < 1 {
		par = 1
	}
	return &CLI{
		sbatch:   conf.SbatchPath,
		scontrol: conf.ScontrolPath,
		timeout:  time.Duration(conf.CommandTimeout),
		run:      execRunner,
		sem:      make(chan struct{}, par),
		log:      log,
	}
}

// execRunner runs a command via os/exec. Arguments are passed as a
// discrete vector; nothing is ever interpreted by a shell.
func execRunner(ctx context.Context, name string, args []string, dir string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// command acquires the semaphore and runs one scheduler command under
// the configured timeout.
func (c *CLI) command(ctx context.Context, name string, args []string, dir string) ([]byte, []byte, error) {
	select {
	case c.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	}
	defer func() { <-c.sem }()

	tctx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		tctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	stdout, stderr, err := c.run(tctx, name, args, dir)
	if err != nil && errors.Is(tctx.Err(), context.DeadlineExceeded) {
		err = context.DeadlineExceeded
	}
	return stdout, stderr, err
}

// sbatchIDPattern matches the job id printed by sbatch, e.g.
// "Submitted batch job 1234"
var sbatchIDPattern = regexp.MustCompile(`Submitted batch job (\d+)`)

// SubmitJob submits a job script via sbatch and parses the new job id
// from its output.
func (c *CLI) SubmitJob(ctx context.Context, scriptPath string, args []string, workdir string) (string, error) {
	argv := append(append([]string{}, args...), scriptPath)

	c.log.Debug("running sbatch", "args", argv, "workdir", workdir)
	stdout, stderr, err := c.command(ctx, c.sbatch, argv, workdir)
	if err != nil {
		reason := err.Error()
		if errors.Is(err, context.DeadlineExceeded) {
			reason = "sbatch timed out"
		}
		return "", &SubmissionError{
			Reason: reason,
			Stdout: strings.TrimSpace(string(stdout)),
			Stderr: strings.TrimSpace(string(stderr)),
		}
	}

	m := sbatchIDPattern.FindSubmatch(stdout)
	if m == nil {
		return "", &SubmissionError{
			Reason: "no job id found in sbatch output",
			Stdout: strings.TrimSpace(string(stdout)),
			Stderr: strings.TrimSpace(string(stderr)),
		}
	}
	return string(m[1]), nil
}
