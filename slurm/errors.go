package slurm

import (
	"errors"
	"fmt"
)

// ErrJobNotFound indicates the scheduler has no record of the queried
// job id, e.g. because it was purged from scheduler history.
var ErrJobNotFound = errors.New("job id not found in slurm")

// SubmissionError indicates the scheduler rejected or failed to accept
// a job submission. Submissions are not retried by the agent.
type SubmissionError struct {
	Reason string
	Stdout string
	Stderr string
}

func (e *SubmissionError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("sbatch failed: %s: %s", e.Reason, e.Stderr)
	}
	return "sbatch failed: " + e.Reason
}

// QueryError indicates a transient failure querying job status.
// The job is left active and queried again on the next cycle.
type QueryError struct {
	Reason string
	Err    error
}

func (e *QueryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("scontrol query failed: %s: %v", e.Reason, e.Err)
	}
	return "scontrol query failed: " + e.Reason
}

func (e *QueryError) Unwrap() error {
	return e.Err
}
