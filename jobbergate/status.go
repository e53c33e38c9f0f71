package jobbergate

// Status is a job submission status as recorded by the remote API.
type Status string

// Job submission statuses.
const (
	// StatusPending is the non-terminal catch-all for scheduler states
	// the agent does not recognize.
	StatusPending = Status("PENDING")
	// StatusSubmitted means the job was accepted by the scheduler and
	// is waiting to run.
	StatusSubmitted = Status("SUBMITTED")
	// StatusRejected means the scheduler refused the submission.
	StatusRejected = Status("REJECTED")
	// StatusRunning means the job is executing.
	StatusRunning = Status("RUNNING")
	// StatusCompleted means the job finished successfully.
	StatusCompleted = Status("COMPLETED")
	// StatusFailed means the job finished unsuccessfully.
	StatusFailed = Status("FAILED")
	// StatusCancelled means the job was cancelled.
	StatusCancelled = Status("CANCELLED")
	// StatusUnknown means the scheduler no longer knows the job,
	// e.g. it was purged from scheduler history before the agent saw a
	// terminal state.
	StatusUnknown = Status("UNKNOWN")
)

// IsTerminal returns true for statuses from which no further transition
// is expected.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusRejected, StatusCompleted, StatusFailed, StatusCancelled, StatusUnknown:
		return true
	}
	return false
}
