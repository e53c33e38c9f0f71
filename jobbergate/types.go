// Package jobbergate provides a client for the remote job API.
package jobbergate

// PendingJob is a job submission awaiting submission to the scheduler.
// The remote API owns the authoritative record; the agent holds a
// transient copy fetched each cycle.
type PendingJob struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Owner string `json:"owner_email"`
	// ExecutionDirectory is where the job runs. Empty means the agent's
	// configured default working directory.
	ExecutionDirectory string `json:"execution_directory"`
	// SbatchArguments are scheduler directives passed to the submission
	// command as discrete arguments.
	SbatchArguments []string `json:"execution_parameters"`
	// Script is the rendered job script content to stage and submit.
	Script string `json:"job_script"`
}

// ActiveJob is a submitted job awaiting a terminal status.
type ActiveJob struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	SlurmJobID string `json:"slurm_job_id"`
	Status     Status `json:"status"`
	Reason     string `json:"report_message"`
}

// PendingJobList is one page of pending job submissions.
type PendingJobList struct {
	Jobs          []PendingJob `json:"items"`
	NextPageToken string       `json:"next_page_token"`
}

// ActiveJobList is one page of active job submissions.
type ActiveJobList struct {
	Jobs          []ActiveJob `json:"items"`
	NextPageToken string      `json:"next_page_token"`
}
