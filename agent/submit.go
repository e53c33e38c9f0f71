package agent

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/hashicorp/go-multierror"
	"github.com/omnivector/jobbergate-agent/jobbergate"
)

// scriptName is the file name job scripts are staged under in the
// job's execution directory.
const scriptName = "application.sh"

// ReconcileSubmissions fetches pending job submissions from the remote
// API, submits each to the scheduler, and reports the outcome. Jobs
// are processed independently: one job's failure never stops the rest.
//
// A job whose sbatch succeeded but whose "submitted" report failed
// keeps a cache entry; the next cycle retries the report with the
// cached scheduler job id instead of submitting again.
func (a *Agent) ReconcileSubmissions(ctx context.Context) Report {
	rep := Report{}
	a.cache.sweep()
	defer func() { cacheEntries.Set(float64(a.cache.len())) }()

	pageToken := ""
	for {
		page, err := a.api.ListPending(ctx, pageToken)
		if err != nil {
			a.log.Error("failed to fetch pending jobs; skipping cycle", err)
			fetchFailuresTotal.WithLabelValues("submissions").Inc()
			rep.fail(err)
			return rep
		}

		for _, job := range page.Jobs {
			a.reconcileSubmission(ctx, job, &rep)
		}

		pageToken = page.NextPageToken
		if pageToken == "" {
			return rep
		}
	}
}

func (a *Agent) reconcileSubmission(ctx context.Context, job jobbergate.PendingJob, rep *Report) {
	log := a.log.WithFields("jobID", job.ID, "jobName", job.Name)

	slurmJobID, cached := a.cache.get(job.ID)
	if !cached {
		var err error
		slurmJobID, err = a.submit(ctx, job)
		if err != nil {
			// The scheduler refused the job. Report the rejection and
			// move on; the agent never retries a rejected submission.
			log.Error("job submission rejected", err)
			rep.Rejected++
			submissionsTotal.WithLabelValues("rejected").Inc()
			if rerr := a.api.ReportRejected(ctx, job.ID, err.Error()); rerr != nil {
				log.Error("failed to report rejection", rerr)
				rep.fail(rerr)
			}
			return
		}
		a.cache.put(job.ID, slurmJobID)
		log.Info("job submitted", "slurmJobID", slurmJobID)
	} else {
		log.Info("retrying submitted-report with cached id", "slurmJobID", slurmJobID)
	}

	if err := a.api.ReportSubmitted(ctx, job.ID, slurmJobID); err != nil {
		// Keep the cache entry so the next cycle retries the report
		// rather than submitting the job a second time.
		log.Error("failed to report submission; will retry next cycle", err)
		rep.ReportRetried++
		reportRetriesTotal.Inc()
		rep.Err = multierror.Append(rep.Err, err)
		return
	}
	a.cache.evict(job.ID)
	rep.Submitted++
	submissionsTotal.WithLabelValues("submitted").Inc()
}

// submit stages the job script and invokes the scheduler's submission
// command, returning the scheduler job id.
func (a *Agent) submit(ctx context.Context, job jobbergate.PendingJob) (string, error) {
	execDir := job.ExecutionDirectory
	if execDir == "" {
		execDir = filepath.Join(a.conf.Agent.WorkDir, strconv.FormatInt(job.ID, 10))
	}

	scriptPath, err := stageScript(execDir, job.Script)
	if err != nil {
		return "", fmt.Errorf("staging job script: %v", err)
	}

	args, err := a.conf.Slurm.SbatchArgs()
	if err != nil {
		return "", err
	}
	args = append(args, job.SbatchArguments...)

	return a.slurm.SubmitJob(ctx, scriptPath, args, execDir)
}

// stageScript writes the job script into the execution directory.
func stageScript(dir, script string) (string, error) {
	if script == "" {
		return "", errors.New("job has no script content")
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", err
	}
	path := filepath.Join(dir, scriptName)
	if err := os.WriteFile(path, []byte(script), 0600); err != nil {
		return "", err
	}
	return path, nil
}
