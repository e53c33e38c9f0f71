package agent

import (
	"context"
	"errors"

	"github.com/omnivector/jobbergate-agent/jobbergate"
	"github.com/omnivector/jobbergate-agent/slurm"
)

// ReconcileStatuses fetches active job submissions from the remote API,
// queries the scheduler for each one, and reports the current state.
// Every state is reported each cycle; the API's status endpoint is
// idempotent, so re-sending an unchanged or terminal state is a no-op
// and terminal transitions get at-least-once delivery.
func (a *Agent) ReconcileStatuses(ctx context.Context) Report {
	rep := Report{}

	pageToken := ""
	for {
		page, err := a.api.ListActive(ctx, pageToken)
		if err != nil {
			a.log.Error("failed to fetch active jobs; skipping cycle", err)
			fetchFailuresTotal.WithLabelValues("statuses").Inc()
			rep.fail(err)
			return rep
		}

		for _, job := range page.Jobs {
			a.reconcileStatus(ctx, job, &rep)
		}

		pageToken = page.NextPageToken
		if pageToken == "" {
			return rep
		}
	}
}

func (a *Agent) reconcileStatus(ctx context.Context, job jobbergate.ActiveJob, rep *Report) {
	log := a.log.WithFields("jobID", job.ID, "slurmJobID", job.SlurmJobID)

	info, err := a.slurm.QueryStatus(ctx, job.SlurmJobID)
	if err != nil {
		if errors.Is(err, slurm.ErrJobNotFound) {
			// The scheduler purged the job before a terminal state was
			// seen. Report it lost so the API stops listing it.
			log.Warn("job no longer known to slurm; reporting lost")
			a.report(ctx, job, jobbergate.StatusUnknown, "job not found in slurm", rep)
			return
		}
		// Transient query failure. The job stays active and is queried
		// again next cycle.
		log.Error("failed to query job status", err)
		rep.fail(err)
		return
	}

	status, known := slurm.MapState(info.State)
	if !known {
		// Unrecognized scheduler state, possibly from a newer slurm
		// version. Reported as the non-terminal catch-all so the job
		// stays active and is queried again next cycle.
		log.Warn("unrecognized slurm job state", "state", info.State)
		rep.Unrecognized++
	}

	a.report(ctx, job, status, slurm.StateReason(info.State, info.Reason), rep)
}

func (a *Agent) report(ctx context.Context, job jobbergate.ActiveJob, status jobbergate.Status, reason string, rep *Report) {
	if err := a.api.ReportStatus(ctx, job.ID, status, reason); err != nil {
		// Logged and dropped: the next cycle re-queries and re-reports.
		a.log.Error("failed to report job status", "jobID", job.ID, "status", status, "error", err)
		rep.fail(err)
		return
	}
	rep.Reported++
	statusReportsTotal.WithLabelValues(string(status)).Inc()
}
