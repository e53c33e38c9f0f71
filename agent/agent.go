// Package agent reconciles job submissions between the remote job API
// and the local scheduler.
package agent

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/omnivector/jobbergate-agent/config"
	"github.com/omnivector/jobbergate-agent/jobbergate"
	"github.com/omnivector/jobbergate-agent/logger"
	"github.com/omnivector/jobbergate-agent/slurm"
	"github.com/omnivector/jobbergate-agent/util"
)

// Report summarizes the outcome of one reconciliation cycle.
type Report struct {
	// Submitted counts jobs submitted and reported in this cycle.
	Submitted int
	// Rejected counts jobs the scheduler refused.
	Rejected int
	// ReportRetried counts submissions whose "submitted" report failed
	// and was deferred to the next cycle via the cache.
	ReportRetried int
	// Reported counts status updates delivered to the API.
	Reported int
	// Unrecognized counts jobs whose raw scheduler state was missing
	// from the mapping table and got the catch-all status.
	Unrecognized int
	// Failed counts fetches or per-job operations that errored.
	Failed int
	// Err aggregates the per-job and fetch errors behind the counts.
	Err error
}

func (r *Report) fail(err error) {
	r.Failed++
	r.Err = multierror.Append(r.Err, err)
}

// Agent drives the submission and status reconcilers on their
// configured intervals.
type Agent struct {
	conf  config.Config
	api   jobbergate.API
	slurm slurm.Client
	cache *submissionCache
	log   *logger.Logger
}

// New returns a new Agent instance.
func New(conf config.Config, api jobbergate.API, sc slurm.Client, log *logger.Logger) *Agent {
	return &Agent{
		conf:  conf,
		api:   api,
		slurm: sc,
		cache: newSubmissionCache(time.Duration(conf.Agent.CacheTTL)),
		log:   log,
	}
}

// Run starts the reconciliation loops and blocks until the context is
// canceled and both loops have drained. The two tasks run concurrently
// with each other; they act on disjoint job sets (pending vs. active).
// A single task never overlaps itself: each loop consumes ticks
// sequentially and a slow cycle drops intermediate ticks.
func (a *Agent) Run(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(2)

	go a.runTask(ctx, &wg, "submissions",
		time.Duration(a.conf.Agent.SubmissionInterval), a.ReconcileSubmissions)
	go a.runTask(ctx, &wg, "statuses",
		time.Duration(a.conf.Agent.StatusInterval), a.ReconcileStatuses)

	wg.Wait()
}

func (a *Agent) runTask(ctx context.Context, wg *sync.WaitGroup, name string, d time.Duration, f func(context.Context) Report) {
	defer wg.Done()
	log := a.log.Sub(name)
	tick := util.Ticker(ctx, d)

	for {
		select {
		case <-ctx.Done():
			log.Info("stopping task")
			return
		case <-tick:
			start := time.Now()
			rep := f(ctx)
			fields := []interface{}{
				"submitted", rep.Submitted,
				"rejected", rep.Rejected,
				"reportRetried", rep.ReportRetried,
				"reported", rep.Reported,
				"unrecognized", rep.Unrecognized,
				"failed", rep.Failed,
				"elapsed", time.Since(start).String(),
			}
			if rep.Failed > 0 {
				log.Error("reconciliation cycle had failures", append(fields, "error", rep.Err)...)
			} else if rep.Submitted+rep.Rejected+rep.Reported+rep.ReportRetried > 0 {
				log.Info("reconciliation cycle complete", fields...)
			} else {
				log.Debug("reconciliation cycle complete", fields...)
			}
		}
	}
}
