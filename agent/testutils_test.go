package agent

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/omnivector/jobbergate-agent/config"
	"github.com/omnivector/jobbergate-agent/jobbergate"
	"github.com/omnivector/jobbergate-agent/logger"
	"github.com/omnivector/jobbergate-agent/slurm"
)

// Record types use exported fields so go-test/deep compares them.
type reportedSubmission struct {
	ID         int64
	SlurmJobID string
}

type reportedRejection struct {
	ID     int64
	Reason string
}

type reportedStatus struct {
	ID     int64
	Status jobbergate.Status
	Reason string
}

// fakeAPI is an in-memory stand-in for the remote job API. Report
// calls are recorded; errors are injected per operation.
type fakeAPI struct {
	mtx      sync.Mutex
	pending  []jobbergate.PendingJob
	active   []jobbergate.ActiveJob
	pageSize int

	fetchErr      error
	submittedErrs map[int64]error
	statusErr     error

	submitted []reportedSubmission
	rejected  []reportedRejection
	statuses  []reportedStatus
}

func (f *fakeAPI) ListPending(ctx context.Context, pageToken string) (*jobbergate.PendingJobList, error) {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	jobs, next, err := page(f.pending, pageToken, f.pageSize)
	if err != nil {
		return nil, err
	}
	return &jobbergate.PendingJobList{Jobs: jobs, NextPageToken: next}, nil
}

func (f *fakeAPI) ListActive(ctx context.Context, pageToken string) (*jobbergate.ActiveJobList, error) {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	jobs, next, err := page(f.active, pageToken, f.pageSize)
	if err != nil {
		return nil, err
	}
	return &jobbergate.ActiveJobList{Jobs: jobs, NextPageToken: next}, nil
}

// page slices one page out of the full listing, using the element
// offset as the page token.
func page[T any](all []T, pageToken string, size int) ([]T, string, error) {
	if size <= 0 {
		return all, "", nil
	}
	start := 0
	if pageToken != "" {
		var err error
		start, err = strconv.Atoi(pageToken)
		if err != nil {
			return nil, "", fmt.Errorf("bad page token %q", pageToken)
		}
	}
	end := start + size
	if end >= len(all) {
		return all[start:], "", nil
	}
	return all[start:end], strconv.Itoa(end), nil
}

func (f *fakeAPI) ReportSubmitted(ctx context.Context, id int64, slurmJobID string) error {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	if err := f.submittedErrs[id]; err != nil {
		return err
	}
	f.submitted = append(f.submitted, reportedSubmission{id, slurmJobID})
	return nil
}

func (f *fakeAPI) ReportRejected(ctx context.Context, id int64, reason string) error {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	f.rejected = append(f.rejected, reportedRejection{id, reason})
	return nil
}

func (f *fakeAPI) ReportStatus(ctx context.Context, id int64, status jobbergate.Status, reason string) error {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	if f.statusErr != nil {
		return f.statusErr
	}
	f.statuses = append(f.statuses, reportedStatus{id, status, reason})
	return nil
}

// fakeSlurm fakes the scheduler command adapter with function fields.
type fakeSlurm struct {
	mtx         sync.Mutex
	submitCalls int
	submitFn    func(scriptPath string, args []string, workdir string) (string, error)
	queryFn     func(slurmJobID string) (slurm.StatusInfo, error)
}

func (f *fakeSlurm) SubmitJob(ctx context.Context, scriptPath string, args []string, workdir string) (string, error) {
	f.mtx.Lock()
	f.submitCalls++
	f.mtx.Unlock()
	if f.submitFn == nil {
		return "1001", nil
	}
	return f.submitFn(scriptPath, args, workdir)
}

func (f *fakeSlurm) QueryStatus(ctx context.Context, slurmJobID string) (slurm.StatusInfo, error) {
	if f.queryFn == nil {
		return slurm.StatusInfo{State: "RUNNING"}, nil
	}
	return f.queryFn(slurmJobID)
}

func (f *fakeSlurm) submits() int {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	return f.submitCalls
}

func testAgent(t *testing.T, api *fakeAPI, sc *fakeSlurm) *Agent {
	t.Helper()
	conf := config.DefaultConfig()
	conf.Agent.WorkDir = t.TempDir()
	conf.Agent.SubmissionInterval = config.Duration(time.Millisecond * 5)
	conf.Agent.StatusInterval = config.Duration(time.Millisecond * 5)
	log := logger.New("test")
	log.Discard()
	return New(conf, api, sc, log)
}
