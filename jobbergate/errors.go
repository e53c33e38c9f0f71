package jobbergate

import "fmt"

// FetchError indicates a job listing could not be fetched from the
// remote API. The reconciliation cycle is skipped and retried on the
// next tick.
type FetchError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetching jobs: %v", e.Err)
	}
	return fmt.Sprintf("fetching jobs: unexpected status %d: %s", e.StatusCode, e.Body)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ReportError indicates the remote API rejected or never received a
// report. Reports are retried on the next cycle; the API's report
// endpoints are idempotent so re-sending is safe.
type ReportError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *ReportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("reporting job update: %v", e.Err)
	}
	return fmt.Sprintf("reporting job update: unexpected status %d: %s", e.StatusCode, e.Body)
}

func (e *ReportError) Unwrap() error {
	return e.Err
}
