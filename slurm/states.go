package slurm

import (
	"strings"

	"github.com/omnivector/jobbergate-agent/jobbergate"
)

// stateTable maps raw scheduler states to job statuses reported to the
// remote API.
var stateTable = map[string]jobbergate.Status{
	"PENDING":       jobbergate.StatusSubmitted,
	"CONFIGURING":   jobbergate.StatusSubmitted,
	"RUNNING":       jobbergate.StatusRunning,
	"COMPLETING":    jobbergate.StatusRunning,
	"COMPLETED":     jobbergate.StatusCompleted,
	"FAILED":        jobbergate.StatusFailed,
	"NODE_FAIL":     jobbergate.StatusFailed,
	"OUT_OF_MEMORY": jobbergate.StatusFailed,
	"TIMEOUT":       jobbergate.StatusFailed,
	"CANCELLED":     jobbergate.StatusCancelled,
}

// MapState maps a raw scheduler state string to the job status reported
// to the remote API. States missing from the table map to the
// non-terminal catch-all StatusPending with ok=false, so new scheduler
// states don't break the reconciler; the job stays active and is
// queried again next cycle.
func MapState(raw string) (status jobbergate.Status, ok bool) {
	key := strings.ToUpper(strings.TrimSpace(raw))
	if s, found := stateTable[key]; found {
		return s, true
	}
	// Cancelled jobs are sometimes reported as "CANCELLED by <uid>".
	if strings.HasPrefix(key, "CANCELLED") {
		return jobbergate.StatusCancelled, true
	}
	return jobbergate.StatusPending, false
}

// StateReason normalizes the reason string reported alongside a state
// transition. Jobs killed on their time limit often carry no reason.
func StateReason(rawState, reason string) string {
	if reason == "" && strings.EqualFold(strings.TrimSpace(rawState), "TIMEOUT") {
		return "timeout"
	}
	return reason
}
