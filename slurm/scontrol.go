package slurm

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"strings"
)

// notFoundMarker is printed by scontrol when a job id is unknown, e.g.
// because the job was purged from scheduler history.
const notFoundMarker = "Invalid job id specified"

// QueryStatus queries a single job via "scontrol show job" and parses
// the key=value output. Returns ErrJobNotFound when the scheduler has
// no record of the job id.
func (c *CLI) QueryStatus(ctx context.Context, slurmJobID string) (StatusInfo, error) {
	args := []string{"show", "job", slurmJobID, "--oneliner"}

	c.log.Debug("running scontrol", "slurmJobID", slurmJobID)
	stdout, stderr, err := c.command(ctx, c.scontrol, args, "")
	if err != nil {
		if bytes.Contains(stderr, []byte(notFoundMarker)) ||
			bytes.Contains(stdout, []byte(notFoundMarker)) {
			return StatusInfo{}, ErrJobNotFound
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return StatusInfo{}, &QueryError{Reason: "scontrol timed out"}
		}
		return StatusInfo{}, &QueryError{Reason: strings.TrimSpace(string(stderr)), Err: err}
	}

	fields := parseJobInfo(stdout)
	state, ok := fields["JobState"]
	if !ok {
		return StatusInfo{}, &QueryError{Reason: "no JobState field in scontrol output"}
	}

	reason := fields["Reason"]
	if reason == "None" {
		reason = ""
	}

	return StatusInfo{State: state, Reason: reason, Fields: fields}, nil
}

// parseJobInfo parses scontrol's whitespace-separated key=value output
// into a map. Tokens without an "=" and blank lines are skipped, so
// noise lines interleaved with the record are tolerated. Later values
// win for repeated keys.
func parseJobInfo(out []byte) map[string]string {
	fields := map[string]string{}
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		for _, tok := range strings.Fields(scanner.Text()) {
			k, v, ok := strings.Cut(tok, "=")
			if !ok || k == "" {
				continue
			}
			fields[k] = v
		}
	}
	return fields
}
