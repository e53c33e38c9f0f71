package jobbergate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/omnivector/jobbergate-agent/config"
	"github.com/omnivector/jobbergate-agent/logger"
	"github.com/omnivector/jobbergate-agent/util"
)

// API is the remote job API surface consumed by the reconcilers.
// All report operations are idempotent on the API side: repeating a
// report for the same job submission id has no further effect.
type API interface {
	ListPending(ctx context.Context, pageToken string) (*PendingJobList, error)
	ListActive(ctx context.Context, pageToken string) (*ActiveJobList, error)
	ReportSubmitted(ctx context.Context, id int64, slurmJobID string) error
	ReportRejected(ctx context.Context, id int64, reason string) error
	ReportStatus(ctx context.Context, id int64, status Status, reason string) error
}

// Client is an HTTP client for the remote job API.
type Client struct {
	address  string
	token    string
	pageSize int
	client   *http.Client
	retrier  *util.Retrier
	log      *logger.Logger
}

// NewClient returns a new API client. "address" is the address of the
// remote job API, with or without a scheme.
func NewClient(conf config.API, log *logger.Logger) (*Client, error) {
	address := strings.TrimSuffix(conf.Address, "/")
	if !strings.Contains(address, "://") {
		address = "http://" + address
	}
	if !strings.HasPrefix(address, "http://") && !strings.HasPrefix(address, "https://") {
		return nil, fmt.Errorf("invalid API address %q; expected http:// or https://", conf.Address)
	}

	token := conf.Token
	if conf.TokenFile != "" {
		b, err := os.ReadFile(conf.TokenFile)
		if err != nil {
			return nil, fmt.Errorf("reading token file: %v", err)
		}
		token = strings.TrimSpace(string(b))
	}

	retrier := util.NewRetrier()
	if conf.MaxRetries > 0 {
		retrier.MaxTries = conf.MaxRetries
	}
	retrier.ShouldRetry = retriable
	retrier.Notify = func(err error, d time.Duration) {
		log.Debug("retrying API request", "error", err, "delay", d)
	}

	timeout := time.Duration(conf.Timeout)
	if timeout <= 0 {
		timeout = time.Second * 30
	}

	return &Client{
		address:  address,
		token:    token,
		pageSize: conf.PageSize,
		client:   &http.Client{Timeout: timeout},
		retrier:  retrier,
		log:      log,
	}, nil
}

// retriable reports whether a request failure is worth retrying:
// network errors and server-side (5xx) responses are, anything the API
// rejected outright (4xx) is not.
func retriable(err error) bool {
	switch e := err.(type) {
	case *FetchError:
		return e.Err != nil || e.StatusCode >= 500
	case *ReportError:
		return e.Err != nil || e.StatusCode >= 500
	}
	return true
}

// ListPending returns one page of GET /agent/jobs/pending.
func (c *Client) ListPending(ctx context.Context, pageToken string) (*PendingJobList, error) {
	resp := &PendingJobList{}
	err := c.list(ctx, "/agent/jobs/pending", pageToken, resp)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// ListActive returns one page of GET /agent/jobs/active.
func (c *Client) ListActive(ctx context.Context, pageToken string) (*ActiveJobList, error) {
	resp := &ActiveJobList{}
	err := c.list(ctx, "/agent/jobs/active", pageToken, resp)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// ReportSubmitted POSTs the scheduler job id assigned to a submission.
func (c *Client) ReportSubmitted(ctx context.Context, id int64, slurmJobID string) error {
	return c.report(ctx, id, "submitted", map[string]string{
		"slurm_job_id": slurmJobID,
	})
}

// ReportRejected POSTs a rejection with a human-readable reason.
func (c *Client) ReportRejected(ctx context.Context, id int64, reason string) error {
	return c.report(ctx, id, "rejected", map[string]string{
		"report_message": reason,
	})
}

// ReportStatus POSTs a job status update.
func (c *Client) ReportStatus(ctx context.Context, id int64, status Status, reason string) error {
	return c.report(ctx, id, "status", map[string]string{
		"status":         string(status),
		"report_message": reason,
	})
}

func (c *Client) list(ctx context.Context, path, pageToken string, out interface{}) error {
	v := url.Values{}
	if c.pageSize > 0 {
		v.Add("page_size", strconv.Itoa(c.pageSize))
	}
	if pageToken != "" {
		v.Add("page_token", pageToken)
	}
	u := c.address + path
	if q := v.Encode(); q != "" {
		u += "?" + q
	}

	return c.retrier.Retry(ctx, func() error {
		body, err := c.do(ctx, "GET", u, nil)
		if err != nil {
			return asFetchError(err)
		}
		if err := json.Unmarshal(body, out); err != nil {
			return &FetchError{Err: fmt.Errorf("parsing %s response: %v", path, err)}
		}
		return nil
	})
}

func (c *Client) report(ctx context.Context, id int64, kind string, payload map[string]string) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return &ReportError{Err: err}
	}
	u := fmt.Sprintf("%s/agent/jobs/%d/%s", c.address, id, kind)

	return c.retrier.Retry(ctx, func() error {
		_, err := c.do(ctx, "POST", u, b)
		if err != nil {
			return asReportError(err)
		}
		return nil
	})
}

// httpError carries the raw outcome of a failed request before it is
// classified as a fetch or report error.
type httpError struct {
	statusCode int
	body       string
	err        error
}

func (e *httpError) Error() string {
	if e.err != nil {
		return e.err.Error()
	}
	return fmt.Sprintf("[STATUS CODE - %d]\t%s", e.statusCode, e.body)
}

func asFetchError(err error) error {
	if he, ok := err.(*httpError); ok {
		return &FetchError{StatusCode: he.statusCode, Body: he.body, Err: he.err}
	}
	return &FetchError{Err: err}
}

func asReportError(err error) error {
	if he, ok := err.(*httpError); ok {
		return &ReportError{StatusCode: he.statusCode, Body: he.body, Err: he.err}
	}
	return &ReportError{Err: err}
}

// do sends one request and reads the response body, returning an
// *httpError for transport failures and non-2xx responses.
func (c *Client) do(ctx context.Context, method, u string, payload []byte) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, &httpError{err: err}
	}
	if payload != nil {
		req.Header.Add("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Add("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &httpError{err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &httpError{err: err}
	}
	if (resp.StatusCode / 100) != 2 {
		return nil, &httpError{statusCode: resp.StatusCode, body: string(body)}
	}
	return body, nil
}
