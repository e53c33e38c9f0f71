package jobbergate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-test/deep"
	"github.com/omnivector/jobbergate-agent/config"
	"github.com/omnivector/jobbergate-agent/logger"
)

func testClient(t *testing.T, addr string) *Client {
	t.Helper()
	log := logger.New("test")
	log.Discard()
	c, err := NewClient(config.API{
		Address:    addr,
		Token:      "tok",
		PageSize:   2,
		Timeout:    config.Duration(time.Second * 5),
		MaxRetries: 3,
	}, log)
	if err != nil {
		t.Fatal(err)
	}
	// Keep test retries fast.
	c.retrier.InitialInterval = time.Millisecond
	c.retrier.MaxInterval = time.Millisecond * 5
	return c
}

func TestListPendingPaged(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/agent/jobs/pending" {
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("unexpected auth header: %q", got)
		}
		if got := r.URL.Query().Get("page_size"); got != "2" {
			t.Errorf("unexpected page_size: %q", got)
		}
		page := PendingJobList{
			Jobs: []PendingJob{{ID: 1}, {ID: 2}},
		}
		if r.URL.Query().Get("page_token") == "" {
			page.NextPageToken = "next"
		} else {
			page.Jobs = []PendingJob{{ID: 3}}
		}
		json.NewEncoder(w).Encode(page)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)

	var ids []int64
	pageToken := ""
	for {
		page, err := c.ListPending(context.Background(), pageToken)
		if err != nil {
			t.Fatal(err)
		}
		for _, j := range page.Jobs {
			ids = append(ids, j.ID)
		}
		pageToken = page.NextPageToken
		if pageToken == "" {
			break
		}
	}
	if diff := deep.Equal(ids, []int64{1, 2, 3}); diff != nil {
		t.Fatal(diff)
	}
}

func TestListFetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	_, err := c.ListActive(context.Background(), "")
	if err == nil {
		t.Fatal("expected error")
	}
	var ferr *FetchError
	if !errors.As(err, &ferr) {
		t.Fatalf("expected *FetchError, got %T", err)
	}
	if ferr.StatusCode != http.StatusForbidden {
		t.Errorf("unexpected status code: %d", ferr.StatusCode)
	}
}

func TestReportRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/agent/jobs/42/submitted" {
			http.NotFound(w, r)
			return
		}
		if atomic.AddInt32(&calls, 1) < 3 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["slurm_job_id"] != "1001" {
			t.Errorf("unexpected payload: %v", body)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	err := c.ReportSubmitted(context.Background(), 42, "1001")
	if err != nil {
		t.Fatal(err)
	}
	if atomic.LoadInt32(&calls) != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestReportDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	err := c.ReportRejected(context.Background(), 7, "no nodes")
	if err == nil {
		t.Fatal("expected error")
	}
	var rerr *ReportError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected *ReportError, got %T", err)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("expected 1 call for a 4xx, got %d", calls)
	}
}

func TestNewClientAddressNormalization(t *testing.T) {
	log := logger.New("test")
	log.Discard()

	c, err := NewClient(config.API{Address: "api.example.org"}, log)
	if err != nil {
		t.Fatal(err)
	}
	if c.address != "http://api.example.org" {
		t.Errorf("unexpected address: %s", c.address)
	}

	if _, err := NewClient(config.API{Address: "ftp://api.example.org"}, log); err == nil {
		t.Error("expected an error for a non-http scheme")
	}
}
