package tap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// =============================================================================
// Job creation
// =============================================================================

// TestSubmitAsync_RedirectToJob tests the redirect-based job URL discovery
func TestSubmitAsync_RedirectToJob(t *testing.T) {
	var gotPhaseParam atomic.Value
	mux := http.NewServeMux()
	mux.HandleFunc("/async", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		_ = r.ParseForm()
		gotPhaseParam.Store(r.PostForm.Get("PHASE"))
		http.Redirect(w, r, "/async/job42", http.StatusSeeOther)
	})
	mux.HandleFunc("/async/job42", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<?xml version="1.0"?>
<uws:job xmlns:uws="http://www.ivoa.net/xml/UWS/v1.0">
  <uws:jobId>job42</uws:jobId>
  <uws:phase>QUEUED</uws:phase>
</uws:job>`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	c, err := New(server.URL)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	job, err := c.SubmitAsync(context.Background(), "SELECT 1 FROM rr.resource")
	if err != nil {
		t.Fatalf("SubmitAsync failed: %v", err)
	}

	if got := gotPhaseParam.Load(); got != "RUN" {
		t.Errorf("PHASE parameter = %v, want RUN", got)
	}
	if job.URL != server.URL+"/async/job42" {
		t.Errorf("job URL = %q, want %q", job.URL, server.URL+"/async/job42")
	}
	if job.ID != "job42" {
		t.Errorf("job ID = %q, want job42", job.ID)
	}
	if job.Phase != PhaseQueued {
		t.Errorf("job phase = %q, want QUEUED", job.Phase)
	}
}

// TestSubmitAsync_SummaryWithoutRedirect tests job identification from the body alone
func TestSubmitAsync_SummaryWithoutRedirect(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<?xml version="1.0"?>
<uws:job xmlns:uws="http://www.ivoa.net/xml/UWS/v1.0">
  <uws:jobId>abc-123</uws:jobId>
  <uws:phase>PENDING</uws:phase>
</uws:job>`)
	}))
	defer server.Close()

	c, err := New(server.URL)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	job, err := c.SubmitAsync(context.Background(), "SELECT 1 FROM rr.resource")
	if err != nil {
		t.Fatalf("SubmitAsync failed: %v", err)
	}
	if job.URL != server.URL+"/async/abc-123" {
		t.Errorf("job URL = %q, want constructed from job id", job.URL)
	}
	if job.Phase != PhasePending {
		t.Errorf("job phase = %q, want PENDING", job.Phase)
	}
}

// TestSubmitAsync_UnidentifiableJob tests the failure when neither redirect nor body names the job
func TestSubmitAsync_UnidentifiableJob(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c, err := New(server.URL)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if _, err := c.SubmitAsync(context.Background(), "SELECT 1 FROM rr.resource"); err == nil {
		t.Fatal("SubmitAsync should have failed without a job identity")
	}
}

// TestSubmitAsync_HTTPError tests creation failure propagation
func TestSubmitAsync_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c, err := New(server.URL)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	_, err = c.SubmitAsync(context.Background(), "SELECT 1 FROM rr.resource")
	if err == nil {
		t.Fatal("SubmitAsync should have failed")
	}
	if !strings.Contains(err.Error(), "HTTP 503") {
		t.Errorf("error = %q, want HTTP 503 mention", err)
	}
}

// =============================================================================
// Phase polling
// =============================================================================

// TestJobWait_PollsUntilCompleted tests the poll loop against a slow job
func TestJobWait_PollsUntilCompleted(t *testing.T) {
	polls := int32(0)
	mux := http.NewServeMux()
	mux.HandleFunc("/async/j1/phase", func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&polls, 1)
		switch {
		case n == 1:
			fmt.Fprint(w, "QUEUED")
		case n < 4:
			fmt.Fprint(w, "EXECUTING\n")
		default:
			fmt.Fprint(w, "COMPLETED")
		}
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	c, err := New(server.URL, WithPollInterval(time.Millisecond))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	job := &Job{client: c, URL: server.URL + "/async/j1", ID: "j1", Phase: PhasePending}

	phase, err := job.Wait(context.Background())
	if err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	if phase != PhaseCompleted {
		t.Errorf("phase = %q, want COMPLETED", phase)
	}
	if n := atomic.LoadInt32(&polls); n < 4 {
		t.Errorf("Expected at least 4 polls, got %d", n)
	}
}

// TestJobWait_FailsFastOnPollError tests that a broken phase endpoint stops the loop
func TestJobWait_FailsFastOnPollError(t *testing.T) {
	polls := int32(0)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&polls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c, err := New(server.URL, WithPollInterval(time.Millisecond))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	job := &Job{client: c, URL: server.URL + "/async/j1", Phase: PhasePending}

	if _, err := job.Wait(context.Background()); err == nil {
		t.Fatal("Wait should have failed")
	}
	if n := atomic.LoadInt32(&polls); n != 1 {
		t.Errorf("Expected a single poll before giving up, got %d", n)
	}
}

// TestJobWait_ContextCancelled tests that cancellation interrupts the wait
func TestJobWait_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "EXECUTING")
	}))
	defer server.Close()

	c, err := New(server.URL, WithPollInterval(time.Millisecond))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	job := &Job{client: c, URL: server.URL + "/async/j1", Phase: PhasePending}

	ctx, cancel := context.WithTimeout(context.Background(), 25*time.Millisecond)
	defer cancel()

	if _, err := job.Wait(ctx); err == nil {
		t.Fatal("Wait should have failed once the context expired")
	}
}

// TestPhaseTerminal tests the terminal phase classification
func TestPhaseTerminal(t *testing.T) {
	terminal := []Phase{PhaseCompleted, PhaseError, PhaseAborted, PhaseArchived}
	for _, p := range terminal {
		if !p.Terminal() {
			t.Errorf("%s should be terminal", p)
		}
	}

	running := []Phase{PhasePending, PhaseQueued, PhaseExecuting, PhaseHeld, PhaseSuspended, PhaseUnknown}
	for _, p := range running {
		if p.Terminal() {
			t.Errorf("%s should not be terminal", p)
		}
	}
}

// =============================================================================
// Results and cleanup
// =============================================================================

// TestJobResult_Completed tests result retrieval from a finished job
func TestJobResult_Completed(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/async/j1/results/result", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, resultDoc)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	c, err := New(server.URL)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	job := &Job{client: c, URL: server.URL + "/async/j1", Phase: PhaseCompleted}

	table, err := job.Result(context.Background())
	if err != nil {
		t.Fatalf("Result failed: %v", err)
	}
	if table.Len() != 2 {
		t.Errorf("Expected 2 rows, got %d", table.Len())
	}
}

// TestJobResult_ErrorPhase tests that failed jobs surface the service's message
func TestJobResult_ErrorPhase(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/async/j1/error", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, errorDoc)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	c, err := New(server.URL)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	job := &Job{client: c, URL: server.URL + "/async/j1", Phase: PhaseError}

	_, err = job.Result(context.Background())
	if err == nil {
		t.Fatal("Result should have failed for an errored job")
	}

	var jobErr *JobError
	if !errors.As(err, &jobErr) {
		t.Fatalf("error should be a JobError, got %T: %v", err, err)
	}
	if jobErr.Phase != PhaseError {
		t.Errorf("JobError phase = %q, want ERROR", jobErr.Phase)
	}
	if !strings.Contains(jobErr.Message, "ADQL syntax error") {
		t.Errorf("JobError message = %q, want the service message", jobErr.Message)
	}
}

// TestJobDelete tests job removal
func TestJobDelete(t *testing.T) {
	deleted := int32(0)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			atomic.AddInt32(&deleted, 1)
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c, err := New(server.URL)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	job := &Job{client: c, URL: server.URL + "/async/j1"}

	if err := job.Delete(context.Background()); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if atomic.LoadInt32(&deleted) != 1 {
		t.Error("DELETE request was not sent")
	}
}

// TestAsync_FullLifecycle tests submit, poll, fetch, and cleanup end to end
func TestAsync_FullLifecycle(t *testing.T) {
	polls := int32(0)
	deleted := int32(0)

	mux := http.NewServeMux()
	mux.HandleFunc("/async", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/async/job7", http.StatusSeeOther)
	})
	mux.HandleFunc("/async/job7", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			atomic.AddInt32(&deleted, 1)
			w.WriteHeader(http.StatusOK)
			return
		}
		fmt.Fprint(w, `<?xml version="1.0"?>
<uws:job xmlns:uws="http://www.ivoa.net/xml/UWS/v1.0">
  <uws:jobId>job7</uws:jobId>
  <uws:phase>QUEUED</uws:phase>
</uws:job>`)
	})
	mux.HandleFunc("/async/job7/phase", func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&polls, 1) < 3 {
			fmt.Fprint(w, "EXECUTING")
			return
		}
		fmt.Fprint(w, "COMPLETED")
	})
	mux.HandleFunc("/async/job7/results/result", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, resultDoc)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	c, err := New(server.URL, WithPollInterval(time.Millisecond))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	table, err := c.Async(context.Background(), "SELECT TOP 2 ivoid, res_title FROM rr.resource")
	if err != nil {
		t.Fatalf("Async failed: %v", err)
	}
	if table.Len() != 2 {
		t.Errorf("Expected 2 rows, got %d", table.Len())
	}
	if atomic.LoadInt32(&polls) < 3 {
		t.Errorf("Expected at least 3 polls, got %d", polls)
	}
	if atomic.LoadInt32(&deleted) != 1 {
		t.Error("job should have been deleted after completion")
	}
}
