package tap

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/openvo/go-regtap/votable"
)

// Phase is the execution state of an asynchronous job.
type Phase string

// Job phases from the Universal Worker Service pattern.
const (
	PhasePending   Phase = "PENDING"
	PhaseQueued    Phase = "QUEUED"
	PhaseExecuting Phase = "EXECUTING"
	PhaseCompleted Phase = "COMPLETED"
	PhaseError     Phase = "ERROR"
	PhaseAborted   Phase = "ABORTED"
	PhaseHeld      Phase = "HELD"
	PhaseSuspended Phase = "SUSPENDED"
	PhaseArchived  Phase = "ARCHIVED"
	PhaseUnknown   Phase = "UNKNOWN"
)

// Terminal reports whether the job has stopped running.
func (p Phase) Terminal() bool {
	switch p {
	case PhaseCompleted, PhaseError, PhaseAborted, PhaseArchived:
		return true
	}
	return false
}

// Job tracks one asynchronous query on the service.
type Job struct {
	client *Client

	// URL is the job resource created by the service.
	URL string

	// ID is the service-assigned job identifier.
	ID string

	// Phase is the last phase observed.
	Phase Phase
}

// JobError reports a job that finished in a failure phase.
type JobError struct {
	Phase   Phase
	Message string
}

func (e *JobError) Error() string {
	var b strings.Builder
	b.WriteString("job ")
	b.WriteString(strings.ToLower(string(e.Phase)))
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

// jobSummary is the job description document returned on creation.
type jobSummary struct {
	XMLName xml.Name `xml:"job"`
	ID      string   `xml:"jobId"`
	Phase   string   `xml:"phase"`
}

// SubmitAsync creates a job on the asynchronous endpoint and starts it
// immediately. The caller owns the returned job and should release it
// with Delete when done.
func (c *Client) SubmitAsync(ctx context.Context, query string, opts ...QueryOption) (*Job, error) {
	params, err := c.queryParams(query, opts)
	if err != nil {
		return nil, err
	}
	params.Set("PHASE", "RUN")

	endpoint := c.baseURL + "/async"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(params.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, endpoint)
	}

	// Some services answer the creation POST with an empty body, so a
	// summary that fails to parse is not an error by itself.
	var summary jobSummary
	_ = xml.Unmarshal(body, &summary)

	job := &Job{
		client: c,
		ID:     summary.ID,
		Phase:  Phase(summary.Phase),
	}
	if job.Phase == "" {
		job.Phase = PhasePending
	}

	// Job creation answers with a redirect to the job resource; after
	// the HTTP client follows it, the final request URL is the job URL.
	final := strings.TrimSuffix(resp.Request.URL.String(), "/")
	switch {
	case !strings.HasSuffix(final, "/async"):
		job.URL = final
	case summary.ID != "":
		job.URL = endpoint + "/" + summary.ID
	default:
		return nil, fmt.Errorf("tap: service did not identify the job created at %s", endpoint)
	}
	if job.ID == "" {
		job.ID = job.URL[strings.LastIndex(job.URL, "/")+1:]
	}

	c.logger.Debug("tap async job created",
		slog.String("job_url", job.URL),
		slog.String("phase", string(job.Phase)))

	return job, nil
}

// Async runs a query through the asynchronous endpoint and waits for
// the result. The job is deleted afterwards regardless of outcome.
func (c *Client) Async(ctx context.Context, query string, opts ...QueryOption) (*votable.Table, error) {
	job, err := c.SubmitAsync(ctx, query, opts...)
	if err != nil {
		return nil, err
	}
	defer func() {
		// Cleanup still runs when ctx is already done.
		dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		if derr := job.Delete(dctx); derr != nil {
			c.logger.Debug("tap job cleanup failed",
				slog.String("job_url", job.URL),
				slog.String("error", derr.Error()))
		}
	}()

	if _, err := job.Wait(ctx); err != nil {
		return nil, err
	}
	return job.Result(ctx)
}

// Poll fetches the current phase from the service and updates the job.
func (j *Job) Poll(ctx context.Context) (Phase, error) {
	endpoint := j.URL + "/phase"
	status, body, err := j.client.get(ctx, endpoint)
	if err != nil {
		return PhaseUnknown, err
	}
	if status < 200 || status >= 300 {
		return PhaseUnknown, fmt.Errorf("HTTP %d: %s", status, endpoint)
	}

	j.Phase = Phase(strings.ToUpper(strings.TrimSpace(string(body))))
	if j.Phase == "" {
		j.Phase = PhaseUnknown
	}
	return j.Phase, nil
}

// errStillRunning tells the retry loop to keep polling.
var errStillRunning = errors.New("tap: job still running")

// Wait polls the job until it reaches a terminal phase. Delays between
// polls grow from the client's poll interval up to thirty times its
// length, and waiting continues until the job finishes, a poll fails,
// or ctx is done.
func (j *Job) Wait(ctx context.Context) (Phase, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = j.client.pollInterval
	bo.RandomizationFactor = 0.25
	bo.Multiplier = 1.5
	bo.MaxInterval = 30 * j.client.pollInterval
	bo.MaxElapsedTime = 0

	operation := func() error {
		phase, err := j.Poll(ctx)
		if err != nil {
			return backoff.Permanent(err)
		}
		if !phase.Terminal() {
			return errStillRunning
		}
		return nil
	}

	if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
		return j.Phase, err
	}
	return j.Phase, nil
}

// Result fetches the table produced by a finished job. Jobs that ended
// in a failure phase yield a JobError carrying the service's message.
func (j *Job) Result(ctx context.Context) (*votable.Table, error) {
	if j.Phase == PhaseError || j.Phase == PhaseAborted {
		return nil, j.failure(ctx)
	}

	endpoint := j.URL + "/results/result"
	status, body, err := j.client.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	return ParseResponse(endpoint, status, body)
}

// failure reads the job's error document and wraps it in a JobError.
func (j *Job) failure(ctx context.Context) error {
	jobErr := &JobError{Phase: j.Phase}

	status, body, err := j.client.get(ctx, j.URL+"/error")
	if err != nil || status < 200 || status >= 300 {
		return jobErr
	}

	if doc, perr := votable.ParseBytes(body); perr == nil {
		if _, terr := doc.FirstTable(); terr != nil {
			var statusErr *votable.StatusError
			if errors.As(terr, &statusErr) {
				jobErr.Message = statusErr.Message
			}
		}
	} else if msg := strings.TrimSpace(string(body)); msg != "" && len(msg) < 512 {
		// Plain-text error bodies are used as is when short.
		jobErr.Message = msg
	}
	return jobErr
}

// Delete removes the job from the service.
func (j *Job) Delete(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, j.URL, http.NoBody)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", j.client.userAgent)

	resp, err := j.client.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, j.URL)
	}
	return nil
}
