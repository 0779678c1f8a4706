package poller

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"syscall"
	"time"
)

// Outcome classifies a single fetch attempt.
type Outcome string

const (
	// OutcomeOK is a 2xx response whose body was read in full.
	OutcomeOK Outcome = "ok"

	// OutcomeHTTPError is any response outside 200-299.
	OutcomeHTTPError Outcome = "http_error"

	// OutcomeConnection is a refused, unreachable or unresolvable target.
	OutcomeConnection Outcome = "connection"

	// OutcomeTimeout is a request that did not complete within the timeout.
	OutcomeTimeout Outcome = "timeout"

	// OutcomeError is any other failure.
	OutcomeError Outcome = "error"
)

// Outcomes lists every Outcome.
var Outcomes = []Outcome{OutcomeOK, OutcomeHTTPError, OutcomeConnection, OutcomeTimeout, OutcomeError}

// Result holds the outcome of one fetch of status.json.
type Result struct {
	// URL is the full request URL, including the cache-busting parameter.
	URL string

	// Outcome classifies the attempt.
	Outcome Outcome

	// StatusCode is the HTTP status code, or zero if no response was received.
	StatusCode int

	// Body is the response body. Only set for OutcomeOK.
	Body []byte

	// Latency is the time taken by the request.
	Latency time.Duration

	// CheckedAt is when the attempt finished.
	CheckedAt time.Time

	// Error is the transport error, if any.
	Error error
}

// Handler receives every fetch result. It is called synchronously from the
// poll loop, so the next fetch does not start until it returns. The error it
// returns is passed back by [Poller.PollOnce]; [Poller.Run] discards it.
type Handler func(Result) error

// Poller fetches status.json from a single endpoint on a fixed interval.
type Poller struct {
	endpoint string
	interval time.Duration
	timeout  time.Duration
	client   *Client
	handle   Handler
	logger   *slog.Logger
	now      func() time.Time
}

// New creates a [Poller].
//
// Parameters:
//   - endpoint: Base URL of the PiAware web interface, e.g. http://piaware:8080
//   - interval: Time slept between the end of one fetch and the start of the next
//   - timeout: Per-request timeout
//   - handle: Receives every result; may be nil
//   - logger: Logger for fetch outcomes
func New(endpoint string, interval, timeout time.Duration, handle Handler, logger *slog.Logger) *Poller {
	if handle == nil {
		handle = func(Result) error { return nil }
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		endpoint: endpoint,
		interval: interval,
		timeout:  timeout,
		client:   NewClient(),
		handle:   handle,
		logger:   logger,
		now:      time.Now,
	}
}

// Run polls immediately, then sleeps for the interval after each attempt
// and polls again. It blocks until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) {
	defer p.client.Close()

	for {
		if ctx.Err() != nil {
			return
		}

		_, _ = p.PollOnce(ctx)

		timer := time.NewTimer(p.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// PollOnce performs one fetch, logs its outcome and passes the [Result] to
// the handler. It returns the result and the handler's error.
//
// A fetch aborted because ctx was cancelled is not logged or handed to the
// handler; PollOnce returns ctx's error instead.
func (p *Poller) PollOnce(ctx context.Context) (Result, error) {
	result := p.fetch(ctx)
	if result.Error != nil && errors.Is(ctx.Err(), context.Canceled) {
		p.logger.Debug("poll cancelled", "url", result.URL)
		return result, ctx.Err()
	}
	p.log(result)
	return result, p.handle(result)
}

func (p *Poller) fetch(ctx context.Context) Result {
	target, err := StatusURL(p.endpoint, p.now())
	if err != nil {
		return Result{
			URL:       p.endpoint,
			Outcome:   OutcomeError,
			CheckedAt: p.now(),
			Error:     err,
		}
	}

	resp := p.client.Fetch(ctx, target, p.timeout)
	result := Result{
		URL:        target,
		StatusCode: resp.StatusCode,
		Latency:    resp.Latency,
		CheckedAt:  p.now(),
		Error:      resp.Error,
	}

	switch {
	case resp.Error != nil:
		result.Outcome = classify(resp.Error)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		result.Outcome = OutcomeHTTPError
	default:
		result.Outcome = OutcomeOK
		result.Body = resp.Body
	}
	return result
}

func (p *Poller) log(r Result) {
	switch r.Outcome {
	case OutcomeOK:
		p.logger.Info("fetched status.json",
			"url", r.URL,
			"status_code", r.StatusCode,
			"latency_ms", r.Latency.Milliseconds(),
		)
	case OutcomeHTTPError:
		p.logger.Error("status.json returned non-success",
			"url", r.URL,
			"status_code", r.StatusCode,
			"latency_ms", r.Latency.Milliseconds(),
		)
	case OutcomeConnection:
		p.logger.Error("could not connect to piaware", "url", p.endpoint, "error", r.Error)
	case OutcomeTimeout:
		p.logger.Error("timeout requesting piaware status", "url", p.endpoint, "error", r.Error)
	default:
		p.logger.Error("error reading piaware status.json", "url", r.URL, "error", r.Error)
	}
}

// classify maps a transport error to an [Outcome].
func classify(err error) Outcome {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return OutcomeTimeout
	}

	var (
		opErr  *net.OpError
		dnsErr *net.DNSError
	)
	if errors.As(err, &dnsErr) || errors.As(err, &opErr) ||
		errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return OutcomeConnection
	}

	return OutcomeError
}
