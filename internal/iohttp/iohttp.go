// Package iohttp is the HTTP transport shared by all data source adapters.
// It sets a descriptive User-Agent, applies per-call timeouts and retries
// transient failures with exponential backoff.
package iohttp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gnames/factbook/pkg/config"
	"github.com/gnames/factbook/pkg/pipeline"
)

// maxBody limits the size of a response body.
const maxBody = 64 << 20

// Recorder receives the outcome of every HTTP call.
type Recorder interface {
	ObserveRequest(src pipeline.SourceID, outcome string, dur time.Duration)
}

// Client performs GET requests to data providers.
type Client struct {
	hc         *http.Client
	userAgent  string
	timeout    time.Duration
	maxRetries int
	interval   time.Duration
	source     pipeline.SourceID
	rec        Recorder
}

// Option configures a Client.
type Option func(*Client)

// OptHTTPClient replaces the underlying http.Client.
func OptHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.hc = hc
	}
}

// OptRecorder sets a receiver of request outcomes.
func OptRecorder(r Recorder) Option {
	return func(c *Client) {
		c.rec = r
	}
}

// OptRetryInterval sets the initial interval between retries.
func OptRetryInterval(d time.Duration) Option {
	return func(c *Client) {
		c.interval = d
	}
}

// New creates a Client from the HTTP section of the configuration.
func New(cfg config.HTTPConfig, opts ...Option) *Client {
	res := &Client{
		hc:         &http.Client{},
		userAgent:  cfg.UserAgent,
		timeout:    time.Duration(cfg.TimeoutSec) * time.Second,
		maxRetries: cfg.MaxRetries,
		interval:   500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(res)
	}
	return res
}

// For returns a copy of the client that labels its calls with a
// data source.
func (c *Client) For(src pipeline.SourceID) *Client {
	res := *c
	res.source = src
	return &res
}

type request struct {
	accept  string
	timeout time.Duration
}

// ReqOption configures one request.
type ReqOption func(*request)

// WithAccept sets the Accept header.
func WithAccept(s string) ReqOption {
	return func(r *request) {
		r.accept = s
	}
}

// WithTimeout overrides the timeout of one attempt.
func WithTimeout(d time.Duration) ReqOption {
	return func(r *request) {
		r.timeout = d
	}
}

// Get fetches url and returns the response body.
//
// Network errors, timeouts, 429 and 5xx responses are retried. Errors
// wrap pipeline.ErrTransport, 404 responses wrap pipeline.ErrNotFound,
// other unexpected statuses wrap pipeline.ErrSchema.
func (c *Client) Get(
	ctx context.Context,
	url string,
	opts ...ReqOption,
) ([]byte, error) {
	req := request{accept: "application/json", timeout: c.timeout}
	for _, opt := range opts {
		opt(&req)
	}

	var res []byte
	attempt := 0
	op := func() error {
		attempt++
		var err error
		res, err = c.do(ctx, url, req)
		if err == nil {
			return nil
		}
		if !retriable(err) {
			return backoff.Permanent(err)
		}
		slog.Debug("Retrying request",
			"source", c.source, "url", url, "attempt", attempt, "error", err)
		return err
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = c.interval
	eb.MaxElapsedTime = 0
	var b backoff.BackOff = backoff.WithMaxRetries(eb, uint64(c.maxRetries))
	b = backoff.WithContext(b, ctx)

	if err := backoff.Retry(op, b); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *Client) do(
	ctx context.Context,
	url string,
	r request,
) (res []byte, err error) {
	start := time.Now()
	defer func() {
		c.observe(err, time.Since(start))
	}()

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w: %w", url, pipeline.ErrSchema, err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if r.accept != "" {
		req.Header.Set("Accept", r.accept)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w: %w", url, pipeline.ErrTransport, err)
	}
	defer resp.Body.Close()

	res, err = io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w: %w", url, pipeline.ErrTransport, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{URL: url, Code: resp.StatusCode}
	}
	return res, nil
}

func (c *Client) observe(err error, dur time.Duration) {
	if c.rec == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = string(pipeline.Classify(err))
	}
	c.rec.ObserveRequest(c.source, outcome, dur)
}

// StatusError is a response with a status other than 200.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: status %d", e.URL, e.Code)
}

// Unwrap maps the status to the failure taxonomy.
func (e *StatusError) Unwrap() error {
	switch {
	case e.Code == http.StatusNotFound:
		return pipeline.ErrNotFound
	case isTransient(e.Code):
		return pipeline.ErrTransport
	default:
		return pipeline.ErrSchema
	}
}

func isTransient(code int) bool {
	return code == http.StatusTooManyRequests ||
		code == http.StatusRequestTimeout ||
		code >= 500
}

func retriable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return isTransient(se.Code)
	}
	return errors.Is(err, pipeline.ErrTransport)
}
