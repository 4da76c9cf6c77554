// Package backend talks to the hosted backend-as-a-service that owns all
// attendee, company and statistics data: PostgREST-style RPC endpoints, edge
// functions and the password-grant auth API.
//
// Credentials are explicit. Calls made on behalf of a signed-in admin take the
// bearer token as an argument; nothing is kept between calls.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fairdesk/fairdesk/pkg/logger"
	"github.com/fairdesk/fairdesk/pkg/metrics"
)

const defaultTimeout = 10 * time.Second

// HTTPDoer is the minimal interface needed from an HTTP client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config configures a Client.
type Config struct {
	BaseURL    string
	AnonKey    string
	ServiceKey string
	Lang       string
	Timeout    time.Duration
	HTTPClient HTTPDoer
}

// Client is a stateless backend client, safe for concurrent use.
type Client struct {
	baseURL    string
	anonKey    string
	serviceKey string
	lang       string
	client     HTTPDoer
	log        logger.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for debug tracing of backend calls.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// New returns a Client for cfg.
func New(cfg Config, opts ...Option) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Lang == "" {
		cfg.Lang = "tr"
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		anonKey:    cfg.AnonKey,
		serviceKey: cfg.ServiceKey,
		lang:       cfg.Lang,
		client:     httpClient,
		log:        logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// call describes one round trip.
type call struct {
	op     string
	method string
	path   string
	apiKey string
	bearer string
	body   any
	prefer string
}

// response is a raw 2xx-or-not answer.
type response struct {
	status int
	body   []byte
}

func (r response) ok() bool {
	return r.status >= 200 && r.status < 300
}

// do executes c and returns the raw response. Only transport failures are
// returned as errors; status handling is left to the caller.
func (cl *Client) do(ctx context.Context, c call) (response, error) {
	start := time.Now()
	resp, err := cl.send(ctx, c)
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0

	result := "ok"
	switch {
	case err != nil:
		result = string(CategoryTransport)
	case !resp.ok():
		result = fmt.Sprintf("%d", resp.status)
	}
	metrics.RecordBackendCall(c.op, result, elapsed)
	cl.log.Debug(ctx, "backend call",
		logger.String("op", c.op),
		logger.String("path", c.path),
		logger.String("result", result),
		logger.Float64("latency_ms", elapsed),
	)
	return resp, err
}

func (cl *Client) send(ctx context.Context, c call) (response, error) {
	var body io.Reader
	if c.body != nil {
		payload, err := json.Marshal(c.body)
		if err != nil {
			return response{}, &Error{Op: c.op, Category: CategoryDecode, Message: "encode request", Err: err}
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, c.method, cl.baseURL+c.path, body)
	if err != nil {
		return response{}, &Error{Op: c.op, Category: CategoryTransport, Message: "build request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
	}
	if c.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+c.bearer)
	}
	if c.prefer != "" {
		req.Header.Set("Prefer", c.prefer)
	}

	resp, err := cl.client.Do(req)
	if err != nil {
		msg := "request failed"
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			msg = "request timeout"
		}
		return response{}, &Error{Op: c.op, Category: CategoryTransport, Message: msg, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return response{}, &Error{Op: c.op, Category: CategoryTransport, Status: resp.StatusCode, Message: "read response", Err: err}
	}
	return response{status: resp.StatusCode, body: raw}, nil
}

// rpc posts params to /rest/v1/rpc/<fn> and returns the raw 2xx body.
func (cl *Client) rpc(ctx context.Context, op, fn, bearer string, params any) (json.RawMessage, error) {
	if params == nil {
		params = struct{}{}
	}
	c := call{op: op, method: http.MethodPost, path: "/rest/v1/rpc/" + fn, apiKey: cl.anonKey, bearer: bearer, body: params}
	resp, err := cl.do(ctx, c)
	if err != nil {
		return nil, err
	}
	if !resp.ok() {
		return nil, statusError(op, resp.status, resp.body)
	}
	return resp.body, nil
}

// function posts payload to the edge function /functions/v1/<fn>.
func (cl *Client) function(ctx context.Context, op, fn, bearer string, payload any) (response, error) {
	c := call{op: op, method: http.MethodPost, path: "/functions/v1/" + fn, apiKey: cl.anonKey, bearer: bearer, body: payload}
	return cl.do(ctx, c)
}

func decode(op string, raw []byte, v any) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return &Error{Op: op, Category: CategoryDecode, Message: "malformed response body", Err: err}
	}
	return nil
}

// upstreamMessage pulls a human-readable message out of an error body.
func upstreamMessage(body []byte) string {
	var env struct {
		Message          string `json:"message"`
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
		Msg              string `json:"msg"`
	}
	if json.Unmarshal(body, &env) == nil {
		for _, s := range []string{env.ErrorDescription, env.Message, env.Msg, env.Error} {
			if s != "" {
				return s
			}
		}
	}
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}

func isEmptyBody(raw []byte) bool {
	s := bytes.TrimSpace(raw)
	return len(s) == 0 || bytes.Equal(s, []byte("null"))
}
