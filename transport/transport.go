// Package transport executes HTTP calls against the storage service (and raw
// calls against presigned URLs) and normalizes every outcome into an
// envelope.Result.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"strconv"
	"strings"

	"github.com/bitrise-io/go-cdnclient/envelope"
	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/google/uuid"
)

// RequestIDHeader carries a per-call id on service requests.
const RequestIDHeader = "X-Request-Id"

// ProgressFunc receives the upload progress in percent, 0 to 100.
type ProgressFunc func(percent int)

// Request describes a single call.
type Request struct {
	Method string
	// URL is either absolute or relative to the configured base URL.
	URL     string
	Headers map[string]string
	// JSON, when set, is marshalled and sent as the request body.
	JSON interface{}
	// Body is sent as is when JSON is nil. ContentLength must match its size.
	Body          io.ReadSeeker
	ContentLength int64
	// OnProgress is only honoured by backends that can observe the request body.
	OnProgress ProgressFunc
	// Raw requests go out without the service default headers; presigned URLs
	// carry their own authorization.
	Raw bool
}

// Transport ...
type Transport interface {
	Execute(ctx context.Context, req Request) envelope.Result
}

// Config ...
type Config struct {
	BaseURL string
	// Headers are sent on every non-raw request; request headers win on conflict.
	Headers map[string]string
	Logger  log.Logger
}

// Client is the Transport implementation shared by both backends.
type Client struct {
	backend  Backend
	baseURL  string
	defaults map[string]string
	logger   log.Logger
}

// New ...
func New(backend Backend, config Config) *Client {
	logger := config.Logger
	if logger == nil {
		logger = log.NewLogger()
	}
	defaults := make(map[string]string, len(config.Headers))
	for k, v := range config.Headers {
		defaults[k] = v
	}

	return &Client{
		backend:  backend,
		baseURL:  strings.TrimRight(config.BaseURL, "/"),
		defaults: defaults,
		logger:   logger,
	}
}

// Backend returns the name of the backend serving this client.
func (c *Client) Backend() string {
	return c.backend.Name()
}

// Execute sends the request and never returns a Go error: every outcome,
// including local request building problems, is an envelope.Result.
func (c *Client) Execute(ctx context.Context, req Request) envelope.Result {
	call, err := c.prepare(req)
	if err != nil {
		c.logger.Errorf("Failed to build %s request: %s", req.Method, err)
		return envelope.Fail("build request: %s", err)
	}

	c.logger.Debugf("%s %s (backend: %s)", call.Method, redactQuery(call.URL), c.backend.Name())

	resp, err := c.backend.Send(ctx, call)
	if err != nil {
		c.logger.Debugf("%s %s failed: %s", call.Method, redactQuery(call.URL), err)
		return ConnectionFailure(err)
	}
	defer func(body io.ReadCloser) {
		err := body.Close()
		if err != nil {
			c.logger.Printf(err.Error())
		}
	}(resp.Body)

	if !req.Raw {
		dump, err := httputil.DumpResponse(resp, true)
		if err != nil {
			c.logger.Warnf("error while dumping response: %s", err)
		}
		c.logger.Debugf("Response dump: %s", string(dump))
	}

	return Normalize(resp)
}

func (c *Client) prepare(req Request) (Call, error) {
	if req.Method == "" {
		return Call{}, fmt.Errorf("method is empty")
	}

	call := Call{
		Method:        req.Method,
		URL:           c.resolveURL(req.URL),
		Header:        http.Header{},
		Body:          req.Body,
		ContentLength: req.ContentLength,
		OnProgress:    req.OnProgress,
	}

	if req.JSON != nil {
		body, err := json.Marshal(req.JSON)
		if err != nil {
			return Call{}, fmt.Errorf("marshal body: %w", err)
		}
		call.Body = bytes.NewReader(body)
		call.ContentLength = int64(len(body))
	}

	if !req.Raw {
		for k, v := range c.defaults {
			call.Header.Set(k, v)
		}
		call.Header.Set(RequestIDHeader, uuid.NewString())
	}
	for k, v := range req.Headers {
		call.Header.Set(k, v)
	}
	if call.Body != nil {
		call.Header.Set("Content-Length", strconv.FormatInt(call.ContentLength, 10))
	}

	return call, nil
}

func (c *Client) resolveURL(u string) string {
	if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		return u
	}
	return c.baseURL + "/" + strings.TrimLeft(u, "/")
}

// redactQuery strips the query from presigned URLs before they are logged.
func redactQuery(u string) string {
	if i := strings.Index(u, "?"); i >= 0 && strings.Contains(u[i:], "Signature") {
		return u[:i] + "?<redacted>"
	}
	return u
}
