package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/bitrise-io/go-cdnclient/hostenv"
	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-io/go-utils/v2/retryhttp"
	"github.com/hashicorp/go-retryablehttp"
)

// Call is a fully prepared request handed to a Backend.
type Call struct {
	Method        string
	URL           string
	Header        http.Header
	Body          io.ReadSeeker
	ContentLength int64
	OnProgress    ProgressFunc
}

// Backend performs the HTTP exchange for a Call.
type Backend interface {
	Send(ctx context.Context, call Call) (*http.Response, error)
	Name() string
}

// ForHost picks the backend the host can run: browser hosts get the minimal
// fallback, everything else the streaming primary backend.
func ForHost(host hostenv.Host, config Config, httpClient *retryablehttp.Client) *Client {
	if host.IsClientSide() {
		return New(NewFallback(nil), config)
	}
	if httpClient == nil {
		httpClient = NewRetryableClient(config.Logger)
	}
	return New(NewPrimary(httpClient), config)
}

// NewRetryableClient returns a retryablehttp client with retries switched off.
// A failed call is reported, never repeated.
func NewRetryableClient(logger log.Logger) *retryablehttp.Client {
	if logger == nil {
		logger = log.NewLogger()
	}
	client := retryhttp.NewClient(logger)
	client.RetryMax = 0
	client.CheckRetry = noRetry
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	return client
}

func noRetry(ctx context.Context, _ *http.Response, _ error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	return false, nil
}

type primary struct {
	client *retryablehttp.Client
}

// NewPrimary streams request bodies and reports upload progress.
func NewPrimary(client *retryablehttp.Client) Backend {
	return primary{client: client}
}

func (primary) Name() string {
	return "primary"
}

func (b primary) Send(ctx context.Context, call Call) (*http.Response, error) {
	var body interface{}
	if call.Body != nil && call.ContentLength > 0 {
		// retryablehttp probes the reader once while building the request and
		// closes it if it can, so the source is handed out without its Close.
		body = retryablehttp.ReaderFunc(func() (io.Reader, error) {
			if _, err := call.Body.Seek(0, io.SeekStart); err != nil {
				return nil, fmt.Errorf("rewind body: %w", err)
			}
			if call.OnProgress == nil {
				return struct{ io.Reader }{call.Body}, nil
			}
			return newProgressReader(call.Body, call.ContentLength, call.OnProgress), nil
		})
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, call.Method, call.URL, body)
	if err != nil {
		return nil, err
	}
	for k, values := range call.Header {
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}
	// Add Content-Length manually because retryablehttp doesn't do it for reader funcs
	if body != nil {
		req.ContentLength = call.ContentLength
	}

	return b.client.Do(req)
}

type fallback struct {
	client *http.Client
}

// NewFallback is a minimal net/http backend for restricted hosts. It buffers
// request bodies and has no progress reporting.
func NewFallback(client *http.Client) Backend {
	if client == nil {
		client = &http.Client{Timeout: 0, Transport: http.DefaultTransport}
	}
	return fallback{client: client}
}

func (fallback) Name() string {
	return "fallback"
}

func (b fallback) Send(ctx context.Context, call Call) (*http.Response, error) {
	var body io.Reader
	if call.Body != nil && call.ContentLength > 0 {
		if _, err := call.Body.Seek(0, io.SeekStart); err != nil {
			return nil, fmt.Errorf("rewind body: %w", err)
		}
		data, err := io.ReadAll(call.Body)
		if err != nil {
			return nil, fmt.Errorf("read body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, call.Method, call.URL, body)
	if err != nil {
		return nil, err
	}
	req.Header = call.Header.Clone()

	return b.client.Do(req)
}
