// Package client fetches cases from the REST API for the console.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/valyala/fasthttp"

	"github.com/credit-eval/cet-console/internal/model"
)

var (
	// ErrFetch covers transport failures, non-2xx responses and undecodable bodies.
	ErrFetch = errors.New("fetch failed")
	// ErrNotFound is returned for 404 responses; such errors also match ErrFetch.
	ErrNotFound = errors.New("case not found")
)

// Client is a REST client for the case API.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *fasthttp.Client
}

// New returns a client for baseURL. A non-positive timeout defaults to 10s.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		http: &fasthttp.Client{
			Name:                "cet-console",
			MaxIdleConnDuration: 30 * time.Second,
		},
	}
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListCases fetches every case.
func (c *Client) ListCases(ctx context.Context) ([]model.Case, error) {
	var cases []model.Case
	if err := c.getJSON(ctx, "/api/cases", &cases); err != nil {
		return nil, err
	}
	if cases == nil {
		cases = []model.Case{}
	}
	return cases, nil
}

// GetCase fetches one case by id.
func (c *Client) GetCase(ctx context.Context, id string) (model.Case, error) {
	var kase model.Case
	if err := c.getJSON(ctx, "/api/cases/"+url.PathEscape(id), &kase); err != nil {
		return model.Case{}, err
	}
	return kase, nil
}

type fetchError struct {
	status int
	detail string
}

func (e *fetchError) Error() string {
	if e.detail != "" {
		return fmt.Sprintf("%s: HTTP %d: %s", ErrFetch, e.status, e.detail)
	}
	return fmt.Sprintf("%s: HTTP %d", ErrFetch, e.status)
}

func (e *fetchError) Is(target error) bool {
	return target == ErrFetch || (target == ErrNotFound && e.status == fasthttp.StatusNotFound)
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	req.SetRequestURI(c.baseURL + path)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	done := make(chan error, 1)
	go func() {
		done <- c.http.DoDeadline(req, resp, deadline)
	}()

	select {
	case <-ctx.Done():
		// The request still owns req and resp; release them once it returns.
		go func() {
			<-done
			fasthttp.ReleaseRequest(req)
			fasthttp.ReleaseResponse(resp)
		}()
		return fmt.Errorf("%w: %w", ErrFetch, ctx.Err())
	case err := <-done:
		defer fasthttp.ReleaseRequest(req)
		defer fasthttp.ReleaseResponse(resp)
		if err != nil {
			return fmt.Errorf("%w: GET %s: %w", ErrFetch, path, err)
		}
	}

	status := resp.StatusCode()
	if status < 200 || status > 299 {
		return &fetchError{status: status, detail: errorDetail(resp.Body())}
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("%w: failed to decode %s: %w", ErrFetch, path, err)
	}
	return nil
}

func errorDetail(body []byte) string {
	var e struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &e) == nil {
		return e.Detail
	}
	return ""
}
