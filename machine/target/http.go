// Package target provides concrete test-target handles for scenarios.
//
// A machine run creates one handle per scenario through a
// machine.TargetFactory, and each scenario drives its own handle
// exclusively, so none of the types here need cross-scenario
// synchronization.
package target

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/statewalk/statewalk/machine"
)

// HTTPResult is the captured outcome of one request against an HTTPTarget.
type HTTPResult struct {
	StatusCode int
	Header     http.Header
	Body       string
}

// HTTPTarget drives a web application over plain HTTP.
//
// Each instance owns a private cookie jar, so session state (login cookies,
// CSRF tokens) accumulates per scenario and never leaks into a parallel
// walk. Paths passed to Get and PostForm resolve against the base URL.
type HTTPTarget struct {
	client *http.Client
	base   *url.URL
}

// NewHTTP creates an HTTPTarget rooted at baseURL.
func NewHTTP(baseURL string) (*HTTPTarget, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}
	return &HTTPTarget{
		client: &http.Client{Jar: jar},
		base:   base,
	}, nil
}

// HTTPFactory returns a machine.TargetFactory producing one fresh
// HTTPTarget per scenario.
//
//	report, err := m.Run(ctx, machine.WithTargets(target.HTTPFactory(server.URL)))
func HTTPFactory(baseURL string) machine.TargetFactory {
	return func(ctx context.Context) (machine.Target, error) {
		return NewHTTP(baseURL)
	}
}

// Get issues a GET for the path (resolved against the base URL) and
// captures the response.
func (t *HTTPTarget) Get(ctx context.Context, path string) (*HTTPResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.resolve(path), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return t.Do(req)
}

// PostForm issues a form-encoded POST for the path and captures the
// response.
func (t *HTTPTarget) PostForm(ctx context.Context, path string, form url.Values) (*HTTPResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.resolve(path),
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return t.Do(req)
}

// Do executes an arbitrary request through the target's client, reading the
// body to completion.
func (t *HTTPTarget) Do(req *http.Request) (*HTTPResult, error) {
	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return &HTTPResult{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       string(body),
	}, nil
}

// Close implements machine.Target.
func (t *HTTPTarget) Close() error {
	t.client.CloseIdleConnections()
	return nil
}

func (t *HTTPTarget) resolve(path string) string {
	ref, err := url.Parse(path)
	if err != nil {
		return path
	}
	return t.base.ResolveReference(ref).String()
}
