package suggest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/microcosm-cc/bluemonday"
)

const maxResponseBytes = 64 << 10

type inferRequest struct {
	CompanyName string `json:"companyName"`
}

type inferResponse struct {
	EmailDomain string `json:"emailDomain"`
}

// HTTPClient calls a text-generation flow over HTTP. The endpoint receives
// {"companyName": "..."} and answers {"emailDomain": "..."}. Each Infer is a
// single attempt.
type HTTPClient struct {
	endpoint  string
	client    *http.Client
	headers   http.Header
	sanitizer *bluemonday.Policy
}

// HTTPOption configures the HTTP client.
type HTTPOption func(*HTTPClient)

// WithHTTPClient overrides the underlying *http.Client.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(c *HTTPClient) {
		if client != nil {
			c.client = client
		}
	}
}

// WithHeader adds a header sent with every request, for example an
// Authorization token for the hosted flow.
func WithHeader(name, value string) HTTPOption {
	return func(c *HTTPClient) {
		if strings.TrimSpace(name) != "" {
			c.headers.Set(name, value)
		}
	}
}

// NewHTTPClient builds a client for endpoint.
func NewHTTPClient(endpoint string, opts ...HTTPOption) (*HTTPClient, error) {
	endpoint = strings.TrimSpace(endpoint)
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		return nil, fmt.Errorf("suggest: endpoint %q must be an http(s) URL", endpoint)
	}
	c := &HTTPClient{
		endpoint:  endpoint,
		client:    http.DefaultClient,
		headers:   make(http.Header),
		sanitizer: bluemonday.StrictPolicy(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// Infer posts the company name and returns the normalised domain.
func (c *HTTPClient) Infer(ctx context.Context, companyName string) (Result, error) {
	body, err := json.Marshal(inferRequest{CompanyName: companyName})
	if err != nil {
		return Result{}, wrap(companyName, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Result{}, wrap(companyName, err)
	}
	for name, values := range c.headers {
		for _, value := range values {
			req.Header.Add(name, value)
		}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Result{}, wrap(companyName, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{}, wrap(companyName, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var payload inferResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&payload); err != nil {
		return Result{}, wrap(companyName, fmt.Errorf("decode response: %w", err))
	}

	// Model output may carry markup or stray prose around the domain.
	domain, err := NormalizeDomain(c.sanitizer.Sanitize(payload.EmailDomain))
	if err != nil {
		return Result{}, wrap(companyName, err)
	}
	return Result{Domain: domain}, nil
}
