package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// Record is one resource object as returned by the API. The console treats
// server payloads as opaque JSON and projects them later.
type Record = map[string]any

// Fetcher is the read side of the client; pollers depend on it.
type Fetcher interface {
	Get(ctx context.Context, path string, dest any) error
}

// Mutator is the write side of the client; mutation coordinators depend on it.
type Mutator interface {
	Create(ctx context.Context, resource string, payload any) (Record, error)
	Update(ctx context.Context, resource, id string, payload any) (Record, error)
	Delete(ctx context.Context, resource, id string) error
}

// Ensure Client implements both halves at compile time.
var (
	_ Fetcher = (*Client)(nil)
	_ Mutator = (*Client)(nil)
)

// Client talks to the asset-management REST API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	limiter   *rate.Limiter
}

const (
	defaultBaseURL   = "http://localhost:8000"
	defaultUserAgent = "ams/0.1"
	requestTimeout   = 10 * time.Second
	maxErrorBody     = 64 << 10
)

// Option customises a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithRateLimit caps outgoing requests per second. Zero disables the limit.
func WithRateLimit(perSecond float64) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		burst := int(perSecond)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua = strings.TrimSpace(ua); ua != "" {
			c.userAgent = ua
		}
	}
}

// NewClient builds a Client for the given base URL ("host:port" or a full URL).
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the normalised base URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// CollectionPath returns the list endpoint for a resource, e.g. /api/assets/.
func CollectionPath(resource string) string {
	return "/api/" + strings.Trim(resource, "/") + "/"
}

// ItemPath returns the detail endpoint for a resource id, e.g. /api/assets/7/.
func ItemPath(resource, id string) string {
	return CollectionPath(resource) + url.PathEscape(strings.TrimSpace(id)) + "/"
}

// Get decodes the JSON document at path (which may carry a query string) into dest.
func (c *Client) Get(ctx context.Context, path string, dest any) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	rel, err := url.Parse(path)
	if err != nil {
		return fmt.Errorf("parse path %q: %w", path, err)
	}
	body, err := c.do(ctx, http.MethodGet, rel, nil)
	if err != nil {
		return err
	}
	if dest == nil {
		return nil
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// List fetches the collection of a resource.
func (c *Client) List(ctx context.Context, resource string) ([]Record, error) {
	var payload []Record
	if err := c.Get(ctx, CollectionPath(resource), &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// Create POSTs payload to the resource collection and returns the created
// object. A success response whose body is not a JSON object yields an empty
// Record rather than an error.
func (c *Client) Create(ctx context.Context, resource string, payload any) (Record, error) {
	return c.write(ctx, http.MethodPost, &url.URL{Path: CollectionPath(resource)}, payload)
}

// Update PUTs payload to the resource item and returns the updated object.
func (c *Client) Update(ctx context.Context, resource, id string, payload any) (Record, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("id required")
	}
	return c.write(ctx, http.MethodPut, &url.URL{Path: ItemPath(resource, id)}, payload)
}

// Delete removes the resource item. 204 and any other 2xx count as success.
func (c *Client) Delete(ctx context.Context, resource, id string) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("id required")
	}
	_, err := c.do(ctx, http.MethodDelete, &url.URL{Path: ItemPath(resource, id)}, nil)
	return err
}

func (c *Client) write(ctx context.Context, method string, rel *url.URL, payload any) (Record, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	body, err := c.do(ctx, method, rel, encoded)
	if err != nil {
		return nil, err
	}
	var out Record
	if err := json.Unmarshal(body, &out); err != nil || out == nil {
		return Record{}, nil
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method string, rel *url.URL, payload []byte) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	reqURL := c.baseURL.ResolveReference(rel)
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, newHTTPError(method, rel.String(), resp.StatusCode, raw)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return body, nil
}

func parseBaseURL(baseURL string) (*url.URL, error) {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		trimmed = defaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api base url %q: %w", baseURL, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse api base url %q: missing host", baseURL)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
