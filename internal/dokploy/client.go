// Package dokploy provides a client for the Dokploy platform API.
package dokploy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/time/rate"
)

const (
	// DefaultRateLimit is the default rate limit (requests per second).
	DefaultRateLimit = 5
)

// Client is the subset of the platform API used to provision applications.
type Client interface {
	CreateProject(ctx context.Context, name, description string) (*Project, error)
	ListServers(ctx context.Context) ([]Server, error)
	ListGitHubProviders(ctx context.Context) ([]GitHubProvider, error)
	CreateApplication(ctx context.Context, req CreateApplicationRequest) (*Application, error)
	SaveGitHubProvider(ctx context.Context, req GitHubProviderRequest) error
	CreateDomain(ctx context.Context, req DomainRequest) error
	SaveEnvironment(ctx context.Context, req EnvironmentRequest) error
	Deploy(ctx context.Context, applicationID string) error
}

// Logger receives request traces. *output.UI satisfies it.
type Logger interface {
	VerboseLog(format string, a ...any)
}

// HTTPClient implements Client over the platform's REST endpoints.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     Logger
	limiter    *rate.Limiter
}

// ClientOption configures the HTTPClient.
type ClientOption func(*HTTPClient)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *HTTPClient) {
		c.httpClient = httpClient
	}
}

// WithLogger sets a logger.
func WithLogger(logger Logger) ClientOption {
	return func(c *HTTPClient) {
		c.logger = logger
	}
}

// WithRateLimit sets a custom rate limit. Zero or less disables limiting.
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *HTTPClient) {
		if requestsPerSecond <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// NewClient creates a client for the instance at baseURL.
func NewClient(baseURL, apiKey string, opts ...ClientOption) *HTTPClient {
	c := &HTTPClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{},
		limiter:    rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents a non-2xx response from the platform.
type APIError struct {
	StatusCode int
	Endpoint   string
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("dokploy API error: %s (status %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// MentionsField reports whether the error payload carries a validation
// issue whose path includes field.
func (e *APIError) MentionsField(field string) bool {
	var payload struct {
		Issues []struct {
			Path []any `json:"path"`
		} `json:"issues"`
	}
	if err := json.Unmarshal(e.Body, &payload); err != nil {
		return false
	}
	for _, issue := range payload.Issues {
		for _, p := range issue.Path {
			if fmt.Sprint(p) == field {
				return true
			}
		}
	}
	return false
}

func newAPIError(status int, endpoint string, body []byte) *APIError {
	e := &APIError{StatusCode: status, Endpoint: endpoint, Body: body}
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		e.Message = payload.Message
	} else if msg := strings.TrimSpace(string(body)); msg != "" {
		e.Message = msg
	} else {
		e.Message = http.StatusText(status)
	}
	return e
}

func (c *HTTPClient) logf(format string, a ...any) {
	if c.logger != nil {
		c.logger.VerboseLog(format, a...)
	}
}

// do performs a request against path. A nil body sends no payload; a nil
// result discards the response.
func (c *HTTPClient) do(ctx context.Context, method, path string, body, result any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	c.logf("%s %s", method, c.baseURL+path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	c.logf("%s %s -> %d", method, path, resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp.StatusCode, path, data)
	}

	if result == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, result); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// CreateProject creates a project.
func (c *HTTPClient) CreateProject(ctx context.Context, name, description string) (*Project, error) {
	body := map[string]string{"name": name, "description": description}
	var p Project
	if err := c.do(ctx, http.MethodPost, "/api/project.create", body, &p); err != nil {
		return nil, fmt.Errorf("create project %s: %w", name, err)
	}
	if p.ProjectID == "" {
		return nil, fmt.Errorf("create project %s: response has no projectId", name)
	}
	return &p, nil
}

// ListServers lists the servers available for deployments.
func (c *HTTPClient) ListServers(ctx context.Context) ([]Server, error) {
	var servers []Server
	if err := c.do(ctx, http.MethodGet, "/api/server.withSSHKey", nil, &servers); err != nil {
		return nil, fmt.Errorf("list servers: %w", err)
	}
	return servers, nil
}

// ListGitHubProviders lists the configured GitHub integrations.
func (c *HTTPClient) ListGitHubProviders(ctx context.Context) ([]GitHubProvider, error) {
	var providers []GitHubProvider
	if err := c.do(ctx, http.MethodGet, "/api/github.githubProviders", nil, &providers); err != nil {
		return nil, fmt.Errorf("list github providers: %w", err)
	}
	return providers, nil
}

// CreateApplication creates an application inside a project.
func (c *HTTPClient) CreateApplication(ctx context.Context, req CreateApplicationRequest) (*Application, error) {
	var app Application
	if err := c.do(ctx, http.MethodPost, "/api/application.create", req, &app); err != nil {
		return nil, fmt.Errorf("create application %s: %w", req.Name, err)
	}
	if app.ApplicationID == "" {
		return nil, fmt.Errorf("create application %s: response has no applicationId", req.Name)
	}
	return &app, nil
}

// SaveGitHubProvider links an application to a GitHub repository.
func (c *HTTPClient) SaveGitHubProvider(ctx context.Context, req GitHubProviderRequest) error {
	if err := c.do(ctx, http.MethodPost, "/api/application.saveGithubProvider", req, nil); err != nil {
		return fmt.Errorf("save github provider: %w", err)
	}
	return nil
}

// CreateDomain attaches a domain to an application.
func (c *HTTPClient) CreateDomain(ctx context.Context, req DomainRequest) error {
	if err := c.do(ctx, http.MethodPost, "/api/domain.create", req, nil); err != nil {
		return fmt.Errorf("create domain %s: %w", req.Host, err)
	}
	return nil
}

// SaveEnvironment replaces an application's environment.
func (c *HTTPClient) SaveEnvironment(ctx context.Context, req EnvironmentRequest) error {
	if err := c.do(ctx, http.MethodPost, "/api/application.saveEnvironment", req, nil); err != nil {
		return fmt.Errorf("save environment: %w", err)
	}
	return nil
}

// Deploy queues a deployment of an application.
func (c *HTTPClient) Deploy(ctx context.Context, applicationID string) error {
	body := map[string]string{"applicationId": applicationID}
	if err := c.do(ctx, http.MethodPost, "/api/application.deploy", body, nil); err != nil {
		return fmt.Errorf("deploy: %w", err)
	}
	return nil
}
