// Package api provides the HTTP client for the ragchat backend gateway.
package api

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	fhttp "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/ragchat/internal/errors"
	"github.com/diogo/ragchat/internal/models"
)

// CredentialHeader carries the API key on every request when a credential source is set
const CredentialHeader = "X-API-Key"

// maxErrorBody bounds how much of a failed response is kept for diagnostics
const maxErrorBody = 4096

// GatewayClientInterface is the surface the TUI and commands depend on
type GatewayClientInterface interface {
	BaseURL() string
	Health(ctx context.Context) (*models.HealthStatus, error)
	StreamChat(ctx context.Context, req models.ChatRequest, onChunk func(chunk string)) error
	UploadDocument(ctx context.Context, upload DocumentUpload) (*models.UploadResult, error)
	ListDocuments(ctx context.Context) (*models.RemoteDocuments, error)
	ClearDocuments(ctx context.Context) (string, error)
	RAGQuery(ctx context.Context, query models.RAGQuery) (*models.RAGAnswer, error)
	Close()
}

// Client talks to the gateway over a tls-client transport
type Client struct {
	httpClient     tls_client.HttpClient
	baseURL        string
	timeoutSeconds int
	credential     func() string
	mu             sync.RWMutex
	closed         bool
}

// Ensure Client implements GatewayClientInterface
var _ GatewayClientInterface = (*Client)(nil)

// ClientOption is a function that configures the client
type ClientOption func(*Client)

// WithHTTPClient replaces the transport (used by tests)
func WithHTTPClient(httpClient tls_client.HttpClient) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeoutSeconds sets the transport timeout
func WithTimeoutSeconds(seconds int) ClientOption {
	return func(c *Client) {
		if seconds > 0 {
			c.timeoutSeconds = seconds
		}
	}
}

// WithCredentialSource attaches the value returned by fn to every request
func WithCredentialSource(fn func() string) ClientOption {
	return func(c *Client) {
		c.credential = fn
	}
}

// NewClient creates a gateway client rooted at baseURL
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, apierrors.NewEmptyInputError("base URL")
	}
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		return nil, apierrors.NewValidationError("base URL", fmt.Sprintf("unsupported scheme in %q", baseURL))
	}

	client := &Client{
		baseURL:        baseURL,
		timeoutSeconds: 300,
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.httpClient == nil {
		options := []tls_client.HttpClientOption{
			tls_client.WithTimeoutSeconds(client.timeoutSeconds),
			tls_client.WithClientProfile(profiles.Chrome_120),
		}

		httpClient, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP client: %w", err)
		}
		client.httpClient = httpClient
	}

	return client, nil
}

// BaseURL returns the gateway root
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Close marks the client closed and drops idle connections
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	c.httpClient.CloseIdleConnections()
}

// IsClosed returns whether the client is closed
func (c *Client) IsClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

func (c *Client) url(path string) string {
	return c.baseURL + path
}

// newRequest builds a request with the common headers and the credential header
func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader, contentType string) (*fhttp.Request, error) {
	if c.IsClosed() {
		return nil, apierrors.ErrClientClosed
	}

	req, err := fhttp.NewRequestWithContext(ctx, method, c.url(path), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json, text/plain, */*")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.credential != nil {
		if key := c.credential(); key != "" {
			req.Header.Set(CredentialHeader, key)
		}
	}
	return req, nil
}

// keyedInBody drops the stored-key header from a request whose body
// carries its own api_key, so a candidate key is never sent alongside
// the saved one.
func keyedInBody(req *fhttp.Request, bodyKey string) {
	if bodyKey != "" {
		req.Header.Del(CredentialHeader)
	}
}

// do executes req, mapping transport failures to NetworkError and non-2xx to APIError.
// On success the caller owns resp.Body.
func (c *Client) do(ctx context.Context, req *fhttp.Request, operation, path, failMessage string) (*fhttp.Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apierrors.NewNetworkError(operation, path, transportCause(ctx, err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		body := readLimited(resp.Body, maxErrorBody)
		message := failMessage
		if detail := gjson.Get(body, "detail"); detail.Exists() && detail.String() != "" {
			message = fmt.Sprintf("%s: %s", failMessage, detail.String())
		}
		return nil, apierrors.NewAPIErrorWithBody(resp.StatusCode, path, message, body)
	}

	return resp, nil
}

// doJSON executes req and returns the full response body
func (c *Client) doJSON(ctx context.Context, req *fhttp.Request, operation, path, failMessage string) ([]byte, error) {
	resp, err := c.do(ctx, req, operation, path, failMessage)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apierrors.NewNetworkError(operation, path, transportCause(ctx, err))
	}
	return body, nil
}

// transportCause prefers the context error so cancellation is recognisable
func transportCause(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}

func readLimited(r io.Reader, limit int64) string {
	data, _ := io.ReadAll(io.LimitReader(r, limit))
	return string(data)
}

// Health performs the liveness probe
func (c *Client) Health(ctx context.Context) (*models.HealthStatus, error) {
	req, err := c.newRequest(ctx, fhttp.MethodGet, models.PathHealth, nil, "")
	if err != nil {
		return nil, err
	}

	body, err := c.doJSON(ctx, req, "health check", models.PathHealth, "health check failed")
	if err != nil {
		return nil, err
	}

	status := &models.HealthStatus{Status: "ok"}
	if gjson.ValidBytes(body) {
		if s := gjson.GetBytes(body, "status"); s.Exists() {
			status.Status = s.String()
		}
		status.HasDocuments = gjson.GetBytes(body, "has_documents").Bool()
	}
	return status, nil
}
