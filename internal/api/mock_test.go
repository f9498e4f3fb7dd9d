package api

import (
	"io"
	"net/url"

	fhttp "github.com/bogdanfinn/fhttp"
	"github.com/bogdanfinn/tls-client/bandwidth"
)

// MockResponseBody is a ReadCloser that simulates reading response data.
// A positive step makes each Read return at most step bytes.
type MockResponseBody struct {
	data    []byte
	pos     int
	step    int
	failErr error
	closed  bool
}

// NewMockResponseBody creates a new MockResponseBody with the given data
func NewMockResponseBody(data []byte) *MockResponseBody {
	return &MockResponseBody{data: data, pos: 0}
}

// NewChunkedResponseBody returns data step bytes at a time
func NewChunkedResponseBody(data []byte, step int) *MockResponseBody {
	return &MockResponseBody{data: data, step: step}
}

// NewFailingResponseBody returns data, then err instead of io.EOF
func NewFailingResponseBody(data []byte, err error) *MockResponseBody {
	return &MockResponseBody{data: data, failErr: err}
}

// Read implements the io.Reader interface
func (m *MockResponseBody) Read(p []byte) (n int, err error) {
	if m.pos >= len(m.data) {
		if m.failErr != nil {
			return 0, m.failErr
		}
		return 0, io.EOF
	}
	end := len(m.data)
	if m.step > 0 && m.pos+m.step < end {
		end = m.pos + m.step
	}
	n = copy(p, m.data[m.pos:end])
	m.pos += n
	return n, nil
}

// Close implements the io.Closer interface
func (m *MockResponseBody) Close() error {
	m.closed = true
	return nil
}

// MockHttpClient is a mock implementation of tls_client.HttpClient for testing
type MockHttpClient struct {
	Response *fhttp.Response
	Err      error

	Requests   []*fhttp.Request
	Bodies     []string
	IdleClosed bool
}

// GetCookies implements the tls_client.HttpClient interface
func (m *MockHttpClient) GetCookies(u *url.URL) []*fhttp.Cookie {
	return nil
}

// SetCookies implements the tls_client.HttpClient interface
func (m *MockHttpClient) SetCookies(u *url.URL, cookies []*fhttp.Cookie) {}

// SetCookieJar implements the tls_client.HttpClient interface
func (m *MockHttpClient) SetCookieJar(jar fhttp.CookieJar) {}

// GetCookieJar implements the tls_client.HttpClient interface
func (m *MockHttpClient) GetCookieJar() fhttp.CookieJar {
	return nil
}

// SetProxy implements the tls_client.HttpClient interface
func (m *MockHttpClient) SetProxy(proxyUrl string) error {
	return nil
}

// GetProxy implements the tls_client.HttpClient interface
func (m *MockHttpClient) GetProxy() string {
	return ""
}

// SetFollowRedirect implements the tls_client.HttpClient interface
func (m *MockHttpClient) SetFollowRedirect(followRedirect bool) {}

// GetFollowRedirect implements the tls_client.HttpClient interface
func (m *MockHttpClient) GetFollowRedirect() bool {
	return false
}

// CloseIdleConnections implements the tls_client.HttpClient interface
func (m *MockHttpClient) CloseIdleConnections() {
	m.IdleClosed = true
}

// Do records the request and its body, then returns the canned response
func (m *MockHttpClient) Do(req *fhttp.Request) (*fhttp.Response, error) {
	m.Requests = append(m.Requests, req)
	if req.Body != nil {
		data, _ := io.ReadAll(req.Body)
		m.Bodies = append(m.Bodies, string(data))
	} else {
		m.Bodies = append(m.Bodies, "")
	}
	return m.Response, m.Err
}

// Get implements the tls_client.HttpClient interface
func (m *MockHttpClient) Get(url string) (*fhttp.Response, error) {
	return m.Response, m.Err
}

// Head implements the tls_client.HttpClient interface
func (m *MockHttpClient) Head(url string) (*fhttp.Response, error) {
	return m.Response, m.Err
}

// Post implements the tls_client.HttpClient interface
func (m *MockHttpClient) Post(url, contentType string, body io.Reader) (*fhttp.Response, error) {
	return m.Response, m.Err
}

// GetBandwidthTracker implements the tls_client.HttpClient interface
func (m *MockHttpClient) GetBandwidthTracker() bandwidth.BandwidthTracker {
	return nil
}

// LastRequest returns the most recent request
func (m *MockHttpClient) LastRequest() *fhttp.Request {
	if len(m.Requests) == 0 {
		return nil
	}
	return m.Requests[len(m.Requests)-1]
}

// LastBody returns the most recent request body
func (m *MockHttpClient) LastBody() string {
	if len(m.Bodies) == 0 {
		return ""
	}
	return m.Bodies[len(m.Bodies)-1]
}

// NewMockHttpClient creates a new MockHttpClient with a canned response
func NewMockHttpClient(body []byte, statusCode int) *MockHttpClient {
	return NewMockHttpClientWithBody(NewMockResponseBody(body), statusCode)
}

// NewMockHttpClientWithBody uses a prepared response body
func NewMockHttpClientWithBody(body *MockResponseBody, statusCode int) *MockHttpClient {
	return &MockHttpClient{
		Response: &fhttp.Response{
			StatusCode: statusCode,
			Body:       body,
			Header:     make(fhttp.Header),
		},
	}
}

// NewMockHttpClientWithError creates a new MockHttpClient that returns an error
func NewMockHttpClientWithError(err error) *MockHttpClient {
	return &MockHttpClient{
		Response: nil,
		Err:      err,
	}
}
