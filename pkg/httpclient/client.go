package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	contentTypeJSON  = "application/json"
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "upgates-go"
)

// Config holds the connection settings shared by every request.
type Config struct {
	BaseURL string
	Login   string
	APIKey  string
	Debug   bool
	Timeout time.Duration
}

// Option customizes a Client at construction time.
type Option func(*settings)

type settings struct {
	log        Logger
	httpClient *http.Client
	userAgent  string
}

// WithLogger sets the logger used when debug mode is enabled.
func WithLogger(log Logger) Option {
	return func(s *settings) { s.log = log }
}

// WithHTTPClient builds the transport on top of a copy of hc. The caller's
// client is never modified.
func WithHTTPClient(hc *http.Client) Option {
	return func(s *settings) { s.httpClient = hc }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(s *settings) { s.userAgent = ua }
}

// Client is the single point of outbound communication with the API.
// It holds no mutable state after New returns and is safe for concurrent use.
type Client struct {
	client  *resty.Client
	baseURL string
	debug   bool
	log     Logger
}

// MultipartField is one part of a multipart body. A field with a non-nil
// Reader is sent as a file part named FileName; otherwise Value is sent.
type MultipartField struct {
	Name        string
	Value       string
	FileName    string
	ContentType string
	Reader      io.Reader
}

// Blob is an opaque binary response body.
type Blob struct {
	Data        []byte
	ContentType string
	Size        int64
}

// New validates cfg and builds a resty-backed Client.
func New(cfg Config, opts ...Option) (*Client, error) {
	baseURL, err := validateBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}

	s := settings{userAgent: defaultUserAgent}
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}
	if s.log == nil {
		s.log = noopLogger{}
	}

	var rc *resty.Client
	if s.httpClient != nil {
		hc := *s.httpClient
		rc = resty.NewWithClient(&hc)
	} else {
		rc = resty.New()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	rc.SetTimeout(timeout)
	rc.SetBaseURL(baseURL)
	rc.SetBasicAuth(cfg.Login, cfg.APIKey)
	rc.SetDisableWarn(true)
	rc.SetHeader("User-Agent", s.userAgent)

	c := &Client{
		client:  rc,
		baseURL: baseURL,
		debug:   cfg.Debug,
		log:     s.log,
	}
	c.debugObj("http client initialized", "http_client", map[string]any{
		"base_url": baseURL,
		"timeout":  timeout.String(),
	})
	return c, nil
}

func validateBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", &ConfigurationError{Reason: "API URL is required"}
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", &ConfigurationError{
			URL:    raw,
			Reason: "URL must be absolute, including protocol (e.g. https://) and domain",
		}
	}
	return strings.TrimRight(raw, "/"), nil
}

// BaseURL returns the normalized API base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Get issues a GET and decodes the JSON response into out (which may be nil).
func (c *Client) Get(ctx context.Context, path string, out any, opts ...RequestOption) error {
	_, err := c.doJSON(ctx, http.MethodGet, path, nil, out, opts)
	return err
}

// Post sends body as JSON and decodes the JSON response into out.
func (c *Client) Post(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	_, err := c.doJSON(ctx, http.MethodPost, path, body, out, opts)
	return err
}

// Put sends body as JSON and decodes the JSON response into out.
func (c *Client) Put(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	_, err := c.doJSON(ctx, http.MethodPut, path, body, out, opts)
	return err
}

// Delete issues a body-less DELETE. An empty response body leaves out untouched.
func (c *Client) Delete(ctx context.Context, path string, out any, opts ...RequestOption) error {
	_, err := c.doJSON(ctx, http.MethodDelete, path, nil, out, opts)
	return err
}

// GetBlob issues a GET and returns the raw response body.
func (c *Client) GetBlob(ctx context.Context, path string, opts ...RequestOption) (*Blob, error) {
	ro := collect(opts)
	req := c.newRequest(ctx, ro, map[string]string{"Content-Type": contentTypeJSON})
	c.logRequest("GET blob request", http.MethodGet, path, ro, nil)

	resp, err := req.Execute(http.MethodGet, path)
	if err = c.check(http.MethodGet, path, resp, err); err != nil {
		return nil, err
	}

	body := resp.Body()
	blob := &Blob{
		Data:        body,
		ContentType: resp.Header().Get("Content-Type"),
		Size:        int64(len(body)),
	}
	c.debugObj("GET blob response", "http_response", map[string]any{
		"status":       resp.StatusCode(),
		"content_type": blob.ContentType,
		"size":         blob.Size,
	})
	return blob, nil
}

// PostMultipart sends fields as multipart/form-data and decodes the JSON
// response into out.
func (c *Client) PostMultipart(ctx context.Context, path string, fields []MultipartField, out any, opts ...RequestOption) error {
	ro := collect(opts)
	req := c.newRequest(ctx, ro, map[string]string{"Accept": contentTypeJSON})

	values := make(map[string]string)
	summary := make(map[string]any, len(fields))
	for _, f := range fields {
		if f.Reader != nil {
			ct := f.ContentType
			if ct == "" {
				ct = "application/octet-stream"
			}
			req.SetMultipartField(f.Name, f.FileName, ct, f.Reader)
			summary[f.Name] = map[string]string{"file_name": f.FileName, "content_type": ct}
			continue
		}
		values[f.Name] = f.Value
		summary[f.Name] = f.Value
	}
	if len(values) > 0 {
		req.SetMultipartFormData(values)
	}
	c.logRequest("POST multipart request", http.MethodPost, path, ro, summary)

	resp, err := req.Execute(http.MethodPost, path)
	if err = c.check(http.MethodPost, path, resp, err); err != nil {
		return err
	}
	c.logResponse("POST multipart response", resp)
	return c.decode(http.MethodPost, path, resp, out)
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any, opts []RequestOption) (*resty.Response, error) {
	ro := collect(opts)
	req := c.newRequest(ctx, ro, map[string]string{
		"Content-Type": contentTypeJSON,
		"Accept":       contentTypeJSON,
	})

	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, &TransportError{Method: method, URL: c.fullURL(path), Err: fmt.Errorf("encode request body: %w", err)}
		}
		req.SetBody(payload)
		c.logRequest(method+" request", method, path, ro, json.RawMessage(payload))
	} else {
		c.logRequest(method+" request", method, path, ro, nil)
	}

	resp, err := req.Execute(method, path)
	if err = c.check(method, path, resp, err); err != nil {
		return resp, err
	}
	c.logResponse(method+" response", resp)
	return resp, c.decode(method, path, resp, out)
}

// newRequest applies defaults first so per-call headers can override them.
func (c *Client) newRequest(ctx context.Context, ro requestOptions, defaults map[string]string) *resty.Request {
	if ctx == nil {
		ctx = context.Background()
	}
	req := c.client.R().SetContext(ctx)
	if len(defaults) > 0 {
		req.SetHeaders(defaults)
	}
	if len(ro.headers) > 0 {
		req.SetHeaders(ro.headers)
	}
	if len(ro.query) > 0 {
		req.SetQueryParamsFromValues(ro.query)
	}
	return req
}

// check converts a failed exchange into a *TransportError.
func (c *Client) check(method, path string, resp *resty.Response, err error) error {
	if err != nil {
		terr := &TransportError{Method: method, URL: c.fullURL(path), Err: err}
		if resp != nil && resp.RawResponse != nil {
			terr.StatusCode = resp.StatusCode()
			terr.Body = resp.Body()
		}
		c.errorObj(terr)
		return terr
	}
	if !resp.IsSuccess() {
		terr := &TransportError{
			Method:     method,
			URL:        c.fullURL(path),
			StatusCode: resp.StatusCode(),
			Body:       resp.Body(),
		}
		c.errorObj(terr)
		return terr
	}
	return nil
}

func (c *Client) decode(method, path string, resp *resty.Response, out any) error {
	body := resp.Body()
	if out == nil || len(strings.TrimSpace(string(body))) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &TransportError{
			Method:     method,
			URL:        c.fullURL(path),
			StatusCode: resp.StatusCode(),
			Body:       body,
			Err:        fmt.Errorf("decode response body: %w", err),
		}
	}
	return nil
}

func (c *Client) fullURL(path string) string {
	if path != "" && path[0] != '/' {
		path = "/" + path
	}
	return c.baseURL + path
}

func (c *Client) logRequest(msg, method, path string, ro requestOptions, body any) {
	if !c.debug {
		return
	}
	fields := map[string]any{
		"method":   method,
		"url":      path,
		"full_url": c.fullURL(path),
	}
	if len(ro.query) > 0 {
		fields["params"] = ro.query
	}
	if body != nil {
		fields["body"] = body
	}
	c.log.DebugObj(msg, "http_request", fields)
}

func (c *Client) logResponse(msg string, resp *resty.Response) {
	if !c.debug {
		return
	}
	fields := map[string]any{"status": resp.StatusCode()}
	if body := resp.Body(); len(body) > 0 {
		if json.Valid(body) {
			fields["body"] = json.RawMessage(body)
		} else {
			fields["body"] = bodySnippet(body)
		}
	}
	c.log.DebugObj(msg, "http_response", fields)
}

func (c *Client) debugObj(msg, key string, obj any) {
	if c.debug {
		c.log.DebugObj(msg, key, obj)
	}
}

func (c *Client) errorObj(err *TransportError) {
	if !c.debug {
		return
	}
	fields := map[string]any{
		"method": err.Method,
		"url":    err.URL,
		"status": err.StatusCode,
	}
	if err.Err != nil {
		fields["error"] = err.Err.Error()
	}
	if snippet := bodySnippet(err.Body); snippet != "" {
		fields["body"] = snippet
	}
	c.log.ErrorObj("http request failed", "http_error", fields)
}
