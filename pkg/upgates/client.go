// Package upgates is a typed client for the Upgates order-management REST API.
//
// A Client is built once from a Config and is safe for concurrent use. Every
// call issues exactly one HTTP request; nothing is cached or retried.
package upgates

import (
	"net/http"
	"time"

	"github.com/samvad-hq/upgates-go/pkg/httpclient"
)

// Config is the construction input of a Client.
type Config struct {
	APIURL string `json:"api_url" mapstructure:"api_url"`
	Login  string `json:"login" mapstructure:"login"`
	APIKey string `json:"-" mapstructure:"api_key"`
	Debug  bool   `json:"debug" mapstructure:"debug"`
}

// Logger receives debug request/response entries.
type Logger = httpclient.Logger

// Blob is a binary download such as an order PDF.
type Blob = httpclient.Blob

// Option customizes a Client.
type Option func(*options)

type options struct {
	log        Logger
	timeout    time.Duration
	httpClient *http.Client
}

// WithLogger routes debug entries to log.
func WithLogger(log Logger) Option {
	return func(o *options) { o.log = log }
}

// WithTimeout bounds every request. The default is 30 seconds.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithHTTPClient runs requests through hc.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

// Client aggregates the API resources.
type Client struct {
	Orders *Orders

	http *httpclient.Client
}

// New validates cfg and builds a Client. An empty or non-absolute APIURL
// yields a *ConfigurationError.
func New(cfg Config, opts ...Option) (*Client, error) {
	var o options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	log := o.log
	if log == nil && cfg.Debug {
		dev, err := httpclient.NewDevelopmentLogger()
		if err != nil {
			return nil, err
		}
		log = dev
	}

	hcOpts := []httpclient.Option{httpclient.WithLogger(log)}
	if o.httpClient != nil {
		hcOpts = append(hcOpts, httpclient.WithHTTPClient(o.httpClient))
	}

	hc, err := httpclient.New(httpclient.Config{
		BaseURL: cfg.APIURL,
		Login:   cfg.Login,
		APIKey:  cfg.APIKey,
		Debug:   cfg.Debug,
		Timeout: o.timeout,
	}, hcOpts...)
	if err != nil {
		return nil, err
	}

	return &Client{
		Orders: &Orders{http: hc},
		http:   hc,
	}, nil
}

// BaseURL returns the normalized API base URL.
func (c *Client) BaseURL() string { return c.http.BaseURL() }
