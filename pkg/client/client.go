package client

import (
	"context"
	"net/http"
	"net/http/httptrace"
	"time"

	"github.com/go-resty/resty/v2"
	json "github.com/json-iterator/go"
	"github.com/zfogg/inkwell/pkg/config"
	"github.com/zfogg/inkwell/pkg/logger"
	"go.opentelemetry.io/contrib/instrumentation/net/http/httptrace/otelhttptrace"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/trace"
)

// TokenSource supplies the bearer token for each request
type TokenSource interface {
	Token() string
}

// Options configures the HTTP client
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	Tracing   bool
}

// OptionsFromConfig reads api.* settings
func OptionsFromConfig() Options {
	return Options{
		BaseURL:   config.GetString("api.base_url"),
		Timeout:   time.Duration(config.GetInt("api.timeout")) * time.Second,
		UserAgent: config.GetString("api.user_agent"),
		Tracing:   config.GetBool("telemetry.enabled"),
	}
}

// Client wraps a resty client that authenticates every request with the
// current session token
type Client struct {
	http   *resty.Client
	tokens TokenSource
}

// New creates a client. tokens may be nil for anonymous use.
func New(opts Options, tokens TokenSource) *Client {
	c := &Client{http: resty.New(), tokens: tokens}

	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "Inkwell-CLI/0.1.0"
	}

	c.http.SetBaseURL(opts.BaseURL)
	c.http.SetTimeout(opts.Timeout)
	c.http.SetHeader("User-Agent", opts.UserAgent)
	c.http.SetHeader("Accept", "application/json")
	c.http.SetJSONMarshaler(json.Marshal)
	c.http.SetJSONUnmarshaler(json.Unmarshal)

	if opts.Tracing {
		c.http.SetTransport(otelhttp.NewTransport(
			http.DefaultTransport,
			otelhttp.WithClientTrace(func(ctx context.Context) *httptrace.ClientTrace {
				return otelhttptrace.NewClientTrace(ctx)
			}),
			otelhttp.WithSpanOptions(trace.WithSpanKind(trace.SpanKindClient)),
		))
	}

	c.http.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		logger.Debug("HTTP Request", "method", req.Method, "url", req.URL)
		if c.tokens != nil {
			if tok := c.tokens.Token(); tok != "" {
				req.SetAuthToken(tok)
			}
		}
		return nil
	})

	c.http.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		logger.Debug("HTTP Response", "status", resp.StatusCode(), "url", resp.Request.URL, "duration", resp.Time())
		return nil
	})

	return c
}

// R starts a new request
func (c *Client) R() *resty.Request {
	return c.http.R()
}

// Resty exposes the underlying client
func (c *Client) Resty() *resty.Client {
	return c.http
}
