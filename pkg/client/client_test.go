package client

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func echoServer(t *testing.T) (*httptest.Server, *http.Request) {
	t.Helper()
	var got http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = *r.Clone(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)
	return srv, &got
}

func TestNewAppliesOptions(t *testing.T) {
	c := New(Options{BaseURL: "http://example.test/api", Timeout: 3 * time.Second}, nil)
	require.NotNil(t, c)

	assert.Equal(t, "http://example.test/api", c.Resty().BaseURL)
	assert.Equal(t, "Inkwell-CLI/0.1.0", c.Resty().Header.Get("User-Agent"))
}

func TestTokenReadPerRequest(t *testing.T) {
	srv, got := echoServer(t)
	tok := staticToken("abc")
	c := New(Options{BaseURL: srv.URL}, &tok)

	_, err := c.R().Get("/ping")
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc", got.Header.Get("Authorization"))

	// logout swaps the session; the next request sees it
	tok = ""
	_, err = c.R().Get("/ping")
	require.NoError(t, err)
	assert.Empty(t, got.Header.Get("Authorization"))
}

func TestTracingTransport(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec)))
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	srv, got := echoServer(t)
	c := New(Options{BaseURL: srv.URL, Tracing: true}, nil)

	resp, err := c.R().Get("/traced")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode())
	assert.Equal(t, "/traced", got.URL.Path)

	var client int
	for _, span := range rec.Ended() {
		if span.SpanKind() == trace.SpanKindClient {
			client++
		}
	}
	assert.GreaterOrEqual(t, client, 1, "request should be traced as a client span")
}
