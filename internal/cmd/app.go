package cmd

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/zfogg/inkwell/pkg/api"
	"github.com/zfogg/inkwell/pkg/client"
	"github.com/zfogg/inkwell/pkg/config"
	"github.com/zfogg/inkwell/pkg/formatter"
	"github.com/zfogg/inkwell/pkg/logger"
	"github.com/zfogg/inkwell/pkg/metrics"
	"github.com/zfogg/inkwell/pkg/optimistic"
	"github.com/zfogg/inkwell/pkg/service"
	"github.com/zfogg/inkwell/pkg/session"
	"github.com/zfogg/inkwell/pkg/store"
	"github.com/zfogg/inkwell/pkg/telemetry"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// App holds everything a command needs for one run
type App struct {
	Sessions *session.Manager
	API      *api.API
	Engine   *optimistic.Engine
	Metrics  *metrics.Metrics
	Services *service.Services

	tracer    *sdktrace.TracerProvider
	closeOnce sync.Once
}

// NewApp wires the session, transport, engine and services from config
func NewApp() (*App, error) {
	sessions := session.NewManager(session.FileStore{Path: config.GetSessionPath()})
	if err := sessions.Init(); err != nil {
		logger.Warn("Could not load session", "error", err)
	}

	tp, err := telemetry.InitTracer(telemetry.ConfigFromSettings())
	if err != nil {
		logger.Warn("Tracing disabled", "error", err)
	}

	a := api.New(client.New(client.OptionsFromConfig(), sessions))
	m := metrics.New()
	eng := optimistic.New(store.New(), service.NewExecutor(a), sessions,
		optimistic.WithNotifier(service.Notifier(nil)),
		optimistic.WithRecorder(m),
	)

	return &App{
		Sessions: sessions,
		API:      a,
		Engine:   eng,
		Metrics:  m,
		Services: service.New(a, eng, sessions),
		tracer:   tp,
	}, nil
}

// Close waits for in-flight mutations, then flushes spans
func (a *App) Close(ctx context.Context) {
	a.closeOnce.Do(func() {
		if ctx == nil {
			ctx = context.Background()
		}
		ctx, cancel := context.WithTimeout(ctx, config.GetDuration("engine.wait_timeout"))
		defer cancel()
		if err := a.Engine.Drain(ctx); err != nil {
			logger.Warn("Exited with unsynced changes", "pending", len(a.Engine.Pending()))
		}
		if err := telemetry.Shutdown(a.tracer); err != nil {
			logger.Debug("Tracer shutdown failed", "error", err)
		}
	})
}

// settle reports the optimistic state right away, then waits for the
// server. On timeout the mutation keeps going and is drained on exit.
func settle(ctx context.Context, h *optimistic.Handle, err error, shown func()) error {
	if err != nil {
		return err
	}
	shown()

	err = service.Await(ctx, h, config.GetDuration("engine.wait_timeout"))
	switch {
	case err == nil:
		logger.Debug("Confirmed", "kind", h.Kind(), "entity_id", h.EntityID(), "mutation_id", h.ID())
		return nil
	case errors.Is(err, context.DeadlineExceeded) && !h.State().Terminal():
		formatter.PrintWarning("Still syncing with the server...")
		return nil
	}
	return err
}

// noChange turns service.ErrNoChange into an informational line
func noChange(err error, msg string) error {
	if errors.Is(err, service.ErrNoChange) {
		formatter.PrintInfo("%s", msg)
		return nil
	}
	return err
}

func timeAgo(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	}
	return t.Format("2006-01-02")
}
