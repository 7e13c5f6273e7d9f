package app

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"agentbuilder/internal/infra/catalog"
	"agentbuilder/internal/infra/httpapi"
	"agentbuilder/internal/infra/telemetry"
)

// Application owns the API server and the optional observability listener.
type Application struct {
	cfg      Config
	logger   *zap.Logger
	registry *prometheus.Registry
	catalog  *catalog.Registry
	server   *httpapi.Server
}

// ApplicationOptions captures dependencies and settings for Application.
type ApplicationOptions struct {
	Config   Config
	Logger   *zap.Logger
	Registry *prometheus.Registry
	Catalog  *catalog.Registry
	Server   *httpapi.Server
}

func NewApplication(opts ApplicationOptions) *Application {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Application{
		cfg:      opts.Config,
		logger:   logger,
		registry: opts.Registry,
		catalog:  opts.Catalog,
		server:   opts.Server,
	}
}

// Run serves until ctx is canceled or a listener fails.
func (a *Application) Run(ctx context.Context) error {
	a.logger.Info("catalog loaded",
		zap.String("path", a.catalog.Path()),
		zap.Int("tools", a.catalog.Len()),
	)

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return a.server.Serve(ctx, a.cfg.ListenAddress)
	})
	if a.cfg.Observability.Enabled {
		group.Go(func() error {
			return telemetry.StartHTTPServer(ctx, telemetry.HTTPServerOptions{
				Addr:     a.cfg.Observability.ListenAddress,
				Registry: a.registry,
				Health:   a.healthReport,
			}, a.logger)
		})
	}
	return group.Wait()
}

func (a *Application) healthReport() telemetry.HealthReport {
	return telemetry.HealthReport{Status: "ok", Tools: a.catalog.Len()}
}
