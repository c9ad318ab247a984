package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/garrettladley/marine/internal/client/marine"
	appenv "github.com/garrettladley/marine/internal/env"
	"github.com/garrettladley/marine/internal/gateway"
	"github.com/garrettladley/marine/internal/redis"
	"github.com/garrettladley/marine/internal/storage"
)

const sessionCacheCleanupInterval = time.Minute

func gatewayCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "gateway",
		Short: "Guard the web UI with the API session",
		Long:  "Serves the web UI behind a reverse proxy that sends requests without a valid API session to the sign-in page.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg := a.cfg

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

			var cache storage.SessionCache
			if rc := (redis.Config{URL: cfg.Redis.URL}); rc.Enabled() {
				client, err := redis.New(ctx, rc)
				if err != nil {
					return err
				}
				defer func() { _ = client.Close() }()
				cache = storage.NewRedisSessionCache(client)
				a.logger.InfoContext(ctx, "using redis session cache")
			} else {
				mem := storage.NewMemorySessionCache(sessionCacheCleanupInterval)
				defer func() { _ = mem.Close() }()
				cache = mem
			}

			apiOrigin := cfg.APIOrigin(appenv.Server)
			client := marine.New(apiOrigin,
				marine.WithJar(nil),
				marine.WithLogger(a.logger),
				marine.WithTimeout(cfg.Client.Timeout),
				marine.WithMetrics(marine.NewMetrics(reg)),
			)

			srv, err := gateway.New(gateway.Config{
				Port:       cfg.Gateway.Port,
				UIURL:      cfg.Gateway.UIURL,
				SignInPath: cfg.SignInPath,
				Metrics:    reg,
			}, gateway.NewValidator(client.Auth, cache, cfg.Gateway.CacheTTL), a.logger)
			if err != nil {
				return fmt.Errorf("failed to create gateway: %w", err)
			}

			a.logger.InfoContext(ctx, "checking sessions against api", slog.String("api", apiOrigin))
			return srv.Run(ctx)
		},
	}
}
