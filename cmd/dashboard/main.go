package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/api"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/cache"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/config"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/dashboard"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/fixtures"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/httpclient"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/metrics"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/observability/logger"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/rate"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/smtpcheck"
)

var version = "dev"

// redisBacked lo cumple el cache redis; el limiter comparte su conexión.
type redisBacked interface {
	Redis() *redis.Client
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func main() {
	var (
		cfgPath = envOr("EMAILEZ_CONFIG", "")
		addr    string
		demo    bool
	)

	root := &cobra.Command{
		Use:           "dashboard",
		Short:         "Loaders y acciones del dashboard de Email EZ servidos como JSON",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Dashboard.Addr = addr
			}
			if cmd.Flags().Changed("demo") && !(cfg.App.Env == "prod" && demo) {
				cfg.Dashboard.Demo = demo
			}
			return serve(cmd.Context(), cfg)
		},
	}
	root.Flags().StringVar(&cfgPath, "config", cfgPath, "Archivo YAML de configuración (env EMAILEZ_CONFIG)")
	root.Flags().StringVar(&addr, "addr", "", "Dirección de escucha (pisa dashboard.addr)")
	root.Flags().BoolVar(&demo, "demo", false, "Servir datos demo en lugar del API remoto (ignorado en prod)")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.Log.Level,
		ServiceName: "emailez-dashboard",
		Version:     version,
	})
	defer func() { _ = logger.Sync() }()
	log := logger.L()

	// Cache: lista de workspaces por sesión + settings locales
	cc, err := cache.New(ctx, cache.Config{
		Driver:     cfg.Cache.Kind,
		Addr:       cfg.Cache.Redis.Addr,
		Password:   cfg.Cache.Redis.Password,
		DB:         cfg.Cache.Redis.DB,
		Prefix:     cfg.Cache.Redis.Prefix,
		DefaultTTL: cfg.MemoryCacheTTL(),
	})
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	defer cc.Close()

	// Provider: API remoto o fixtures
	var provider api.Provider
	if cfg.Dashboard.Demo {
		p, err := fixtures.NewProvider()
		if err != nil {
			return fmt.Errorf("fixtures: %w", err)
		}
		provider = p
		log.Warn("modo demo: los datos son fixtures en memoria")
	} else {
		provider = api.NewServices(httpclient.New(cfg.API.BaseURL, httpclient.WithTimeout(cfg.APITimeout())))
	}

	// Rate limit de envíos
	var limiter rate.Limiter
	if cfg.Rate.Enabled {
		if rb, ok := cc.(redisBacked); ok {
			limiter = rate.NewRedisLimiter(rb.Redis(), cfg.Cache.Redis.Prefix+":rl", cfg.Rate.Send.Limit, cfg.SendWindow())
		} else {
			limiter = rate.NewMemoryLimiter(cfg.Rate.Send.Limit, cfg.SendWindow())
		}
	}

	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		if metricsHandler, err = metrics.Register(prometheus.DefaultRegisterer); err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
	}

	h := dashboard.NewRouter(dashboard.Deps{
		Provider:         provider,
		Cache:            cc,
		WorkspaceCache:   dashboard.NewWorkspaceCache(cc, cfg.WorkspaceCacheTTL()),
		SendLimiter:      limiter,
		Prober:           smtpcheck.New(smtpcheck.DefaultTimeout),
		SessionCookie:    cfg.Dashboard.SessionCookie,
		CheckTokenExpiry: cfg.Dashboard.CheckTokenExpiry,
		MetricsHandler:   metricsHandler,
		MetricsPath:      cfg.Metrics.Path,
	})

	srv := &http.Server{
		Addr:         cfg.Dashboard.Addr,
		Handler:      h,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("dashboard escuchando",
			logger.String("addr", cfg.Dashboard.Addr),
			logger.String("api", cfg.API.BaseURL),
			logger.Bool("demo", cfg.Dashboard.Demo),
			logger.String("cache", cfg.Cache.Kind),
			logger.Bool("rate_limit", cfg.Rate.Enabled),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("apagando dashboard")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
