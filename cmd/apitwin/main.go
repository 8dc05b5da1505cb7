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
	"github.com/spf13/cobra"

	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/apitwin"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/apitwin/store"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/config"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/fixtures"
	jwtx "github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/jwt"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/metrics"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/observability/logger"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/security/secretbox"
	tokens "github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/security/token"
)

var version = "dev"

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// loadSeed: archivo de seed si hay, si no los datos demo. empty = estado vacío.
func loadSeed(path string, empty bool) (*store.State, error) {
	if empty {
		return nil, nil
	}
	if path != "" {
		st, err := apitwin.LoadStateFile(path)
		if err != nil {
			return nil, fmt.Errorf("seed %s: %w", path, err)
		}
		return &st, nil
	}
	st := fixtures.Seed(time.Now().UTC())
	return &st, nil
}

func main() {
	var (
		cfgPath    = envOr("EMAILEZ_CONFIG", "")
		addr       string
		seedFile   string
		emptySeed  bool
		snapshot   = envOr("TWIN_SNAPSHOT", "")
		enableAdm  = envOr("TWIN_ADMIN", "") != ""
		adminToken = envOr("TWIN_ADMIN_TOKEN", "")
	)

	root := &cobra.Command{
		Use:           "apitwin",
		Short:         "Twin en memoria del API de Email EZ (dev, demos, tests de contrato)",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Twin.Addr = addr
			}
			if seedFile == "" {
				seedFile = cfg.Twin.SeedFile
			}
			seed, err := loadSeed(seedFile, emptySeed)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, serveOpts{
				seed:       seed,
				snapshot:   snapshot,
				admin:      enableAdm,
				adminToken: adminToken,
			})
		},
	}
	root.Flags().StringVar(&cfgPath, "config", cfgPath, "Archivo YAML de configuración (env EMAILEZ_CONFIG)")
	root.Flags().StringVar(&addr, "addr", "", "Dirección de escucha (pisa twin.addr)")
	root.Flags().StringVar(&seedFile, "seed", "", "Seed/snapshot JSON a cargar (default: datos demo)")
	root.Flags().BoolVar(&emptySeed, "empty", false, "Arrancar sin datos")
	root.Flags().StringVar(&snapshot, "snapshot", snapshot, "Archivo donde POST /admin/snapshot guarda el estado (env TWIN_SNAPSHOT)")
	root.Flags().BoolVar(&enableAdm, "admin", enableAdm, "Montar /admin/* (env TWIN_ADMIN)")
	root.Flags().StringVar(&adminToken, "admin-token", adminToken, "Token de /admin/* (env TWIN_ADMIN_TOKEN; vacío = se genera)")

	// seed: exporta los datos demo para editarlos y cargarlos con --seed
	var seedOut string
	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Escribir el seed demo como JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			if seedOut == "" {
				return errors.New("--out es requerido")
			}
			if err := apitwin.SaveStateFile(seedOut, fixtures.Seed(time.Now().UTC())); err != nil {
				return err
			}
			fmt.Println("seed escrito en", seedOut)
			return nil
		},
	}
	seedCmd.Flags().StringVar(&seedOut, "out", "", "Archivo destino")

	// token: JWT de desarrollo firmado con twin.jwt_secret
	var (
		tokUser string
		tokTTL  = 24 * time.Hour
	)
	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Emitir un JWT de desarrollo aceptado por el twin",
		RunE: func(cmd *cobra.Command, args []string) error {
			if tokUser == "" {
				tokUser = fixtures.DemoUserID
			}
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			tok, _, err := jwtx.NewIssuer(apitwin.IssuerName, cfg.Twin.JWTSecret).Sign(tokUser, tokTTL, nil)
			if err != nil {
				return err
			}
			fmt.Println(tok)
			return nil
		},
	}
	tokenCmd.Flags().StringVar(&tokUser, "user", "", "userId (sub); default el usuario demo")
	tokenCmd.Flags().DurationVar(&tokTTL, "ttl", tokTTL, "Vida del token")

	root.AddCommand(seedCmd, tokenCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

type serveOpts struct {
	seed       *store.State
	snapshot   string
	admin      bool
	adminToken string
}

func serve(ctx context.Context, cfg *config.Config, o serveOpts) error {
	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.Log.Level,
		ServiceName: "emailez-apitwin",
		Version:     version,
	})
	defer func() { _ = logger.Sync() }()
	log := logger.L()

	if cfg.App.Env == "prod" {
		return errors.New("el twin no corre con EMAILEZ_ENV=prod")
	}

	var opts []store.Option
	if cfg.Twin.SecretKey != "" {
		key, err := secretbox.ParseKey(cfg.Twin.SecretKey)
		if err != nil {
			return fmt.Errorf("twin.secret_key: %w", err)
		}
		box, err := secretbox.New(key)
		if err != nil {
			return err
		}
		opts = append(opts, store.WithSecretBox(box))
	}
	st := store.New(opts...)
	if o.seed != nil {
		if err := st.Load(*o.seed); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}

	if o.admin && o.adminToken == "" {
		tok, err := tokens.GenerateOpaqueToken(24)
		if err != nil {
			return fmt.Errorf("admin token: %w", err)
		}
		o.adminToken = tok
		log.Info("token de admin generado", logger.String("admin_token", o.adminToken))
	}

	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		h, err := metrics.Register(prometheus.DefaultRegisterer)
		if err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
		metricsHandler = h
	}

	h := apitwin.NewRouter(apitwin.Deps{
		Store:          st,
		Issuer:         jwtx.NewIssuer(apitwin.IssuerName, cfg.Twin.JWTSecret),
		Seed:           o.seed,
		SnapshotPath:   o.snapshot,
		EnableAdmin:    o.admin,
		AdminToken:     o.adminToken,
		MetricsHandler: metricsHandler,
		MetricsPath:    cfg.Metrics.Path,
	})

	srv := &http.Server{
		Addr:         cfg.Twin.Addr,
		Handler:      h,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("twin del API escuchando",
			logger.String("addr", cfg.Twin.Addr),
			logger.Bool("admin", o.admin),
			logger.Bool("seeded", o.seed != nil),
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

	log.Info("apagando twin")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
