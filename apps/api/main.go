package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	cataloghandler "github.com/ribeiromendes5014-design/netfliz/domains/catalog/be/handler"
	catalogrepo "github.com/ribeiromendes5014-design/netfliz/domains/catalog/be/repo"
	catalogservice "github.com/ribeiromendes5014-design/netfliz/domains/catalog/be/service"
	portalhandler "github.com/ribeiromendes5014-design/netfliz/domains/portal/be/handler"
	portalservice "github.com/ribeiromendes5014-design/netfliz/domains/portal/be/service"
	progresshandler "github.com/ribeiromendes5014-design/netfliz/domains/progress/be/handler"
	progressrepo "github.com/ribeiromendes5014-design/netfliz/domains/progress/be/repo"
	progressservice "github.com/ribeiromendes5014-design/netfliz/domains/progress/be/service"
	streamshandler "github.com/ribeiromendes5014-design/netfliz/domains/streams/be/handler"
	streamsservice "github.com/ribeiromendes5014-design/netfliz/domains/streams/be/service"
	tenantshandler "github.com/ribeiromendes5014-design/netfliz/domains/tenants/be/handler"
	tenantsrepo "github.com/ribeiromendes5014-design/netfliz/domains/tenants/be/repo"
	tenantsservice "github.com/ribeiromendes5014-design/netfliz/domains/tenants/be/service"
	platformauth "github.com/ribeiromendes5014-design/netfliz/platform/go/auth"
	platformlogging "github.com/ribeiromendes5014-design/netfliz/platform/go/logging"
	"github.com/ribeiromendes5014-design/netfliz/platform/go/metrics"
	platformmiddleware "github.com/ribeiromendes5014-design/netfliz/platform/go/middleware"
	"github.com/ribeiromendes5014-design/netfliz/platform/go/persistence"
	tenantmiddleware "github.com/ribeiromendes5014-design/netfliz/platform/go/tenant/middleware"
)

type config struct {
	Port                string        `env:"PORT" envDefault:"3000"`
	ShutdownTimeout     time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	RequestTimeout      time.Duration `env:"REQUEST_TIMEOUT" envDefault:"15s"`
	LogLevel            string        `env:"LOG_LEVEL" envDefault:"info"`
	DatabaseURL         string        `env:"DATABASE_URL,required"`
	SessionSigningKey   string        `env:"SESSION_SIGNING_KEY,required"`
	SessionTTL          time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	PortalCacheTTL      time.Duration `env:"PORTAL_CACHE_TTL" envDefault:"15m"`
	ChannelFetchTimeout time.Duration `env:"CHANNEL_FETCH_TIMEOUT" envDefault:"10s"`
	BootstrapSchema     bool          `env:"BOOTSTRAP_SCHEMA" envDefault:"false"`
}

func main() {
	ctx := context.Background()

	var cfg config
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := platformlogging.NewLogger(platformlogging.Config{
		Component: "api-server",
		Level:     cfg.LogLevel,
	})
	if err != nil {
		log.Fatalf("init zap logger: %v", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	pool, err := persistence.NewPool(ctx, persistence.PoolConfig{ConnString: cfg.DatabaseURL})
	if err != nil {
		logger.Fatal("init postgres pool", zap.Error(err))
	}
	defer persistence.ClosePool(pool)

	if cfg.BootstrapSchema {
		if err := persistence.BootstrapSchema(ctx, pool); err != nil {
			logger.Fatal("bootstrap schema", zap.Error(err))
		}
	}

	issuer, err := platformauth.NewTokenIssuer([]byte(cfg.SessionSigningKey), cfg.SessionTTL)
	if err != nil {
		logger.Fatal("init token issuer", zap.Error(err))
	}
	verifier, err := platformauth.NewTokenVerifier([]byte(cfg.SessionSigningKey))
	if err != nil {
		logger.Fatal("init token verifier", zap.Error(err))
	}

	tenantStore, err := persistence.NewTenantStore(pool)
	if err != nil {
		logger.Fatal("init tenant store", zap.Error(err))
	}
	catalogStore, err := persistence.NewCatalogStore(pool)
	if err != nil {
		logger.Fatal("init catalog store", zap.Error(err))
	}
	progressStore, err := persistence.NewProgressStore(pool)
	if err != nil {
		logger.Fatal("init progress store", zap.Error(err))
	}

	tenantService := tenantsservice.New(tenantsrepo.NewPostgresRepository(tenantStore))
	catalogService := catalogservice.New(catalogrepo.NewPostgresRepository(catalogStore))
	progressService := progressservice.New(progressrepo.NewPostgresRepository(progressStore))

	portalBuilder := portalservice.NewBuilder(catalogService, progressService)
	portalCache := portalservice.NewCache(cfg.PortalCacheTTL)
	portalService := portalservice.New(portalBuilder, portalCache)

	driveResolver := streamsservice.NewDriveResolver(&http.Client{Timeout: 5 * time.Minute})
	channelResolver := streamsservice.NewChannelResolver(cfg.ChannelFetchTimeout)

	tenantHTTPHandler := tenantshandler.New(tenantService, issuer, logger)
	catalogHTTPHandler := cataloghandler.New(catalogService, progressService, tenantService, logger)
	portalHTTPHandler := portalhandler.New(portalService, logger)
	progressHTTPHandler := progresshandler.New(progressService, catalogService, logger)
	streamsHTTPHandler := streamshandler.New(driveResolver, channelResolver, catalogService, logger)

	rootRouter := chi.NewRouter()

	rootRouter.Use(
		chimw.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		platformmiddleware.DefaultCORS(),
	)

	rootRouter.Use(platformlogging.RequestLogger(logger))

	rootRouter.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	rootRouter.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := pool.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	rootRouter.Method(http.MethodGet, "/metrics", metrics.Handler())

	// Video elements fetch this directly and cannot attach a bearer token.
	// It also must not inherit the API request timeout.
	rootRouter.Get("/stream/drive", streamsHTTPHandler.DriveProxy)

	apiRouter := chi.NewRouter()
	apiRouter.Use(chimw.Timeout(cfg.RequestTimeout))
	apiRouter.Use(platformauth.JWT(verifier))
	apiRouter.Use(platformmiddleware.RequestTrace)
	apiRouter.Use(tenantmiddleware.WithTenantSpace(tenantService, tenantmiddleware.Config{
		CacheTTL: time.Minute,
	}))

	apiRouter.Post("/sessions", tenantHTTPHandler.CreateSession)
	apiRouter.Get("/portal", portalHTTPHandler.Portal)
	apiRouter.Post("/portal/cache/invalidate", portalHTTPHandler.InvalidateCache)
	apiRouter.Get("/tenants/{slug}/public", catalogHTTPHandler.PublicCatalog)
	apiRouter.Get("/watch/{videoSlug}", catalogHTTPHandler.Watch)
	apiRouter.Post("/videos/{videoSlug}/progress", progressHTTPHandler.Report)
	apiRouter.Post("/videos/{videoSlug}/progress/reset", progressHTTPHandler.Reset)
	apiRouter.Get("/tv-channels/{videoID}/stream", streamsHTTPHandler.ChannelStream)

	rootRouter.Mount("/api/v1", apiRouter)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      rootRouter,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  2 * time.Minute,
	}

	go func() {
		logger.Info("starting api server", zap.String("port", cfg.Port))
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server listen failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
