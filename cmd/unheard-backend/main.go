package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	flag "github.com/spf13/pflag"

	"github.com/unheard/unheard-backend/pkg/config"
	"github.com/unheard/unheard-backend/pkg/database"
	"github.com/unheard/unheard-backend/pkg/service/core"
	apiclients "github.com/unheard/unheard-backend/pkg/service/core/api"
	"github.com/unheard/unheard-backend/pkg/service/core/handlers"
	"github.com/unheard/unheard-backend/pkg/service/core/routes"
	"github.com/unheard/unheard-backend/pkg/service/core/storage"
	"github.com/unheard/unheard-backend/pkg/syncers/stories"
)

var configFilePath = flag.String("config", "config.yaml", "path to config file")

var syncOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "unheard_backend",
	Name:      "sync_records",
	Help:      "Per-record sync outcomes by direction.",
}, []string{"direction", "outcome"})

func main() {
	flag.Parse()

	log := zerolog.New(os.Stdout).With().Timestamp().Logger()

	fileParts, err := config.ProcessConfigPath(*configFilePath)
	if err != nil {
		log.Fatal().Err(err).Msg("processing config path")
	}

	cfg, err := config.NewFileSystemLoader().Load(fileParts.FileName, fileParts.Path, "UNHEARD", config.NewDefaultEnvBinder())
	if err != nil {
		log.Fatal().Err(err).Msg("loading config")
	}

	err = cfg.Validate()
	if err != nil {
		log.Fatal().Err(err).Msg("validating config")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatal().Err(err).Msg("parsing log level")
	}
	log = log.Level(level)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer cancel()

	repo, err := database.New(
		cfg.Postgres.ConnectionString(),
		cfg.Postgres.Configuration.MaxIdleConnections,
		cfg.Postgres.Configuration.MaxOpenConnections,
		log.With().Str("component", "database").Logger(),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("setting up database")
	}

	stores := storage.NewStores(repo)
	apiClients := apiclients.NewClients(cfg, log)
	services := core.NewServices(stores, apiClients, syncOutcomes, log)

	if cfg.Sync.WorkerIntervalSec > 0 {
		synchronizer := stories.New(
			services.SyncService,
			cfg.Sync.WorkerIntervalSec,
			log.With().Str("component", "syncer").Logger(),
		)
		go synchronizer.Run(ctx)
	}

	h := handlers.NewHandlers(services, log)

	cronSecret := handlers.CronSecretMiddleware(cfg.Sync.CronSecret, log)
	adminAuth := handlers.TokenAuthMiddleware(cfg.Sync.AdminToken, log)

	router := chi.NewRouter()

	routes.Add(router,
		routes.NewStoryRoutes(routes.NewStoryEndpoints(log, h.StoryHandler), adminAuth),
		routes.NewSyncRoutes(routes.NewSyncEndpoints(log, h.SyncHandler), cronSecret, adminAuth),
		routes.NewMetricsRoutes(routes.NewMetricsEndpoints(prom())),
	)

	if cfg.Debug {
		err = routes.Print(router, os.Stdout)
		if err != nil {
			log.Fatal().Err(err).Msg("printing routes")
		}
	}

	server := http.Server{
		Addr:    net.JoinHostPort(cfg.Server.Address, cfg.Server.Port),
		Handler: router,
	}

	log.Info().Msgf("Listening on %s:%s", cfg.Server.Address, cfg.Server.Port)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("shutdown error")
	}
}

func prom(cols ...prometheus.Collector) *prometheus.Registry {
	r := prometheus.NewRegistry()
	r.MustRegister(syncOutcomes)
	r.MustRegister(prometheus.NewGoCollector())
	r.MustRegister(cols...)

	return r
}
