package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/facturechain/facturechain/anchor"
	"github.com/facturechain/facturechain/db"
	"github.com/facturechain/facturechain/db/migrations"
	"github.com/facturechain/facturechain/db/stores"
	"github.com/facturechain/facturechain/lib"
	"github.com/facturechain/facturechain/lib/service"
	"github.com/facturechain/facturechain/lib/tokens"
	"github.com/facturechain/facturechain/lib/transport"
	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun/migrate"
	"github.com/ziflex/lecho/v3"
)

func main() {

	c := &service.Config{}

	// Load configuration from environment variables
	err := godotenv.Load(".env")
	if err != nil {
		fmt.Println("Failed to load .env file")
	}
	err = envconfig.Process("", c)
	if err != nil {
		log.Fatalf("Error loading environment variables: %v", err)
	}

	// Setup logging to STDOUT or a configured log file
	logger := lib.Logger(c.LogFilePath)
	echoLogger := lecho.From(logger)

	startupCtx := context.Background()

	// Open a DB connection based on the configured DATABASE_URI, or fall
	// back to the in-memory store when none is set
	var st *stores.Stores
	if c.DatabaseUri != "" {
		dbConn, err := db.Open(c)
		if err != nil {
			logger.Fatal().Err(err).Msg("Error initializing db connection")
		}
		defer dbConn.Close()

		migrator := migrate.NewMigrator(dbConn, migrations.Migrations)
		err = migrator.Init(startupCtx)
		if err != nil {
			logger.Fatal().Err(err).Msg("Error initializing db migrator")
		}
		_, err = migrator.Migrate(startupCtx)
		if err != nil {
			logger.Fatal().Err(err).Msg("Error migrating database")
		}
		st = stores.NewBunStores(dbConn)
	} else {
		logger.Warn().Msg("DATABASE_URI not set, using the in-memory store")
		st = stores.NewMemoryStores()
	}

	// Setup exception tracking with Sentry if configured
	// sentry init needs to happen before the echo middlewares are added
	if c.SentryDSN != "" {
		if err = sentry.Init(sentry.ClientOptions{
			Dsn:              c.SentryDSN,
			IgnoreErrors:     []string{"401"},
			EnableTracing:    c.SentryTracesSampleRate > 0,
			TracesSampleRate: c.SentryTracesSampleRate,
		}); err != nil {
			logger.Error().Err(err).Msg("sentry init error")
		}
	}

	// Init the blockchain anchorer, a mock unless BLOCKCHAIN_ENABLED is set
	anchorCfg, err := anchor.LoadConfig()
	if err != nil {
		logger.Fatal().Err(err).Msg("Error loading anchoring config")
	}
	anchorer, err := anchor.New(anchorCfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Error initializing the anchoring client")
	}

	svc := &service.FacturechainService{
		Config:   c,
		Stores:   st,
		Anchorer: anchorer,
		Logger:   logger,
	}

	if c.SeedDemo {
		if err := svc.SeedDemoData(startupCtx); err != nil {
			logger.Fatal().Err(err).Msg("Error seeding demo data")
		}
	}

	//init echo server
	e := transport.InitEcho(c, echoLogger)

	logMw := transport.CreateLoggingMiddleware(echoLogger)
	// strict rate limit for auth and anchoring endpoints
	strictRateLimitMiddleware := transport.CreateRateLimitMiddleware(c.StrictRateLimit, c.BurstRateLimit)

	secured := e.Group("", tokens.Middleware(c.JWTSecret), logMw)

	transport.RegisterEndpoints(svc, e, secured, strictRateLimitMiddleware, logMw)

	//Start Prometheus server if necessary
	var echoPrometheus *echo.Echo
	if svc.Config.EnablePrometheus {
		go transport.StartPrometheusEcho(echoLogger, svc, e)
	}

	backGroundCtx, _ := signal.NotifyContext(context.Background(), os.Interrupt)

	// Start server
	go func() {
		if err := e.Start(fmt.Sprintf(":%v", c.Port)); err != nil && err != http.ErrServerClosed {
			e.Logger.Fatal("shutting down the server")
		}
	}()

	<-backGroundCtx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		e.Logger.Fatal(err)
	}
	if echoPrometheus != nil {
		if err := echoPrometheus.Shutdown(ctx); err != nil {
			e.Logger.Fatal(err)
		}
	}
	svc.Logger.Info().Msg("FactureChain exiting gracefully. Goodbye.")
}
