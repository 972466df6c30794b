package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/rpupo63/oneword-blog-backend/api"
	"github.com/rpupo63/oneword-blog-backend/config"
	"github.com/rpupo63/oneword-blog-backend/content"
	"github.com/rpupo63/oneword-blog-backend/database"
	"github.com/rpupo63/oneword-blog-backend/models"
	"github.com/rpupo63/oneword-blog-backend/services"
)

const shutdownTimeout = 30 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if cfg != nil {
		setupLogger(cfg)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.Info().Str("dbType", cfg.DB.Type).Str("authProvider", cfg.AuthProvider).Msg("Initializing app...")

	db, err := database.Open(cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("Error connecting to database")
	}

	// If generating models, run generation and exit
	if cfg.GenerateModels {
		log.Info().Msg("Generating models and query helpers...")
		if err := models.GenerateModels(db); err != nil {
			log.Fatal().Err(err).Msg("Model generation failed")
		}
		return
	}

	if cfg.AutoMigrate {
		if err := database.Migrate(db, cfg.DB.Type); err != nil {
			log.Fatal().Err(err).Msg("Migration failed")
		}
	} else {
		report, err := models.CheckSchema(db)
		if err != nil {
			log.Warn().Err(err).Msg("Could not compare schema with models")
		} else {
			report.Log()
		}
	}

	currentDB := database.New(db)

	generator, err := services.NewGenerator(cfg.LLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing content generator")
	}
	authenticator, err := services.NewAuthenticator(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing authenticator")
	}
	publisher := services.NewPublisher(currentDB.BlogRepo(), generator, content.NewRenderer())

	server := api.NewServer(cfg, publisher, authenticator, currentDB)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(server.Start)
	g.Go(func() error {
		<-gCtx.Done()
		return server.ShutdownGracefully(shutdownTimeout)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("Server stopped with error")
		os.Exit(1)
	}
	log.Info().Msg("Server stopped")
}

func setupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if cfg.LogFormat == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}
