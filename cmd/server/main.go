package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/matrix-system/matrix-pay/cmd/httpserver"
	"github.com/matrix-system/matrix-pay/internal/middleware"
	"github.com/matrix-system/matrix-pay/internal/storage"
	"github.com/matrix-system/matrix-pay/pkg/configpkg"
)

func main() {
	config, err := configpkg.Load("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	logger := middleware.GetLogger(config)

	store, err := storage.Open(config.StoragePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot open storage")
	}

	server, err := httpserver.New(store, logger, config)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot create server")
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		logger.Info().Msg("shutting down")

		if err := server.Close(); err != nil {
			logger.Error().Err(err).Msg("close failed")
		}

		os.Exit(0)
	}()

	logger.Info().Str("address", config.ServerAddress).Msg("starting server")

	if err := server.Engine.Run(config.ServerAddress); err != nil {
		logger.Fatal().Err(err).Msg("cannot start server")
	}
}
