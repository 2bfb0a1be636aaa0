package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/erain9/limitbook/pkg/feedbot"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	logger := log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := feedbot.LoadConfig()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// One HTTP client serves both order placement and midpoint reads.
	client := feedbot.NewHTTPClient(cfg, logger)
	defer client.Close()

	strategy := feedbot.NewLayeredSymmetricQuoting(cfg, logger)

	bot := feedbot.NewBot(cfg, logger, client, client, strategy)
	if err := bot.Start(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start liquidity bot")
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	logger.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := bot.Stop(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("Error during shutdown")
	}

	logger.Info().Msg("Liquidity bot stopped")
}
