package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/erain9/limitbook/config"
	"github.com/erain9/limitbook/pkg/core"
	"github.com/erain9/limitbook/pkg/db/queue"
	"github.com/erain9/limitbook/pkg/event"
	"github.com/erain9/limitbook/pkg/logging"
	"github.com/erain9/limitbook/pkg/messaging"
	"github.com/erain9/limitbook/pkg/messaging/kafka"
	"github.com/erain9/limitbook/pkg/otel"
	"github.com/erain9/limitbook/pkg/server"
	"github.com/erain9/limitbook/pkg/store/redis"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logging.Setup(logging.Config{
		Level:  cfg.Server.LogLevel,
		Pretty: cfg.Server.LogFormat == "pretty",
	})
	logger := zlog.Logger
	ctx := logger.WithContext(context.Background())

	cleanup, err := otel.Init(otel.Config{
		ServiceVersion:   "1.0.0",
		Endpoint:         cfg.Otel.Endpoint,
		CollectorEnabled: cfg.Otel.Enabled,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize OpenTelemetry")
	}
	defer cleanup()

	if cfg.Otel.Enabled {
		if err := otel.StartRuntimeMetrics(); err != nil {
			logger.Warn().Err(err).Msg("Failed to start runtime metrics")
		}
	}

	// The hub feeds the websocket subscribers; further publishers hang off
	// the same event stream.
	hub := event.NewHub(cfg.Engine.EventBuffer)
	publishers := event.Multi{hub}

	var tradeStore *redis.TradeStore
	if cfg.Redis.Enabled {
		tradeStore, err = redis.NewTradeStore(redis.Config{
			Addr:      cfg.Redis.Addr,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			MaxTrades: cfg.Redis.MaxTrades,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer tradeStore.Close()
		logger.Info().Str("addr", cfg.Redis.Addr).Msg("Redis trade store connected")
	}

	tradeSenders := setupTradeSenders(ctx, cfg, tradeStore)
	if len(tradeSenders) > 0 {
		feed := messaging.NewTradeFeed(messaging.MultiSender(tradeSenders), 0)
		defer feed.Close()
		publishers = append(publishers, feed)
	}

	if cfg.Kafka.Enabled {
		queue.ConfigurePool([]string{cfg.Kafka.BrokerAddr}, cfg.Kafka.DepthTopic)
		depthFeed := queue.NewDepthFeed(0)
		defer depthFeed.Close()
		publishers = append(publishers, depthFeed)

		// Developer-facing printer for the trade feed.
		consumer := kafka.SetupConsumer(ctx, logger, cfg.Kafka.BrokerAddr, cfg.Kafka.TradeTopic, cfg.Kafka.GroupID)
		defer consumer.Close()
	}

	engine := core.NewEngine(core.EngineConfig{
		SelfTrade: core.ParseSelfTradePolicy(cfg.Engine.SelfTradePolicy),
		Publisher: publishers,
	})

	srv := server.New(server.Config{
		Addr:           cfg.Server.HTTPAddr,
		SnapshotDepth:  cfg.Server.SnapshotDepth,
		ResyncInterval: cfg.Server.ResyncInterval,
	}, engine, hub, tradeStore)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Failed to serve HTTP")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	sig := <-sigCh

	logger.Info().Str("signal", sig.String()).Msg("Received signal, shutting down")

	// Stop accepting commands first so shutdown drains a quiet book.
	engine.Halt()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown error")
	}

	logger.Info().Msg("Server shutdown complete")
}

// setupTradeSenders builds the set of destinations executed trades fan out
// to: the Kafka trade topic and the Redis trade log, as configured.
func setupTradeSenders(ctx context.Context, cfg *config.Config, tradeStore *redis.TradeStore) []messaging.MessageSender {
	logger := zerolog.Ctx(ctx)

	var senders []messaging.MessageSender
	if cfg.Kafka.Enabled {
		sender, err := kafka.NewKafkaMessageSender(cfg.Kafka.BrokerAddr, cfg.Kafka.TradeTopic)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to create Kafka trade sender, continuing without it")
		} else {
			senders = append(senders, sender)
			logger.Info().Str("topic", cfg.Kafka.TradeTopic).Msg("Kafka trade feed enabled")
		}
	}
	if tradeStore != nil {
		senders = append(senders, tradeStore)
	}
	return senders
}
