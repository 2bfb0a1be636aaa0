package config

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server struct {
		HTTPAddr       string        `yaml:"http_addr"`
		LogLevel       string        `yaml:"log_level"`
		LogFormat      string        `yaml:"log_format"`
		SnapshotDepth  int           `yaml:"snapshot_depth"`
		ResyncInterval time.Duration `yaml:"resync_interval"`
	} `yaml:"server"`

	Engine struct {
		SelfTradePolicy string `yaml:"self_trade_policy"`
		EventBuffer     int    `yaml:"event_buffer"`
	} `yaml:"engine"`

	Redis struct {
		Enabled   bool   `yaml:"enabled"`
		Addr      string `yaml:"addr"`
		Password  string `yaml:"password"`
		DB        int    `yaml:"db"`
		MaxTrades int    `yaml:"max_trades"`
	} `yaml:"redis"`

	Kafka struct {
		Enabled    bool   `yaml:"enabled"`
		BrokerAddr string `yaml:"broker_addr"`
		TradeTopic string `yaml:"trade_topic"`
		DepthTopic string `yaml:"depth_topic"`
		GroupID    string `yaml:"group_id"`
	} `yaml:"kafka"`

	Otel struct {
		Enabled  bool   `yaml:"enabled"`
		Endpoint string `yaml:"endpoint"`
	} `yaml:"otel"`
}

// Default configuration values
var (
	configFile    = flag.String("config", "", "Path to config file (YAML)")
	httpPort      = flag.Int("http_port", 8080, "The HTTP server port")
	logLevel      = flag.String("log_level", "info", "Log level: debug, info, warn, error")
	logFormat     = flag.String("log_format", "pretty", "Log format: json, pretty")
	selfTrade     = flag.String("self_trade", "allow", "Self-trade policy: allow, cancel_resting")
	kafkaEnabled  = flag.Bool("kafka", false, "Publish trade and depth feeds to Kafka")
	redisEnabled  = flag.Bool("redis", false, "Persist recent trades to Redis")
	otelEnabled   = flag.Bool("otel", false, "Export traces and metrics via OTLP")
	otelCollector = flag.String("otel_endpoint", "localhost:4317", "OTLP collector endpoint")
)

// LoadConfig loads the configuration from command line flags and optionally from a config file
func LoadConfig() (*Config, error) {
	flag.Parse()

	config := &Config{}
	config.Server.HTTPAddr = fmt.Sprintf(":%d", *httpPort)
	config.Server.LogLevel = *logLevel
	config.Server.LogFormat = *logFormat
	config.Server.ResyncInterval = time.Second
	config.Engine.SelfTradePolicy = *selfTrade
	config.Engine.EventBuffer = 256
	config.Redis.Enabled = *redisEnabled
	config.Redis.Addr = "localhost:6379"
	config.Redis.MaxTrades = 10000
	config.Kafka.Enabled = *kafkaEnabled
	config.Kafka.BrokerAddr = "localhost:9092"
	config.Kafka.TradeTopic = "limitbook-trades"
	config.Kafka.DepthTopic = "limitbook-depth"
	config.Kafka.GroupID = "limitbook"
	config.Otel.Enabled = *otelEnabled
	config.Otel.Endpoint = *otelCollector

	if *configFile != "" {
		yamlFile, err := os.ReadFile(*configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(yamlFile, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}

		log.Printf("Loaded configuration from %s", *configFile)
	}

	return config, nil
}
