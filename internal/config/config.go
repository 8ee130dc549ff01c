package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config holds the whole configuration surface of the service.
type Config struct {
	ServerAddress string
	PostgresConn  string
	MigrationURL  string
	RedisAddr     string
	RedisPassword string

	SweepInterval    time.Duration
	DispatchInterval time.Duration
	DispatchBatch    int

	MinAuctionDuration time.Duration
	MaxAuctionDuration time.Duration

	ExtensionWindow        time.Duration
	MaxExtensions          int
	MinBidDecrementPercent float64
	SubmitRetryAttempts    int
}

// LoadConfig reads app.env from path and applies environment overrides.
func LoadConfig(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("app")
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	viper.SetDefault("SERVER_ADDRESS", ":8080")
	viper.SetDefault("MIGRATION_URL", "file://migrations")
	viper.SetDefault("REDIS_ADDRESS", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("SWEEP_INTERVAL", "30s")
	viper.SetDefault("DISPATCH_INTERVAL", "10s")
	viper.SetDefault("DISPATCH_BATCH", 100)
	viper.SetDefault("MIN_AUCTION_DURATION", "1h")
	viper.SetDefault("MAX_AUCTION_DURATION", "720h")
	viper.SetDefault("EXTENSION_WINDOW", "10m")
	viper.SetDefault("MAX_EXTENSIONS", 5)
	viper.SetDefault("MIN_BID_DECREMENT_PERCENT", 0.0)
	viper.SetDefault("SUBMIT_RETRY_ATTEMPTS", 3)

	if err := viper.ReadInConfig(); err != nil {
		// config file is optional when every value comes from the environment
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	cfg := &Config{
		ServerAddress:          viper.GetString("SERVER_ADDRESS"),
		PostgresConn:           viper.GetString("POSTGRES_CONN"),
		MigrationURL:           viper.GetString("MIGRATION_URL"),
		RedisAddr:              viper.GetString("REDIS_ADDRESS"),
		RedisPassword:          viper.GetString("REDIS_PASSWORD"),
		SweepInterval:          viper.GetDuration("SWEEP_INTERVAL"),
		DispatchInterval:       viper.GetDuration("DISPATCH_INTERVAL"),
		DispatchBatch:          viper.GetInt("DISPATCH_BATCH"),
		MinAuctionDuration:     viper.GetDuration("MIN_AUCTION_DURATION"),
		MaxAuctionDuration:     viper.GetDuration("MAX_AUCTION_DURATION"),
		ExtensionWindow:        viper.GetDuration("EXTENSION_WINDOW"),
		MaxExtensions:          viper.GetInt("MAX_EXTENSIONS"),
		MinBidDecrementPercent: viper.GetFloat64("MIN_BID_DECREMENT_PERCENT"),
		SubmitRetryAttempts:    viper.GetInt("SUBMIT_RETRY_ATTEMPTS"),
	}

	return cfg, nil
}
