package main

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"lotbid/adapters/database"
	"lotbid/api"
)

func ParseArgs(arguments []string) (Args, error) {
	flags := pflag.NewFlagSet("lotbid", pflag.ContinueOnError)

	// server config
	flags.String("server-url", "0.0.0.0:8080", "")
	flags.String("log-level", "info", "debug, info, warn or error")
	flags.String("log-format", "json", "json or text")

	// db config
	flags.String("db-driver", database.DriverPostgres, "postgres or sqlite")
	flags.String("db-dsn", "", "overrides the other db flags")
	flags.String("db-user", "", "")
	flags.String("db-password", "", "")
	flags.String("db-host", "", "")
	flags.Int("db-port", 5432, "")
	flags.String("db-database", "", "")
	flags.String("db-schema", "", "")
	flags.Int("db-max-open-conns", 20, "")
	flags.Int("db-max-idle-conns", 5, "")
	flags.String("db-log-level", "warn", "")
	flags.Bool("db-auto-migrate", false, "")

	// redis config
	flags.String("redis-addr", "", "")
	flags.String("redis-password", "", "")
	flags.Int("redis-db", 15, "")
	flags.String("redis-stream-key-for-rooms", "lotbid-shared-room-stream", "")
	flags.Int64("redis-stream-limit", 10000, "")
	flags.Duration("redis-lock-expiry", 8*time.Second, "")
	flags.Duration("redis-lock-wait", 3*time.Second, "")

	// auth config
	flags.String("jwt-secret", "", "")
	flags.String("jwt-issuer", "lotbid", "")
	flags.String("jwt-audience", "", "")
	flags.String("oidc-issuer-url", "", "")
	flags.String("oidc-client-id", "", "")
	flags.String("oidc-role-claim", "groups", "")
	flags.String("oidc-admin-value", "admin", "")

	// realtime config
	flags.Int("realtime-queue-size", 64, "")
	flags.Duration("realtime-countdown-interval", time.Second, "")
	flags.Duration("realtime-ping-interval", 25*time.Second, "")
	flags.Duration("realtime-write-timeout", 10*time.Second, "")
	flags.Int64("realtime-read-limit", 4096, "")
	flags.StringSlice("realtime-allowed-origins", nil, "")

	// bridge config
	flags.String("bridge-url", "", "")
	flags.String("bridge-secret", "", "")
	flags.Duration("bridge-timeout", 3*time.Second, "")

	// kafka config
	flags.StringSlice("kafka-brokers", nil, "")
	flags.String("kafka-topic", "lotbid.auction-events", "")

	// auction config
	flags.Duration("soft-close-window", 0, "0 disables soft close")
	flags.Duration("soft-close-extension", 2*time.Minute, "")

	if err := flags.Parse(arguments); err != nil {
		return Args{}, err
	}

	// bind pflag to viper
	v := viper.New()
	if err := v.BindPFlags(flags); err != nil {
		return Args{}, err
	}
	v.SetEnvPrefix("LOTBID")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	// initial arguments
	return Args{
		ServerURL: v.GetString("server-url"),
		LogLevel:  v.GetString("log-level"),
		LogFormat: v.GetString("log-format"),
		ServerConfig: api.ServerConfig{
			DB: database.Config{
				Driver:       v.GetString("db-driver"),
				DSN:          v.GetString("db-dsn"),
				User:         v.GetString("db-user"),
				Password:     v.GetString("db-password"),
				Host:         v.GetString("db-host"),
				Port:         v.GetInt("db-port"),
				Database:     v.GetString("db-database"),
				Schema:       v.GetString("db-schema"),
				MaxOpenConns: v.GetInt("db-max-open-conns"),
				MaxIdleConns: v.GetInt("db-max-idle-conns"),
				LogLevel:     v.GetString("db-log-level"),
			},
			AutoMigrate: v.GetBool("db-auto-migrate"),
			Redis: api.RedisConfig{
				Addr:     v.GetString("redis-addr"),
				Password: v.GetString("redis-password"),
				DB:       v.GetInt("redis-db"),
				StreamKeys: api.RedisStreamKeys{
					Rooms: v.GetString("redis-stream-key-for-rooms"),
				},
				StreamLimit: v.GetInt64("redis-stream-limit"),
				LockExpiry:  v.GetDuration("redis-lock-expiry"),
				LockWait:    v.GetDuration("redis-lock-wait"),
			},
			Auth: api.AuthConfig{
				JWTSecret:   v.GetString("jwt-secret"),
				JWTIssuer:   v.GetString("jwt-issuer"),
				JWTAudience: v.GetString("jwt-audience"),
				OIDC: api.OIDCConfig{
					IssuerURL:  v.GetString("oidc-issuer-url"),
					ClientID:   v.GetString("oidc-client-id"),
					RoleClaim:  v.GetString("oidc-role-claim"),
					AdminValue: v.GetString("oidc-admin-value"),
				},
			},
			Realtime: api.RealtimeConfig{
				QueueSize:         v.GetInt("realtime-queue-size"),
				CountdownInterval: v.GetDuration("realtime-countdown-interval"),
				PingInterval:      v.GetDuration("realtime-ping-interval"),
				WriteTimeout:      v.GetDuration("realtime-write-timeout"),
				ReadLimit:         v.GetInt64("realtime-read-limit"),
				AllowedOrigins:    v.GetStringSlice("realtime-allowed-origins"),
			},
			Bridge: api.BridgeConfig{
				URL:     v.GetString("bridge-url"),
				Secret:  v.GetString("bridge-secret"),
				Timeout: v.GetDuration("bridge-timeout"),
			},
			Kafka: api.KafkaConfig{
				Brokers: v.GetStringSlice("kafka-brokers"),
				Topic:   v.GetString("kafka-topic"),
			},
			Auction: api.AuctionConfig{
				SoftCloseWindow:    v.GetDuration("soft-close-window"),
				SoftCloseExtension: v.GetDuration("soft-close-extension"),
			},
		},
	}, nil
}

type Args struct {
	ServerURL    string
	LogLevel     string
	LogFormat    string
	ServerConfig api.ServerConfig
}

// Validate 檢查必要的參數
func (args Args) Validate() error {
	config := args.ServerConfig
	var errs []error
	if args.ServerURL == "" {
		errs = append(errs, errors.New("server-url is required"))
	}
	if config.DB.DSN == "" && (config.DB.Host == "" || config.DB.Database == "") {
		errs = append(errs, errors.New("db-dsn or db-host and db-database are required"))
	}
	if config.Auth.JWTSecret == "" && config.Auth.OIDC.IssuerURL == "" {
		errs = append(errs, errors.New("jwt-secret or oidc-issuer-url is required"))
	}
	if config.Auth.JWTSecret != "" && len(config.Auth.JWTSecret) < 32 {
		errs = append(errs, errors.New("jwt-secret must be at least 32 bytes"))
	}
	if config.Auth.OIDC.IssuerURL != "" && config.Auth.OIDC.ClientID == "" {
		errs = append(errs, errors.New("oidc-client-id is required with oidc-issuer-url"))
	}
	if config.Bridge.URL != "" && config.Bridge.Secret == "" {
		errs = append(errs, errors.New("bridge-secret is required with bridge-url"))
	}
	if len(config.Kafka.Brokers) > 0 && config.Kafka.Topic == "" {
		errs = append(errs, errors.New("kafka-topic is required with kafka-brokers"))
	}
	if config.Auction.SoftCloseWindow < 0 || config.Auction.SoftCloseExtension < 0 {
		errs = append(errs, errors.New("soft-close durations must not be negative"))
	}
	return errors.Join(errs...)
}
