package api

import (
	"time"

	"lotbid/adapters/database"
)

type ServerConfig struct {
	DB          database.Config
	AutoMigrate bool
	Redis       RedisConfig
	Auth        AuthConfig
	Realtime    RealtimeConfig
	Bridge      BridgeConfig
	Kafka       KafkaConfig
	Auction     AuctionConfig
}

// RedisConfig 未設置 Addr 時只在本機廣播，出價只依賴資料庫的行鎖
type RedisConfig struct {
	Addr     string
	Password string
	DB       int

	StreamKeys  RedisStreamKeys
	StreamLimit int64
	LockExpiry  time.Duration
	LockWait    time.Duration
}

type RedisStreamKeys struct {
	Rooms string
}

type AuthConfig struct {
	JWTSecret   string
	JWTIssuer   string
	JWTAudience string
	OIDC        OIDCConfig
}

type OIDCConfig struct {
	IssuerURL  string
	ClientID   string
	RoleClaim  string
	AdminValue string
}

type RealtimeConfig struct {
	QueueSize         int
	CountdownInterval time.Duration
	PingInterval      time.Duration
	WriteTimeout      time.Duration
	ReadLimit         int64
	AllowedOrigins    []string
}

// BridgeConfig 設置 URL 時，狀態變更經由 HTTP 通知即時服務，否則直接在本機廣播
// Secret 同時用於驗證收到的通知
type BridgeConfig struct {
	URL     string
	Secret  string
	Timeout time.Duration
}

// KafkaConfig 未設置 Brokers 時不發布領域事件
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

type AuctionConfig struct {
	SoftCloseWindow    time.Duration
	SoftCloseExtension time.Duration
}
