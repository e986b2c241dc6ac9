package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/microcosm-cc/bluemonday"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"lotbid/adapters/auth"
	"lotbid/adapters/database"
	"lotbid/adapters/kafka"
	redisAdapter "lotbid/adapters/redis"
	"lotbid/adapters/room"
	"lotbid/api/openapi"
	"lotbid/auction"
	"lotbid/models"
)

func init() {
	// 金額以 JSON number 輸出
	decimal.MarshalJSONWithoutQuotes = true
}

// Dependencies 是 ServerImpl 需要的外部連線
// Redis 與 Publisher 可以為 nil
type Dependencies struct {
	DB        *gorm.DB
	Redis     redis.UniversalClient
	Verifier  auth.Verifier
	Publisher kafka.EventPublisher
	Registry  *prometheus.Registry
	Logger    *slog.Logger
	Clock     func() time.Time
}

// listingStore 是 handler 直接讀寫的資料來源
type listingStore interface {
	auction.Store
	UpsertUser(ctx context.Context, user models.User) error
}

type ServerImpl struct {
	db          *gorm.DB
	store       listingStore
	engine      *auction.Engine
	admission   *auction.Admission
	rooms       *room.Manager
	notifier    Notifier
	publisher   kafka.EventPublisher
	verifier    auth.Verifier
	redisClient redis.UniversalClient
	htmlChecker *bluemonday.Policy
	upgrader    websocket.Upgrader
	swagger     *openapi3.T
	registry    *prometheus.Registry
	metrics     *Metrics
	logger      *slog.Logger
	clock       func() time.Time

	config ServerConfig
}

// NewServer 依照設定建立所有連線
func NewServer(ctx context.Context, config ServerConfig) (*ServerImpl, error) {
	const op = "NewServer"

	db, err := database.Open(config.DB)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to connect to database, err=%w", op, err)
	}
	if config.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			return nil, fmt.Errorf("[%s] Fail to migrate database, err=%w", op, err)
		}
	}

	verifiers := auth.Chain{}
	if config.Auth.JWTSecret != "" {
		jwtVerifier, err := auth.NewJWTVerifier([]byte(config.Auth.JWTSecret),
			auth.WithJWTIssuer(config.Auth.JWTIssuer),
			auth.WithJWTAudience(config.Auth.JWTAudience),
		)
		if err != nil {
			return nil, fmt.Errorf("[%s] Fail to create JWT verifier, err=%w", op, err)
		}
		verifiers = append(verifiers, jwtVerifier)
	}
	if config.Auth.OIDC.IssuerURL != "" {
		opts := []auth.OIDCOption{}
		if config.Auth.OIDC.RoleClaim != "" {
			opts = append(opts, auth.WithOIDCRoleClaim(config.Auth.OIDC.RoleClaim))
		}
		if config.Auth.OIDC.AdminValue != "" {
			opts = append(opts, auth.WithOIDCAdminValue(config.Auth.OIDC.AdminValue))
		}
		oidcVerifier, err := auth.NewOIDCVerifier(ctx, config.Auth.OIDC.IssuerURL, config.Auth.OIDC.ClientID, opts...)
		if err != nil {
			return nil, fmt.Errorf("[%s] Fail to create OIDC verifier, err=%w", op, err)
		}
		verifiers = append(verifiers, oidcVerifier)
	}
	if len(verifiers) == 0 {
		return nil, fmt.Errorf("[%s] No token verifier configured", op)
	}

	var redisClient redis.UniversalClient
	if config.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     config.Redis.Addr,
			Password: config.Redis.Password,
			DB:       config.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("[%s] Fail to connect to redis, err=%w", op, err)
		}
	}

	var publisher kafka.EventPublisher = kafka.NopPublisher{}
	if len(config.Kafka.Brokers) > 0 {
		publisher, err = kafka.NewPublisher(config.Kafka.Brokers, config.Kafka.Topic)
		if err != nil {
			return nil, fmt.Errorf("[%s] Fail to create kafka publisher, err=%w", op, err)
		}
	}

	return NewServerWithDependencies(config, Dependencies{
		DB:        db,
		Redis:     redisClient,
		Verifier:  verifiers,
		Publisher: publisher,
	})
}

// NewServerWithDependencies 以已建立的連線組裝服務
func NewServerWithDependencies(config ServerConfig, deps Dependencies) (*ServerImpl, error) {
	const op = "NewServerWithDependencies"
	if deps.DB == nil || deps.Verifier == nil {
		return nil, fmt.Errorf("[%s] Database and verifier are required", op)
	}
	logger := lo.Ternary(deps.Logger != nil, deps.Logger, slog.Default())
	clock := lo.Ternary(deps.Clock != nil, deps.Clock, time.Now)
	registry := lo.Ternary(deps.Registry != nil, deps.Registry, prometheus.NewRegistry())
	var publisher kafka.EventPublisher = kafka.NopPublisher{}
	if deps.Publisher != nil {
		publisher = deps.Publisher
	}
	metrics := NewMetrics(registry)
	swagger, err := openapi.GetSwagger()
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to load openapi document, err=%w", op, err)
	}

	store := database.NewStore(deps.DB, database.WithStoreLogger(logger), database.WithStoreClock(clock))

	managerOpts := []room.ManagerOption{
		room.WithManagerLogger(logger),
		room.WithManagerClock(clock),
		room.WithManagerMetrics(room.NewMetrics(registry)),
	}
	if config.Realtime.QueueSize > 0 {
		managerOpts = append(managerOpts, room.WithManagerQueueSize(config.Realtime.QueueSize))
	}
	if config.Realtime.CountdownInterval > 0 {
		managerOpts = append(managerOpts, room.WithManagerCountdownInterval(config.Realtime.CountdownInterval))
	}

	admissionOpts := []auction.AdmissionOption{
		auction.WithAdmissionLogger(logger),
		auction.WithSoftClose(config.Auction.SoftCloseWindow, config.Auction.SoftCloseExtension),
	}

	if deps.Redis != nil {
		relay, err := room.NewStreamRelay(deps.Redis, lo.CoalesceOrEmpty(config.Redis.StreamKeys.Rooms, "lotbid:rooms"),
			room.WithRelayLogger(logger),
			room.WithRelayMaxLen(config.Redis.StreamLimit),
		)
		if err != nil {
			return nil, fmt.Errorf("[%s] Fail to create room relay, err=%w", op, err)
		}
		managerOpts = append(managerOpts, room.WithManagerRelay(relay))

		lockOpts := []redisAdapter.AutoRenewMutexOption{}
		if config.Redis.LockExpiry > 0 {
			lockOpts = append(lockOpts, redisAdapter.WithAutoRenewMutexExpiry(config.Redis.LockExpiry))
		}
		if config.Redis.LockWait > 0 {
			lockOpts = append(lockOpts, redisAdapter.WithAutoRenewMutexWaitTimeout(config.Redis.LockWait))
		}
		admissionOpts = append(admissionOpts,
			auction.WithAdmissionLockFactory(redisAdapter.NewBidLockFactory(deps.Redis, lockOpts...)))
	}

	rooms := room.NewManager(managerOpts...)

	var notifier Notifier = localNotifier{broadcaster: rooms, logger: logger}
	if config.Bridge.URL != "" {
		bridgeOpts := []BridgeOption{WithBridgeLogger(logger), withBridgeMetrics(metrics)}
		if config.Bridge.Timeout > 0 {
			bridgeOpts = append(bridgeOpts, WithBridgeTimeout(config.Bridge.Timeout))
		}
		notifier = NewBridgeNotifier(config.Bridge.URL, config.Bridge.Secret, bridgeOpts...)
	}

	impl := &ServerImpl{
		db:          deps.DB,
		store:       store,
		engine:      auction.NewEngine(store, auction.WithEngineLogger(logger), auction.WithEngineClock(clock)),
		admission:   auction.NewAdmission(store, rooms, admissionOpts...),
		rooms:       rooms,
		notifier:    notifier,
		publisher:   publisher,
		verifier:    deps.Verifier,
		redisClient: deps.Redis,
		htmlChecker: bluemonday.UGCPolicy(),
		swagger:     swagger,
		registry:    registry,
		metrics:     metrics,
		logger:      logger.With(slog.String("caller", "Server")),
		clock:       clock,
		config:      config,
	}
	impl.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     impl.checkOrigin,
	}
	return impl, nil
}

// RegisterRoutes 註冊所有路由
// openapi.yaml 描述的路由交給 strict handler，WebSocket 與維運路由直接掛在 gin 上
func (impl *ServerImpl) RegisterRoutes(router gin.IRouter) {
	router.GET("/healthz", impl.handleHealth)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(impl.registry, promhttp.HandlerOpts{})))
	router.GET("/openapi.json", impl.handleOpenAPI)
	router.GET("/ws", impl.handleWebSocket)

	group := router.Group("", impl.respondPendingError, auth.OptionalIdentity(impl.verifier))
	openapi.RegisterHandlersWithOptions(group, openapi.NewStrictHandler(impl, nil), openapi.GinServerOptions{
		ErrorHandler: impl.handleRequestError,
	})
}

// Handler 回傳已註冊路由的 gin engine
func (impl *ServerImpl) Handler() *gin.Engine {
	router := gin.New()
	// strict handler 收到的是 *gin.Context，需要它轉發 request 的取消訊號
	router.ContextWithFallback = true
	router.Use(gin.Logger(), gin.Recovery())
	impl.RegisterRoutes(router)
	return router
}

func (impl *ServerImpl) Start() {
	impl.rooms.Start()
	impl.logger.Info("Server started")
}

func (impl *ServerImpl) Close() {
	impl.rooms.Close()
	if err := impl.publisher.Close(); err != nil {
		impl.logger.Warn("Fail to close publisher", slog.Any("error", err))
	}
	if impl.redisClient != nil {
		if err := impl.redisClient.Close(); err != nil && !errors.Is(err, redis.ErrClosed) {
			impl.logger.Warn("Fail to close redis client", slog.Any("error", err))
		}
	}
	if sqlDB, err := impl.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	impl.logger.Info("Server closed")
}

func (impl *ServerImpl) handleOpenAPI(c *gin.Context) {
	c.JSON(http.StatusOK, impl.swagger)
}

func (impl *ServerImpl) handleHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	sqlDB, err := impl.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err == nil && impl.redisClient != nil {
		err = impl.redisClient.Ping(ctx).Err()
	}
	if err != nil {
		impl.logger.Warn("Health check failed", slog.Any("error", err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
