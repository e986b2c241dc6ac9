package room

import (
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"lotbid/adapters/redis"
)

type relayOptions struct {
	logger       *slog.Logger
	maxLen       int64
	startID      string
	blockTimeout time.Duration
}

type RelayOption func(*relayOptions)

// WithRelayLogger 設置日誌記錄器
func WithRelayLogger(logger *slog.Logger) RelayOption {
	return func(o *relayOptions) {
		o.logger = logger
	}
}

// WithRelayMaxLen 設置 stream 保留的大約訊息數
func WithRelayMaxLen(maxLen int64) RelayOption {
	return func(o *relayOptions) {
		o.maxLen = maxLen
	}
}

// WithRelayStartID 設置開始讀取的訊息 ID
func WithRelayStartID(id string) RelayOption {
	return func(o *relayOptions) {
		o.startID = id
	}
}

// WithRelayBlockTimeout 設置 XREAD 的阻塞時間
func WithRelayBlockTimeout(d time.Duration) RelayOption {
	return func(o *relayOptions) {
		o.blockTimeout = d
	}
}

// StreamRelay 透過 Redis Stream 在多個實例之間轉送事件
type StreamRelay struct {
	producer redis.IProducer[PublishRequest]
	consumer redis.IConsumer[PublishRequest]
}

var _ Relay = (*StreamRelay)(nil)

func NewStreamRelay(client goredis.UniversalClient, stream string, opts ...RelayOption) (*StreamRelay, error) {
	const op = "NewStreamRelay"
	options := relayOptions{
		logger:       slog.Default(),
		maxLen:       10000,
		startID:      "$",
		blockTimeout: time.Second,
	}
	for _, opt := range opts {
		opt(&options)
	}

	producer, err := redis.NewProducer(client, stream,
		redis.WithProducerLogger[PublishRequest](options.logger),
		redis.WithProducerMaxLen[PublishRequest](options.maxLen),
	)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to create producer, err=%w", op, err)
	}
	consumer, err := redis.NewConsumer(client, stream,
		redis.WithConsumerLogger[PublishRequest](options.logger),
		redis.WithConsumerStartID[PublishRequest](options.startID),
		redis.WithConsumerBlockTimeout[PublishRequest](options.blockTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to create consumer, err=%w", op, err)
	}
	return &StreamRelay{producer: producer, consumer: consumer}, nil
}

func (r *StreamRelay) Start() {
	r.consumer.Start()
	r.producer.Start()
}

func (r *StreamRelay) Publish(req PublishRequest) error {
	return r.producer.Publish(req)
}

func (r *StreamRelay) Subscribe() <-chan PublishRequest {
	return r.consumer.Subscribe()
}

func (r *StreamRelay) Close() {
	r.producer.Close()
	r.consumer.Close()
}
