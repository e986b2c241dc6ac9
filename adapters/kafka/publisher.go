package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

// EventSettled 是結算完成的事件名稱，放在訊息的 event-type header
const EventSettled = "auction.settled"

// SettledEvent 是拍賣結算後對外發布的領域事件
type SettledEvent struct {
	AuctionID  uuid.UUID        `json:"auctionId"`
	Lot        string           `json:"lot"`
	WinnerID   *uuid.UUID       `json:"winnerId"`
	FinalPrice *decimal.Decimal `json:"finalPrice"`
	BidCount   int              `json:"bidCount"`
	SettledAt  time.Time        `json:"settledAt"`
}

// EventPublisher 發布拍賣的領域事件
type EventPublisher interface {
	PublishSettled(ctx context.Context, event SettledEvent) error
	Close() error
}

// MessageWriter 是 kafka.Writer 用到的方法
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type publisherOptions struct {
	logger  *slog.Logger
	timeout time.Duration
}

type PublisherOption func(*publisherOptions)

// WithPublisherLogger 設置日誌記錄器
func WithPublisherLogger(logger *slog.Logger) PublisherOption {
	return func(o *publisherOptions) {
		o.logger = logger
	}
}

// WithPublisherTimeout 設置單次寫入的最長時間
func WithPublisherTimeout(d time.Duration) PublisherOption {
	return func(o *publisherOptions) {
		o.timeout = d
	}
}

// Publisher 將事件寫入 Kafka，以拍賣 ID 作為 key 讓同一場拍賣的事件保持順序
type Publisher struct {
	writer  MessageWriter
	logger  *slog.Logger
	options publisherOptions
}

var _ EventPublisher = (*Publisher)(nil)

// NewPublisher 建立連到 brokers 的 Publisher
func NewPublisher(brokers []string, topic string, opts ...PublisherOption) (*Publisher, error) {
	const op = "NewPublisher"
	if len(brokers) == 0 {
		return nil, fmt.Errorf("[%s] At least one broker is required", op)
	}
	if topic == "" {
		return nil, fmt.Errorf("[%s] Topic cannot be empty", op)
	}
	options := newPublisherOptions(opts...)
	logger := options.logger.With(slog.String("caller", "KafkaPublisher"), slog.String("topic", topic))
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		Logger: kafka.LoggerFunc(func(msg string, args ...any) {
			logger.Debug(fmt.Sprintf(msg, args...))
		}),
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...any) {
			logger.Warn(fmt.Sprintf(msg, args...))
		}),
	}
	return &Publisher{writer: writer, logger: logger, options: options}, nil
}

// NewPublisherWithWriter 使用指定的 writer (主要用於測試)
func NewPublisherWithWriter(writer MessageWriter, opts ...PublisherOption) *Publisher {
	options := newPublisherOptions(opts...)
	return &Publisher{
		writer:  writer,
		logger:  options.logger.With(slog.String("caller", "KafkaPublisher")),
		options: options,
	}
}

func newPublisherOptions(opts ...PublisherOption) publisherOptions {
	options := publisherOptions{
		logger:  slog.Default(),
		timeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

func (p *Publisher) PublishSettled(ctx context.Context, event SettledEvent) error {
	const op = "PublishSettled"
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("[%s] Fail to marshal event, err=%w", op, err)
	}

	if p.options.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.options.timeout)
		defer cancel()
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.AuctionID.String()),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(EventSettled)},
		},
		Time: event.SettledAt,
	})
	if err != nil {
		return fmt.Errorf("[%s] Fail to write message, err=%w", op, err)
	}
	p.logger.Debug("settled event published", slog.String("auctionId", event.AuctionID.String()))
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// NopPublisher 在沒有設定 Kafka 時使用
type NopPublisher struct{}

var _ EventPublisher = NopPublisher{}

func (NopPublisher) PublishSettled(context.Context, SettledEvent) error { return nil }

func (NopPublisher) Close() error { return nil }
