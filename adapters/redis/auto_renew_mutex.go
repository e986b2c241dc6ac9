package redis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"

	"lotbid/auction"
)

var ErrLockTimeout = errors.New("timed out waiting for lock")

// AutoRenewMutex 在持有期間定期延長過期時間的分散式鎖
type AutoRenewMutex struct {
	*redsync.Mutex
	cancel   context.CancelFunc
	renewing bool
	mu       sync.Mutex
	wg       sync.WaitGroup
	options  autoRenewMutexOptions
}

type autoRenewMutexOptions struct {
	renewInterval time.Duration
	retryDelay    time.Duration
	expiry        time.Duration
	waitTimeout   time.Duration
	skipLockError bool
}

type AutoRenewMutexOption func(*autoRenewMutexOptions)

// WithAutoRenewMutexRenewInterval 設置自動續期間隔
func WithAutoRenewMutexRenewInterval(d time.Duration) AutoRenewMutexOption {
	return func(o *autoRenewMutexOptions) {
		o.renewInterval = d
	}
}

// WithAutoRenewMutexRetryDelay 設置重試延遲
func WithAutoRenewMutexRetryDelay(d time.Duration) AutoRenewMutexOption {
	return func(o *autoRenewMutexOptions) {
		o.retryDelay = d
	}
}

// WithAutoRenewMutexExpiry 設置鎖過期時間
func WithAutoRenewMutexExpiry(d time.Duration) AutoRenewMutexOption {
	return func(o *autoRenewMutexOptions) {
		o.expiry = d
	}
}

// WithAutoRenewMutexWaitTimeout 設置等待鎖的最長時間，0 表示只受 context 限制
func WithAutoRenewMutexWaitTimeout(d time.Duration) AutoRenewMutexOption {
	return func(o *autoRenewMutexOptions) {
		o.waitTimeout = d
	}
}

// WithAutoRenewMutexSkipLockError 設置是否忽略所有鎖定錯誤
func WithAutoRenewMutexSkipLockError(skip bool) AutoRenewMutexOption {
	return func(o *autoRenewMutexOptions) {
		o.skipLockError = skip
	}
}

func newAutoRenewMutexOptions(opts ...AutoRenewMutexOption) autoRenewMutexOptions {
	options := autoRenewMutexOptions{
		expiry:     8 * time.Second,
		retryDelay: 50 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.expiry <= 0 {
		options.expiry = 8 * time.Second
	}
	// 未設置續期間隔時使用過期時間的1/3
	if options.renewInterval <= 0 {
		options.renewInterval = options.expiry / 3
	}
	return options
}

var (
	_ IAutoRenewMutex = (*AutoRenewMutex)(nil)
	_ auction.Locker  = (*AutoRenewMutex)(nil)
)

// NewAutoRenewMutex 創建一個帶自動續期功能的互斥鎖
func NewAutoRenewMutex(client redis.UniversalClient, key string, opts ...AutoRenewMutexOption) *AutoRenewMutex {
	options := newAutoRenewMutexOptions(opts...)
	rs := redsync.New(goredis.NewPool(client))
	return newAutoRenewMutex(rs, key, options)
}

func newAutoRenewMutex(rs *redsync.Redsync, key string, options autoRenewMutexOptions) *AutoRenewMutex {
	mutex := rs.NewMutex(
		key,
		redsync.WithExpiry(options.expiry),
		redsync.WithTries(1),
		redsync.WithRetryDelay(options.retryDelay),
	)
	return &AutoRenewMutex{
		Mutex:   mutex,
		options: options,
	}
}

// NewBidLockFactory 建立出價用的鎖工廠，所有鎖共用同一個 redsync 連線池
func NewBidLockFactory(client redis.UniversalClient, opts ...AutoRenewMutexOption) auction.LockFactory {
	options := newAutoRenewMutexOptions(opts...)
	rs := redsync.New(goredis.NewPool(client))
	return func(key string) auction.Locker {
		return newAutoRenewMutex(rs, key, options)
	}
}

// Lock 獲取鎖並啟動自動續期，支持通過context取消
// 回傳的 context 會在 Unlock 或續期失敗時取消
func (m *AutoRenewMutex) Lock(ctx context.Context) (context.Context, error) {
	waitCtx := ctx
	if m.options.waitTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, m.options.waitTimeout)
		defer cancel()
	}

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-waitCtx.Done():
			if ctx.Err() == nil && errors.Is(waitCtx.Err(), context.DeadlineExceeded) {
				return nil, ErrLockTimeout
			}
			return nil, ctx.Err()
		case <-timer.C:
			err := m.Mutex.LockContext(waitCtx)
			if err == nil {
				lockCtx, cancel := context.WithCancel(ctx)
				m.startAutoRenew(lockCtx, cancel)
				return lockCtx, nil
			}
			if waitCtx.Err() != nil {
				continue
			}
			// 只有在鎖被佔用或設置了忽略錯誤(skipLockError)時才重試
			var commErr *redsync.RedisError
			if !m.options.skipLockError && errors.As(err, &commErr) {
				return nil, fmt.Errorf("failed to acquire lock: %w", err)
			}
			timer.Reset(m.options.retryDelay)
		}
	}
}

// Unlock 停止自動續期並釋放鎖
func (m *AutoRenewMutex) Unlock() (bool, error) {
	m.stopAutoRenew()
	m.wg.Wait()
	return m.Mutex.Unlock()
}

// Valid 檢查鎖是否仍然有效
func (m *AutoRenewMutex) Valid() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.renewing && time.Now().Before(m.Mutex.Until())
}

func (m *AutoRenewMutex) startAutoRenew(ctx context.Context, cancel context.CancelFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.renewing {
		cancel()
		return
	}

	m.renewing = true
	m.cancel = cancel
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(m.options.renewInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.mu.Lock()
				success, err := m.Mutex.ExtendContext(ctx)
				m.mu.Unlock()
				if err != nil || !success {
					m.stopAutoRenew()
					return
				}
			}
		}
	}()
}

func (m *AutoRenewMutex) stopAutoRenew() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.renewing {
		return
	}

	m.renewing = false
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}
