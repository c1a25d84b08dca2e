package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stockledger/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

const (
	defaultCloseTimeout = 5 * time.Second

	// DefaultPrivilegeChannel is the pub/sub channel invalidations travel on
	DefaultPrivilegeChannel = "ledger:privileges:invalidate"
)

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// invalidationMessage is the payload published for every invalidation.
// RoleID 0 means every role.
type invalidationMessage struct {
	RoleID    uint64 `json:"role_id"`
	Origin    string `json:"origin"`
	Timestamp int64  `json:"timestamp"`
}

// RedisPrivilegeInvalidator fans privilege cache invalidations out to every
// instance through Redis Pub/Sub. Messages an instance published itself are
// not delivered back to it.
type RedisPrivilegeInvalidator struct {
	client    *redis.Client
	channel   string
	origin    string
	logger    *zap.Logger
	cancelFn  context.CancelFunc
	doneCh    chan struct{}
	doneOnce  sync.Once
	mu        sync.Mutex
	isRunning bool
}

// RedisPrivilegeInvalidatorOption is a functional option for configuring the invalidator
type RedisPrivilegeInvalidatorOption func(*RedisPrivilegeInvalidator)

// WithChannel sets the Pub/Sub channel name
func WithChannel(channel string) RedisPrivilegeInvalidatorOption {
	return func(i *RedisPrivilegeInvalidator) {
		if channel != "" {
			i.channel = channel
		}
	}
}

// WithLogger sets the logger for the invalidator
func WithLogger(logger *zap.Logger) RedisPrivilegeInvalidatorOption {
	return func(i *RedisPrivilegeInvalidator) {
		i.logger = logger
	}
}

// NewRedisPrivilegeInvalidator creates an invalidator on an existing client.
// The caller keeps ownership of the client.
func NewRedisPrivilegeInvalidator(client *redis.Client, opts ...RedisPrivilegeInvalidatorOption) *RedisPrivilegeInvalidator {
	i := &RedisPrivilegeInvalidator{
		client:  client,
		channel: DefaultPrivilegeChannel,
		origin:  uuid.NewString(),
		logger:  zap.NewNop(),
		doneCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Broadcast publishes an invalidation for roleID
func (i *RedisPrivilegeInvalidator) Broadcast(ctx context.Context, roleID uint64) error {
	data, err := json.Marshal(invalidationMessage{
		RoleID:    roleID,
		Origin:    i.origin,
		Timestamp: time.Now().UnixNano(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	if err := i.client.Publish(ctx, i.channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish invalidation: %w", err)
	}
	i.logger.Debug("published privilege invalidation",
		zap.Uint64("role_id", roleID),
		zap.String("channel", i.channel))
	return nil
}

// Subscribe delivers invalidations from other instances to callback until
// ctx is cancelled or Close is called. It blocks; run it in a goroutine.
func (i *RedisPrivilegeInvalidator) Subscribe(ctx context.Context, callback func(roleID uint64)) error {
	i.mu.Lock()
	if i.isRunning {
		i.mu.Unlock()
		return fmt.Errorf("subscription already running")
	}
	i.isRunning = true
	subCtx, cancel := context.WithCancel(ctx)
	i.cancelFn = cancel
	i.mu.Unlock()

	defer func() {
		i.mu.Lock()
		i.isRunning = false
		i.mu.Unlock()
		i.markDone()
	}()

	pubsub := i.client.Subscribe(subCtx, i.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(subCtx); err != nil {
		return fmt.Errorf("failed to subscribe to channel: %w", err)
	}
	i.logger.Info("subscribed to privilege invalidation channel", zap.String("channel", i.channel))

	ch := pubsub.Channel()
	for {
		select {
		case <-subCtx.Done():
			return subCtx.Err()
		case msg, ok := <-ch:
			if !ok {
				i.logger.Warn("privilege invalidation channel closed")
				return nil
			}
			var m invalidationMessage
			if err := json.Unmarshal([]byte(msg.Payload), &m); err != nil {
				i.logger.Error("malformed privilege invalidation",
					zap.String("payload", msg.Payload),
					zap.Error(err))
				continue
			}
			if m.Origin == i.origin {
				continue
			}
			i.deliver(callback, m.RoleID)
		}
	}
}

func (i *RedisPrivilegeInvalidator) deliver(callback func(uint64), roleID uint64) {
	defer func() {
		if r := recover(); r != nil {
			i.logger.Error("panic in privilege invalidation callback", zap.Any("panic", r))
		}
	}()
	callback(roleID)
}

func (i *RedisPrivilegeInvalidator) markDone() {
	i.doneOnce.Do(func() {
		close(i.doneCh)
	})
}

// Close stops a running subscription and waits for it to finish
func (i *RedisPrivilegeInvalidator) Close() error {
	i.mu.Lock()
	cancelFn := i.cancelFn
	i.mu.Unlock()

	if cancelFn != nil {
		cancelFn()
		select {
		case <-i.doneCh:
		case <-time.After(defaultCloseTimeout):
			i.logger.Warn("timeout waiting for subscription to stop")
		}
	}
	return nil
}
