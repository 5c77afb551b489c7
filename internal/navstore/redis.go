package navstore

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/s0oraj/roadmapgalaxy/internal/errors"
)

// Backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config selects and configures the backend.
type Config struct {
	Backend  string
	URL      string
	Host     string
	Port     string
	Password string
	DB       int
	Key      string
	Timeout  time.Duration
}

// DefaultConfig returns an in-memory store.
func DefaultConfig() Config {
	return Config{
		Backend: BackendMemory,
		Host:    "localhost",
		Port:    "6379",
		Key:     DefaultKey,
		Timeout: 3 * time.Second,
	}
}

// Validate checks the backend name.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendMemory, BackendRedis:
		return nil
	default:
		return errors.Configurationf("unknown store backend %q", c.Backend)
	}
}

// Client is the subset of *redis.Client the store uses.
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Close() error
}

// RedisStore keeps the navigation record as JSON under one key.
type RedisStore struct {
	client  Client
	key     string
	timeout time.Duration
	logger  *slog.Logger
}

// NewRedisStore wraps an established client.
func NewRedisStore(client Client, key string, timeout time.Duration, logger *slog.Logger) *RedisStore {
	if key == "" {
		key = DefaultKey
	}
	return &RedisStore{
		client:  client,
		key:     key,
		timeout: timeout,
		logger:  logger.With("component", "navstore", "backend", BackendRedis),
	}
}

func (s *RedisStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// Load returns DefaultState when the key does not exist. An unknown scene
// in a stored record is treated as the galaxy.
func (s *RedisStore) Load(ctx context.Context) (State, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	raw, err := s.client.Get(ctx, s.key).Result()
	if stderrors.Is(err, redis.Nil) {
		s.logger.Debug("No navigation state stored, using default", "operation", "load")
		return DefaultState(), nil
	}
	if err != nil {
		return DefaultState(), errors.WrapExternal("failed to load navigation state", err)
	}

	var st State
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		return DefaultState(), errors.WrapExternal("corrupt navigation state", err)
	}
	if !st.CurrentScene.Valid() {
		s.logger.Warn("Unknown scene in stored state", "operation", "load", "scene", st.CurrentScene)
		st.CurrentScene = SceneGalaxy
	}
	return st, nil
}

func (s *RedisStore) Save(ctx context.Context, st State) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	data, err := json.Marshal(st)
	if err != nil {
		return errors.WrapInternal("failed to encode navigation state", err)
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return errors.WrapExternal("failed to save navigation state", err)
	}
	s.logger.Debug("Navigation state saved", "operation", "save",
		"scene", st.CurrentScene, "level", st.SelectedLevel)
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Connect opens the configured backend. A Redis backend is pinged before
// use; callers fall back to NewMemoryStore when it fails.
func Connect(ctx context.Context, cfg Config, logger *slog.Logger) (Store, error) {
	base := logger
	logger = logger.With("component", "navstore", "operation", "connect")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Backend == BackendMemory {
		logger.Info("Using in-memory navigation store")
		return NewMemoryStore(), nil
	}

	var rdb *redis.Client
	if cfg.URL != "" {
		logger.Debug("Connecting to Redis using URL")
		opts, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, errors.WrapConfiguration("failed to parse Redis URL", err)
		}
		rdb = redis.NewClient(opts)
	} else {
		logger.Debug("Connecting to Redis using host/port", "host", cfg.Host, "port", cfg.Port)
		rdb = redis.NewClient(&redis.Options{
			Addr:         fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
			Password:     cfg.Password,
			DB:           cfg.DB,
			DialTimeout:  cfg.Timeout,
			ReadTimeout:  cfg.Timeout,
			WriteTimeout: cfg.Timeout,
			PoolSize:     2,
		})
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errors.WrapExternal("failed to ping Redis", err)
	}

	logger.Info("Redis connection established successfully")
	return NewRedisStore(rdb, cfg.Key, cfg.Timeout, base), nil
}
