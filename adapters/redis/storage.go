package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"ratereminder/engine"
)

// Config holds Redis connection configuration
type Config struct {
	Addr         string        `json:"addr" koanf:"addr" env:"RATEREMINDER_REDIS_ADDR"`
	Password     string        `json:"password" koanf:"password" env:"RATEREMINDER_REDIS_PASSWORD"`
	DB           int           `json:"db" koanf:"db" env:"RATEREMINDER_REDIS_DB"`
	KeyPrefix    string        `json:"key_prefix" koanf:"key_prefix" env:"RATEREMINDER_REDIS_KEY_PREFIX"`
	PoolSize     int           `json:"pool_size" koanf:"pool_size"`
	MinIdleConns int           `json:"min_idle_conns" koanf:"min_idle_conns"`
	DialTimeout  time.Duration `json:"dial_timeout" koanf:"dial_timeout"`
	ReadTimeout  time.Duration `json:"read_timeout" koanf:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout" koanf:"write_timeout"`
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		Addr:         "localhost:6379",
		Password:     "",
		DB:           0,
		KeyPrefix:    "ratereminder",
		PoolSize:     4,
		MinIdleConns: 1,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// Store implements engine.Backend on Redis.
// Data structure:
// - {prefix}:container:{name} -> hash of value name to string value
type Store struct {
	client *redis.Client
	prefix string
}

// New creates a new Redis-backed storage with the provided configuration
func New(config Config) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         config.Addr,
		Password:     config.Password,
		DB:           config.DB,
		PoolSize:     config.PoolSize,
		MinIdleConns: config.MinIdleConns,
		DialTimeout:  config.DialTimeout,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Store{client: client, prefix: config.KeyPrefix}, nil
}

// NewWithClient creates a Store using an existing Redis client (useful for testing)
func NewWithClient(client *redis.Client, prefix string) *Store {
	return &Store{client: client, prefix: prefix}
}

// Close closes the Redis connection
func (s *Store) Close() error {
	return s.client.Close()
}

// containerKey generates the Redis key for a settings container
func (s *Store) containerKey(container string) string {
	if s.prefix == "" {
		return "container:" + container
	}
	return fmt.Sprintf("%s:container:%s", s.prefix, container)
}

// Get reads the container hash. Redis never stores an empty hash, so a container
// written with no values reads back as missing.
func (s *Store) Get(ctx context.Context, container string) (map[string]string, bool, error) {
	values, err := s.client.HGetAll(ctx, s.containerKey(container)).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to read container %s: %w", container, err)
	}
	if len(values) == 0 {
		return nil, false, nil
	}
	return values, true, nil
}

// Put replaces the container hash inside MULTI/EXEC so readers never see a mix of old
// and new values.
func (s *Store) Put(ctx context.Context, container string, values map[string]string) error {
	key := s.containerKey(container)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(values) > 0 {
			pipe.HSet(ctx, key, fieldArgs(values)...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write container %s: %w", container, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, container string) error {
	if err := s.client.Del(ctx, s.containerKey(container)).Err(); err != nil {
		return fmt.Errorf("failed to delete container %s: %w", container, err)
	}
	return nil
}

// fieldArgs flattens values into HSET field/value pairs.
func fieldArgs(values map[string]string) []interface{} {
	args := make([]interface{}, 0, len(values)*2)
	for k, v := range values {
		args = append(args, k, v)
	}
	return args
}

var _ engine.Backend = (*Store)(nil)
