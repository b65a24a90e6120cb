// FilePath: internal/repository/redis/redis.store.go
package redis

import (
	"context"
	goerrors "errors"
	"fmt"
	"strconv"
	"time"

	"github.com/itsatony/pillhub/internal/errors"
	"github.com/itsatony/pillhub/internal/repository"
	goredis "github.com/redis/go-redis/v9"
	nuts "github.com/vaudience/go-nuts"
)

const (
	defaultKeyPrefix = "pillhub"
	defaultMarkerTTL = 48 * time.Hour
)

// Config holds the redis connection and key layout
type Config struct {
	Host      string
	Port      int
	Password  string
	DB        int
	KeyPrefix string
	MarkerTTL time.Duration
}

// Store keeps one redis string per record kind
type Store struct {
	client    goredis.UniversalClient
	keyPrefix string
	markerTTL time.Duration
}

// NewStore connects to redis and verifies the connection
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, errors.NewUnavailableError("failed to connect to redis", err)
	}
	nuts.L.Infof("[RedisStore] Connected to %s:%d/%d", cfg.Host, cfg.Port, cfg.DB)
	return NewStoreWithClient(client, cfg), nil
}

// NewStoreWithClient wraps an existing client
func NewStoreWithClient(client goredis.UniversalClient, cfg Config) *Store {
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	ttl := cfg.MarkerTTL
	if ttl <= 0 {
		ttl = defaultMarkerTTL
	}
	return &Store{client: client, keyPrefix: prefix, markerTTL: ttl}
}

func (s *Store) Load(ctx context.Context, kind repository.Kind) ([]byte, error) {
	doc, err := s.client.Get(ctx, s.recordKey(kind)).Bytes()
	if err != nil {
		if goerrors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, errors.NewDatabaseError("failed to read "+string(kind), err)
	}
	return doc, nil
}

func (s *Store) Save(ctx context.Context, kind repository.Kind, doc []byte) error {
	if err := s.client.Set(ctx, s.recordKey(kind), doc, 0).Err(); err != nil {
		return errors.NewDatabaseError("failed to write "+string(kind), err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return errors.NewUnavailableError("redis unavailable", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

// Claim sets the (schedule, date) marker only if absent. The marker expires after
// MarkerTTL, long enough to outlive the target-zone day it guards.
func (s *Store) Claim(ctx context.Context, scheduleID, date string, at time.Time) (bool, error) {
	ok, err := s.client.SetNX(ctx, s.markerKey(scheduleID, date), strconv.FormatInt(at.UnixMilli(), 10), s.markerTTL).Result()
	if err != nil {
		return false, errors.NewDatabaseError("failed to claim execution", err)
	}
	return ok, nil
}

func (s *Store) recordKey(kind repository.Kind) string {
	return s.keyPrefix + ":records:" + string(kind)
}

func (s *Store) markerKey(scheduleID, date string) string {
	return s.keyPrefix + ":executed:" + scheduleID + ":" + date
}
