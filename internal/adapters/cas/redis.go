package cas

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// RedisKeyPrefix namespaces configuration cache keys.
const RedisKeyPrefix = "kiln:configuration-cache:"

const clearBatchSize = 256

// RedisClient is the subset of the go-redis client used by RedisStore.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Close() error
}

// RedisStore keeps entries in redis so that machines can share them.
// A single SET publishes an entry atomically.
type RedisStore struct {
	client RedisClient
	codec  *Codec
	ttl    time.Duration
}

var _ ports.SnapshotStore = (*RedisStore)(nil)

// NewRedisStore creates a RedisStore on an existing client.
// A zero ttl keeps entries until they are evicted.
func NewRedisStore(client RedisClient, codec *Codec, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, codec: codec, ttl: ttl}
}

// OpenRedisStore connects to the redis server at dsn, e.g. redis://localhost:6379/0.
func OpenRedisStore(ctx context.Context, dsn string, codec *Codec, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(dsn)
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrStoreCreateFailed.Error())
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreCreateFailed.Error()), "addr", opts.Addr)
	}
	return NewRedisStore(client, codec, ttl), nil
}

func redisKey(fp domain.Fingerprint) string {
	return RedisKeyPrefix + fp.String()
}

// Load reads the entry for fp. Returns nil, nil if there is none.
func (s *RedisStore) Load(ctx context.Context, fp domain.Fingerprint) (*domain.CacheEntry, error) {
	if err := fp.Validate(); err != nil {
		return nil, err
	}

	data, err := s.client.Get(ctx, redisKey(fp)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreReadFailed.Error()), "key", redisKey(fp))
	}
	return s.codec.Decode(fp, data)
}

// Save stores the entry for fp with the configured TTL.
func (s *RedisStore) Save(ctx context.Context, fp domain.Fingerprint, model *domain.BuildModel) error {
	if err := fp.Validate(); err != nil {
		return err
	}

	data, err := s.codec.Encode(fp, model)
	if err != nil {
		return err
	}

	if err := s.client.Set(ctx, redisKey(fp), data, s.ttl).Err(); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "key", redisKey(fp))
	}
	return nil
}

// Clear deletes every configuration cache key.
func (s *RedisStore) Clear(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, RedisKeyPrefix+"*", clearBatchSize).Result()
		if err != nil {
			return zerr.Wrap(err, domain.ErrStoreWriteFailed.Error())
		}
		if len(keys) > 0 {
			if err := s.client.Del(ctx, keys...).Err(); err != nil {
				return zerr.Wrap(err, domain.ErrStoreWriteFailed.Error())
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

// Close closes the client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
