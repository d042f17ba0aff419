package session

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix  = "session:"
	redisUserPrefix = "session:user:"
)

// RedisStore keeps sessions as JSON values with a Redis TTL.
// Each user also gets a set of their tokens under session:user:<id>.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) key(token string) string {
	return redisKeyPrefix + token
}

func (s *RedisStore) userKey(userID uint) string {
	return redisUserPrefix + strconv.FormatUint(uint64(userID), 10)
}

func (s *RedisStore) Get(ctx context.Context, token string) (*Identity, error) {
	data, err := s.client.Get(ctx, s.key(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoSession
		}
		return nil, err
	}

	var identity Identity
	if err := json.Unmarshal(data, &identity); err != nil {
		return nil, err
	}
	return &identity, nil
}

func (s *RedisStore) Set(ctx context.Context, token string, identity Identity, ttl time.Duration) error {
	data, err := json.Marshal(identity)
	if err != nil {
		return err
	}

	// The index lives as long as the newest session in it
	userKey := s.userKey(identity.ID)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key(token), data, ttl)
		pipe.SAdd(ctx, userKey, token)
		pipe.Expire(ctx, userKey, ttl)
		return nil
	})
	return err
}

// Delete drops one session. The token may linger in the user index until
// the index expires or the user's sessions are dropped, which is harmless.
func (s *RedisStore) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, s.key(token)).Err()
}

func (s *RedisStore) Expire(ctx context.Context, token string, userID uint, ttl time.Duration) error {
	ok, err := s.client.Expire(ctx, s.key(token), ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrNoSession
	}
	return s.client.Expire(ctx, s.userKey(userID), ttl).Err()
}

func (s *RedisStore) DeleteUser(ctx context.Context, userID uint) error {
	userKey := s.userKey(userID)

	tokens, err := s.client.SMembers(ctx, userKey).Result()
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(tokens)+1)
	for _, token := range tokens {
		keys = append(keys, s.key(token))
	}
	keys = append(keys, userKey)

	return s.client.Del(ctx, keys...).Err()
}
