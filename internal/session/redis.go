package session

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"agribot/internal/common/logger"
	"agribot/internal/models"
)

// RedisStore persists sessions as one JSON value per session key so multiple
// server instances share conversation memory. Read failures degrade to an
// empty session; write failures are surfaced to the caller, who logs and
// moves on. Updates are read-modify-write, so they take a process-local
// stripe lock per session id to keep overlapping requests from losing
// each other's writes.
type RedisStore struct {
	client   *redis.Client
	capacity int
	ttl      time.Duration
	locks    [stripeCount]sync.Mutex
	logger   logger.Logger
}

func NewRedisStore(client *redis.Client, capacity int, ttl time.Duration, log logger.Logger) *RedisStore {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &RedisStore{
		client:   client,
		capacity: capacity,
		ttl:      ttl,
		logger:   log.With(map[string]interface{}{"component": "session-redis"}),
	}
}

func sessionKey(id string) string {
	return fmt.Sprintf("agribot:session:%s", id)
}

func (s *RedisStore) lockFor(id string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(id))
	return &s.locks[h.Sum32()%stripeCount]
}

func (s *RedisStore) Get(ctx context.Context, id string) (*models.SessionContext, error) {
	data, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if err == redis.Nil {
		return emptyContext(id), nil
	}
	if err != nil {
		s.logger.Warn("session read failed, starting empty", map[string]interface{}{
			"session_id": id,
			"error":      err.Error(),
		})
		return emptyContext(id), nil
	}

	var sc models.SessionContext
	if err := json.Unmarshal(data, &sc); err != nil {
		s.logger.Warn("session payload corrupt, starting empty", map[string]interface{}{
			"session_id": id,
			"error":      err.Error(),
		})
		return emptyContext(id), nil
	}
	// omitempty drops empty maps on save; restore the invariant that both
	// halves of the session are always usable.
	if sc.Context == nil {
		sc.Context = map[string]string{}
	}
	if sc.Exchanges == nil {
		sc.Exchanges = []models.Exchange{}
	}
	return &sc, nil
}

func (s *RedisStore) Append(ctx context.Context, id string, exchange models.Exchange) error {
	mu := s.lockFor(id)
	mu.Lock()
	defer mu.Unlock()

	sc, _ := s.Get(ctx, id)
	sc.Exchanges = append([]models.Exchange{exchange}, sc.Exchanges...)
	if len(sc.Exchanges) > s.capacity {
		sc.Exchanges = sc.Exchanges[:s.capacity]
	}
	return s.save(ctx, sc)
}

func (s *RedisStore) SetContext(ctx context.Context, id string, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	mu := s.lockFor(id)
	mu.Lock()
	defer mu.Unlock()

	sc, _ := s.Get(ctx, id)
	for k, v := range values {
		sc.Context[k] = v
	}
	return s.save(ctx, sc)
}

func (s *RedisStore) Clear(ctx context.Context, id string) error {
	return s.client.Del(ctx, sessionKey(id)).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) save(ctx context.Context, sc *models.SessionContext) error {
	data, err := json.Marshal(sc)
	if err != nil {
		return fmt.Errorf("marshal session %s: %w", sc.SessionID, err)
	}
	return s.client.Set(ctx, sessionKey(sc.SessionID), data, s.ttl).Err()
}
