package cart

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/emberlane/storefront-backend/pkg/redis"
)

// RedisIDStore keeps the persisted cart id under the session's namespaced
// key. The id is the only persisted cart datum; everything else is re-fetched
// from the platform on hydration.
type RedisIDStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

func NewRedisIDStore(client *redis.Client, sessionID string, ttl time.Duration) *RedisIDStore {
	return &RedisIDStore{
		client: client,
		key:    client.CartIDKey(sessionID),
		ttl:    ttl,
	}
}

func (s *RedisIDStore) Load(ctx context.Context) (string, error) {
	id, err := s.client.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", err
	}
	return id, nil
}

func (s *RedisIDStore) Save(ctx context.Context, cartID string) error {
	return s.client.Set(ctx, s.key, cartID, s.ttl)
}

func (s *RedisIDStore) Clear(ctx context.Context) error {
	return s.client.Del(ctx, s.key)
}

// MemoryIDStore backs the persistence port with a map for tests and local
// single-process runs.
type MemoryIDStore struct {
	mu sync.Mutex
	id string
}

func NewMemoryIDStore() *MemoryIDStore {
	return &MemoryIDStore{}
}

func (s *MemoryIDStore) Load(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id, nil
}

func (s *MemoryIDStore) Save(_ context.Context, cartID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = cartID
	return nil
}

func (s *MemoryIDStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = ""
	return nil
}
