package chat

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/paintquotepro/quote-platform/internal/intake"
)

// Session is the persisted envelope for one intake conversation. QuoteID is
// set once the completed conversation has been turned into a stored quote,
// so replays after completion never persist a duplicate.
type Session struct {
	State   intake.State `json:"state"`
	QuoteID string       `json:"quote_id,omitempty"`
}

// Store persists chat sessions between requests. Load returns (nil, nil)
// when no session exists for the key.
type Store interface {
	Load(ctx context.Context, key string) (*Session, error)
	Save(ctx context.Context, key string, sess *Session) error
	Delete(ctx context.Context, key string) error
}

// SessionKey builds the canonical store key for a company's chat session.
func SessionKey(companyID, sessionID string) string {
	return fmt.Sprintf("intake:session:%s:%s", companyID, sessionID)
}

// generateSessionID creates a random session identifier.
func generateSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return uuid.New().String()
	}
	return hex.EncodeToString(b)
}

// MemoryStore keeps sessions in process memory with TTL eviction. Sessions
// are stored serialized so values survive the same JSON round trip they
// would through Redis.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memEntry
	ttl     time.Duration
	done    chan struct{}
	once    sync.Once
}

type memEntry struct {
	data      []byte
	expiresAt time.Time
}

// NewMemoryStore creates a memory-backed session store and starts its
// eviction loop. Call Stop when done.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	s := &MemoryStore{
		entries: make(map[string]memEntry),
		ttl:     ttl,
		done:    make(chan struct{}),
	}
	go s.evictLoop()
	return s
}

func (s *MemoryStore) evictLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			now := time.Now()
			s.mu.Lock()
			for key, entry := range s.entries {
				if now.After(entry.expiresAt) {
					delete(s.entries, key)
				}
			}
			s.mu.Unlock()
		}
	}
}

// Stop terminates the eviction loop.
func (s *MemoryStore) Stop() {
	s.once.Do(func() { close(s.done) })
}

func (s *MemoryStore) Load(_ context.Context, key string) (*Session, error) {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, nil
	}
	var sess Session
	if err := json.Unmarshal(entry.data, &sess); err != nil {
		return nil, fmt.Errorf("chat: decode session: %w", err)
	}
	return &sess, nil
}

func (s *MemoryStore) Save(_ context.Context, key string, sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("chat: marshal session: %w", err)
	}
	s.mu.Lock()
	s.entries[key] = memEntry{data: data, expiresAt: time.Now().Add(s.ttl)}
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	return nil
}

// RedisStore keeps sessions in Redis so conversations survive restarts and
// can be shared across instances.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed session store.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if client == nil {
		panic("chat: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Load(ctx context.Context, key string) (*Session, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("chat: load session: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("chat: decode session: %w", err)
	}
	return &sess, nil
}

func (s *RedisStore) Save(ctx context.Context, key string, sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("chat: marshal session: %w", err)
	}
	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("chat: persist session: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("chat: delete session: %w", err)
	}
	return nil
}
