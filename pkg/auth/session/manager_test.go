package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"
)

type memoryStore struct {
	mu       sync.Mutex
	sessions map[string]string
	ttls     map[string]time.Duration
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		sessions: make(map[string]string),
		ttls:     make(map[string]time.Duration),
	}
}

func (m *memoryStore) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[key] = value.(string)
	m.ttls[key] = ttl
	return nil
}

func (m *memoryStore) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.sessions[key]
	if !ok {
		return "", redislib.Nil
	}
	return val, nil
}

func (m *memoryStore) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.sessions, key)
	}
	return nil
}

func (m *memoryStore) AccessSessionKey(accessID string) string {
	return "shelf:session:" + accessID
}

func newTestManager(store *memoryStore) *Manager {
	return &Manager{store: store, keyer: store, ttl: 30 * 24 * time.Hour}
}

func TestManagerGenerateStoresTokenWithTTL(t *testing.T) {
	store := newMemoryStore()
	manager := newTestManager(store)

	accessID := NewAccessID()
	token, err := manager.Generate(context.Background(), accessID)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	key := store.AccessSessionKey(accessID)
	if store.sessions[key] != token {
		t.Fatalf("expected stored token %q, got %q", token, store.sessions[key])
	}
	if store.ttls[key] != 30*24*time.Hour {
		t.Fatalf("expected refresh ttl on stored session, got %s", store.ttls[key])
	}
}

func TestManagerGenerateRequiresAccessID(t *testing.T) {
	manager := newTestManager(newMemoryStore())
	if _, err := manager.Generate(context.Background(), "  "); err == nil {
		t.Fatal("expected error for blank access id")
	}
}

func TestManagerRotateSwapsSession(t *testing.T) {
	store := newMemoryStore()
	manager := newTestManager(store)
	ctx := context.Background()

	accessID := NewAccessID()
	token, err := manager.Generate(ctx, accessID)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	newAccessID, newToken, err := manager.Rotate(ctx, accessID, token)
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if newAccessID == accessID || newToken == token {
		t.Fatal("expected a fresh access id and refresh token")
	}
	if _, stale := store.sessions[store.AccessSessionKey(accessID)]; stale {
		t.Fatal("old session should be deleted after rotation")
	}
	if store.sessions[store.AccessSessionKey(newAccessID)] != newToken {
		t.Fatal("new session not stored")
	}
}

func TestManagerRotateRejectsMismatchedToken(t *testing.T) {
	store := newMemoryStore()
	manager := newTestManager(store)
	ctx := context.Background()

	accessID := NewAccessID()
	if _, err := manager.Generate(ctx, accessID); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, _, err := manager.Rotate(ctx, accessID, "forged-token"); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected ErrInvalidRefreshToken, got %v", err)
	}
}

func TestManagerRotateUnknownSession(t *testing.T) {
	manager := newTestManager(newMemoryStore())
	if _, _, err := manager.Rotate(context.Background(), NewAccessID(), "whatever"); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected ErrInvalidRefreshToken for missing session, got %v", err)
	}
}

func TestManagerRevokeAndHasSession(t *testing.T) {
	store := newMemoryStore()
	manager := newTestManager(store)
	ctx := context.Background()

	accessID := NewAccessID()
	if _, err := manager.Generate(ctx, accessID); err != nil {
		t.Fatalf("generate: %v", err)
	}

	active, err := manager.HasSession(ctx, accessID)
	if err != nil {
		t.Fatalf("has session: %v", err)
	}
	if !active {
		t.Fatal("expected session to be active")
	}

	if err := manager.Revoke(ctx, accessID); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	active, err = manager.HasSession(ctx, accessID)
	if err != nil {
		t.Fatalf("has session after revoke: %v", err)
	}
	if active {
		t.Fatal("expected session to be gone after revoke")
	}
}
