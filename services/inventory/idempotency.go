package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// IdempotencyStore registra os request IDs de lotes já processados, para que
// um lote reenviado após um ack perdido não seja aplicado duas vezes
type IdempotencyStore interface {
	// MarkProcessed marca o request ID como processado com um TTL.
	// Retorna true se o ID era novo, false se já tinha sido visto
	MarkProcessed(ctx context.Context, requestID string, ttl time.Duration) (bool, error)

	// Release libera o request ID (usado quando o processamento falha
	// depois da marcação, para permitir a retentativa)
	Release(ctx context.Context, requestID string) error
}

// RedisIdempotencyStore implementa IdempotencyStore usando Redis (SETNX)
type RedisIdempotencyStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisIdempotencyStore cria uma nova instância de RedisIdempotencyStore
func NewRedisIdempotencyStore(client *redis.Client) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{
		client:    client,
		keyPrefix: "stockout:batch:",
	}
}

// MarkProcessed marca o request ID usando SETNX atômico com TTL
func (s *RedisIdempotencyStore) MarkProcessed(ctx context.Context, requestID string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, s.keyPrefix+requestID, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark request as processed: %w", err)
	}
	return ok, nil
}

// Release remove a marca do request ID
func (s *RedisIdempotencyStore) Release(ctx context.Context, requestID string) error {
	return s.client.Del(ctx, s.keyPrefix+requestID).Err()
}

// InMemoryIdempotencyStore implementa IdempotencyStore em memória, para
// testes e execução local sem Redis
type InMemoryIdempotencyStore struct {
	mu   sync.Mutex
	seen map[string]time.Time
}

// NewInMemoryIdempotencyStore cria uma nova instância de InMemoryIdempotencyStore
func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	return &InMemoryIdempotencyStore{seen: make(map[string]time.Time)}
}

// MarkProcessed marca o request ID em memória
func (s *InMemoryIdempotencyStore) MarkProcessed(ctx context.Context, requestID string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if expiry, ok := s.seen[requestID]; ok && time.Now().Before(expiry) {
		return false, nil
	}
	s.seen[requestID] = time.Now().Add(ttl)
	return true, nil
}

// Release remove a marca do request ID
func (s *InMemoryIdempotencyStore) Release(ctx context.Context, requestID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.seen, requestID)
	return nil
}
