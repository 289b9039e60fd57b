package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"mock_interview_backend/internal/interview"

	"github.com/go-redis/redis/v8"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const sessionCachePrefix = "interview:session:"

// SessionCache 缓存面试原始记录。生成后的题目不会再变，因此只需 TTL 失效。
type SessionCache interface {
	Get(ctx context.Context, id string) (*interview.StoredSession, bool, error)
	Set(ctx context.Context, id string, s *interview.StoredSession) error
	Delete(ctx context.Context, id string) error
}

type RedisSessionCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSessionCache(client *redis.Client, ttl time.Duration) *RedisSessionCache {
	return &RedisSessionCache{client: client, ttl: ttl}
}

func (c *RedisSessionCache) Get(ctx context.Context, id string) (*interview.StoredSession, bool, error) {
	val, err := c.client.Get(ctx, sessionCachePrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var s interview.StoredSession
	if err := json.Unmarshal(val, &s); err != nil {
		return nil, false, err
	}
	return &s, true, nil
}

func (c *RedisSessionCache) Set(ctx context.Context, id string, s *interview.StoredSession) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, sessionCachePrefix+id, payload, c.ttl).Err()
}

func (c *RedisSessionCache) Delete(ctx context.Context, id string) error {
	return c.client.Del(ctx, sessionCachePrefix+id).Err()
}

// LocalSessionCache 基于 go-cache 的进程内缓存，未启用 Redis 时使用
type LocalSessionCache struct {
	cache *gocache.Cache
}

func NewLocalSessionCache(ttl time.Duration) *LocalSessionCache {
	return &LocalSessionCache{cache: gocache.New(ttl, 2*ttl)}
}

func (c *LocalSessionCache) Get(_ context.Context, id string) (*interview.StoredSession, bool, error) {
	v, found := c.cache.Get(sessionCachePrefix + id)
	if !found {
		return nil, false, nil
	}
	s := *(v.(*interview.StoredSession))
	return &s, true, nil
}

func (c *LocalSessionCache) Set(_ context.Context, id string, s *interview.StoredSession) error {
	cp := *s
	c.cache.Set(sessionCachePrefix+id, &cp, gocache.DefaultExpiration)
	return nil
}

func (c *LocalSessionCache) Delete(_ context.Context, id string) error {
	c.cache.Delete(sessionCachePrefix + id)
	return nil
}

// CachedSessionSource 先读缓存再读库；缓存故障只降级，不影响加载
type CachedSessionSource struct {
	source interview.SessionSource
	cache  SessionCache
	log    *zap.Logger
}

func NewCachedSessionSource(source interview.SessionSource, cache SessionCache, log *zap.Logger) *CachedSessionSource {
	if log == nil {
		log = zap.NewNop()
	}
	return &CachedSessionSource{source: source, cache: cache, log: log}
}

func (s *CachedSessionSource) LoadSession(ctx context.Context, id string) (*interview.StoredSession, error) {
	if cached, ok, err := s.cache.Get(ctx, id); err != nil {
		s.log.Warn("session cache read failed", zap.String("mockId", id), zap.Error(err))
	} else if ok {
		return cached, nil
	}

	stored, err := s.source.LoadSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, id, stored); err != nil {
		s.log.Warn("session cache write failed", zap.String("mockId", id), zap.Error(err))
	}
	return stored, nil
}
