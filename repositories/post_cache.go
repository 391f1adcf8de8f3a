package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/HSouheill/posts_backend/models"
)

// ErrCacheMiss is returned by ListCache.GetPosts when nothing is cached.
var ErrCacheMiss = errors.New("post list not cached")

const postListKey = "posts:all"

// ListCache holds the full post listing between writes.
type ListCache interface {
	GetPosts(ctx context.Context) ([]models.Post, error)
	SetPosts(ctx context.Context, posts []models.Post) error
	Invalidate(ctx context.Context) error
}

type RedisListCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisListCache(client *redis.Client, ttl time.Duration) *RedisListCache {
	return &RedisListCache{client: client, ttl: ttl}
}

func (c *RedisListCache) GetPosts(ctx context.Context) ([]models.Post, error) {
	data, err := c.client.Get(ctx, postListKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}

	posts := make([]models.Post, 0)
	if err := json.Unmarshal(data, &posts); err != nil {
		return nil, err
	}
	for i := range posts {
		posts[i].Normalize()
	}
	return posts, nil
}

func (c *RedisListCache) SetPosts(ctx context.Context, posts []models.Post) error {
	data, err := json.Marshal(posts)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, postListKey, data, c.ttl).Err()
}

func (c *RedisListCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, postListKey).Err()
}

// CachedPostRepository serves FindAll from a ListCache and drops the cached
// listing after every successful Create. Cache failures are logged and never
// fail the request. A listing read from the store is not cached if a Create
// completed while it was being read.
type CachedPostRepository struct {
	PostRepository
	cache ListCache

	mu         sync.Mutex
	generation uint64
}

func NewCachedPostRepository(repo PostRepository, cache ListCache) *CachedPostRepository {
	return &CachedPostRepository{PostRepository: repo, cache: cache}
}

func (r *CachedPostRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.PostRepository.Create(ctx, post); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.generation++
	if err := r.cache.Invalidate(ctx); err != nil {
		log.Printf("Warning: failed to invalidate post list cache: %v", err)
	}
	return nil
}

func (r *CachedPostRepository) FindAll(ctx context.Context) ([]models.Post, error) {
	posts, err := r.cache.GetPosts(ctx)
	if err == nil {
		return posts, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		log.Printf("Warning: failed to read post list cache: %v", err)
	}

	r.mu.Lock()
	generation := r.generation
	r.mu.Unlock()

	posts, err = r.PostRepository.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if generation != r.generation {
		return posts, nil
	}
	if err := r.cache.SetPosts(ctx, posts); err != nil {
		log.Printf("Warning: failed to write post list cache: %v", err)
	}
	return posts, nil
}
