package repositories

import (
	"context"
	"sync"

	"github.com/HSouheill/posts_backend/models"
)

// MemoryPostRepository keeps posts in process memory. It backs
// STORAGE_TYPE=memory and the HTTP tests.
type MemoryPostRepository struct {
	mu    sync.RWMutex
	posts []models.Post
}

func NewMemoryPostRepository() *MemoryPostRepository {
	return &MemoryPostRepository{}
}

func (r *MemoryPostRepository) Create(ctx context.Context, post *models.Post) error {
	if err := ctx.Err(); err != nil {
		return models.NewPersistenceError("insert post", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	post.ID = models.NewPostID()
	r.posts = append(r.posts, clonePost(*post))
	return nil
}

func (r *MemoryPostRepository) FindAll(ctx context.Context) ([]models.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, models.NewPersistenceError("find posts", err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	posts := make([]models.Post, 0, len(r.posts))
	for _, p := range r.posts {
		posts = append(posts, clonePost(p))
	}
	return posts, nil
}

func (r *MemoryPostRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (r *MemoryPostRepository) ServerVersion(ctx context.Context) (string, error) {
	return "in-memory", nil
}

func clonePost(p models.Post) models.Post {
	p.Comments = append([]models.Comment{}, p.Comments...)
	return p
}
