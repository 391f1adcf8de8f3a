package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/HSouheill/posts_backend/models"
)

type fakeListCache struct {
	posts       []models.Post
	cached      bool
	getErr      error
	invalidated int
}

func (f *fakeListCache) GetPosts(ctx context.Context) ([]models.Post, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if !f.cached {
		return nil, ErrCacheMiss
	}
	return f.posts, nil
}

func (f *fakeListCache) SetPosts(ctx context.Context, posts []models.Post) error {
	f.posts, f.cached = posts, true
	return nil
}

func (f *fakeListCache) Invalidate(ctx context.Context) error {
	f.posts, f.cached = nil, false
	f.invalidated++
	return nil
}

func TestCachedFindAll_ServesSecondReadFromCache(t *testing.T) {
	repo := new(MockPostRepository)
	stored := []models.Post{models.NewPost("hello", "")}
	repo.On("FindAll", mock.Anything).Return(stored, nil).Once()

	cached := NewCachedPostRepository(repo, &fakeListCache{})

	first, err := cached.FindAll(context.Background())
	require.NoError(t, err)
	second, err := cached.FindAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	repo.AssertNumberOfCalls(t, "FindAll", 1)
}

func TestCachedCreate_InvalidatesListing(t *testing.T) {
	repo := new(MockPostRepository)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*models.Post")).Return(nil)
	repo.On("FindAll", mock.Anything).Return([]models.Post{}, nil)

	cache := &fakeListCache{}
	cached := NewCachedPostRepository(repo, cache)

	_, err := cached.FindAll(context.Background())
	require.NoError(t, err)
	assert.True(t, cache.cached)

	post := models.NewPost("new", "")
	require.NoError(t, cached.Create(context.Background(), &post))

	assert.False(t, cache.cached)
	assert.Equal(t, 1, cache.invalidated)
}

func TestCachedCreate_FailureKeepsCache(t *testing.T) {
	repo := new(MockPostRepository)
	repo.On("Create", mock.Anything, mock.Anything).Return(models.NewPersistenceError("insert post", errors.New("boom")))

	cache := &fakeListCache{cached: true}
	cached := NewCachedPostRepository(repo, cache)

	post := models.NewPost("new", "")
	err := cached.Create(context.Background(), &post)

	assert.Error(t, err)
	assert.Equal(t, 0, cache.invalidated)
}

func TestCachedFindAll_CacheErrorFallsThrough(t *testing.T) {
	repo := new(MockPostRepository)
	stored := []models.Post{models.NewPost("hello", "")}
	repo.On("FindAll", mock.Anything).Return(stored, nil)

	cached := NewCachedPostRepository(repo, &fakeListCache{getErr: errors.New("redis down")})

	posts, err := cached.FindAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, stored, posts)
	repo.AssertExpectations(t)
}

func TestCachedFindAll_StoreErrorPropagates(t *testing.T) {
	repo := new(MockPostRepository)
	repo.On("FindAll", mock.Anything).Return(nil, models.NewPersistenceError("find posts", errors.New("timeout")))

	cache := &fakeListCache{}
	cached := NewCachedPostRepository(repo, cache)

	_, err := cached.FindAll(context.Background())

	var pe *models.PersistenceError
	assert.ErrorAs(t, err, &pe)
	assert.False(t, cache.cached)
}

func TestCachedFindAll_CreateDuringReadSkipsCacheFill(t *testing.T) {
	repo := new(MockPostRepository)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	cache := &fakeListCache{}
	cached := NewCachedPostRepository(repo, cache)

	stale := []models.Post{models.NewPost("old", "")}
	repo.On("FindAll", mock.Anything).Return(stale, nil).Run(func(args mock.Arguments) {
		post := models.NewPost("written mid-read", "")
		require.NoError(t, cached.Create(context.Background(), &post))
	}).Once()

	posts, err := cached.FindAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, stale, posts)

	assert.False(t, cache.cached)
	assert.Equal(t, 1, cache.invalidated)
}
