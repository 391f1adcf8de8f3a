package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/HSouheill/posts_backend/config"
	"github.com/HSouheill/posts_backend/middleware"
	"github.com/HSouheill/posts_backend/repositories"
	"github.com/HSouheill/posts_backend/utils"
)

type postStore interface {
	repositories.PostRepository
	repositories.StoreStatus
}

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		store  postStore
		client *mongo.Client
	)
	switch cfg.StorageType {
	case config.StorageMemory:
		log.Println("Using in-memory post storage")
		store = repositories.NewMemoryPostRepository()
	default:
		client, err = config.ConnectDB(ctx, cfg)
		if err != nil {
			log.Fatal(err)
		}
		store = repositories.NewMongoPostRepository(client, cfg.DBName, cfg.PostsCollection)
	}

	var postRepo repositories.PostRepository = store
	if redisClient := config.ConnectRedis(ctx, cfg); redisClient != nil {
		defer redisClient.Close()
		postRepo = repositories.NewCachedPostRepository(store, repositories.NewRedisListCache(redisClient, cfg.CacheTTL))
	}

	images := utils.NewImageStore(cfg.UploadDir)
	if err := images.InitializeStorage(); err != nil {
		log.Fatal(err)
	}

	rateLimiter := middleware.NewRateLimiter(middleware.DefaultRateLimitConfig())
	done := make(chan struct{})
	defer close(done)
	go rateLimiter.Cleanup(time.Minute, done)

	e := newServer(cfg, store, postRepo, images, rateLimiter)

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.Logger.Fatal(err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	if client != nil {
		if err := client.Disconnect(shutdownCtx); err != nil {
			log.Printf("MongoDB disconnect error: %v", err)
		}
		log.Println("MongoDB connection closed")
	}
}
