package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	StorageMongo  = "mongo"
	StorageMemory = "memory"

	defaultDBName       = "posts_api"
	defaultCollection   = "posts"
	defaultPort         = "5000"
	defaultUploadDir    = "uploads"
	defaultCacheTTL     = 30 * time.Second
	developmentMongoURI = "mongodb://localhost:27017"
)

// AppConfig holds everything read from the environment at startup
type AppConfig struct {
	Env             string
	Port            string
	StorageType     string
	MongoURI        string
	DBName          string
	PostsCollection string
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	CacheTTL        time.Duration
	UploadDir       string
	TrustProxy      bool
}

// Load reads the configuration from environment variables. Call
// godotenv.Load before it so values from .env are visible.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		Env:             os.Getenv("ENV"),
		Port:            getEnv("PORT", defaultPort),
		StorageType:     getEnv("STORAGE_TYPE", StorageMongo),
		DBName:          getEnv("DB_NAME", defaultDBName),
		PostsCollection: getEnv("POSTS_COLLECTION", defaultCollection),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		CacheTTL:        defaultCacheTTL,
		UploadDir:       getEnv("UPLOAD_DIR", defaultUploadDir),
	}

	switch cfg.StorageType {
	case StorageMongo, StorageMemory:
	default:
		return nil, fmt.Errorf("unknown STORAGE_TYPE %q (expected %q or %q)", cfg.StorageType, StorageMongo, StorageMemory)
	}

	// Check both MONGO_URI and MONGODB_URI
	cfg.MongoURI = os.Getenv("MONGO_URI")
	if cfg.MongoURI == "" {
		cfg.MongoURI = os.Getenv("MONGODB_URI")
	}
	if cfg.MongoURI == "" && cfg.StorageType == StorageMongo {
		if !cfg.IsDevelopment() {
			return nil, fmt.Errorf("MONGO_URI or MONGODB_URI environment variable is required for production")
		}
		cfg.MongoURI = developmentMongoURI
	}

	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		db, err := strconv.Atoi(dbStr)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB %q: %w", dbStr, err)
		}
		cfg.RedisDB = db
	}

	if v := os.Getenv("TRUST_PROXY"); v != "" {
		trust, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid TRUST_PROXY %q: %w", v, err)
		}
		cfg.TrustProxy = trust
	}

	if ttl := os.Getenv("CACHE_TTL"); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil {
			return nil, fmt.Errorf("invalid CACHE_TTL %q: %w", ttl, err)
		}
		cfg.CacheTTL = d
	}

	return cfg, nil
}

func (c *AppConfig) IsDevelopment() bool {
	return c.Env == "development" || c.Env == "dev"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
