package storage

import (
	"context"
	"fmt"

	"github.com/shortsforge/automation-engine/internal/config"
)

// New builds the storage backend selected in cfg
func New(ctx context.Context, cfg *config.Config) (StorageInterface, error) {
	switch cfg.StorageBackend {
	case config.StorageFile:
		return NewFileStorage(cfg.StateDir)
	case config.StorageAzure:
		return NewAzureStorage(cfg.StorageAccount, cfg.StorageContainer)
	case config.StorageRedis:
		return NewRedisStorage(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, "youtube-automation")
	case config.StorageS3:
		return NewS3Storage(ctx, cfg.S3Bucket, cfg.S3Region, cfg.S3Prefix)
	case config.StorageMongo:
		return NewMongoStorage(ctx, cfg.MongoURI, cfg.MongoDatabase)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
