package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RedisStorage keeps objects as string keys under a namespace
type RedisStorage struct {
	client    *redis.Client
	namespace string
}

// Ensure RedisStorage implements StorageInterface
var _ StorageInterface = (*RedisStorage)(nil)

// NewRedisStorage connects to Redis and verifies the connection
func NewRedisStorage(addr, password string, db int, namespace string) (*RedisStorage, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	logrus.Infof("Connected to Redis at %s (db %d)", addr, db)
	return newRedisStorage(client, namespace), nil
}

func newRedisStorage(client *redis.Client, namespace string) *RedisStorage {
	if namespace != "" && !strings.HasSuffix(namespace, ":") {
		namespace += ":"
	}
	return &RedisStorage{client: client, namespace: namespace}
}

func (s *RedisStorage) key(name string) string {
	return s.namespace + name
}

// Store sets the key without expiry
func (s *RedisStorage) Store(filename string, data []byte) error {
	if err := s.client.Set(context.Background(), s.key(filename), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to store %s in redis: %w", filename, err)
	}
	return nil
}

// Retrieve gets the key's value
func (s *RedisStorage) Retrieve(filename string) ([]byte, error) {
	data, err := s.client.Get(context.Background(), s.key(filename)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%s: %w", filename, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read %s from redis: %w", filename, err)
	}
	return data, nil
}

// List scans for keys starting with prefix
func (s *RedisStorage) List(prefix string) ([]string, error) {
	ctx := context.Background()
	var names []string

	iter := s.client.Scan(ctx, 0, s.key(prefix)+"*", 100).Iterator()
	for iter.Next(ctx) {
		names = append(names, strings.TrimPrefix(iter.Val(), s.namespace))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to list redis keys: %w", err)
	}

	sort.Strings(names)
	return names, nil
}

// Delete removes the key
func (s *RedisStorage) Delete(filename string) error {
	if err := s.client.Del(context.Background(), s.key(filename)).Err(); err != nil {
		return fmt.Errorf("failed to delete %s from redis: %w", filename, err)
	}
	return nil
}

// Close releases the connection pool
func (s *RedisStorage) Close() error {
	return s.client.Close()
}
