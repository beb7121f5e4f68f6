package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/redis/go-redis/v9"

	"PrebloomScout/internal/model"
)

// Snapshot is a cached copy of the fetched directory rows.
type Snapshot struct {
	FetchedAt  time.Time                `json:"fetched_at"`
	Securities []model.ExchangeSecurity `json:"securities"`
}

// SnapshotCache stores directory snapshots between runs. Load reports
// ok=false when nothing fresh is cached.
type SnapshotCache interface {
	Load(ctx context.Context) (snap *Snapshot, ok bool, err error)
	Save(ctx context.Context, snap *Snapshot) error
}

// FileCache keeps the snapshot as a JSON file.
type FileCache struct {
	Path string
	TTL  time.Duration
	now  func() time.Time
}

// NewFileCache creates a file-backed cache. ttl <= 0 never expires.
func NewFileCache(path string, ttl time.Duration) *FileCache {
	return &FileCache{Path: path, TTL: ttl, now: time.Now}
}

func (c *FileCache) Load(_ context.Context) (*Snapshot, bool, error) {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, false, fmt.Errorf("decode snapshot: %w", err)
	}
	if c.TTL > 0 && c.now().Sub(snap.FetchedAt) > c.TTL {
		return nil, false, nil
	}
	return &snap, true, nil
}

func (c *FileCache) Save(_ context.Context, snap *Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	dir := filepath.Dir(c.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(c.Path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), c.Path)
}

// RedisCache keeps the snapshot under a single key with a TTL.
type RedisCache struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisCache connects to addr and verifies the connection.
func NewRedisCache(ctx context.Context, addr, password string, db int, prefix string, ttl time.Duration) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	if prefix == "" {
		prefix = "prebloom"
	}
	return &RedisCache{client: client, key: prefix + ":directory:snapshot", ttl: ttl}, nil
}

func (c *RedisCache) Load(ctx context.Context) (*Snapshot, bool, error) {
	data, err := c.client.Get(ctx, c.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, false, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, true, nil
}

func (c *RedisCache) Save(ctx context.Context, snap *Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key, data, c.ttl).Err()
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
