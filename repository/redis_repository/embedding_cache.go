package redis_repository

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const embeddingKeyPrefix = "embedding:"

// Query embeddings repeat heavily (rewriter variants are a fixed set), so a
// week is long enough to absorb traffic bursts without growing unbounded.
const embeddingTTL = 7 * 24 * time.Hour

// EmbeddingCache caches query embeddings in Redis, keyed by model and text.
// Failures are logged and treated as misses; the cache never blocks a query.
type EmbeddingCache struct {
	client *redis.Client
	model  string
	logger *log.Logger
}

func NewEmbeddingCache(client *redis.Client, model string) *EmbeddingCache {
	return &EmbeddingCache{
		client: client,
		model:  model,
		logger: log.New(log.Writer(), "[EMBCACHE] ", log.LstdFlags),
	}
}

func (c *EmbeddingCache) key(text string) string {
	sum := sha1.Sum([]byte(c.model + "\x00" + text))
	return embeddingKeyPrefix + hex.EncodeToString(sum[:])
}

func (c *EmbeddingCache) Get(ctx context.Context, text string) ([]float32, bool) {
	val, err := c.client.Get(ctx, c.key(text)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Printf("warn: cache get failed: %v", err)
		}
		return nil, false
	}

	var vec []float32
	if err := json.Unmarshal([]byte(val), &vec); err != nil {
		c.logger.Printf("warn: corrupt cache entry, dropping: %v", err)
		c.client.Del(ctx, c.key(text))
		return nil, false
	}
	return vec, true
}

func (c *EmbeddingCache) Put(ctx context.Context, text string, vector []float32) {
	data, err := json.Marshal(vector)
	if err != nil {
		c.logger.Printf("warn: cache put marshal failed: %v", err)
		return
	}
	if err := c.client.Set(ctx, c.key(text), data, embeddingTTL).Err(); err != nil {
		c.logger.Printf("warn: cache put failed: %v", err)
	}
}
