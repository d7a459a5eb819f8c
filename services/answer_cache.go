package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"law-rag-platform/internal/logger"
	"law-rag-platform/models"
	"law-rag-platform/utils"

	"github.com/redis/go-redis/v9"
)

const answerCachePrefix = "answer:"

// AnswerCache memoizes full query outputs in Redis keyed by the question
// and its filters. Entries are compressed since answers with sources can
// run to several kilobytes.
type AnswerCache struct {
	redis *redis.Client
	ttl   time.Duration
}

type cachedAnswer struct {
	Algorithm utils.CompressionAlgorithm `json:"algorithm"`
	Data      []byte                     `json:"data"`
}

func NewAnswerCache(rdb *redis.Client, ttlSeconds int) *AnswerCache {
	return &AnswerCache{
		redis: rdb,
		ttl:   time.Duration(ttlSeconds) * time.Second,
	}
}

// Key hashes the normalized question plus its filters. Law types are
// sorted so filter order does not fragment the cache.
func (c *AnswerCache) Key(question, country string, lawTypes []string) string {
	types := append([]string(nil), lawTypes...)
	sort.Strings(types)

	h := sha256.New()
	h.Write([]byte(utils.NormalizeQuery(question)))
	h.Write([]byte{0})
	h.Write([]byte(strings.ToLower(country)))
	h.Write([]byte{0})
	h.Write([]byte(strings.Join(types, ",")))
	return answerCachePrefix + hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached output for the key, or (nil, nil) on a miss.
// Cache failures are logged and reported as misses; the cache must never
// fail a query.
func (c *AnswerCache) Get(ctx context.Context, key string) (*models.QueryOutput, error) {
	ctx, cancel := utils.WithShortTimeout(ctx)
	defer cancel()

	raw, err := c.redis.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		logger.Warn("answer cache read failed", "error", err)
		return nil, nil
	}

	var entry cachedAnswer
	if err := json.Unmarshal(raw, &entry); err != nil {
		logger.Warn("answer cache entry corrupt", "error", err)
		return nil, nil
	}

	data, err := utils.DecompressData(entry.Data, entry.Algorithm)
	if err != nil {
		logger.Warn("answer cache decompress failed", "error", err)
		return nil, nil
	}

	var output models.QueryOutput
	if err := json.Unmarshal(data, &output); err != nil {
		logger.Warn("answer cache payload corrupt", "error", err)
		return nil, nil
	}
	return &output, nil
}

// Set stores the output under the key. Failures are logged, not returned.
func (c *AnswerCache) Set(ctx context.Context, key string, output *models.QueryOutput) {
	data, err := json.Marshal(output)
	if err != nil {
		logger.Warn("answer cache encode failed", "error", err)
		return
	}

	compressed, algorithm, err := utils.CompressText(string(data))
	if err != nil {
		logger.Warn("answer cache compress failed", "error", err)
		return
	}

	entry, err := json.Marshal(cachedAnswer{Algorithm: algorithm, Data: compressed})
	if err != nil {
		logger.Warn("answer cache entry encode failed", "error", err)
		return
	}

	if err := c.redis.SetEx(ctx, key, entry, c.ttl).Err(); err != nil {
		logger.Warn("answer cache write failed", "error", err)
	}
}
