package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/courseagent/backend/internal/platform/logger"
)

// EmbedCache memoizes query embeddings so repeated questions do not
// re-hit the embedding service. A cache miss or a broken connection is
// never an error; the caller just embeds again.
type EmbedCache interface {
	Get(ctx context.Context, model string, text string) ([]float32, bool)
	Put(ctx context.Context, model string, text string, vec []float32)
	Close() error
}

type embedCache struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

func NewEmbedCache(log *logger.Logger) (EmbedCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &embedCache{
		log: log.With("service", "RedisEmbedCache"),
		rdb: rdb,
		ttl: 24 * time.Hour,
	}, nil
}

func cacheKey(model string, text string) string {
	sum := sha256.Sum256([]byte(model + "\x00" + text))
	return "embed:" + hex.EncodeToString(sum[:])
}

func (c *embedCache) Get(ctx context.Context, model string, text string) ([]float32, bool) {
	raw, err := c.rdb.Get(ctx, cacheKey(model, text)).Bytes()
	if err != nil {
		return nil, false
	}
	var vec []float32
	if err := json.Unmarshal(raw, &vec); err != nil {
		return nil, false
	}
	return vec, true
}

func (c *embedCache) Put(ctx context.Context, model string, text string, vec []float32) {
	raw, err := json.Marshal(vec)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, cacheKey(model, text), raw, c.ttl).Err(); err != nil {
		c.log.Debug("embed cache set failed", "error", err)
	}
}

func (c *embedCache) Close() error {
	return c.rdb.Close()
}
