package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"

	"quizme-gateway/internal/models"
)

const (
	categoriesKey = "quizme:categories"
	categoriesTTL = 7 * 24 * time.Hour
)

// RedisCache keeps the last good category list so a restart during an
// upstream outage can still resolve category names.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(addr string) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	return &RedisCache{client: client}
}

func (c *RedisCache) SaveCategories(ctx context.Context, categories []models.Category) error {
	data, err := json.Marshal(categories)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, categoriesKey, data, categoriesTTL).Err()
}

func (c *RedisCache) LoadCategories(ctx context.Context) ([]models.Category, error) {
	data, err := c.client.Get(ctx, categoriesKey).Bytes()
	if err != nil {
		return nil, err
	}

	var categories []models.Category
	err = json.Unmarshal(data, &categories)
	return categories, err
}

// Check pings redis.
func (c *RedisCache) Check(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
