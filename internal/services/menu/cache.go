package menu

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"

	"orderflow/internal/database/models"
)

const (
	MENU_LIST_CACHE_KEY    = "menu:list"
	MENU_ITEM_CACHE_PREFIX = "menu:item:"
	CACHE_TTL_SHORT        = 5 * time.Minute
)

// Cache keeps the unfiltered menu and single items in Redis. A nil Cache
// or one without a client is a valid no-op cache.
type Cache struct {
	redis *redis.Client
	ttl   time.Duration
	log   zerolog.Logger
}

func NewCache(redisClient *redis.Client, log zerolog.Logger) *Cache {
	return &Cache{
		redis: redisClient,
		ttl:   CACHE_TTL_SHORT,
		log:   log.With().Str("component", "menu_cache").Logger(),
	}
}

func (c *Cache) enabled() bool {
	return c != nil && c.redis != nil
}

func itemKey(id int64) string {
	return fmt.Sprintf("%s%d", MENU_ITEM_CACHE_PREFIX, id)
}

func (c *Cache) getJSON(ctx context.Context, key string, dst interface{}) bool {
	if !c.enabled() {
		return false
	}
	data, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn().Err(err).Str("key", key).Msg("cache read failed")
		}
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("discarding undecodable cache entry")
		_ = c.redis.Del(ctx, key)
		return false
	}
	return true
}

func (c *Cache) setJSON(ctx context.Context, key string, value interface{}) {
	if !c.enabled() {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}

func (c *Cache) GetList(ctx context.Context) ([]models.MenuItem, bool) {
	var items []models.MenuItem
	ok := c.getJSON(ctx, MENU_LIST_CACHE_KEY, &items)
	return items, ok
}

func (c *Cache) SetList(ctx context.Context, items []models.MenuItem) {
	c.setJSON(ctx, MENU_LIST_CACHE_KEY, items)
}

func (c *Cache) GetItem(ctx context.Context, id int64) (*models.MenuItem, bool) {
	var item models.MenuItem
	if !c.getJSON(ctx, itemKey(id), &item) {
		return nil, false
	}
	return &item, true
}

func (c *Cache) SetItem(ctx context.Context, item *models.MenuItem) {
	c.setJSON(ctx, itemKey(item.ID), item)
}

// Invalidate drops the cached list and the given items.
func (c *Cache) Invalidate(ctx context.Context, ids ...int64) {
	if !c.enabled() {
		return
	}
	keys := []string{MENU_LIST_CACHE_KEY}
	for _, id := range ids {
		keys = append(keys, itemKey(id))
	}
	if err := c.redis.Del(ctx, keys...).Err(); err != nil {
		c.log.Warn().Err(err).Msg("cache invalidation failed")
	}
}

// InvalidateAll drops every cached menu entry. Order creation and reviews
// change counters on arbitrary items so they clear everything.
func (c *Cache) InvalidateAll(ctx context.Context) {
	if !c.enabled() {
		return
	}
	iter := c.redis.Scan(ctx, 0, MENU_ITEM_CACHE_PREFIX+"*", 100).Iterator()
	keys := []string{MENU_LIST_CACHE_KEY}
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.log.Warn().Err(err).Msg("cache scan failed")
	}
	if err := c.redis.Del(ctx, keys...).Err(); err != nil {
		c.log.Warn().Err(err).Msg("cache invalidation failed")
	}
}
