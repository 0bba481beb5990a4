package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"

	"orderflow/internal/utils"
)

const TOKEN_DENYLIST_PREFIX = "auth:revoked:"

// TokenDenylist records revoked token ids in Redis until the token would
// have expired anyway. A nil TokenDenylist or one without a client revokes
// nothing.
type TokenDenylist struct {
	redis *redis.Client
	log   zerolog.Logger
}

func NewTokenDenylist(redisClient *redis.Client, log zerolog.Logger) *TokenDenylist {
	return &TokenDenylist{
		redis: redisClient,
		log:   log.With().Str("component", "token_denylist").Logger(),
	}
}

func (d *TokenDenylist) enabled() bool {
	return d != nil && d.redis != nil
}

func denylistKey(tokenID string) string {
	return TOKEN_DENYLIST_PREFIX + tokenID
}

func (d *TokenDenylist) Revoke(ctx context.Context, claims *utils.Claims) error {
	if !d.enabled() || claims == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	if err := d.redis.Set(ctx, denylistKey(claims.ID), claims.UserId, ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether tokenID was logged out. Lookup failures are
// logged and treated as not revoked.
func (d *TokenDenylist) IsRevoked(ctx context.Context, tokenID string) bool {
	if !d.enabled() || tokenID == "" {
		return false
	}

	err := d.redis.Get(ctx, denylistKey(tokenID)).Err()
	switch {
	case err == nil:
		return true
	case errors.Is(err, redis.Nil):
		return false
	default:
		d.log.Warn().Err(err).Str("token_id", tokenID).Msg("denylist lookup failed")
		return false
	}
}
