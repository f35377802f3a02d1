package utils

import (
	"context"
	"strconv"
	"time"

	"github.com/Yumi00000/WABToDo-back-end/config"
)

const tokenCacheTTL = 15 * time.Minute

// The token cache is a best-effort layer over the auth_tokens table; every
// function is a no-op when redis is not configured.

func CacheToken(ctx context.Context, key string, userID uint) {
	if config.Redis == nil {
		return
	}
	config.Redis.Set(ctx, "auth:"+key, userID, tokenCacheTTL)
}

// CachedTokenUser returns the user id a token resolves to, or 0 on a miss.
func CachedTokenUser(ctx context.Context, key string) uint {
	if config.Redis == nil {
		return 0
	}
	val, err := config.Redis.Get(ctx, "auth:"+key).Result()
	if err != nil {
		return 0
	}
	id, err := strconv.ParseUint(val, 10, 32)
	if err != nil {
		return 0
	}
	return uint(id)
}

func InvalidateToken(ctx context.Context, key string) {
	if config.Redis == nil {
		return
	}
	config.Redis.Del(ctx, "auth:"+key)
}
