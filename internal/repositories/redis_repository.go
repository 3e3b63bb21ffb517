package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisRepository holds the fast-expiry state: JWT sessions, the token
// blacklist and a short share-link role cache so anonymous canvas loads
// skip a postgres round trip.
type RedisRepository struct {
	rdb *redis.Client
}

func NewRedisRepository(rdb *redis.Client) *RedisRepository {
	return &RedisRepository{rdb: rdb}
}

const (
	sessionTTL        = 30 * 24 * time.Hour
	shareRoleCacheTTL = 5 * time.Minute
)

func (r *RedisRepository) StoreSession(ctx context.Context, jti string, userID string) error {
	return r.rdb.Set(ctx, "session:"+jti, userID, sessionTTL).Err()
}

func (r *RedisRepository) DeleteSession(ctx context.Context, jti string) error {
	return r.rdb.Del(ctx, "session:"+jti).Err()
}

func (r *RedisRepository) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	exists, err := r.rdb.Exists(ctx, "blacklist:"+jti).Result()
	return exists == 1, err
}

func (r *RedisRepository) Blacklist(ctx context.Context, jti string) error {
	return r.rdb.Set(ctx, "blacklist:"+jti, "true", sessionTTL).Err()
}

// CacheShareRole remembers the role an active share token resolved to
// on a diagram. Keyed per diagram because a token presented against the
// wrong diagram must never inherit the role it earned elsewhere. The
// TTL is short so revocation propagates within minutes.
func (r *RedisRepository) CacheShareRole(ctx context.Context, diagramID uuid.UUID, token string, role string) error {
	return r.rdb.Set(ctx, shareRoleKey(diagramID, token), role, shareRoleCacheTTL).Err()
}

// CachedShareRole returns ("", nil) on a cache miss.
func (r *RedisRepository) CachedShareRole(ctx context.Context, diagramID uuid.UUID, token string) (string, error) {
	role, err := r.rdb.Get(ctx, shareRoleKey(diagramID, token)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return role, err
}

// InvalidateShareRole drops the cached role, used on revocation.
func (r *RedisRepository) InvalidateShareRole(ctx context.Context, diagramID uuid.UUID, token string) error {
	return r.rdb.Del(ctx, shareRoleKey(diagramID, token)).Err()
}

func shareRoleKey(diagramID uuid.UUID, token string) string {
	return "sharerole:" + diagramID.String() + ":" + token
}
