package profiles

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/campushub/internal/common"
	"github.com/dmitrijs2005/campushub/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	fieldUsername  = "username"
	fieldFullName  = "full_name"
	fieldAvatarURL = "avatar_url"
	fieldUpdatedAt = "updated_at"
)

// RedisRepository keeps each profile in a hash and a username index as
// plain keys pointing at the owning id.
type RedisRepository struct {
	client *redis.Client
	prefix string
}

func NewRedisRepository(client *redis.Client, prefix string) *RedisRepository {
	if prefix == "" {
		prefix = "campushub"
	}
	return &RedisRepository{client: client, prefix: prefix}
}

func (r *RedisRepository) profileKey(id string) string {
	return fmt.Sprintf("%s:profile:%s", r.prefix, id)
}

func (r *RedisRepository) usernameKey(name string) string {
	return fmt.Sprintf("%s:username:%s", r.prefix, name)
}

func (r *RedisRepository) Upsert(ctx context.Context, u models.ProfileUpdate) error {
	key := r.profileKey(u.ID)
	watched := []string{key}
	if u.Username != nil {
		watched = append(watched, r.usernameKey(*u.Username))
	}

	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		var previous string
		if u.Username != nil {
			owner, err := tx.Get(ctx, r.usernameKey(*u.Username)).Result()
			if err != nil && !errors.Is(err, redis.Nil) {
				return err
			}
			if err == nil && owner != u.ID {
				return common.ErrUsernameTaken
			}
			previous, err = tx.HGet(ctx, key, fieldUsername).Result()
			if err != nil && !errors.Is(err, redis.Nil) {
				return err
			}
		}

		values := map[string]any{fieldUpdatedAt: u.UpdatedAt.UnixMilli()}
		if u.Username != nil {
			values[fieldUsername] = *u.Username
		}
		if u.FullName != nil {
			values[fieldFullName] = *u.FullName
		}
		if u.AvatarURL != nil {
			values[fieldAvatarURL] = *u.AvatarURL
		}

		_, err := tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.HSet(ctx, key, values)
			if u.Username != nil {
				p.Set(ctx, r.usernameKey(*u.Username), u.ID, 0)
				if previous != "" && previous != *u.Username {
					p.Del(ctx, r.usernameKey(previous))
				}
			}
			return nil
		})
		return err
	}, watched...)

	if err != nil {
		if errors.Is(err, common.ErrUsernameTaken) {
			return err
		}
		return fmt.Errorf("redis error: %w", err)
	}
	return nil
}

func (r *RedisRepository) Get(ctx context.Context, id string) (*models.Profile, error) {
	m, err := r.client.HGetAll(ctx, r.profileKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis error: %w", err)
	}
	if len(m) == 0 {
		return nil, common.ErrNotFound
	}

	p := &models.Profile{ID: id}
	if v, ok := m[fieldUsername]; ok {
		p.Username = &v
	}
	if v, ok := m[fieldFullName]; ok {
		p.FullName = &v
	}
	if v, ok := m[fieldAvatarURL]; ok {
		p.AvatarURL = &v
	}
	if v, ok := m[fieldUpdatedAt]; ok {
		ms, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("corrupt %s: %w", fieldUpdatedAt, err)
		}
		p.UpdatedAt = time.UnixMilli(ms).UTC()
	}
	return p, nil
}
