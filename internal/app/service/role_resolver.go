package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"petshop/internal/domain/model"
	"petshop/internal/domain/repository"
)

const roleCacheKeyPrefix = "role:"

// RoleResolver maps role names to one merged permission table. Lookups go
// through the Redis cache when one is configured, falling back to the role
// repository and back-filling the cache on a miss.
type RoleResolver struct {
	roles repository.RoleRepository
	cache *redis.Client // optional
	ttl   time.Duration
}

func NewRoleResolver(roles repository.RoleRepository, cache *redis.Client, ttl time.Duration) *RoleResolver {
	return &RoleResolver{roles: roles, cache: cache, ttl: ttl}
}

// Resolve fetches every role concurrently and folds the permission tables
// into a single map: a permission is granted iff any role grants it. A role
// that cannot be resolved contributes nothing; the merge itself never fails.
func (r *RoleResolver) Resolve(ctx context.Context, roleNames []string) map[string]bool {
	tables := make([]map[string]bool, len(roleNames))

	var g errgroup.Group
	for i, name := range roleNames {
		i, name := i, name
		g.Go(func() error {
			tables[i] = r.lookup(ctx, name)
			return nil
		})
	}
	g.Wait()

	permissions := make(map[string]bool)
	for _, table := range tables {
		for name, granted := range table {
			if granted {
				permissions[name] = true
			}
		}
	}
	return permissions
}

func (r *RoleResolver) lookup(ctx context.Context, name string) map[string]bool {
	if r.cache != nil {
		if raw, err := r.cache.Get(ctx, roleCacheKeyPrefix+name).Bytes(); err == nil {
			var table map[string]bool
			if json.Unmarshal(raw, &table) == nil {
				return table
			}
		}
	}

	role, err := r.roles.FindByName(ctx, name)
	if err != nil || role == nil {
		// Unknown or unreadable role grants no permissions.
		return nil
	}

	if r.cache != nil {
		if raw, err := json.Marshal(role.Permissions); err == nil {
			r.cache.Set(ctx, roleCacheKeyPrefix+name, raw, r.ttl)
		}
	}
	return role.Permissions
}

// ResolveIdentity returns the identity payload for a user with permissions
// merged at this moment.
func (r *RoleResolver) ResolveIdentity(ctx context.Context, user *model.User) *model.Identity {
	return &model.Identity{
		ID:          user.ID,
		Email:       user.Email,
		FullName:    user.FullName,
		Role:        user.Role,
		Permissions: r.Resolve(ctx, user.Role),
	}
}
