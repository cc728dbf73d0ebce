package inventory

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/garage-platform/internal/cache"
)

// Cache is the subset of *cache.RedisCache the cached repository needs.
type Cache interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, keys ...string) error
}

const allPartsKey = "inventory:parts:all"

func partKey(id string) string {
	return "inventory:part:" + id
}

// CachedRepository serves reads from the cache and invalidates on every write. Cache failures are logged
// and fall through to the underlying repository.
type CachedRepository struct {
	repo  Repository
	cache Cache
}

func NewCachedRepository(repo Repository, cache Cache) *CachedRepository {
	return &CachedRepository{repo: repo, cache: cache}
}

func (r *CachedRepository) Create(ctx context.Context, part *Part) error {
	if err := r.repo.Create(ctx, part); err != nil {
		return err
	}

	r.invalidate(ctx, allPartsKey)
	return nil
}

func (r *CachedRepository) GetByID(ctx context.Context, id string) (*Part, error) {
	key := partKey(id)

	var part Part
	err := r.cache.Get(ctx, key, &part)
	if err == nil {
		log.Debug().Str("part_id", id).Msg("cache: part hit")
		return &part, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		log.Warn().Err(err).Str("part_id", id).Msg("cache: failed to read part")
	}

	found, err := r.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := r.cache.Set(ctx, key, found); err != nil {
		log.Warn().Err(err).Str("part_id", id).Msg("cache: failed to store part")
	}
	return found, nil
}

func (r *CachedRepository) List(ctx context.Context) ([]Part, error) {
	var parts []Part
	err := r.cache.Get(ctx, allPartsKey, &parts)
	if err == nil {
		return parts, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		log.Warn().Err(err).Msg("cache: failed to read parts list")
	}

	parts, err = r.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	if err := r.cache.Set(ctx, allPartsKey, parts); err != nil {
		log.Warn().Err(err).Msg("cache: failed to store parts list")
	}
	return parts, nil
}

func (r *CachedRepository) Update(ctx context.Context, part *Part) error {
	if err := r.repo.Update(ctx, part); err != nil {
		return err
	}

	r.invalidate(ctx, partKey(part.ID), allPartsKey)
	return nil
}

func (r *CachedRepository) Delete(ctx context.Context, id string) error {
	if err := r.repo.Delete(ctx, id); err != nil {
		return err
	}

	r.invalidate(ctx, partKey(id), allPartsKey)
	return nil
}

func (r *CachedRepository) invalidate(ctx context.Context, keys ...string) {
	if err := r.cache.Delete(ctx, keys...); err != nil {
		log.Warn().Err(err).Strs("keys", keys).Msg("cache: failed to invalidate")
	}
}
