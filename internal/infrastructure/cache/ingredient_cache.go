package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/beanpos/backend/internal/domain/catalog"
)

const (
	ingredientKeyPrefix = "ingredient:"
	ingredientsAllKey   = "ingredients:all"
)

// CachedIngredientRepository decorates an IngredientRepository with
// read-through caching. Cache failures degrade to the underlying repository;
// they are logged, never surfaced.
type CachedIngredientRepository struct {
	inner  catalog.IngredientRepository
	cache  Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedIngredientRepository creates a new CachedIngredientRepository
func NewCachedIngredientRepository(
	inner catalog.IngredientRepository,
	cache Cache,
	ttl time.Duration,
	logger *zap.Logger,
) *CachedIngredientRepository {
	return &CachedIngredientRepository{
		inner:  inner,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
	}
}

// FindByID reads through the cache
func (r *CachedIngredientRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Ingredient, error) {
	key := ingredientKeyPrefix + id.String()
	if data, ok, err := r.cache.Get(ctx, key); err != nil {
		r.logger.Warn("Ingredient cache read failed", zap.Error(err))
	} else if ok {
		var ing catalog.Ingredient
		if err := json.Unmarshal(data, &ing); err == nil {
			return &ing, nil
		}
		// Corrupt entry, fall through to the source and overwrite.
	}

	ing, err := r.inner.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.store(ctx, key, ing)
	return ing, nil
}

// FindByIDs delegates to the source; the per-ID cache is not consulted so a
// single query serves the batch
func (r *CachedIngredientRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Ingredient, error) {
	return r.inner.FindByIDs(ctx, ids)
}

// FindAll reads through the cache under a single collection key
func (r *CachedIngredientRepository) FindAll(ctx context.Context) ([]catalog.Ingredient, error) {
	if data, ok, err := r.cache.Get(ctx, ingredientsAllKey); err != nil {
		r.logger.Warn("Ingredient cache read failed", zap.Error(err))
	} else if ok {
		var ingredients []catalog.Ingredient
		if err := json.Unmarshal(data, &ingredients); err == nil {
			return ingredients, nil
		}
	}

	ingredients, err := r.inner.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(ingredients); err == nil {
		if err := r.cache.Set(ctx, ingredientsAllKey, data, r.ttl); err != nil {
			r.logger.Warn("Ingredient cache write failed", zap.Error(err))
		}
	}
	return ingredients, nil
}

// Save writes through and invalidates the affected keys
func (r *CachedIngredientRepository) Save(ctx context.Context, ingredient *catalog.Ingredient) error {
	if err := r.inner.Save(ctx, ingredient); err != nil {
		return err
	}
	r.invalidate(ctx, ingredient.ID)
	return nil
}

// Delete removes the ingredient and invalidates the affected keys
func (r *CachedIngredientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.inner.Delete(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx, id)
	return nil
}

func (r *CachedIngredientRepository) store(ctx context.Context, key string, ing *catalog.Ingredient) {
	data, err := json.Marshal(ing)
	if err != nil {
		return
	}
	if err := r.cache.Set(ctx, key, data, r.ttl); err != nil {
		r.logger.Warn("Ingredient cache write failed", zap.Error(err))
	}
}

func (r *CachedIngredientRepository) invalidate(ctx context.Context, id uuid.UUID) {
	if err := r.cache.Invalidate(ctx, ingredientKeyPrefix+id.String(), ingredientsAllKey); err != nil {
		r.logger.Warn("Ingredient cache invalidation failed", zap.Error(err))
	}
}

var _ catalog.IngredientRepository = (*CachedIngredientRepository)(nil)
