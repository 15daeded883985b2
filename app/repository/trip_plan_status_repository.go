package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/tripcraft/planner/app/models"
	"gorm.io/gorm"
)

const (
	// StatusCacheKeyFormat is the cache key of a plan status. Format: plan:status:<id>
	StatusCacheKeyFormat  = "plan:status:%s"
	DefaultStatusCacheTTL = 15 * time.Second
)

type tripPlanStatusRepository struct {
	db *gorm.DB
}

// NewTripPlanStatusRepository creates a status repository backed by the database only
func NewTripPlanStatusRepository(db *gorm.DB) TripPlanStatusRepository {
	return &tripPlanStatusRepository{db: db}
}

func (r *tripPlanStatusRepository) Upsert(ctx context.Context, tripPlanID string, update models.StatusUpdate) (*models.TripPlanStatus, error) {
	return models.UpsertTripPlanStatus(r.db.WithContext(ctx), tripPlanID, update)
}

func (r *tripPlanStatusRepository) GetByTripPlanID(ctx context.Context, tripPlanID string) (*models.TripPlanStatus, error) {
	return models.FindTripPlanStatus(r.db.WithContext(ctx), tripPlanID)
}

// cachedTripPlanStatusRepository writes through to the cache after every
// upsert and serves reads from it. A read that misses only fills an empty
// key, so a value loaded before a concurrent upsert cannot replace the newer
// entry. Cache errors never fail a call.
type cachedTripPlanStatusRepository struct {
	inner TripPlanStatusRepository
	cache StatusCache
	ttl   time.Duration
}

// NewCachedTripPlanStatusRepository wraps inner with a read cache
func NewCachedTripPlanStatusRepository(inner TripPlanStatusRepository, cache StatusCache, ttl time.Duration) TripPlanStatusRepository {
	if ttl <= 0 {
		ttl = DefaultStatusCacheTTL
	}
	return &cachedTripPlanStatusRepository{inner: inner, cache: cache, ttl: ttl}
}

func (r *cachedTripPlanStatusRepository) Upsert(ctx context.Context, tripPlanID string, update models.StatusUpdate) (*models.TripPlanStatus, error) {
	st, err := r.inner.Upsert(ctx, tripPlanID, update)
	if err != nil {
		return nil, err
	}
	r.store(ctx, st)
	return st, nil
}

func (r *cachedTripPlanStatusRepository) GetByTripPlanID(ctx context.Context, tripPlanID string) (*models.TripPlanStatus, error) {
	key := fmt.Sprintf(StatusCacheKeyFormat, tripPlanID)
	if raw, err := r.cache.Get(ctx, key); err == nil && raw != "" {
		var st models.TripPlanStatus
		if uerr := json.Unmarshal([]byte(raw), &st); uerr == nil {
			return &st, nil
		}
		log.Warnf("[StatusCache] Dropping undecodable entry for %s", tripPlanID)
	}

	st, err := r.inner.GetByTripPlanID(ctx, tripPlanID)
	if err != nil {
		return nil, err
	}
	r.fill(ctx, key, st)
	return st, nil
}

func (r *cachedTripPlanStatusRepository) fill(ctx context.Context, key string, st *models.TripPlanStatus) {
	data, err := json.Marshal(st)
	if err != nil {
		log.Errorf("[StatusCache] Failed to encode status for %s: %v", st.TripPlanID, err)
		return
	}
	if _, err := r.cache.SetNX(ctx, key, string(data), r.ttl); err != nil {
		log.Warnf("[StatusCache] Failed to fill status for %s: %v", st.TripPlanID, err)
	}
}

func (r *cachedTripPlanStatusRepository) store(ctx context.Context, st *models.TripPlanStatus) {
	data, err := json.Marshal(st)
	if err != nil {
		log.Errorf("[StatusCache] Failed to encode status for %s: %v", st.TripPlanID, err)
		return
	}
	key := fmt.Sprintf(StatusCacheKeyFormat, st.TripPlanID)
	if err := r.cache.Set(ctx, key, string(data), r.ttl); err != nil {
		log.Warnf("[StatusCache] Failed to cache status for %s: %v", st.TripPlanID, err)
		// an old entry must not outlive the write
		if derr := r.cache.Delete(ctx, key); derr != nil {
			log.Errorf("[StatusCache] Failed to evict status for %s: %v", st.TripPlanID, derr)
		}
	}
}
