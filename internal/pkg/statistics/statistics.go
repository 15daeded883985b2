package statistics

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/tripcraft/planner/app/models"
	"github.com/tripcraft/planner/app/repository"
)

const (
	CacheKeyPlanner = "statistics:planner"
	CacheExpiration = 5 * time.Minute
)

var taskStatuses = []models.TaskStatus{
	models.TaskStatusQueued,
	models.TaskStatusInProgress,
	models.TaskStatusSuccess,
	models.TaskStatusError,
}

// StatisticsData holds the planner counters
type StatisticsData struct {
	TotalPlans int64                       `json:"totalPlans"`
	Tasks      map[models.TaskStatus]int64 `json:"tasks"`
	UpdatedAt  time.Time                   `json:"updatedAt"`
}

// Collector counts plans and tasks and caches the result
type Collector struct {
	plans repository.TripPlanRepository
	tasks repository.PlanTaskRepository
	cache repository.StatusCache
	ttl   time.Duration
}

// NewCollector creates a collector. A nil cache computes the counters on every call.
func NewCollector(repos *repository.Repositories, cache repository.StatusCache) *Collector {
	return &Collector{plans: repos.TripPlan, tasks: repos.Task, cache: cache, ttl: CacheExpiration}
}

// Get returns cached statistics, recomputing them when the cache is empty or unreadable
func (c *Collector) Get(ctx context.Context) (*StatisticsData, error) {
	if c.cache != nil {
		if raw, err := c.cache.Get(ctx, CacheKeyPlanner); err == nil && raw != "" {
			var data StatisticsData
			if err := json.Unmarshal([]byte(raw), &data); err == nil {
				return &data, nil
			}
		}
	}

	data, err := c.Update(ctx)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Update recomputes the statistics and stores them in the cache
func (c *Collector) Update(ctx context.Context) (*StatisticsData, error) {
	total, err := c.plans.Count(ctx)
	if err != nil {
		log.Errorf("[Statistics] Error counting trip plans: %v", err)
		return nil, err
	}

	data := &StatisticsData{
		TotalPlans: total,
		Tasks:      make(map[models.TaskStatus]int64, len(taskStatuses)),
		UpdatedAt:  time.Now().UTC(),
	}
	for _, status := range taskStatuses {
		n, err := c.tasks.CountByStatus(ctx, status)
		if err != nil {
			log.Errorf("[Statistics] Error counting %s tasks: %v", status, err)
			return nil, err
		}
		data.Tasks[status] = n
	}

	if c.cache != nil {
		if raw, err := json.Marshal(data); err == nil {
			if err := c.cache.Set(ctx, CacheKeyPlanner, string(raw), c.ttl); err != nil {
				log.Warnf("[Statistics] Error caching statistics: %v", err)
			}
		}
	}
	return data, nil
}
