package controller

import (
	"context"

	"github.com/Batman16012001/Locally-Connector-New/internal/cache"
	"github.com/Batman16012001/Locally-Connector-New/internal/database"
	"github.com/Batman16012001/Locally-Connector-New/internal/model"
)

type ServerController interface {
	DBHealth() error
	CacheHealth() error
	Online() string

	// Stats aggregates the connector-wide counters: persisted products and
	// jobs per lifecycle status.
	Stats(ctx context.Context) (*model.Stats, error)
}

type serverController struct {
	db    database.Database
	cache cache.Cache
}

func NewServer(db database.Database, cache cache.Cache) ServerController {
	return &serverController{
		db:    db,
		cache: cache,
	}
}

func (sc *serverController) Online() string {
	return "Online"
}

func (sc *serverController) DBHealth() error {
	return sc.db.Health()
}

func (sc *serverController) CacheHealth() error {
	if sc.cache == nil {
		return nil
	}
	return sc.cache.Ping(context.TODO())
}

func (sc *serverController) Stats(ctx context.Context) (*model.Stats, error) {
	products, err := sc.db.CountProducts(ctx)
	if err != nil {
		return nil, err
	}

	statuses := []model.JobStatus{
		model.StatusPending,
		model.StatusProcessing,
		model.StatusCompleted,
		model.StatusFailed,
	}

	jobs := make(map[string]int64, len(statuses))
	for _, status := range statuses {
		count, err := sc.db.CountJobsByStatus(ctx, status)
		if err != nil {
			return nil, err
		}
		jobs[string(status)] = count
	}

	return &model.Stats{Products: products, JobsByStatus: jobs}, nil
}
