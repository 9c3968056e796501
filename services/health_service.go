package services

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/raseed-labs/raseed-backend/logger"
	"github.com/raseed-labs/raseed-backend/types"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DatabasePinger is satisfied by *pgxpool.Pool and by pgxmock pools.
type DatabasePinger interface {
	Ping(ctx context.Context) error
}

type HealthService struct {
	db          DatabasePinger
	redisClient redis.UniversalClient
	version     string
	startTime   time.Time
	log         *zap.SugaredLogger
}

// NewHealthService creates a health checker. redisClient may be nil when
// Redis is not configured.
func NewHealthService(db DatabasePinger, redisClient redis.UniversalClient, version string) *HealthService {
	return &HealthService{
		db:          db,
		redisClient: redisClient,
		version:     version,
		startTime:   time.Now(),
		log:         logger.GetLogger(),
	}
}

func (h *HealthService) CheckHealth(ctx context.Context) types.HealthCheck {
	components := make(map[string]types.HealthComponent)
	overallStatus := types.HealthStatusUp

	dbStatus := h.checkDatabase(ctx)
	components["database"] = dbStatus
	if dbStatus.Status == types.HealthStatusDown {
		overallStatus = types.HealthStatusDown
	} else if dbStatus.Status == types.HealthStatusDegraded {
		overallStatus = types.HealthStatusDegraded
	}

	if h.redisClient != nil {
		redisStatus := h.checkRedis(ctx)
		components["redis"] = redisStatus
		if redisStatus.Status == types.HealthStatusDown {
			overallStatus = types.HealthStatusDown
		} else if redisStatus.Status == types.HealthStatusDegraded && overallStatus != types.HealthStatusDown {
			overallStatus = types.HealthStatusDegraded
		}
	}

	return types.HealthCheck{
		Status:     overallStatus,
		Components: components,
		Version:    h.version,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Uptime:     time.Since(h.startTime).Round(time.Second).String(),
	}
}

func (h *HealthService) checkDatabase(ctx context.Context) types.HealthComponent {
	if h.db == nil {
		return types.HealthComponent{Status: types.HealthStatusDown, Details: "Database not configured"}
	}
	if err := h.db.Ping(ctx); err != nil {
		h.log.Errorw("Database health check failed", "error", err)
		return types.HealthComponent{
			Status:  types.HealthStatusDown,
			Details: "Database connection failed",
		}
	}

	if pool, ok := h.db.(*pgxpool.Pool); ok {
		stat := pool.Stat()
		if stat.MaxConns() > 0 && float64(stat.AcquiredConns())/float64(stat.MaxConns()) > 0.8 {
			return types.HealthComponent{
				Status:  types.HealthStatusDegraded,
				Details: "Connection pool near capacity",
			}
		}
	}

	return types.HealthComponent{
		Status: types.HealthStatusUp,
	}
}

func (h *HealthService) checkRedis(ctx context.Context) types.HealthComponent {
	if err := h.redisClient.Ping(ctx).Err(); err != nil {
		h.log.Errorw("Redis health check failed", "error", err)
		return types.HealthComponent{
			Status:  types.HealthStatusDown,
			Details: "Redis connection failed",
		}
	}

	return types.HealthComponent{
		Status: types.HealthStatusUp,
	}
}
