package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/wonny/claimlens/pkg/database"
	"github.com/wonny/claimlens/pkg/logger"
	"github.com/wonny/claimlens/pkg/redis"
)

// HealthCheckJob pings the backing services of the report pipeline
type HealthCheckJob struct {
	db     *database.DB // nil = 파일 데이터 소스
	redis  *redis.Client
	logger *logger.Logger
}

// NewHealthCheckJob creates a new health check job
func NewHealthCheckJob(db *database.DB, rc *redis.Client, log *logger.Logger) *HealthCheckJob {
	return &HealthCheckJob{
		db:     db,
		redis:  rc,
		logger: log,
	}
}

// Name returns the job name
func (j *HealthCheckJob) Name() string {
	return "health_check"
}

// Schedule returns the cron schedule (every 5 minutes)
func (j *HealthCheckJob) Schedule() string {
	return "0 */5 * * * *"
}

// Run checks postgres and redis
func (j *HealthCheckJob) Run(ctx context.Context) error {
	var errs []error

	if j.db != nil {
		status, err := j.db.HealthCheck(ctx)
		if err != nil {
			errs = append(errs, fmt.Errorf("postgres: %w", err))
		} else {
			j.logger.WithFields(map[string]interface{}{
				"response_time": status.ResponseTime,
				"total_conns":   status.Stats.TotalConns,
			}).Debug("Postgres healthy")
		}
	}

	if j.redis != nil {
		if err := j.redis.Ping(ctx); err != nil {
			errs = append(errs, fmt.Errorf("redis: %w", err))
		}
	}

	return errors.Join(errs...)
}
