package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	jobmetrics "github.com/chirper/chirper/internal/jobs"
	"github.com/chirper/chirper/internal/rbac"
)

// integrityLockKey guards against overlapping scans when multiple workers
// share the queue.
const integrityLockKey = "chirper:rbac:integrity:lock"

const integrityLockTTL = 10 * time.Minute

// GraphChecker runs the permission-graph integrity checks.
type GraphChecker interface {
	CheckIntegrity(ctx context.Context) (rbac.IntegrityReport, error)
}

// GraphIntegrityJob scans the permission graph for dangling rows: scopes
// granting nothing, roles granting nothing and credentials whose user was
// soft-deleted.
type GraphIntegrityJob struct {
	checker GraphChecker
	redis   *redis.Client
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
}

func NewGraphIntegrityJob(checker GraphChecker, redisClient *redis.Client, logger *slog.Logger, metrics *jobmetrics.Metrics) *GraphIntegrityJob {
	return &GraphIntegrityJob{checker: checker, redis: redisClient, logger: logger, metrics: metrics}
}

// Handle processes TaskGraphIntegrityScan tasks.
func (j *GraphIntegrityJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload GraphIntegrityPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	tracker := j.metrics.Track("graph_integrity_scan")

	acquired, release, err := j.acquireLock(ctx)
	if err != nil {
		return tracker.End(err)
	}
	if !acquired {
		j.log().Info("integrity scan already running, skipping")
		return tracker.End(nil)
	}
	defer release()

	report, err := j.checker.CheckIntegrity(ctx)
	if err != nil {
		return tracker.End(fmt.Errorf("jobs: integrity scan: %w", err))
	}

	if report.Clean() {
		j.log().Info("permission graph clean")
		return tracker.End(nil)
	}

	j.log().Warn("permission graph has dangling rows",
		slog.Int64("scopes_without_actions", report.ScopesWithoutActions),
		slog.Int64("roles_without_scopes", report.RolesWithoutScopes),
		slog.Int64("orphaned_credentials", report.OrphanedCredentials),
	)
	if payload.ReportOnly {
		return tracker.End(nil)
	}
	return tracker.End(fmt.Errorf("jobs: permission graph has dangling rows"))
}

// acquireLock takes the scan lock via SETNX. Without Redis the job runs
// unguarded.
func (j *GraphIntegrityJob) acquireLock(ctx context.Context) (bool, func(), error) {
	if j.redis == nil {
		return true, func() {}, nil
	}
	ok, err := j.redis.SetNX(ctx, integrityLockKey, time.Now().UTC().Format(time.RFC3339), integrityLockTTL).Result()
	if err != nil {
		return false, nil, fmt.Errorf("jobs: acquire integrity lock: %w", err)
	}
	if !ok {
		return false, nil, nil
	}
	return true, func() {
		if err := j.redis.Del(context.Background(), integrityLockKey).Err(); err != nil {
			j.log().Warn("release integrity lock", slog.Any("error", err))
		}
	}, nil
}

func (j *GraphIntegrityJob) log() *slog.Logger {
	if j.logger != nil {
		return j.logger
	}
	return slog.Default()
}
