package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/stockyard-wms/stockyard/internal/jobs"
	"github.com/stockyard-wms/stockyard/internal/snapshot"
)

// SnapshotPersistJob captures the live warehouse state and persists it.
type SnapshotPersistJob struct {
	service *snapshot.Service
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
}

// NewSnapshotPersistJob constructs the job.
func NewSnapshotPersistJob(service *snapshot.Service, logger *slog.Logger, metrics *jobmetrics.Metrics) *SnapshotPersistJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &SnapshotPersistJob{service: service, logger: logger, metrics: metrics}
}

// Handle processes TaskSnapshotPersist tasks.
func (j *SnapshotPersistJob) Handle(ctx context.Context, t *asynq.Task) error {
	tracker := j.metrics.Track("snapshot_persist")
	var payload SnapshotPersistPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		_ = tracker.End(err)
		return asynq.SkipRetry
	}
	snap, err := j.service.Persist(ctx)
	if err != nil {
		if errors.Is(err, snapshot.ErrSnapshotExists) {
			// Another instance captured the same instant; nothing to redo.
			j.logger.Info("snapshot already captured", slog.String("reason", payload.Reason))
			return tracker.End(nil)
		}
		j.logger.Error("snapshot persist job", slog.Any("error", err))
		return tracker.End(err)
	}
	j.logger.Info("snapshot persist job done",
		slog.String("reason", payload.Reason),
		slog.Time("taken_at", snap.TakenAt),
		slog.Int("batches", len(snap.Batches)))
	return tracker.End(nil)
}
