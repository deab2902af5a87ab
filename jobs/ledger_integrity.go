package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/stockyard-wms/stockyard/internal/jobs"
	"github.com/stockyard-wms/stockyard/internal/stock"
)

// LedgerIntegrityJob replays the transaction ledger against live batches and
// reports any product whose totals no longer agree. Drift is logged and
// counted, never auto-corrected; reconciliation is a human decision.
type LedgerIntegrityJob struct {
	store   *stock.Store
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
}

// NewLedgerIntegrityJob constructs the job.
func NewLedgerIntegrityJob(store *stock.Store, logger *slog.Logger, metrics *jobmetrics.Metrics) *LedgerIntegrityJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &LedgerIntegrityJob{store: store, logger: logger, metrics: metrics}
}

// Handle processes TaskLedgerIntegrity tasks.
func (j *LedgerIntegrityJob) Handle(ctx context.Context, t *asynq.Task) error {
	tracker := j.metrics.Track("ledger_integrity")
	var payload LedgerIntegrityPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		_ = tracker.End(err)
		return asynq.SkipRetry
	}
	drifts := j.store.VerifyLedger()
	for _, d := range drifts {
		j.metrics.AddDrifts(d.ProductCode, 1)
		j.logger.Warn("ledger drift detected",
			slog.String("product", d.ProductCode),
			slog.String("ledger_total", d.LedgerTotal.String()),
			slog.String("batch_total", d.BatchTotal.String()))
	}
	if len(drifts) == 0 {
		j.logger.Info("ledger integrity clean", slog.String("reason", payload.Reason))
	}
	return tracker.End(nil)
}
