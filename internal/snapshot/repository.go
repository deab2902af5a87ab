package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stockyard-wms/stockyard/internal/platform/db"
)

// Repository stores snapshots durably.
type Repository interface {
	Save(ctx context.Context, snap Snapshot) error
	Latest(ctx context.Context) (Snapshot, error)
}

// PostgresRepository persists snapshots as jsonb documents. The payload is a
// single document per row so a restore never has to join partial state.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository wraps a pool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const uniqueViolation = "23505"

// keepSnapshots bounds the retained history; older rows are pruned on save.
const keepSnapshots = 48

// Save inserts one snapshot row keyed by capture instant and prunes history
// past the retention window in the same transaction.
func (r *PostgresRepository) Save(ctx context.Context, snap Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("snapshot: encode payload: %w", err)
	}
	err = db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			INSERT INTO warehouse_snapshots (id, taken_at, payload)
			VALUES ($1, $2, $3)
		`, uuid.NewString(), snap.TakenAt, payload); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `
			DELETE FROM warehouse_snapshots
			WHERE id NOT IN (
				SELECT id FROM warehouse_snapshots
				ORDER BY taken_at DESC
				LIMIT $1
			)
		`, keepSnapshots)
		return err
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("%w: %s", ErrSnapshotExists, snap.TakenAt)
		}
		return fmt.Errorf("snapshot: insert: %w", err)
	}
	return nil
}

// Latest fetches the most recent snapshot.
func (r *PostgresRepository) Latest(ctx context.Context) (Snapshot, error) {
	var payload []byte
	err := r.pool.QueryRow(ctx, `
		SELECT payload
		FROM warehouse_snapshots
		ORDER BY taken_at DESC
		LIMIT 1
	`).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Snapshot{}, ErrNoSnapshot
		}
		return Snapshot{}, fmt.Errorf("snapshot: select latest: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("snapshot: decode payload: %w", err)
	}
	return snap, nil
}

// MemoryRepository keeps snapshots in process. Used when the service runs
// without Postgres and in tests.
type MemoryRepository struct {
	mu    sync.Mutex
	snaps []Snapshot
}

// NewMemoryRepository builds an empty in-process repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

// Save appends a snapshot, rejecting duplicate capture instants.
func (r *MemoryRepository) Save(_ context.Context, snap Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.snaps {
		if existing.TakenAt.Equal(snap.TakenAt) {
			return fmt.Errorf("%w: %s", ErrSnapshotExists, snap.TakenAt)
		}
	}
	r.snaps = append(r.snaps, snap)
	return nil
}

// Latest returns the most recent snapshot by capture instant.
func (r *MemoryRepository) Latest(_ context.Context) (Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.snaps) == 0 {
		return Snapshot{}, ErrNoSnapshot
	}
	latest := r.snaps[0]
	for _, snap := range r.snaps[1:] {
		if snap.TakenAt.After(latest.TakenAt) {
			latest = snap
		}
	}
	return latest, nil
}
