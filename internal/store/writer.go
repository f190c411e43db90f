package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/bgparchive/bgparchive/internal/observability"
)

// Writer batches RouteEvents into route_events, deduping on (event_id,
// prefix, action) so replaying the same archive twice is a no-op.
type Writer struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewWriter(pool *pgxpool.Pool, logger *zap.Logger) *Writer {
	return &Writer{pool: pool, logger: logger}
}

// Row pairs one archive frame's EventID with the RouteEvents projected
// from it (an UPDATE with N prefixes yields N rows sharing an EventID).
type Row struct {
	EventID []byte
	Event   RouteEvent
}

// FlushBatch inserts a batch of rows, returning the number actually
// written (after dedup).
func (w *Writer) FlushBatch(ctx context.Context, rows []Row) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	start := time.Now()

	tx, err := w.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	const insertSQL = `
		INSERT INTO route_events (event_id, ingest_time, afi, prefix, path_id, action,
			nexthop, as_path, origin, localpref, med, communities_std, communities_ext, communities_large)
		VALUES ($1, now(), $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (event_id, prefix, action) DO NOTHING`

	batch := &pgx.Batch{}
	for _, r := range rows {
		e := r.Event
		batch.Queue(insertSQL,
			r.EventID, e.AFI, e.Prefix, nilIfZero(e.PathID), e.Action,
			nilIfEmpty(e.Nexthop), nilIfEmpty(e.ASPath), nilIfEmpty(e.Origin),
			e.LocalPref, e.MED, e.CommStd, e.CommExt, e.CommLarge,
		)
	}

	br := tx.SendBatch(ctx, batch)
	var written int64
	for range rows {
		tag, err := br.Exec()
		if err != nil {
			br.Close()
			return 0, fmt.Errorf("executing batch insert: %w", err)
		}
		written += tag.RowsAffected()
	}
	if err := br.Close(); err != nil {
		return 0, fmt.Errorf("closing batch: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}

	observability.StoreWriteDuration.WithLabelValues("flush_batch").Observe(time.Since(start).Seconds())
	observability.StoreRowsWrittenTotal.WithLabelValues("flush_batch").Add(float64(written))
	if dedup := int64(len(rows)) - written; dedup > 0 {
		observability.StoreDedupConflictsTotal.WithLabelValues("archive").Add(float64(dedup))
	}
	w.logger.Debug("flushed route event batch", zap.Int("rows", len(rows)), zap.Int64("written", written))
	return written, nil
}

// Ping satisfies httpapi's readiness check interface.
func (w *Writer) Ping(ctx context.Context) error {
	return w.pool.Ping(ctx)
}

func nilIfZero(v uint32) any {
	if v == 0 {
		return nil
	}
	return v
}

func nilIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
