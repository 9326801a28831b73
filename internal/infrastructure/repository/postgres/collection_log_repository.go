package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sonic "github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"

	"github.com/matchpulse/collector/internal/domain/collection"
	qb "github.com/matchpulse/collector/internal/platform/querybuilder"
)

// CollectionLogRepository is the append-only audit log. Rows are never
// updated or deleted.
type CollectionLogRepository struct {
	db *sqlx.DB
}

func NewCollectionLogRepository(db *sqlx.DB) *CollectionLogRepository {
	return &CollectionLogRepository{db: db}
}

func (r *CollectionLogRepository) Append(ctx context.Context, run collection.Run) (int64, error) {
	statsJSON, err := sonic.Marshal(run.Stats)
	if err != nil {
		return 0, fmt.Errorf("marshal collection stats: %w", err)
	}

	query, args, err := qb.InsertModel("data_collection_logs", collectionLogInsertModel{
		SourceName:     run.SourceName,
		CollectionType: run.CollectionType,
		State:          run.State,
		Stats:          statsJSON,
	}, "RETURNING id")
	if err != nil {
		return 0, fmt.Errorf("build append collection run query: %w", err)
	}

	var id int64
	if err := r.db.QueryRowxContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("append collection run source=%s: %w", run.SourceName, err)
	}

	return id, nil
}

func (r *CollectionLogRepository) ListBySource(ctx context.Context, sourceName string, limit int) ([]collection.Run, error) {
	if limit <= 0 {
		limit = 20
	}

	query, args, err := qb.Select("*").From("data_collection_logs").
		Where(qb.Eq("source_name", sourceName)).
		OrderBy("created_at DESC", "id DESC").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list collection runs query: %w", err)
	}

	var rows []collectionLogTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list collection runs source=%s: %w", sourceName, err)
	}

	out := make([]collection.Run, 0, len(rows))
	for _, row := range rows {
		run, err := mapCollectionLogRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}

	return out, nil
}

func (r *CollectionLogRepository) LastSuccessful(ctx context.Context, sourceName string) (collection.Run, bool, error) {
	query, args, err := qb.Select("*").From("data_collection_logs").
		Where(
			qb.Eq("source_name", sourceName),
			qb.Eq("state", collection.StateDone),
		).
		OrderBy("created_at DESC", "id DESC").
		Limit(1).
		ToSQL()
	if err != nil {
		return collection.Run{}, false, fmt.Errorf("build last successful run query: %w", err)
	}

	var row collectionLogTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return collection.Run{}, false, nil
		}
		return collection.Run{}, false, fmt.Errorf("last successful run source=%s: %w", sourceName, err)
	}

	run, err := mapCollectionLogRow(row)
	if err != nil {
		return collection.Run{}, false, err
	}
	return run, true, nil
}

func mapCollectionLogRow(row collectionLogTableModel) (collection.Run, error) {
	var stats collection.Stats
	if len(row.Stats) > 0 {
		if err := sonic.Unmarshal(row.Stats, &stats); err != nil {
			return collection.Run{}, fmt.Errorf("unmarshal stats for run id=%d: %w", row.ID, err)
		}
	}

	return collection.Run{
		ID:             row.ID,
		SourceName:     row.SourceName,
		CollectionType: row.CollectionType,
		State:          row.State,
		Stats:          stats,
		CreatedAt:      row.CreatedAt,
	}, nil
}
