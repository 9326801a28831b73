package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/matchpulse/collector/internal/domain/collection"
	"github.com/matchpulse/collector/internal/domain/team"
	qb "github.com/matchpulse/collector/internal/platform/querybuilder"
)

const teamUpsertSuffix = `ON CONFLICT (external_id) DO UPDATE SET
    name = EXCLUDED.name,
    short_name = EXCLUDED.short_name,
    tla = EXCLUDED.tla,
    updated_at = NOW()
RETURNING (xmax = 0) AS inserted`

type TeamRepository struct {
	db *sqlx.DB
}

func NewTeamRepository(db *sqlx.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

// UpsertTeams writes the batch in one transaction with a savepoint per
// record: a record that violates a constraint rolls back only itself
// and is counted in Failed, the rest of the batch still commits.
func (r *TeamRepository) UpsertTeams(ctx context.Context, items []team.Team) (collection.UpsertResult, error) {
	var result collection.UpsertResult
	if len(items) == 0 {
		return result, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return result, fmt.Errorf("begin tx upsert teams: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for i, item := range items {
		if err := item.Validate(); err != nil {
			result.Failed++
			continue
		}

		savepoint := fmt.Sprintf("team_upsert_%d", i)
		if _, err := tx.ExecContext(ctx, "SAVEPOINT "+savepoint); err != nil {
			return result, fmt.Errorf("savepoint upsert team external_id=%d: %w", item.ExternalID, err)
		}

		query, args, err := qb.InsertModel("teams", teamInsertModel{
			ExternalID: item.ExternalID,
			Name:       item.Name,
			ShortName:  stringToPtr(item.ShortName),
			TLA:        stringToPtr(item.TLA),
		}, teamUpsertSuffix)
		if err != nil {
			return result, fmt.Errorf("build upsert team query: %w", err)
		}

		var inserted bool
		if err := tx.QueryRowxContext(ctx, query, args...).Scan(&inserted); err != nil {
			if _, rbErr := tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+savepoint); rbErr != nil {
				return result, fmt.Errorf("rollback savepoint upsert team external_id=%d: %w", item.ExternalID, rbErr)
			}
			result.Failed++
			continue
		}
		if _, err := tx.ExecContext(ctx, "RELEASE SAVEPOINT "+savepoint); err != nil {
			return result, fmt.Errorf("release savepoint upsert team external_id=%d: %w", item.ExternalID, err)
		}

		if inserted {
			result.Inserted++
		} else {
			result.Updated++
		}
	}

	if err := tx.Commit(); err != nil {
		return collection.UpsertResult{}, fmt.Errorf("commit upsert teams: %w", err)
	}

	return result, nil
}

func (r *TeamRepository) GetByExternalID(ctx context.Context, externalID int64) (team.Team, bool, error) {
	query, args, err := qb.Select("*").From("teams").
		Where(qb.Eq("external_id", externalID)).
		ToSQL()
	if err != nil {
		return team.Team{}, false, fmt.Errorf("build get team query: %w", err)
	}

	var row teamTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return team.Team{}, false, nil
		}
		return team.Team{}, false, fmt.Errorf("get team external_id=%d: %w", externalID, err)
	}

	return team.Team{
		ExternalID: row.ExternalID,
		Name:       row.Name,
		ShortName:  nullStringToString(row.ShortName),
		TLA:        nullStringToString(row.TLA),
	}, true, nil
}

func (r *TeamRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM teams"); err != nil {
		return 0, fmt.Errorf("count teams: %w", err)
	}
	return count, nil
}
