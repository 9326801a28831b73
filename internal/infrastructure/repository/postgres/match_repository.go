package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/matchpulse/collector/internal/domain/collection"
	"github.com/matchpulse/collector/internal/domain/match"
	qb "github.com/matchpulse/collector/internal/platform/querybuilder"
)

const matchUpsertSuffix = `ON CONFLICT (external_id) DO UPDATE SET
    competition_id = EXCLUDED.competition_id,
    season = EXCLUDED.season,
    matchday = EXCLUDED.matchday,
    status = EXCLUDED.status,
    utc_date = EXCLUDED.utc_date,
    home_team_external_id = EXCLUDED.home_team_external_id,
    away_team_external_id = EXCLUDED.away_team_external_id,
    home_score = EXCLUDED.home_score,
    away_score = EXCLUDED.away_score,
    result = EXCLUDED.result,
    updated_at = NOW()
RETURNING (xmax = 0) AS inserted`

const matchQualityQuery = `SELECT
    COUNT(*) AS total_matches,
    COUNT(*) FILTER (WHERE status = 'FINISHED') AS finished_matches,
    COUNT(*) FILTER (WHERE status = 'FINISHED' AND (home_score IS NULL OR away_score IS NULL)) AS finished_missing_scores,
    (SELECT COUNT(*) FROM teams) AS teams_count
FROM matches`

type MatchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

// UpsertMatches writes the batch in one transaction with a savepoint
// per record. The H/D/A result is recomputed from the scores before
// every write so a score correction always refreshes the outcome;
// matching rows are overwritten last-write-wins under the row lock the
// conflict clause takes.
func (r *MatchRepository) UpsertMatches(ctx context.Context, items []match.Match) (collection.UpsertResult, error) {
	var result collection.UpsertResult
	if len(items) == 0 {
		return result, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return result, fmt.Errorf("begin tx upsert matches: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for i, item := range items {
		if err := item.Validate(); err != nil {
			result.Failed++
			continue
		}

		savepoint := fmt.Sprintf("match_upsert_%d", i)
		if _, err := tx.ExecContext(ctx, "SAVEPOINT "+savepoint); err != nil {
			return result, fmt.Errorf("savepoint upsert match external_id=%d: %w", item.ExternalID, err)
		}

		query, args, err := qb.InsertModel("matches", matchInsertModel{
			ExternalID:         item.ExternalID,
			CompetitionID:      item.CompetitionID,
			Season:             item.Season,
			Matchday:           item.Matchday,
			Status:             match.NormalizeStatus(item.Status),
			UTCDate:            item.UTCDate.UTC(),
			HomeTeamExternalID: item.HomeTeamExternalID,
			AwayTeamExternalID: item.AwayTeamExternalID,
			HomeScore:          item.HomeScore,
			AwayScore:          item.AwayScore,
			Result:             match.DeriveResult(item.HomeScore, item.AwayScore),
		}, matchUpsertSuffix)
		if err != nil {
			return result, fmt.Errorf("build upsert match query: %w", err)
		}

		var inserted bool
		if err := tx.QueryRowxContext(ctx, query, args...).Scan(&inserted); err != nil {
			if _, rbErr := tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+savepoint); rbErr != nil {
				return result, fmt.Errorf("rollback savepoint upsert match external_id=%d: %w", item.ExternalID, rbErr)
			}
			result.Failed++
			continue
		}
		if _, err := tx.ExecContext(ctx, "RELEASE SAVEPOINT "+savepoint); err != nil {
			return result, fmt.Errorf("release savepoint upsert match external_id=%d: %w", item.ExternalID, err)
		}

		if inserted {
			result.Inserted++
		} else {
			result.Updated++
		}
	}

	if err := tx.Commit(); err != nil {
		return collection.UpsertResult{}, fmt.Errorf("commit upsert matches: %w", err)
	}

	return result, nil
}

func (r *MatchRepository) GetByExternalID(ctx context.Context, externalID int64) (match.Match, bool, error) {
	query, args, err := qb.Select("*").From("matches").
		Where(qb.Eq("external_id", externalID)).
		ToSQL()
	if err != nil {
		return match.Match{}, false, fmt.Errorf("build get match query: %w", err)
	}

	var row matchTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return match.Match{}, false, nil
		}
		return match.Match{}, false, fmt.Errorf("get match external_id=%d: %w", externalID, err)
	}

	return match.Match{
		ExternalID:         row.ExternalID,
		CompetitionID:      row.CompetitionID,
		Season:             row.Season,
		Matchday:           row.Matchday,
		Status:             row.Status,
		UTCDate:            row.UTCDate.UTC(),
		HomeTeamExternalID: row.HomeTeamExternalID,
		AwayTeamExternalID: row.AwayTeamExternalID,
		HomeScore:          nullInt64ToIntPtr(row.HomeScore),
		AwayScore:          nullInt64ToIntPtr(row.AwayScore),
		Result:             nullStringToStringPtr(row.Result),
	}, true, nil
}

func (r *MatchRepository) QualityStats(ctx context.Context) (match.QualityStats, error) {
	var row struct {
		TotalMatches          int64 `db:"total_matches"`
		FinishedMatches       int64 `db:"finished_matches"`
		FinishedMissingScores int64 `db:"finished_missing_scores"`
		TeamsCount            int64 `db:"teams_count"`
	}
	if err := r.db.GetContext(ctx, &row, matchQualityQuery); err != nil {
		return match.QualityStats{}, fmt.Errorf("load match quality stats: %w", err)
	}

	stats := match.QualityStats{
		TotalMatches:          row.TotalMatches,
		FinishedMatches:       row.FinishedMatches,
		FinishedMissingScores: row.FinishedMissingScores,
		TeamsCount:            row.TeamsCount,
	}
	if stats.FinishedMatches > 0 {
		stats.StaleFraction = float64(stats.FinishedMissingScores) / float64(stats.FinishedMatches)
	}
	return stats, nil
}
