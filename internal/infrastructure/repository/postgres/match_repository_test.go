package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	"github.com/matchpulse/collector/internal/domain/match"
)

func intPtr(v int) *int { return &v }

func TestUpsertMatches_DerivesResultBeforeWrite(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMatchRepository(db)

	utcDate := time.Date(2025, 8, 16, 14, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec("SAVEPOINT match_upsert_0").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO matches")).
		WithArgs(
			int64(501), int64(2021), "2025", 1, "FINISHED", utcDate,
			int64(64), int64(57), 2, 1, "H",
		).
		WillReturnRows(sqlmock.NewRows([]string{"inserted"}).AddRow(true))
	mock.ExpectExec("RELEASE SAVEPOINT match_upsert_0").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	result, err := repo.UpsertMatches(context.Background(), []match.Match{
		{
			ExternalID:         501,
			CompetitionID:      2021,
			Season:             "2025",
			Matchday:           1,
			Status:             match.StatusFinished,
			UTCDate:            utcDate,
			HomeTeamExternalID: 64,
			AwayTeamExternalID: 57,
			HomeScore:          intPtr(2),
			AwayScore:          intPtr(1),
			// Stale value: the repository recomputes from scores.
			Result: stringToPtr("A"),
		},
	})
	if err != nil {
		t.Fatalf("upsert matches: %v", err)
	}

	if result.Inserted != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpsertMatches_NilScoresStayNil(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMatchRepository(db)

	utcDate := time.Date(2025, 8, 17, 15, 30, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec("SAVEPOINT match_upsert_0").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO matches")).
		WithArgs(
			int64(502), int64(2021), "2025", 1, "TIMED", utcDate,
			int64(61), int64(73), nil, nil, nil,
		).
		WillReturnRows(sqlmock.NewRows([]string{"inserted"}).AddRow(true))
	mock.ExpectExec("RELEASE SAVEPOINT match_upsert_0").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	result, err := repo.UpsertMatches(context.Background(), []match.Match{
		{
			ExternalID:         502,
			CompetitionID:      2021,
			Season:             "2025",
			Matchday:           1,
			Status:             match.StatusTimed,
			UTCDate:            utcDate,
			HomeTeamExternalID: 61,
			AwayTeamExternalID: 73,
		},
	})
	if err != nil {
		t.Fatalf("upsert matches: %v", err)
	}
	if result.Inserted != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetMatchByExternalID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMatchRepository(db)

	utcDate := time.Date(2025, 8, 16, 14, 0, 0, 0, time.UTC)
	now := time.Now()

	columns := []string{
		"external_id", "competition_id", "season", "matchday", "status", "utc_date",
		"home_team_external_id", "away_team_external_id", "home_score", "away_score",
		"result", "created_at", "updated_at",
	}
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM matches WHERE external_id = $1")).
		WithArgs(int64(501)).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(int64(501), int64(2021), "2025", 1, "FINISHED", utcDate,
				int64(64), int64(57), int64(2), int64(1), "H", now, now))

	got, found, err := repo.GetByExternalID(context.Background(), 501)
	if err != nil {
		t.Fatalf("get match: %v", err)
	}
	if !found {
		t.Fatal("expected match to be found")
	}
	if got.Result == nil || *got.Result != "H" {
		t.Fatalf("unexpected result: %v", got.Result)
	}
	if got.HomeScore == nil || *got.HomeScore != 2 {
		t.Fatalf("unexpected home score: %v", got.HomeScore)
	}
}

func TestQualityStats(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMatchRepository(db)

	mock.ExpectQuery("SELECT").
		WillReturnRows(sqlmock.NewRows([]string{
			"total_matches", "finished_matches", "finished_missing_scores", "teams_count",
		}).AddRow(int64(100), int64(40), int64(4), int64(20)))

	stats, err := repo.QualityStats(context.Background())
	if err != nil {
		t.Fatalf("quality stats: %v", err)
	}

	if stats.TotalMatches != 100 || stats.FinishedMatches != 40 || stats.TeamsCount != 20 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.StaleFraction != 0.1 {
		t.Fatalf("unexpected stale fraction: %v", stats.StaleFraction)
	}
}
