package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/matchpulse/collector/internal/domain/team"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("create sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func TestUpsertTeams_InsertAndUpdate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTeamRepository(db)

	mock.ExpectBegin()

	mock.ExpectExec("SAVEPOINT team_upsert_0").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO teams")).
		WillReturnRows(sqlmock.NewRows([]string{"inserted"}).AddRow(true))
	mock.ExpectExec("RELEASE SAVEPOINT team_upsert_0").WillReturnResult(sqlmock.NewResult(0, 0))

	mock.ExpectExec("SAVEPOINT team_upsert_1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO teams")).
		WillReturnRows(sqlmock.NewRows([]string{"inserted"}).AddRow(false))
	mock.ExpectExec("RELEASE SAVEPOINT team_upsert_1").WillReturnResult(sqlmock.NewResult(0, 0))

	mock.ExpectCommit()

	result, err := repo.UpsertTeams(context.Background(), []team.Team{
		{ExternalID: 64, Name: "Liverpool FC", ShortName: "Liverpool", TLA: "LIV"},
		{ExternalID: 57, Name: "Arsenal FC", ShortName: "Arsenal", TLA: "ARS"},
	})
	if err != nil {
		t.Fatalf("upsert teams: %v", err)
	}

	if result.Inserted != 1 || result.Updated != 1 || result.Failed != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpsertTeams_BadRecordRollsBackOnlyItself(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTeamRepository(db)

	mock.ExpectBegin()

	mock.ExpectExec("SAVEPOINT team_upsert_0").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO teams")).
		WillReturnError(errors.New("value too long for column name"))
	mock.ExpectExec("ROLLBACK TO SAVEPOINT team_upsert_0").WillReturnResult(sqlmock.NewResult(0, 0))

	mock.ExpectExec("SAVEPOINT team_upsert_1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO teams")).
		WillReturnRows(sqlmock.NewRows([]string{"inserted"}).AddRow(true))
	mock.ExpectExec("RELEASE SAVEPOINT team_upsert_1").WillReturnResult(sqlmock.NewResult(0, 0))

	mock.ExpectCommit()

	result, err := repo.UpsertTeams(context.Background(), []team.Team{
		{ExternalID: 64, Name: "Liverpool FC"},
		{ExternalID: 57, Name: "Arsenal FC"},
	})
	if err != nil {
		t.Fatalf("upsert teams: %v", err)
	}

	if result.Inserted != 1 || result.Failed != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpsertTeams_InvalidRecordCountedWithoutQuery(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTeamRepository(db)

	mock.ExpectBegin()
	mock.ExpectCommit()

	result, err := repo.UpsertTeams(context.Background(), []team.Team{
		{ExternalID: 0, Name: "No ID FC"},
	})
	if err != nil {
		t.Fatalf("upsert teams: %v", err)
	}
	if result.Failed != 1 || result.Inserted != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpsertTeams_EmptyBatch(t *testing.T) {
	db, _ := newMockDB(t)
	repo := NewTeamRepository(db)

	result, err := repo.UpsertTeams(context.Background(), nil)
	if err != nil {
		t.Fatalf("upsert teams: %v", err)
	}
	if result.Inserted != 0 || result.Updated != 0 || result.Failed != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestGetTeamByExternalID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTeamRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM teams WHERE external_id = $1")).
		WithArgs(int64(999)).
		WillReturnRows(sqlmock.NewRows([]string{"external_id", "name"}))

	_, found, err := repo.GetByExternalID(context.Background(), 999)
	if err != nil {
		t.Fatalf("get team: %v", err)
	}
	if found {
		t.Fatal("expected not found")
	}
}
