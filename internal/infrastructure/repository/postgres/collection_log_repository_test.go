package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	"github.com/matchpulse/collector/internal/domain/collection"
)

func TestAppendRun(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCollectionLogRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO data_collection_logs")).
		WithArgs("football_data", collection.TypeMatches, collection.StateDone, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	stats := collection.NewStats(time.Date(2025, 8, 16, 10, 0, 0, 0, time.UTC))
	stats.AddFetched(10)
	stats.AddProcessed(10)
	stats.Finalize(time.Date(2025, 8, 16, 10, 0, 5, 0, time.UTC))

	id, err := repo.Append(context.Background(), collection.Run{
		SourceName:     "football_data",
		CollectionType: collection.TypeMatches,
		State:          collection.StateDone,
		Stats:          *stats,
	})
	if err != nil {
		t.Fatalf("append run: %v", err)
	}
	if id != 7 {
		t.Fatalf("unexpected id: %d", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListBySource_RoundTripsStats(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCollectionLogRepository(db)

	statsJSON := []byte(`{"started_at":"2025-08-16T10:00:00Z","completed_at":"2025-08-16T10:00:05Z","records_fetched":10,"records_processed":9,"records_failed":1}`)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM data_collection_logs WHERE source_name = $1")).
		WithArgs("football_data").
		WillReturnRows(sqlmock.NewRows([]string{"id", "source_name", "collection_type", "state", "stats", "created_at"}).
			AddRow(int64(1), "football_data", collection.TypeTeams, collection.StateDone, statsJSON, now))

	runs, err := repo.ListBySource(context.Background(), "football_data", 10)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}

	run := runs[0]
	if run.Stats.RecordsFetched != 10 || run.Stats.RecordsProcessed != 9 || run.Stats.RecordsFailed != 1 {
		t.Fatalf("unexpected stats: %+v", run.Stats)
	}
	if run.Stats.CompletedAt == nil {
		t.Fatal("expected completed_at to round trip")
	}
}

func TestLastSuccessful_NoRuns(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCollectionLogRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM data_collection_logs")).
		WithArgs("football_data", collection.StateDone).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, found, err := repo.LastSuccessful(context.Background(), "football_data")
	if err != nil {
		t.Fatalf("last successful: %v", err)
	}
	if found {
		t.Fatal("expected no successful run")
	}
}
