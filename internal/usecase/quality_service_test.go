package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/matchpulse/collector/internal/domain/collection"
	"github.com/matchpulse/collector/internal/domain/match"
	"github.com/matchpulse/collector/internal/platform/logging"
	"github.com/matchpulse/collector/internal/platform/ratelimit"
)

type qualityMatchRepo struct {
	stats match.QualityStats
	err   error
}

func (r *qualityMatchRepo) UpsertMatches(ctx context.Context, items []match.Match) (collection.UpsertResult, error) {
	return collection.UpsertResult{}, nil
}

func (r *qualityMatchRepo) GetByExternalID(ctx context.Context, externalID int64) (match.Match, bool, error) {
	return match.Match{}, false, nil
}

func (r *qualityMatchRepo) QualityStats(ctx context.Context) (match.QualityStats, error) {
	return r.stats, r.err
}

type qualityLogRepo struct {
	runs   map[string][]collection.Run
	errFor map[string]error
}

func (r *qualityLogRepo) Append(ctx context.Context, run collection.Run) (int64, error) {
	return 0, nil
}

func (r *qualityLogRepo) ListBySource(ctx context.Context, sourceName string, limit int) ([]collection.Run, error) {
	if err := r.errFor[sourceName]; err != nil {
		return nil, err
	}
	return r.runs[sourceName], nil
}

func (r *qualityLogRepo) LastSuccessful(ctx context.Context, sourceName string) (collection.Run, bool, error) {
	return collection.Run{}, false, nil
}

func TestGetQualityReport(t *testing.T) {
	limiter := ratelimit.NewSourceLimiter()
	require.NoError(t, limiter.Register("football_data", 10))

	matchRepo := &qualityMatchRepo{stats: match.QualityStats{
		TotalMatches:          120,
		FinishedMatches:       80,
		FinishedMissingScores: 8,
		TeamsCount:            20,
		StaleFraction:         0.1,
	}}
	logRepo := &qualityLogRepo{runs: map[string][]collection.Run{
		"football_data": {
			{ID: 2, SourceName: "football_data", CollectionType: collection.TypeMatches, State: collection.StateDone, CreatedAt: time.Now()},
			{ID: 1, SourceName: "football_data", CollectionType: collection.TypeTeams, State: collection.StateDone, CreatedAt: time.Now()},
		},
	}}

	svc := NewQualityService(logging.NewNop(), matchRepo, logRepo, limiter)
	report, err := svc.GetQualityReport(context.Background(), []string{"football_data"})
	require.NoError(t, err)

	require.Equal(t, int64(120), report.Matches.TotalMatches)
	require.InDelta(t, 0.1, report.Matches.StaleFraction, 1e-9)
	require.Len(t, report.RecentRuns, 2)
	// 10 requests/minute spaces calls six seconds apart.
	require.InDelta(t, 6.0, report.SourceDelays["football_data"], 1e-9)
}

func TestGetQualityReport_StatsError(t *testing.T) {
	matchRepo := &qualityMatchRepo{err: errors.New("connection refused")}
	svc := NewQualityService(logging.NewNop(), matchRepo, &qualityLogRepo{}, nil)

	_, err := svc.GetQualityReport(context.Background(), []string{"football_data"})
	require.Error(t, err)
}

func TestGetQualityReport_RunHistoryFailureIsNonFatal(t *testing.T) {
	matchRepo := &qualityMatchRepo{stats: match.QualityStats{TotalMatches: 5}}
	logRepo := &qualityLogRepo{errFor: map[string]error{"football_data": errors.New("timeout")}}

	svc := NewQualityService(logging.NewNop(), matchRepo, logRepo, nil)
	report, err := svc.GetQualityReport(context.Background(), []string{"football_data"})
	require.NoError(t, err)
	require.Empty(t, report.RecentRuns)
}
